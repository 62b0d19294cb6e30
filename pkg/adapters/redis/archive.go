// Package redis archives exported timelines in Redis lists.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/axon/pkg/ports"
)

// Archive implements ports.TimelineArchive using one Redis list per circuit.
// New records are pushed to the head, so LRANGE yields newest first.
type Archive struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
}

var _ ports.TimelineArchive = (*Archive)(nil)

type Option func(*Archive)

// WithTTL sets the expiration of each circuit list, refreshed on every export.
func WithTTL(ttl time.Duration) Option {
	return func(a *Archive) {
		a.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

// WithMaxLen bounds each circuit list. Zero keeps every record.
func WithMaxLen(n int64) Option {
	return func(a *Archive) {
		a.maxLen = n
	}
}

// New connects to the Redis server described by url (redis://host:port/db).
func New(url string, opts ...Option) (*Archive, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates an archive from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Archive {
	a := &Archive{
		client: client,
		prefix: "axon:timeline:",
		maxLen: 1000,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Archive) key(circuit string) string {
	return a.prefix + circuit
}

// Export pushes rec to its circuit list.
func (a *Archive) Export(ctx context.Context, rec ports.ExportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline record: %w", err)
	}

	key := a.key(rec.Circuit)
	_, err = a.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		if a.maxLen > 0 {
			pipe.LTrim(ctx, key, 0, a.maxLen-1)
		}
		if a.ttl > 0 {
			pipe.Expire(ctx, key, a.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to archive timeline to redis: %w", err)
	}
	return nil
}

// Recent returns up to limit records for circuit, newest first.
func (a *Archive) Recent(ctx context.Context, circuit string, limit int) ([]ports.ExportRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := a.client.LRange(ctx, a.key(circuit), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read timelines from redis: %w", err)
	}

	out := make([]ports.ExportRecord, 0, len(raw))
	for _, item := range raw {
		var rec ports.ExportRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("corrupt timeline record in %s: %w", a.key(circuit), err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Close releases the underlying client.
func (a *Archive) Close() error {
	return a.client.Close()
}

package middleware_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/pkg/adapters/middleware"
	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/ports"
)

type memoryArchive struct {
	mu      sync.Mutex
	records []ports.ExportRecord
	closed  bool
}

func (m *memoryArchive) Export(_ context.Context, rec ports.ExportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]ports.ExportRecord{rec}, m.records...)
	return nil
}

func (m *memoryArchive) Recent(_ context.Context, circuit string, limit int) ([]ports.ExportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ports.ExportRecord
	for _, r := range m.records {
		if r.Circuit == circuit {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryArchive) Close() error {
	m.closed = true
	return nil
}

func TestMemoryArchiveContract(t *testing.T) {
	mw, err := middleware.NewRedactMiddleware(nil)
	require.NoError(t, err)
	ports.RunTimelineArchiveContract(t, middleware.Chain(&memoryArchive{}, mw))
}

func TestRedactMiddleware(t *testing.T) {
	next := &memoryArchive{}
	mw, err := middleware.NewRedactMiddleware([]string{`^card-\d+$`, `(?i)email`})
	require.NoError(t, err)
	archive := middleware.Chain(next, mw)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	events := []domain.TimelineEvent{
		domain.NodeEnter("n1", "Lookup email", at),
		domain.NodeExit("n1", "Branch:card-4242", time.Millisecond, at),
		domain.BranchTaken("card-4242", at),
		domain.NodeEnter("n2", "Reserve", at),
	}
	rec := ports.ExportRecord{Circuit: "orders", BusID: "b1", OutcomeTag: "Branch:card-4242", ExportedAt: at, Events: events}
	require.NoError(t, archive.Export(context.Background(), rec))

	got, err := archive.Recent(context.Background(), "orders", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Branch:"+middleware.Mask, got[0].OutcomeTag)
	assert.Equal(t, middleware.Mask, got[0].Events[0].Label)
	assert.Equal(t, "Branch:"+middleware.Mask, got[0].Events[1].OutcomeTag)
	assert.Equal(t, middleware.Mask, got[0].Events[2].BranchID)
	assert.Equal(t, "Reserve", got[0].Events[3].Label)

	assert.Equal(t, "Lookup email", events[0].Label, "caller's events untouched")

	closer, ok := archive.(interface{ Close() error })
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.True(t, next.closed)
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactMiddleware([]string{"("})
	assert.Error(t, err)
}

package middleware

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/axon/pkg/ports"
)

// Mask replaces redacted text.
const Mask = "***"

type redactMiddleware struct {
	next     ports.TimelineArchive
	patterns []*regexp.Regexp
}

// NewRedactMiddleware masks node labels, branch ids and outcome tag
// identifiers matching any of the patterns before export.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.TimelineArchive) ports.TimelineArchive {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Export(ctx context.Context, rec ports.ExportRecord) error {
	// Events are shared with the file export and other sinks.
	rec.Events = slices.Clone(rec.Events)
	for i := range rec.Events {
		ev := &rec.Events[i]
		ev.Label = m.mask(ev.Label)
		ev.BranchID = m.mask(ev.BranchID)
		ev.OutcomeTag = m.maskTag(ev.OutcomeTag)
	}
	rec.OutcomeTag = m.maskTag(rec.OutcomeTag)
	return m.next.Export(ctx, rec)
}

func (m *redactMiddleware) Recent(ctx context.Context, circuit string, limit int) ([]ports.ExportRecord, error) {
	return m.next.Recent(ctx, circuit, limit)
}

// Close closes the wrapped archive when it can be closed.
func (m *redactMiddleware) Close() error {
	if c, ok := m.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

func (m *redactMiddleware) mask(s string) string {
	if s == "" {
		return s
	}
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return Mask
		}
	}
	return s
}

// maskTag keeps the outcome kind so tags stay countable.
func (m *redactMiddleware) maskTag(tag string) string {
	kind, id, ok := strings.Cut(tag, ":")
	if !ok {
		return tag
	}
	return kind + ":" + m.mask(id)
}

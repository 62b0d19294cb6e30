package ports

import (
	"context"
	"time"

	"github.com/aretw0/axon/pkg/domain"
)

// ExportRecord is one exported execution timeline.
type ExportRecord struct {
	Circuit    string                 `json:"circuit"`
	BusID      string                 `json:"bus_id"`
	OutcomeTag string                 `json:"outcome_tag"`
	Forced     bool                   `json:"forced"`
	ExportedAt time.Time              `json:"exported_at"`
	Events     []domain.TimelineEvent `json:"events"`
}

// TimelineSink receives exported timelines in addition to the timeline file.
// Failures are logged by the caller and never affect execution.
type TimelineSink interface {
	Export(ctx context.Context, rec ExportRecord) error
}

// TimelineArchive is a sink that can list what it stored.
type TimelineArchive interface {
	TimelineSink

	// Recent returns up to limit records for circuit, newest first.
	// A limit of zero or less returns every record.
	Recent(ctx context.Context, circuit string, limit int) ([]ExportRecord, error)
}

package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/axon/pkg/domain"
)

// RunTimelineArchiveContract runs a suite of tests to verify that a TimelineArchive
// implementation adheres to the defined interface contract.
func RunTimelineArchiveContract(t *testing.T, archive TimelineArchive) {
	ctx := context.Background()
	circuit := "contract-" + time.Now().Format("20060102150405.000000000")
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	record := func(i int) ExportRecord {
		at := base.Add(time.Duration(i) * time.Second)
		return ExportRecord{
			Circuit:    circuit,
			BusID:      fmt.Sprintf("bus-%d", i),
			OutcomeTag: "Next",
			ExportedAt: at,
			Events: []domain.TimelineEvent{
				domain.NodeEnter("n1", "Ingress", at),
				domain.NodeExit("n1", "Next", time.Millisecond, at.Add(time.Millisecond)),
			},
		}
	}

	t.Run("Export and Recent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, archive.Export(ctx, record(i)), "Export should not return error")
		}

		got, err := archive.Recent(ctx, circuit, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "bus-2", got[0].BusID, "newest first")
		assert.Equal(t, "bus-1", got[1].BusID)
		assert.Equal(t, circuit, got[0].Circuit)
		assert.Equal(t, "Next", got[0].OutcomeTag)
		require.Len(t, got[0].Events, 2)
		assert.Equal(t, domain.EventNodeEnter, got[0].Events[0].Type)
		assert.True(t, record(2).ExportedAt.Equal(got[0].ExportedAt))
	})

	t.Run("Recent Without Limit", func(t *testing.T) {
		got, err := archive.Recent(ctx, circuit, 0)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("Recent Unknown Circuit", func(t *testing.T) {
		got, err := archive.Recent(ctx, "unknown-"+circuit, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Forced Flag Preserved", func(t *testing.T) {
		rec := record(10)
		rec.Circuit = circuit + "-forced"
		rec.Forced = true
		rec.OutcomeTag = "Fault"
		require.NoError(t, archive.Export(ctx, rec))

		got, err := archive.Recent(ctx, rec.Circuit, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Forced)
		assert.Equal(t, "Fault", got[0].OutcomeTag)
	})
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/axon/pkg/domain"
	"github.com/aretw0/axon/pkg/observability"
	"github.com/aretw0/axon/pkg/replay"
)

// TimelineMarkdown renders events as a markdown table, in timestamp order.
func TimelineMarkdown(title string, events []domain.TimelineEvent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(events) == 0 {
		sb.WriteString("_No events captured._\n")
		return sb.String()
	}

	tl := domain.NewTimeline(events...)
	sb.WriteString("| # | Time | Event | Node | Detail |\n")
	sb.WriteString("|---|------|-------|------|--------|\n")
	for i, ev := range tl.Snapshot() {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			i+1,
			ev.Time().UTC().Format("15:04:05.000"),
			ev.Type,
			cell(nodeCell(ev)),
			cell(detail(ev)),
		)
	}
	return sb.String()
}

// FrameMarkdown renders one replay frame.
func FrameMarkdown(f replay.Frame, total int) string {
	ev := f.Event
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Step %d of %d\n\n", f.Index+1, total)
	fmt.Fprintf(&sb, "- **Event**: `%s`\n", ev.Type)
	if f.NodeID != "" {
		fmt.Fprintf(&sb, "- **Node**: %s\n", nodeCell(ev))
	}
	if d := detail(ev); d != "" {
		fmt.Fprintf(&sb, "- **Detail**: %s\n", d)
	}
	return sb.String()
}

// StatsMarkdown renders a sampling stats snapshot.
func StatsMarkdown(s observability.Stats) string {
	var sb strings.Builder
	sb.WriteString("# Sampling Stats\n\n")
	sb.WriteString("| Counter | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Total decisions | %d |\n", s.TotalDecisions)
	fmt.Fprintf(&sb, "| Exported | %d |\n", s.Exported)
	fmt.Fprintf(&sb, "| Skipped | %d |\n", s.Skipped)
	fmt.Fprintf(&sb, "| Sampled exports | %d |\n", s.SampledExports)
	fmt.Fprintf(&sb, "| Forced exports | %d |\n", s.ForcedExports)
	fmt.Fprintf(&sb, "| Last mode | %s |\n", orDash(string(s.LastMode)))
	fmt.Fprintf(&sb, "| Last policy | %s |\n", orDash(string(s.LastPolicy)))
	updated := "-"
	if !s.LastUpdated.IsZero() {
		updated = s.LastUpdated.UTC().Format(time.RFC3339)
	}
	fmt.Fprintf(&sb, "| Last updated | %s |\n", updated)
	return sb.String()
}

func nodeCell(ev domain.TimelineEvent) string {
	if ev.Label != "" {
		return fmt.Sprintf("%s (%s)", ev.Label, shortID(ev.NodeID))
	}
	return shortID(ev.NodeID)
}

func detail(ev domain.TimelineEvent) string {
	switch ev.Type {
	case domain.EventNodeExit:
		return fmt.Sprintf("%s in %dms", ev.OutcomeTag, ev.DurationMS)
	case domain.EventBranchTaken:
		return "branch " + ev.BranchID
	default:
		return ""
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package domain

import "fmt"

// Phase is the explicit pipeline position a task is in. The user-facing
// percentage is computed structurally from (phase, completed chunks,
// total chunks), never inferred from progress text.
type Phase string

const (
	PhaseQueued    Phase = "queued"
	PhaseSplitting Phase = "splitting"
	PhaseChunks    Phase = "chunks"
	PhaseMerging   Phase = "merging"
	PhaseDone      Phase = "done"
)

// Percentage anchors. The exact values are a UX convention; the hard
// contract is that the reported percentage never regresses, which the
// registry enforces on top of this mapping.
const (
	percentQueued     = 10
	percentSplitting  = 20
	percentChunksBase = 30
	percentChunksSpan = 30
	percentMerging    = 90
	percentDone       = 100
)

// ProgressPercent maps a pipeline position to its percentage.
func ProgressPercent(phase Phase, done, total int) int {
	switch phase {
	case PhaseQueued:
		return percentQueued
	case PhaseSplitting:
		return percentSplitting
	case PhaseChunks:
		if total <= 0 {
			return percentChunksBase
		}
		if done > total {
			done = total
		}
		return percentChunksBase + done*percentChunksSpan/total
	case PhaseMerging:
		return percentMerging
	case PhaseDone:
		return percentDone
	default:
		return 0
	}
}

func progressLabel(phase Phase, done, total int) string {
	switch phase {
	case PhaseQueued:
		return "Waiting to start..."
	case PhaseSplitting:
		return "Splitting audio..."
	case PhaseChunks:
		return fmt.Sprintf("Processing chunk %d/%d", minInt(done+1, total), total)
	case PhaseMerging:
		return "Merging audio chunks..."
	case PhaseDone:
		return "Completed"
	default:
		return ""
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

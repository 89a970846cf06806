package metrics

import "time"

// Collector receives measurements from squad allocation operations
type Collector interface {
	// RecordAllocationRun records the outcome ("success", "partial", "dry_run", "error")
	// and duration of one bulk allocation run
	RecordAllocationRun(result string, duration time.Duration)

	// RecordAssignments counts athletes seated in a discipline
	RecordAssignments(discipline string, count int)

	// RecordUnassigned counts athletes left without a squad, by discipline and reason
	RecordUnassigned(discipline, reason string, count int)

	// RecordSquadsCreated counts squads created by a run
	RecordSquadsCreated(count int)

	// RecordManualPlacement records the outcome of a single-athlete placement
	RecordManualPlacement(result string)
}

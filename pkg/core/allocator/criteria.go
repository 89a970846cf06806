package allocator

// ValidationError represents a broken constraint found in the final squad state
type ValidationError struct {
	TimeSlotID    string
	SquadID       string
	AthleteID     string
	CriterionName string
	Description   string
}

// Criterion defines the interface for allocation constraints.
// Conflict, capacity and structural checks are always applied by the allocator itself;
// criteria add vetoes on top and verify the final state once a run completes.
type Criterion interface {
	// Name returns a human-readable identifier for this criterion
	Name() string

	// IsSlotValid determines if a time slot may take the given members.
	// This acts as a veto - if ANY criterion returns false, the slot is skipped
	// and the returned reason is recorded for the members.
	IsSlotValid(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason)

	// ValidateRunState checks the squads held in the run's catalog after allocation
	// Returns a slice of validation errors (empty if all valid)
	ValidateRunState(run *RunContext) []ValidationError
}

// DefaultCriteria returns the criteria every run should be validated against
func DefaultCriteria() []Criterion {
	return []Criterion{
		NewTimeConflictCriterion(),
		NewCapacityCriterion(),
		NewStructuralModeCriterion(),
		NewRegistrationCriterion(),
	}
}

// isSlotValidForMembers runs every criterion's veto and returns the first rejection
func isSlotValidForMembers(run *RunContext, discipline Discipline, members []*Athlete, slot *TimeSlot) (bool, FailureReason) {
	for _, criterion := range run.Criteria {
		if valid, reason := criterion.IsSlotValid(run, discipline, members, slot); !valid {
			return false, reason
		}
	}
	return true, ""
}

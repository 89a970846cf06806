package allocator

// ValidateRunState validates the squads held by a run against all provided criteria.
// Returns a slice of validation errors for any constraint violations.
// An empty slice indicates the state is valid.
func ValidateRunState(run *RunContext, criteria []Criterion) []ValidationError {
	var errors []ValidationError

	for _, criterion := range criteria {
		criterionErrors := criterion.ValidateRunState(run)
		errors = append(errors, criterionErrors...)
	}

	return errors
}

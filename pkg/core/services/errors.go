package services

import "errors"

// Operational errors. These abort an operation before anything is written.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrNoRegistrations    = errors.New("tournament has no registered athletes")
	ErrNoTimeSlots        = errors.New("tournament has no time slots")
	ErrDisciplineNotFound = errors.New("discipline not found")
	ErrAthleteNotFound    = errors.New("athlete not found")
	ErrSquadNotFound      = errors.New("squad not found")
	ErrTimeSlotNotFound   = errors.New("time slot not found")
	ErrNotRegistered      = errors.New("athlete is not registered for this discipline")
	ErrNotInSquad         = errors.New("athlete is not a member of this squad")

	// ErrInvariantViolation means the allocated state failed validation and was rolled back
	ErrInvariantViolation = errors.New("allocation violates squad invariants")
)

// errDryRun rolls back a dry-run transaction after the result has been captured
var errDryRun = errors.New("dry run")

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
	"github.com/georgewallace/claytargettracker-sub000/pkg/metrics"
)

// TournamentStore runs work inside a locked tournament transaction
type TournamentStore interface {
	WithTournamentTx(ctx context.Context, tournamentID string, fn func(tx db.Tx) error) error
}

// AllocateRequest describes one bulk allocation run
type AllocateRequest struct {
	TournamentID string
	Options      allocator.Options

	// DeleteExistingSquads clears every squad of the tournament before allocating
	DeleteExistingSquads bool

	// DryRun computes the result and rolls everything back
	DryRun bool
}

// AllocateResult summarises a bulk allocation run
type AllocateResult struct {
	TournamentID   string
	TournamentName string

	// Message is the human-readable summary of the run
	Message string

	AssignmentsMade int

	// AssignmentsByDiscipline maps discipline name to athletes seated by this run
	AssignmentsByDiscipline map[string]int

	SquadsCreated int
	SquadsReused  int
	SquadsDeleted int

	// UnassignedByDiscipline maps discipline name to the athletes left unplaced
	UnassignedByDiscipline map[string][]allocator.UnassignedAthlete
	HasUnassigned          bool

	// SkippedAthletes were excluded by the include options
	SkippedAthletes []allocator.Athlete

	// NewSquads created by the run, with their members
	NewSquads []*allocator.Squad

	DryRun bool
}

// OptionsFromConfig returns the configured allocation defaults as engine options
func OptionsFromConfig(cfg *config.Config) allocator.Options {
	if cfg == nil {
		return allocator.DefaultOptions()
	}
	d := cfg.DefaultOptions
	return allocator.Options{
		KeepTeamsTogether:               d.KeepTeamsTogether,
		KeepDivisionsTogether:           d.KeepDivisionsTogether,
		KeepTeamsCloseInTime:            d.KeepTeamsCloseInTime,
		IncludeAthletesWithoutTeams:     d.IncludeWithoutTeams(),
		IncludeAthletesWithoutDivisions: d.IncludeWithoutDivisions(),
	}
}

// AllocateSquads seats every registered, unassigned athlete of a tournament into squads.
// The whole run happens inside one tournament transaction: operational errors and
// invariant violations roll everything back, per-athlete failures are reported in the result.
func AllocateSquads(
	ctx context.Context,
	database TournamentStore,
	locks *TournamentLocks,
	collector metrics.Collector,
	cfg *config.Config,
	logger *zap.Logger,
	req AllocateRequest,
) (*AllocateResult, error) {
	started := time.Now()
	logger = logger.With(zap.String("tournament_id", req.TournamentID))

	logger.Info("Starting squad allocation",
		zap.Bool("keep_teams_together", req.Options.KeepTeamsTogether),
		zap.Bool("keep_divisions_together", req.Options.KeepDivisionsTogether),
		zap.Bool("keep_teams_close_in_time", req.Options.KeepTeamsCloseInTime),
		zap.Bool("delete_existing_squads", req.DeleteExistingSquads),
		zap.Bool("dry_run", req.DryRun))

	unlock := locks.Lock(req.TournamentID)
	defer unlock()

	var result *AllocateResult
	err := database.WithTournamentTx(ctx, req.TournamentID, func(tx db.Tx) error {
		var err error
		result, err = allocateInTx(ctx, tx, cfg, logger, req)
		if err != nil {
			return err
		}
		if req.DryRun {
			return errDryRun
		}
		return nil
	})

	switch {
	case errors.Is(err, errDryRun):
		collector.RecordAllocationRun("dry_run", time.Since(started))
		logger.Info("Dry run mode - squads not saved")
		return result, nil
	case err != nil:
		collector.RecordAllocationRun("error", time.Since(started))
		return nil, err
	}

	recordAllocationMetrics(collector, result, time.Since(started))

	logger.Info("Squad allocation completed",
		zap.Int("assignments_made", result.AssignmentsMade),
		zap.Int("squads_created", result.SquadsCreated),
		zap.Int("squads_reused", result.SquadsReused),
		zap.Bool("has_unassigned", result.HasUnassigned))

	return result, nil
}

func allocateInTx(ctx context.Context, tx db.Tx, cfg *config.Config, logger *zap.Logger, req AllocateRequest) (*AllocateResult, error) {
	// Step 1: read the tournament
	logger.Debug("Loading tournament state")
	state, err := loadTournamentState(ctx, tx, req.TournamentID)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded tournament state",
		zap.Int("disciplines", len(state.disciplines)),
		zap.Int("athletes", len(state.athletes)),
		zap.Int("registrations", len(state.registrations)),
		zap.Int("time_slots", len(state.slots)),
		zap.Int("squads", len(state.squads)))

	// Step 2: operational checks, before anything is modified
	if len(state.registrations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRegistrations, req.TournamentID)
	}
	if len(state.slots) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTimeSlots, req.TournamentID)
	}

	// Step 3: optionally start from a clean slate
	deleted := 0
	if req.DeleteExistingSquads {
		deleted, err = tx.DeleteSquadsByTournament(ctx, req.TournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete existing squads: %w", err)
		}
		state.squads, state.members = nil, nil
		logger.Info("Deleted existing squads", zap.Int("count", deleted))
	}

	// Step 4: build the engine inputs
	inputs, err := buildEngineInputs(state, cfg, logger)
	if err != nil {
		return nil, err
	}

	// Step 5: run the allocator
	logger.Debug("Running allocation algorithm")
	outcome, err := allocator.Allocate(allocator.AllocationConfig{
		Catalog:  inputs.catalog,
		Roster:   inputs.roster,
		Options:  req.Options,
		Criteria: allocator.DefaultCriteria(),
	})
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	for _, verr := range outcome.ValidationErrors {
		logger.Warn("Validation error",
			zap.String("criterion", verr.CriterionName),
			zap.String("time_slot_id", verr.TimeSlotID),
			zap.String("squad_id", verr.SquadID),
			zap.String("athlete_id", verr.AthleteID),
			zap.String("description", verr.Description))
	}
	if !outcome.Success {
		return nil, fmt.Errorf("%w: %d validation errors", ErrInvariantViolation, len(outcome.ValidationErrors))
	}

	// Step 6: persist new squads first so member rows can reference them
	logger.Debug("Saving squads",
		zap.Int("new_squads", len(outcome.NewSquads)),
		zap.Int("placements", len(outcome.Placements)))
	for _, squad := range outcome.NewSquads {
		if err := tx.InsertSquad(ctx, toDBSquad(req.TournamentID, squad)); err != nil {
			return nil, fmt.Errorf("failed to save squad %s: %w", squad.Name, err)
		}
	}
	for _, placement := range outcome.Placements {
		member := &db.SquadMember{
			ID:        uuid.NewString(),
			SquadID:   placement.SquadID,
			AthleteID: placement.AthleteID,
			Position:  placement.Position,
		}
		if err := tx.InsertSquadMember(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to save squad member %s: %w", placement.AthleteID, err)
		}
	}

	skipped := make([]allocator.Athlete, 0, len(outcome.Skipped))
	for _, athlete := range outcome.Skipped {
		skipped = append(skipped, *athlete)
	}
	if len(skipped) > 0 {
		logger.Info("Athletes skipped by include options", zap.Int("count", len(skipped)))
	}

	ledger := outcome.Ledger
	assignments := make(map[string]int)
	for _, discipline := range inputs.catalog.Disciplines() {
		if n := ledger.AssignmentsFor(discipline.Name); n > 0 {
			assignments[discipline.Name] = n
		}
	}

	return &AllocateResult{
		TournamentID:            req.TournamentID,
		TournamentName:          state.tournament.Name,
		Message:                 ledger.Summary(),
		AssignmentsMade:         ledger.AssignmentsMade,
		AssignmentsByDiscipline: assignments,
		SquadsCreated:           ledger.SquadsCreated,
		SquadsReused:            ledger.SquadsReused(),
		SquadsDeleted:           deleted,
		UnassignedByDiscipline:  ledger.UnassignedByDiscipline(),
		HasUnassigned:           ledger.HasUnassigned(),
		SkippedAthletes:         skipped,
		NewSquads:               outcome.NewSquads,
		DryRun:                  req.DryRun,
	}, nil
}

func recordAllocationMetrics(collector metrics.Collector, result *AllocateResult, elapsed time.Duration) {
	outcome := "success"
	if result.HasUnassigned {
		outcome = "partial"
	}
	collector.RecordAllocationRun(outcome, elapsed)
	collector.RecordSquadsCreated(result.SquadsCreated)

	for discipline, count := range result.AssignmentsByDiscipline {
		collector.RecordAssignments(discipline, count)
	}
	for discipline, athletes := range result.UnassignedByDiscipline {
		byReason := make(map[allocator.FailureReason]int)
		for _, athlete := range athletes {
			byReason[athlete.Reason]++
		}
		for reason, count := range byReason {
			collector.RecordUnassigned(discipline, string(reason), count)
		}
	}
}

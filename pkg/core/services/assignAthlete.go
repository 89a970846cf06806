package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
	"github.com/georgewallace/claytargettracker-sub000/pkg/metrics"
)

// AssignRequest places one athlete. Set SquadID to join a specific squad, or
// TimeSlotID to join any squad with room at that slot.
type AssignRequest struct {
	TournamentID string
	AthleteID    string
	SquadID      string
	TimeSlotID   string
}

// AssignResult describes a completed manual placement
type AssignResult struct {
	AthleteID   string
	AthleteName string
	SquadID     string
	SquadName   string
	TimeSlot    string
	Position    int

	// Created is true when a squad was created for the athlete
	Created bool

	// PreviousSquadID is the squad the athlete left in the same discipline, if any
	PreviousSquadID string

	// Unchanged is true when the athlete already sat in the requested squad or time slot
	Unchanged bool
}

// AssignAthlete manually places one athlete, moving them out of any squad they hold
// in the same discipline. The same conflict, capacity and structural rules as the bulk
// allocator apply; a rejection is returned as *allocator.PlacementError.
func AssignAthlete(
	ctx context.Context,
	database TournamentStore,
	locks *TournamentLocks,
	collector metrics.Collector,
	cfg *config.Config,
	logger *zap.Logger,
	req AssignRequest,
) (*AssignResult, error) {
	logger = logger.With(
		zap.String("tournament_id", req.TournamentID),
		zap.String("athlete_id", req.AthleteID))
	logger.Info("Assigning athlete",
		zap.String("squad_id", req.SquadID),
		zap.String("time_slot_id", req.TimeSlotID))

	unlock := locks.Lock(req.TournamentID)
	defer unlock()

	var result *AssignResult
	err := database.WithTournamentTx(ctx, req.TournamentID, func(tx db.Tx) error {
		state, err := loadTournamentState(ctx, tx, req.TournamentID)
		if err != nil {
			return err
		}
		inputs, err := buildEngineInputs(state, cfg, logger)
		if err != nil {
			return err
		}

		placed, err := allocator.PlaceAthlete(inputs.catalog, inputs.roster, allocator.PlacementRequest{
			AthleteID:  req.AthleteID,
			SquadID:    req.SquadID,
			TimeSlotID: req.TimeSlotID,
		}, nil)
		if err != nil {
			return translatePlacementError(err)
		}

		athlete, _ := inputs.roster.Athlete(req.AthleteID)
		_, slot, _ := inputs.catalog.Squad(placed.Squad.ID)
		result = &AssignResult{
			AthleteID:   athlete.ID,
			AthleteName: athlete.Name,
			SquadID:     placed.Squad.ID,
			SquadName:   placed.Squad.Name,
			TimeSlot:    slot.Label(),
			Position:    placed.Placement.Position,
			Created:     placed.Created,
			Unchanged:   placed.Unchanged,
		}
		if placed.Unchanged {
			return nil
		}

		if placed.Created {
			logger.Debug("Creating squad", zap.String("squad_id", placed.Squad.ID), zap.String("name", placed.Squad.Name))
			if err := tx.InsertSquad(ctx, toDBSquad(req.TournamentID, placed.Squad)); err != nil {
				return fmt.Errorf("failed to save squad: %w", err)
			}
		}

		if placed.Previous != nil {
			result.PreviousSquadID = placed.Previous.ID
			logger.Debug("Leaving previous squad", zap.String("squad_id", placed.Previous.ID))
			if err := removeMembership(ctx, tx, inputs, placed.Previous, req.AthleteID); err != nil {
				return err
			}
		}

		member := &db.SquadMember{
			ID:        uuid.NewString(),
			SquadID:   placed.Squad.ID,
			AthleteID: req.AthleteID,
			Position:  placed.Placement.Position,
		}
		if err := tx.InsertSquadMember(ctx, member); err != nil {
			return fmt.Errorf("failed to save squad member: %w", err)
		}
		return nil
	})

	var placementErr *allocator.PlacementError
	switch {
	case errors.As(err, &placementErr):
		collector.RecordManualPlacement("rejected")
		logger.Info("Placement rejected", zap.String("reason", string(placementErr.Reason)))
		return nil, err
	case err != nil:
		collector.RecordManualPlacement("error")
		return nil, err
	case result.Unchanged:
		collector.RecordManualPlacement("unchanged")
	default:
		collector.RecordManualPlacement("assigned")
	}

	logger.Info("Athlete assigned",
		zap.String("squad_id", result.SquadID),
		zap.Int("position", result.Position),
		zap.Bool("created", result.Created))

	return result, nil
}

// UnassignResult describes a completed removal
type UnassignResult struct {
	SquadID   string
	SquadName string

	// Remaining is the number of athletes left in the squad
	Remaining int
}

// UnassignAthlete removes an athlete from a squad and closes the gap in positions.
// The squad is kept even when it becomes empty.
func UnassignAthlete(
	ctx context.Context,
	database TournamentStore,
	locks *TournamentLocks,
	collector metrics.Collector,
	cfg *config.Config,
	logger *zap.Logger,
	tournamentID, athleteID, squadID string,
) (*UnassignResult, error) {
	logger = logger.With(
		zap.String("tournament_id", tournamentID),
		zap.String("athlete_id", athleteID),
		zap.String("squad_id", squadID))
	logger.Info("Unassigning athlete")

	unlock := locks.Lock(tournamentID)
	defer unlock()

	var result *UnassignResult
	err := database.WithTournamentTx(ctx, tournamentID, func(tx db.Tx) error {
		state, err := loadTournamentState(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		inputs, err := buildEngineInputs(state, cfg, logger)
		if err != nil {
			return err
		}

		squad, err := allocator.RemoveAthlete(inputs.catalog, athleteID, squadID)
		if err != nil {
			return translatePlacementError(err)
		}
		if err := removeMembership(ctx, tx, inputs, squad, athleteID); err != nil {
			return err
		}

		result = &UnassignResult{SquadID: squad.ID, SquadName: squad.Name, Remaining: squad.Size()}
		return nil
	})
	if err != nil {
		collector.RecordManualPlacement("error")
		return nil, err
	}

	collector.RecordManualPlacement("unassigned")
	logger.Info("Athlete unassigned", zap.Int("remaining", result.Remaining))
	return result, nil
}

// removeMembership deletes an athlete's stored seat in a squad the engine has already
// removed them from, then writes the renumbered positions of the remaining members
func removeMembership(ctx context.Context, tx db.SquadWriter, inputs *engineInputs, squad *allocator.Squad, athleteID string) error {
	stored, ok := inputs.memberIDs[memberKey{squadID: squad.ID, athleteID: athleteID}]
	if !ok {
		return fmt.Errorf("%w: no stored seat in squad %s", ErrNotInSquad, squad.ID)
	}
	if err := tx.DeleteSquadMember(ctx, stored.ID); err != nil {
		return fmt.Errorf("failed to remove squad member: %w", err)
	}

	for _, member := range squad.Members {
		if member.AthleteID == athleteID {
			continue
		}
		existing, ok := inputs.memberIDs[memberKey{squadID: squad.ID, athleteID: member.AthleteID}]
		if !ok || existing.Position == member.Position {
			continue
		}
		if err := tx.UpdateSquadMemberPosition(ctx, existing.ID, member.Position); err != nil {
			return fmt.Errorf("failed to renumber squad member: %w", err)
		}
	}
	return nil
}

// DeleteEmptySquads removes every squad of a tournament that has no members and
// returns how many were removed
func DeleteEmptySquads(
	ctx context.Context,
	database TournamentStore,
	locks *TournamentLocks,
	logger *zap.Logger,
	tournamentID string,
) (int, error) {
	logger = logger.With(zap.String("tournament_id", tournamentID))
	logger.Info("Deleting empty squads")

	unlock := locks.Lock(tournamentID)
	defer unlock()

	deleted := 0
	err := database.WithTournamentTx(ctx, tournamentID, func(tx db.Tx) error {
		if _, err := fetchTournament(ctx, tx, tournamentID); err != nil {
			return err
		}

		squads, err := tx.GetSquads(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch squads: %w", err)
		}
		members, err := tx.GetSquadMembers(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch squad members: %w", err)
		}

		occupied := make(map[string]bool, len(squads))
		for _, m := range members {
			occupied[m.SquadID] = true
		}

		for _, squad := range squads {
			if occupied[squad.ID] {
				continue
			}
			logger.Debug("Deleting squad", zap.String("squad_id", squad.ID), zap.String("name", squad.Name))
			if err := tx.DeleteSquad(ctx, squad.ID); err != nil {
				return fmt.Errorf("failed to delete squad %s: %w", squad.ID, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info("Empty squads deleted", zap.Int("count", deleted))
	return deleted, nil
}

// translatePlacementError maps engine lookup errors to service errors.
// Placement rejections pass through unchanged.
func translatePlacementError(err error) error {
	switch {
	case errors.Is(err, allocator.ErrUnknownAthlete):
		return ErrAthleteNotFound
	case errors.Is(err, allocator.ErrUnknownSquad):
		return ErrSquadNotFound
	case errors.Is(err, allocator.ErrUnknownTimeSlot):
		return ErrTimeSlotNotFound
	case errors.Is(err, allocator.ErrNotRegistered):
		return ErrNotRegistered
	case errors.Is(err, allocator.ErrNotInSquad):
		return ErrNotInSquad
	}
	return err
}

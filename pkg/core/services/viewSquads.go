package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// SquadsView is a read-only report of a tournament's squads
type SquadsView struct {
	TournamentID   string
	TournamentName string
	Disciplines    []DisciplineView
}

// DisciplineView lists the slots of one discipline and who is still unplaced
type DisciplineView struct {
	Discipline allocator.Discipline
	Slots      []SlotView

	// Unassigned are the active registered athletes without a squad in this discipline
	Unassigned []allocator.Athlete
}

// SlotView is one time slot and its squads
type SlotView struct {
	Slot   allocator.TimeSlot
	Squads []SquadView
}

// SquadView is one squad and its members in position order
type SquadView struct {
	ID       string
	Name     string
	Field    string
	Capacity int
	TeamOnly bool
	Members  []MemberView
}

// MemberView is one seat in a squad
type MemberView struct {
	Position  int
	AthleteID string

	// Name and TeamName are empty when the athlete is no longer registered
	Name     string
	TeamName string
}

// ViewSquads reports every discipline's slots, squads and unassigned athletes.
// Collections are read concurrently outside any transaction.
func ViewSquads(ctx context.Context, reader db.TournamentReader, cfg *config.Config, logger *zap.Logger, tournamentID string) (*SquadsView, error) {
	logger = logger.With(zap.String("tournament_id", tournamentID))
	logger.Debug("Loading squads view")

	state, err := loadTournamentStateConcurrently(ctx, reader, tournamentID)
	if err != nil {
		return nil, err
	}
	inputs, err := buildEngineInputs(state, cfg, logger)
	if err != nil {
		return nil, err
	}

	view := &SquadsView{
		TournamentID:   state.tournament.ID,
		TournamentName: state.tournament.Name,
		Disciplines:    make([]DisciplineView, 0, len(state.disciplines)),
	}

	for _, discipline := range inputs.catalog.Disciplines() {
		dv := DisciplineView{Discipline: discipline}

		for _, slot := range inputs.catalog.SlotsFor(discipline.ID) {
			sv := SlotView{Slot: *slot, Squads: make([]SquadView, 0, len(slot.Squads))}
			sv.Slot.Squads = nil
			for _, squad := range slot.Squads {
				sv.Squads = append(sv.Squads, squadView(squad, inputs.roster))
			}
			dv.Slots = append(dv.Slots, sv)
		}

		for _, athlete := range inputs.roster.Unassigned(discipline.ID, inputs.catalog) {
			dv.Unassigned = append(dv.Unassigned, *athlete)
		}

		view.Disciplines = append(view.Disciplines, dv)
	}

	logger.Debug("Squads view loaded", zap.Int("disciplines", len(view.Disciplines)))
	return view, nil
}

func squadView(squad *allocator.Squad, roster *allocator.RosterIndex) SquadView {
	sv := SquadView{
		ID:       squad.ID,
		Name:     squad.Name,
		Field:    squad.Field,
		Capacity: squad.Capacity,
		TeamOnly: squad.TeamOnly,
		Members:  make([]MemberView, 0, squad.Size()),
	}
	for _, member := range squad.Members {
		mv := MemberView{Position: member.Position, AthleteID: member.AthleteID}
		if athlete, ok := roster.Athlete(member.AthleteID); ok {
			mv.Name = athlete.Name
			mv.TeamName = athlete.TeamName
		}
		sv.Members = append(sv.Members, mv)
	}
	return sv
}

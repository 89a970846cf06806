package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// tournamentState is everything read from storage for one tournament
type tournamentState struct {
	tournament    *db.Tournament
	disciplines   []db.Discipline
	athletes      []db.Athlete
	registrations []db.Registration
	slots         []db.TimeSlot
	squads        []db.Squad
	members       []db.SquadMember
}

// loaders returns one load step per collection. Each step writes a distinct field,
// so the steps may run concurrently against a reader that supports it.
func (s *tournamentState) loaders(reader db.TournamentReader, tournamentID string) []func(ctx context.Context) error {
	return []func(ctx context.Context) error{
		func(ctx context.Context) (err error) {
			if s.disciplines, err = reader.GetDisciplines(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch disciplines: %w", err)
			}
			return nil
		},
		func(ctx context.Context) (err error) {
			if s.athletes, err = reader.GetRegisteredAthletes(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch athletes: %w", err)
			}
			return nil
		},
		func(ctx context.Context) (err error) {
			if s.registrations, err = reader.GetRegistrations(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch registrations: %w", err)
			}
			return nil
		},
		func(ctx context.Context) (err error) {
			if s.slots, err = reader.GetTimeSlots(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch time slots: %w", err)
			}
			return nil
		},
		func(ctx context.Context) (err error) {
			if s.squads, err = reader.GetSquads(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch squads: %w", err)
			}
			return nil
		},
		func(ctx context.Context) (err error) {
			if s.members, err = reader.GetSquadMembers(ctx, tournamentID); err != nil {
				return fmt.Errorf("failed to fetch squad members: %w", err)
			}
			return nil
		},
	}
}

func fetchTournament(ctx context.Context, reader db.TournamentReader, tournamentID string) (*db.Tournament, error) {
	tournament, err := reader.GetTournament(ctx, tournamentID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, tournamentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tournament: %w", err)
	}
	return tournament, nil
}

// loadTournamentState reads the tournament one collection at a time. Use it inside a
// transaction, where the reader must not be shared between goroutines.
func loadTournamentState(ctx context.Context, reader db.TournamentReader, tournamentID string) (*tournamentState, error) {
	tournament, err := fetchTournament(ctx, reader, tournamentID)
	if err != nil {
		return nil, err
	}

	state := &tournamentState{tournament: tournament}
	for _, load := range state.loaders(reader, tournamentID) {
		if err := load(ctx); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// loadTournamentStateConcurrently reads every collection in parallel
func loadTournamentStateConcurrently(ctx context.Context, reader db.TournamentReader, tournamentID string) (*tournamentState, error) {
	tournament, err := fetchTournament(ctx, reader, tournamentID)
	if err != nil {
		return nil, err
	}

	state := &tournamentState{tournament: tournament}
	g, gCtx := errgroup.WithContext(ctx)
	for _, load := range state.loaders(reader, tournamentID) {
		g.Go(func() error { return load(gCtx) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

// engineInputs holds the engine's view of a tournament plus lookups needed to write
// results back to storage
type engineInputs struct {
	catalog *allocator.Catalog
	roster  *allocator.RosterIndex

	// memberIDs maps squad ID and athlete ID to the stored member record
	memberIDs map[memberKey]db.SquadMember
}

type memberKey struct {
	squadID   string
	athleteID string
}

// buildEngineInputs converts stored records into a catalog and roster.
// A discipline's stored mode wins over the configured overrides, which win over the
// built-in table.
func buildEngineInputs(state *tournamentState, cfg *config.Config, logger *zap.Logger) (*engineInputs, error) {
	overrides, err := structuralOverrides(cfg)
	if err != nil {
		return nil, err
	}

	disciplines := make([]allocator.Discipline, 0, len(state.disciplines))
	for _, d := range state.disciplines {
		mode := allocator.ModeForDiscipline(d.Name, overrides)
		if d.StructuralMode != "" {
			mode, err = allocator.ParseStructuralMode(d.StructuralMode)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve mode for discipline %s: %w", d.Name, err)
			}
		}
		logger.Debug("Resolved structural mode",
			zap.String("discipline", d.Name),
			zap.String("mode", mode.String()))
		disciplines = append(disciplines, allocator.Discipline{ID: d.ID, Name: d.Name, Mode: mode})
	}

	athletes := make([]allocator.Athlete, 0, len(state.athletes))
	teamOf := make(map[string]string, len(state.athletes))
	for _, a := range state.athletes {
		athletes = append(athletes, toAllocatorAthlete(a))
		teamOf[a.ID] = a.TeamID
	}

	registered := make(map[string][]string)
	regOrder := make([]string, 0)
	for _, r := range state.registrations {
		if _, seen := registered[r.AthleteID]; !seen {
			regOrder = append(regOrder, r.AthleteID)
		}
		registered[r.AthleteID] = append(registered[r.AthleteID], r.DisciplineID)
	}
	registrations := make([]allocator.Registration, 0, len(regOrder))
	for _, athleteID := range regOrder {
		registrations = append(registrations, allocator.Registration{
			AthleteID:     athleteID,
			DisciplineIDs: registered[athleteID],
		})
	}

	membersBySquad := make(map[string][]*allocator.Member)
	memberIDs := make(map[memberKey]db.SquadMember, len(state.members))
	for _, m := range state.members {
		membersBySquad[m.SquadID] = append(membersBySquad[m.SquadID], &allocator.Member{
			AthleteID: m.AthleteID,
			TeamID:    teamOf[m.AthleteID],
			Position:  m.Position,
		})
		memberIDs[memberKey{squadID: m.SquadID, athleteID: m.AthleteID}] = m
	}

	squadsBySlot := make(map[string][]*allocator.Squad)
	for _, sq := range state.squads {
		squadsBySlot[sq.TimeSlotID] = append(squadsBySlot[sq.TimeSlotID], &allocator.Squad{
			ID:       sq.ID,
			Name:     sq.Name,
			Field:    sq.Field,
			Capacity: sq.Capacity,
			TeamOnly: sq.TeamOnly,
			Members:  membersBySquad[sq.ID],
		})
	}

	slots := make([]*allocator.TimeSlot, 0, len(state.slots))
	for _, ts := range state.slots {
		slot, err := toAllocatorSlot(ts)
		if err != nil {
			return nil, err
		}
		slot.Squads = squadsBySlot[ts.ID]
		delete(squadsBySlot, ts.ID)
		slots = append(slots, slot)
	}
	for _, sq := range state.squads {
		if _, orphaned := squadsBySlot[sq.TimeSlotID]; orphaned {
			return nil, fmt.Errorf("squad %s references unknown time slot %s", sq.ID, sq.TimeSlotID)
		}
	}

	catalog, err := allocator.NewCatalog(disciplines, slots)
	if err != nil {
		return nil, fmt.Errorf("failed to build time slot catalog: %w", err)
	}

	return &engineInputs{
		catalog:   catalog,
		roster:    allocator.NewRosterIndex(athletes, registrations),
		memberIDs: memberIDs,
	}, nil
}

func structuralOverrides(cfg *config.Config) (map[string]allocator.StructuralMode, error) {
	if cfg == nil || len(cfg.DisciplineModes) == 0 {
		return nil, nil
	}
	overrides := make(map[string]allocator.StructuralMode, len(cfg.DisciplineModes))
	for name, value := range cfg.DisciplineModes {
		mode, err := allocator.ParseStructuralMode(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse mode override for %s: %w", name, err)
		}
		overrides[name] = mode
	}
	return overrides, nil
}

func toAllocatorAthlete(a db.Athlete) allocator.Athlete {
	return allocator.Athlete{
		ID:       a.ID,
		Name:     a.FullName(),
		TeamID:   a.TeamID,
		TeamName: a.TeamName,
		Division: a.Division,
		Gender:   a.Gender,
		Active:   a.Active,
	}
}

func toAllocatorSlot(ts db.TimeSlot) (*allocator.TimeSlot, error) {
	start, err := allocator.ParseClockTime(ts.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start of time slot %s: %w", ts.ID, err)
	}
	end, err := allocator.ParseClockTime(ts.EndTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end of time slot %s: %w", ts.ID, err)
	}
	return &allocator.TimeSlot{
		ID:           ts.ID,
		DisciplineID: ts.DisciplineID,
		Date:         ts.Date,
		Start:        start,
		End:          end,
		Field:        ts.Field,
		Capacity:     ts.Capacity,
	}, nil
}

func toDBSquad(tournamentID string, squad *allocator.Squad) *db.Squad {
	return &db.Squad{
		ID:           squad.ID,
		TournamentID: tournamentID,
		TimeSlotID:   squad.TimeSlotID,
		Name:         squad.Name,
		Field:        squad.Field,
		Capacity:     squad.Capacity,
		TeamOnly:     squad.TeamOnly,
	}
}

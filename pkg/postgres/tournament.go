package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// GetTournament retrieves a tournament by ID
func (s *store) GetTournament(ctx context.Context, tournamentID string) (*db.Tournament, error) {
	var t db.Tournament
	err := s.q.QueryRow(ctx, `
		SELECT id, name FROM tournament WHERE id = $1
	`, tournamentID).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tournament: %w", err)
	}
	return &t, nil
}

// GetDisciplines retrieves the disciplines of a tournament
func (s *store) GetDisciplines(ctx context.Context, tournamentID string) ([]db.Discipline, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, tournament_id, name, structural_mode
		FROM discipline
		WHERE tournament_id = $1
		ORDER BY name, id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query disciplines: %w", err)
	}
	defer rows.Close()

	var disciplines []db.Discipline
	for rows.Next() {
		var d db.Discipline
		var mode *string
		if err := rows.Scan(&d.ID, &d.TournamentID, &d.Name, &mode); err != nil {
			return nil, fmt.Errorf("failed to scan discipline: %w", err)
		}
		if mode != nil {
			d.StructuralMode = *mode
		}
		disciplines = append(disciplines, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating disciplines: %w", err)
	}

	return disciplines, nil
}

// GetRegisteredAthletes retrieves every athlete registered for at least one discipline of a tournament
func (s *store) GetRegisteredAthletes(ctx context.Context, tournamentID string) ([]db.Athlete, error) {
	rows, err := s.q.Query(ctx, `
		SELECT DISTINCT a.id, a.first_name, a.last_name, a.team_id, t.name, a.division, a.gender, a.active
		FROM athlete a
		JOIN registration r ON r.athlete_id = a.id
		LEFT JOIN team t ON t.id = a.team_id
		WHERE r.tournament_id = $1
		ORDER BY a.last_name, a.first_name, a.id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query athletes: %w", err)
	}
	defer rows.Close()

	var athletes []db.Athlete
	for rows.Next() {
		var a db.Athlete
		var teamID, teamName, division, gender *string
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &teamID, &teamName, &division, &gender, &a.Active); err != nil {
			return nil, fmt.Errorf("failed to scan athlete: %w", err)
		}
		if teamID != nil {
			a.TeamID = *teamID
		}
		if teamName != nil {
			a.TeamName = *teamName
		}
		if division != nil {
			a.Division = *division
		}
		if gender != nil {
			a.Gender = *gender
		}
		athletes = append(athletes, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating athletes: %w", err)
	}

	return athletes, nil
}

// GetRegistrations retrieves every (athlete, discipline) registration of a tournament
func (s *store) GetRegistrations(ctx context.Context, tournamentID string) ([]db.Registration, error) {
	rows, err := s.q.Query(ctx, `
		SELECT tournament_id, athlete_id, discipline_id
		FROM registration
		WHERE tournament_id = $1
		ORDER BY athlete_id, discipline_id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close()

	var registrations []db.Registration
	for rows.Next() {
		var r db.Registration
		if err := rows.Scan(&r.TournamentID, &r.AthleteID, &r.DisciplineID); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return registrations, nil
}

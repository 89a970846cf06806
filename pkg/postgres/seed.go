package postgres

import (
	"context"
	"fmt"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

var _ db.Seeder = (*DB)(nil)

// InsertTournament inserts a new tournament record
func (s *store) InsertTournament(ctx context.Context, tournament *db.Tournament) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO tournament (id, name) VALUES ($1, $2)
	`, tournament.ID, tournament.Name)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

// InsertAthlete inserts an athlete, creating the athlete's team if it does not exist yet
func (s *store) InsertAthlete(ctx context.Context, athlete *db.Athlete) error {
	if athlete.TeamID != "" {
		_, err := s.q.Exec(ctx, `
			INSERT INTO team (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO NOTHING
		`, athlete.TeamID, athlete.TeamName)
		if err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO athlete (id, first_name, last_name, team_id, division, gender, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, athlete.ID, athlete.FirstName, athlete.LastName, nullable(athlete.TeamID),
		nullable(athlete.Division), nullable(athlete.Gender), athlete.Active)
	if err != nil {
		return fmt.Errorf("failed to insert athlete: %w", err)
	}
	return nil
}

// InsertDiscipline inserts a new discipline record
func (s *store) InsertDiscipline(ctx context.Context, discipline *db.Discipline) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO discipline (id, tournament_id, name, structural_mode)
		VALUES ($1, $2, $3, $4)
	`, discipline.ID, discipline.TournamentID, discipline.Name, nullable(discipline.StructuralMode))
	if err != nil {
		return fmt.Errorf("failed to insert discipline: %w", err)
	}
	return nil
}

// InsertRegistration registers an athlete for a discipline
func (s *store) InsertRegistration(ctx context.Context, registration *db.Registration) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO registration (tournament_id, athlete_id, discipline_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (athlete_id, discipline_id) DO NOTHING
	`, registration.TournamentID, registration.AthleteID, registration.DisciplineID)
	if err != nil {
		return fmt.Errorf("failed to insert registration: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// GetSquads retrieves every squad of a tournament
func (s *store) GetSquads(ctx context.Context, tournamentID string) ([]db.Squad, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, tournament_id, time_slot_id, name, field, capacity, team_only
		FROM squad
		WHERE tournament_id = $1
		ORDER BY time_slot_id, seq
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squads: %w", err)
	}
	defer rows.Close()

	var squads []db.Squad
	for rows.Next() {
		var sq db.Squad
		var field *string
		if err := rows.Scan(&sq.ID, &sq.TournamentID, &sq.TimeSlotID, &sq.Name, &field, &sq.Capacity, &sq.TeamOnly); err != nil {
			return nil, fmt.Errorf("failed to scan squad: %w", err)
		}
		if field != nil {
			sq.Field = *field
		}
		squads = append(squads, sq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating squads: %w", err)
	}

	return squads, nil
}

// GetSquadMembers retrieves the members of every squad of a tournament
func (s *store) GetSquadMembers(ctx context.Context, tournamentID string) ([]db.SquadMember, error) {
	rows, err := s.q.Query(ctx, `
		SELECT m.id, m.squad_id, m.athlete_id, m.position
		FROM squad_member m
		JOIN squad sq ON sq.id = m.squad_id
		WHERE sq.tournament_id = $1
		ORDER BY m.squad_id, m.position, m.id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query squad members: %w", err)
	}
	defer rows.Close()

	var members []db.SquadMember
	for rows.Next() {
		var m db.SquadMember
		if err := rows.Scan(&m.ID, &m.SquadID, &m.AthleteID, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan squad member: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating squad members: %w", err)
	}

	return members, nil
}

// InsertSquad inserts a new squad record
func (s *store) InsertSquad(ctx context.Context, squad *db.Squad) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO squad (id, tournament_id, time_slot_id, name, field, capacity, team_only)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, squad.ID, squad.TournamentID, squad.TimeSlotID, squad.Name, nullable(squad.Field), squad.Capacity, squad.TeamOnly)
	if err != nil {
		return fmt.Errorf("failed to insert squad: %w", err)
	}
	return nil
}

// InsertSquadMember inserts a new squad member record
func (s *store) InsertSquadMember(ctx context.Context, member *db.SquadMember) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO squad_member (id, squad_id, athlete_id, position)
		VALUES ($1, $2, $3, $4)
	`, member.ID, member.SquadID, member.AthleteID, member.Position)
	if err != nil {
		return fmt.Errorf("failed to insert squad member: %w", err)
	}
	return nil
}

// UpdateSquadMemberPosition moves a member to a new position
func (s *store) UpdateSquadMemberPosition(ctx context.Context, memberID string, position int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE squad_member SET position = $2 WHERE id = $1
	`, memberID, position)
	if err != nil {
		return fmt.Errorf("failed to update squad member position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteSquadMember removes a member from its squad
func (s *store) DeleteSquadMember(ctx context.Context, memberID string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM squad_member WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("failed to delete squad member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteSquad removes a squad and its members
func (s *store) DeleteSquad(ctx context.Context, squadID string) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM squad WHERE id = $1`, squadID)
	if err != nil {
		return fmt.Errorf("failed to delete squad: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteSquadsByTournament removes every squad of a tournament
func (s *store) DeleteSquadsByTournament(ctx context.Context, tournamentID string) (int, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM squad WHERE tournament_id = $1`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete squads: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

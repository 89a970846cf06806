package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// GetTimeSlots retrieves the time slots of a tournament
func (s *store) GetTimeSlots(ctx context.Context, tournamentID string) ([]db.TimeSlot, error) {
	rows, err := s.q.Query(ctx, `
		SELECT id, tournament_id, discipline_id, slot_date,
			to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), field, capacity
		FROM time_slot
		WHERE tournament_id = $1
		ORDER BY slot_date, start_time, field NULLS FIRST, id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query time slots: %w", err)
	}
	defer rows.Close()

	var slots []db.TimeSlot
	for rows.Next() {
		var ts db.TimeSlot
		var date time.Time
		var field *string
		if err := rows.Scan(&ts.ID, &ts.TournamentID, &ts.DisciplineID, &date,
			&ts.StartTime, &ts.EndTime, &field, &ts.Capacity); err != nil {
			return nil, fmt.Errorf("failed to scan time slot: %w", err)
		}
		ts.Date = date.Format("2006-01-02")
		if field != nil {
			ts.Field = *field
		}
		slots = append(slots, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time slots: %w", err)
	}

	return slots, nil
}

// InsertTimeSlots inserts time slot records
func (s *store) InsertTimeSlots(ctx context.Context, slots []db.TimeSlot) error {
	for _, ts := range slots {
		_, err := s.q.Exec(ctx, `
			INSERT INTO time_slot (id, tournament_id, discipline_id, slot_date, start_time, end_time, field, capacity)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ts.ID, ts.TournamentID, ts.DisciplineID, ts.Date, ts.StartTime, ts.EndTime, nullable(ts.Field), ts.Capacity)
		if err != nil {
			return fmt.Errorf("failed to insert time slot: %w", err)
		}
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

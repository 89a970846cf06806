package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// MaxSlotOccurrences bounds how many start times one recurrence rule may produce
const MaxSlotOccurrences = 500

// DefineTimeSlotsRequest generates slots for one discipline from a recurrence rule.
// Each occurrence of the rule produces one slot per field.
type DefineTimeSlotsRequest struct {
	TournamentID string
	DisciplineID string

	// RRule is an RFC 5545 recurrence rule such as "FREQ=HOURLY;COUNT=4". It must
	// carry COUNT or UNTIL so the schedule is finite.
	RRule string

	// Start is the first slot's start date and time
	Start time.Time

	Duration time.Duration

	// Fields lists field labels. Leave empty for slots not tied to a field.
	Fields []string

	// Capacity is the maximum squad size at each slot
	Capacity int
}

// DefineTimeSlotsResult lists the slots written
type DefineTimeSlotsResult struct {
	Created []db.TimeSlot

	// Skipped counts generated slots that already existed
	Skipped int
}

// DefineTimeSlots expands a recurrence rule into time slots and stores the ones that
// do not already exist. Every slot must end on the day it starts.
func DefineTimeSlots(
	ctx context.Context,
	database TournamentStore,
	locks *TournamentLocks,
	logger *zap.Logger,
	req DefineTimeSlotsRequest,
) (*DefineTimeSlotsResult, error) {
	logger = logger.With(
		zap.String("tournament_id", req.TournamentID),
		zap.String("discipline_id", req.DisciplineID))
	logger.Info("Defining time slots",
		zap.String("rrule", req.RRule),
		zap.Time("start", req.Start),
		zap.Duration("duration", req.Duration),
		zap.Strings("fields", req.Fields),
		zap.Int("capacity", req.Capacity))

	slots, err := generateTimeSlots(req)
	if err != nil {
		return nil, err
	}
	logger.Debug("Generated time slots", zap.Int("count", len(slots)))

	unlock := locks.Lock(req.TournamentID)
	defer unlock()

	result := &DefineTimeSlotsResult{}
	err = database.WithTournamentTx(ctx, req.TournamentID, func(tx db.Tx) error {
		if _, err := fetchTournament(ctx, tx, req.TournamentID); err != nil {
			return err
		}

		disciplines, err := tx.GetDisciplines(ctx, req.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch disciplines: %w", err)
		}
		found := false
		for _, d := range disciplines {
			if d.ID == req.DisciplineID {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrDisciplineNotFound, req.DisciplineID)
		}

		existing, err := tx.GetTimeSlots(ctx, req.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to fetch time slots: %w", err)
		}
		taken := make(map[string]bool, len(existing))
		for _, ts := range existing {
			taken[slotKey(ts)] = true
		}

		for _, ts := range slots {
			if taken[slotKey(ts)] {
				result.Skipped++
				continue
			}
			result.Created = append(result.Created, ts)
		}
		if len(result.Created) == 0 {
			return nil
		}

		if err := tx.InsertTimeSlots(ctx, result.Created); err != nil {
			return fmt.Errorf("failed to save time slots: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Time slots defined",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

// generateTimeSlots expands the request's rule without touching storage
func generateTimeSlots(req DefineTimeSlotsRequest) ([]db.TimeSlot, error) {
	if req.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be positive, got %d", req.Capacity)
	}
	if req.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", req.Duration)
	}

	rule, err := rrule.StrToRRule(strings.TrimPrefix(strings.TrimSpace(req.RRule), "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}
	if rule.OrigOptions.Count == 0 && rule.OrigOptions.Until.IsZero() {
		return nil, fmt.Errorf("rrule %q must set COUNT or UNTIL", req.RRule)
	}
	if rule.OrigOptions.Count > MaxSlotOccurrences {
		return nil, fmt.Errorf("rrule %q produces more than %d occurrences", req.RRule, MaxSlotOccurrences)
	}
	rule.DTStart(req.Start)

	occurrences := rule.All()
	if len(occurrences) == 0 {
		return nil, fmt.Errorf("rrule %q produces no occurrences after %s", req.RRule, req.Start.Format("2006-01-02 15:04"))
	}
	if len(occurrences) > MaxSlotOccurrences {
		return nil, fmt.Errorf("rrule %q produces more than %d occurrences", req.RRule, MaxSlotOccurrences)
	}

	fields := req.Fields
	if len(fields) == 0 {
		fields = []string{""}
	}

	slots := make([]db.TimeSlot, 0, len(occurrences)*len(fields))
	for _, start := range occurrences {
		end := start.Add(req.Duration)
		date := start.Format("2006-01-02")
		if end.Format("2006-01-02") != date {
			return nil, fmt.Errorf("slot starting %s %s ends on a later day", date, start.Format("15:04"))
		}

		for _, field := range fields {
			slots = append(slots, db.TimeSlot{
				ID:           uuid.NewString(),
				TournamentID: req.TournamentID,
				DisciplineID: req.DisciplineID,
				Date:         date,
				StartTime:    start.Format("15:04"),
				EndTime:      end.Format("15:04"),
				Field:        strings.TrimSpace(field),
				Capacity:     req.Capacity,
			})
		}
	}
	return slots, nil
}

func slotKey(ts db.TimeSlot) string {
	return strings.Join([]string{ts.DisciplineID, ts.Date, ts.StartTime, ts.Field}, "|")
}

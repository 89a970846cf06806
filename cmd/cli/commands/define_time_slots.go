package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

const slotStartLayout = "2006-01-02 15:04"

// DefineTimeSlotsCmd creates the defineTimeSlots command
func DefineTimeSlotsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defineTimeSlots <tournament_id> <discipline_id>",
		Short: "Generate time slots for a discipline from a recurrence rule",
		Long: `Generate time slots from an RFC 5545 recurrence rule, one slot per field at each occurrence.
Slots that already exist are skipped, so the command can be re-run safely.

Example:
  defineTimeSlots tour-1 trap --rrule "FREQ=HOURLY;COUNT=6" --start "2026-05-02 08:00" --duration 1h --fields "Field 1,Field 2" --capacity 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule, _ := cmd.Flags().GetString("rrule")
			startStr, _ := cmd.Flags().GetString("start")
			duration, _ := cmd.Flags().GetDuration("duration")
			fields, _ := cmd.Flags().GetStringSlice("fields")
			capacity, _ := cmd.Flags().GetInt("capacity")

			start, err := time.ParseInLocation(slotStartLayout, startStr, time.UTC)
			if err != nil {
				return fmt.Errorf("start must look like %q: %w", slotStartLayout, err)
			}

			result, err := services.DefineTimeSlots(app.Ctx, app.Database, app.Locks, app.Logger, services.DefineTimeSlotsRequest{
				TournamentID: args[0],
				DisciplineID: args[1],
				RRule:        rule,
				Start:        start,
				Duration:     duration,
				Fields:       fields,
				Capacity:     capacity,
			})
			if err != nil {
				return fmt.Errorf("failed to define time slots: %w", err)
			}

			fmt.Printf("\n✓ Created %d time %s", len(result.Created), plural(len(result.Created), "slot", "slots"))
			if result.Skipped > 0 {
				fmt.Printf(" (%d already existed)", result.Skipped)
			}
			fmt.Printf("\n\n")

			for _, slot := range result.Created {
				field := slot.Field
				if field == "" {
					field = "-"
				}
				fmt.Printf("  %s %s-%s  %-10s capacity %d\n", slot.Date, slot.StartTime, slot.EndTime, field, slot.Capacity)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("rrule", "", "Recurrence rule, e.g. FREQ=HOURLY;COUNT=4 (required)")
	cmd.Flags().String("start", "", "First slot start as \"YYYY-MM-DD HH:MM\" (required)")
	cmd.Flags().Duration("duration", time.Hour, "Length of each slot")
	cmd.Flags().StringSlice("fields", nil, "Comma-separated field labels")
	cmd.Flags().Int("capacity", 5, "Maximum squad size at each slot")
	cmd.MarkFlagRequired("rrule")
	cmd.MarkFlagRequired("start")

	return cmd
}

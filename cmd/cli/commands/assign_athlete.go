package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/allocator"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

// AssignAthleteCmd creates the assignAthlete command
func AssignAthleteCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assignAthlete <tournament_id> <athlete_id>",
		Short: "Place one athlete into a squad or time slot",
		Long: `Place one athlete into a specific squad (--squad) or into any squad with room at a
time slot (--slot), creating a squad there if the discipline allows it. An athlete who
already has a squad in the same discipline is moved.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			squadID, _ := cmd.Flags().GetString("squad")
			slotID, _ := cmd.Flags().GetString("slot")
			if (squadID == "") == (slotID == "") {
				return errors.New("exactly one of --squad or --slot is required")
			}

			app.Logger.Debug("assignAthlete command",
				zap.String("tournament_id", args[0]),
				zap.String("athlete_id", args[1]))

			result, err := services.AssignAthlete(
				app.Ctx,
				app.Database,
				app.Locks,
				app.Metrics,
				app.Cfg,
				app.Logger,
				services.AssignRequest{
					TournamentID: args[0],
					AthleteID:    args[1],
					SquadID:      squadID,
					TimeSlotID:   slotID,
				},
			)

			var placementErr *allocator.PlacementError
			if errors.As(err, &placementErr) {
				fmt.Printf("\n❌ Cannot place athlete: %s\n\n", placementErr.Error())
				return nil
			}
			if err != nil {
				return fmt.Errorf("assignment failed: %w", err)
			}

			fmt.Println(describeAssignment(result))
			return nil
		},
	}

	cmd.Flags().String("squad", "", "ID of the squad to join")
	cmd.Flags().String("slot", "", "ID of the time slot to join")

	return cmd
}

// UnassignAthleteCmd creates the unassignAthlete command
func UnassignAthleteCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unassignAthlete <tournament_id> <athlete_id> <squad_id>",
		Short: "Remove an athlete from a squad",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.UnassignAthlete(app.Ctx, app.Database, app.Locks, app.Metrics, app.Cfg, app.Logger, args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("unassignment failed: %w", err)
			}

			fmt.Printf("\n✓ Removed %s from %s (%d remaining)\n\n", args[1], result.SquadName, result.Remaining)
			return nil
		},
	}
}

// DeleteEmptySquadsCmd creates the deleteEmptySquads command
func DeleteEmptySquadsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteEmptySquads <tournament_id>",
		Short: "Delete every squad without members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := services.DeleteEmptySquads(app.Ctx, app.Database, app.Locks, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete empty squads: %w", err)
			}

			fmt.Printf("\n✓ Deleted %d empty %s\n\n", deleted, plural(deleted, "squad", "squads"))
			return nil
		},
	}
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

// AllocateSquadsCmd creates the allocateSquads command
func AllocateSquadsCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocateSquads <tournament_id>",
		Short: "Place every unassigned athlete of a tournament into squads",
		Long: `Run the squad allocator for a tournament. Athletes already in a squad keep their seat.
Option flags default to the values in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			dryRun, _ := flags.GetBool("dry-run")
			deleteExisting, _ := flags.GetBool("delete-existing-squads")

			options := services.OptionsFromConfig(app.Cfg)
			overrides := []struct {
				name   string
				target *bool
			}{
				{"keep-teams-together", &options.KeepTeamsTogether},
				{"keep-divisions-together", &options.KeepDivisionsTogether},
				{"keep-teams-close-in-time", &options.KeepTeamsCloseInTime},
				{"include-without-teams", &options.IncludeAthletesWithoutTeams},
				{"include-without-divisions", &options.IncludeAthletesWithoutDivisions},
			}
			for _, o := range overrides {
				if flags.Changed(o.name) {
					*o.target, _ = flags.GetBool(o.name)
				}
			}

			app.Logger.Debug("allocateSquads command",
				zap.String("tournament_id", args[0]),
				zap.Bool("dry_run", dryRun),
				zap.Bool("delete_existing_squads", deleteExisting))

			result, err := services.AllocateSquads(
				app.Ctx,
				app.Database,
				app.Locks,
				app.Metrics,
				app.Cfg,
				app.Logger,
				services.AllocateRequest{
					TournamentID:         args[0],
					Options:              options,
					DeleteExistingSquads: deleteExisting,
					DryRun:               dryRun,
				},
			)
			if err != nil {
				return fmt.Errorf("allocation failed: %w", err)
			}

			printAllocateResult(os.Stdout, result)
			return nil
		},
	}

	cmd.Flags().Bool("keep-teams-together", false, "Seat each team in a single team-only squad")
	cmd.Flags().Bool("keep-divisions-together", false, "Seat each division in a single squad")
	cmd.Flags().Bool("keep-teams-close-in-time", false, "Fill slots in chronological order so consecutive groups land near each other")
	cmd.Flags().Bool("include-without-teams", true, "Include athletes who have no team")
	cmd.Flags().Bool("include-without-divisions", true, "Include athletes who have no division")
	cmd.Flags().Bool("delete-existing-squads", false, "Delete every squad of the tournament before allocating")
	cmd.Flags().Bool("dry-run", false, "Show the result without saving it")

	return cmd
}

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

// ViewSquadsCmd creates the viewSquads command
func ViewSquadsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "viewSquads <tournament_id>",
		Short: "Show every squad of a tournament by discipline and time slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("viewSquads command", zap.String("tournament_id", args[0]))

			view, err := services.ViewSquads(app.Ctx, app.Database, app.Cfg, app.Logger, args[0])
			if err != nil {
				return fmt.Errorf("failed to load squads: %w", err)
			}

			printSquadsView(os.Stdout, view)
			return nil
		},
	}
}

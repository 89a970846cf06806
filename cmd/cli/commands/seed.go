package commands

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
)

// SeedFile is the YAML layout accepted by the seed command
type SeedFile struct {
	Tournament struct {
		ID   string `yaml:"id" validate:"required"`
		Name string `yaml:"name" validate:"required"`
	} `yaml:"tournament"`

	Disciplines []struct {
		ID             string `yaml:"id" validate:"required"`
		Name           string `yaml:"name" validate:"required"`
		StructuralMode string `yaml:"structural_mode" validate:"omitempty,oneof=single-squad-per-slot single-squad-per-field multi-squad"`
	} `yaml:"disciplines" validate:"required,min=1,dive"`

	Athletes []SeedAthlete `yaml:"athletes" validate:"dive"`
}

// SeedAthlete is one athlete and the disciplines they are registered for
type SeedAthlete struct {
	ID        string `yaml:"id" validate:"required"`
	FirstName string `yaml:"first_name" validate:"required"`
	LastName  string `yaml:"last_name"`
	TeamID    string `yaml:"team_id"`
	TeamName  string `yaml:"team_name"`
	Division  string `yaml:"division"`
	Gender    string `yaml:"gender"`

	// Active defaults to true
	Active *bool `yaml:"active"`

	// Disciplines lists discipline IDs
	Disciplines []string `yaml:"disciplines"`
}

// parseSeedFile decodes and validates seed data, checking that every registration names a known discipline
func parseSeedFile(data []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := validator.New().Struct(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}

	known := make(map[string]bool, len(seed.Disciplines))
	for _, discipline := range seed.Disciplines {
		known[discipline.ID] = true
	}
	for _, athlete := range seed.Athletes {
		for _, disciplineID := range athlete.Disciplines {
			if !known[disciplineID] {
				return nil, fmt.Errorf("athlete %s is registered for unknown discipline %q", athlete.ID, disciplineID)
			}
		}
	}

	return &seed, nil
}

// SeedCmd creates the seed command
func SeedCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a tournament, its disciplines, athletes and registrations from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read seed file: %w", err)
			}

			seed, err := parseSeedFile(data)
			if err != nil {
				return err
			}

			app.Logger.Debug("Seeding tournament",
				zap.String("tournament_id", seed.Tournament.ID),
				zap.Int("disciplines", len(seed.Disciplines)),
				zap.Int("athletes", len(seed.Athletes)))

			ctx := app.Ctx
			if err := app.Seeder.InsertTournament(ctx, &db.Tournament{ID: seed.Tournament.ID, Name: seed.Tournament.Name}); err != nil {
				return fmt.Errorf("failed to insert tournament: %w", err)
			}

			for _, d := range seed.Disciplines {
				discipline := &db.Discipline{
					ID:             d.ID,
					TournamentID:   seed.Tournament.ID,
					Name:           d.Name,
					StructuralMode: d.StructuralMode,
				}
				if err := app.Seeder.InsertDiscipline(ctx, discipline); err != nil {
					return fmt.Errorf("failed to insert discipline %s: %w", d.ID, err)
				}
			}

			registrations := 0
			for _, a := range seed.Athletes {
				athlete := &db.Athlete{
					ID:        a.ID,
					FirstName: a.FirstName,
					LastName:  a.LastName,
					TeamID:    a.TeamID,
					TeamName:  a.TeamName,
					Division:  a.Division,
					Gender:    a.Gender,
					Active:    a.Active == nil || *a.Active,
				}
				if err := app.Seeder.InsertAthlete(ctx, athlete); err != nil {
					return fmt.Errorf("failed to insert athlete %s: %w", a.ID, err)
				}

				for _, disciplineID := range a.Disciplines {
					registration := &db.Registration{
						TournamentID: seed.Tournament.ID,
						AthleteID:    a.ID,
						DisciplineID: disciplineID,
					}
					if err := app.Seeder.InsertRegistration(ctx, registration); err != nil {
						return fmt.Errorf("failed to register athlete %s for %s: %w", a.ID, disciplineID, err)
					}
					registrations++
				}
			}

			fmt.Printf("\n✓ Seeded %s\n\n", seed.Tournament.Name)
			fmt.Printf("Disciplines:   %d\n", len(seed.Disciplines))
			fmt.Printf("Athletes:      %d\n", len(seed.Athletes))
			fmt.Printf("Registrations: %d\n\n", registrations)
			return nil
		},
	}
}

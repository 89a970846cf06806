package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

// fillColor picks a color for a squad's fill level: full is green, under half is yellow
func fillColor(size, capacity int, full, partial, low string) string {
	switch {
	case capacity > 0 && size >= capacity:
		return full
	case size*2 < capacity:
		return low
	default:
		return partial
	}
}

func printAllocateResult(w io.Writer, result *services.AllocateResult) {
	if result.DryRun {
		fmt.Fprintf(w, "\n🔍 Dry run, nothing was saved\n")
	}

	icon := "✓"
	if result.HasUnassigned {
		icon = "⚠️"
	}
	fmt.Fprintf(w, "\n%s %s\n\n", icon, result.Message)

	fmt.Fprintf(w, "Tournament:       %s (%s)\n", result.TournamentName, result.TournamentID)
	fmt.Fprintf(w, "Assignments made: %d\n", result.AssignmentsMade)
	fmt.Fprintf(w, "Squads created:   %d\n", result.SquadsCreated)
	fmt.Fprintf(w, "Squads reused:    %d\n", result.SquadsReused)
	if result.SquadsDeleted > 0 {
		fmt.Fprintf(w, "Squads deleted:   %d\n", result.SquadsDeleted)
	}

	if len(result.AssignmentsByDiscipline) > 0 {
		fmt.Fprintf(w, "\nBy discipline:\n")
		for _, name := range sortedKeys(result.AssignmentsByDiscipline) {
			fmt.Fprintf(w, "  %-20s %d\n", name, result.AssignmentsByDiscipline[name])
		}
	}

	if result.HasUnassigned {
		fmt.Fprintf(w, "\nUnassigned athletes:\n")
		for _, name := range sortedKeys(result.UnassignedByDiscipline) {
			athletes := result.UnassignedByDiscipline[name]
			if len(athletes) == 0 {
				continue
			}
			fmt.Fprintf(w, "  %s (%d)\n", name, len(athletes))
			for _, athlete := range athletes {
				team := ""
				if athlete.TeamName != "" {
					team = fmt.Sprintf(" [%s]", athlete.TeamName)
				}
				fmt.Fprintf(w, "    - %s%s: %s\n", athlete.AthleteName, team, athlete.Reason)
			}
		}
	}

	if len(result.SkippedAthletes) > 0 {
		fmt.Fprintf(w, "\nSkipped by options (%d):\n", len(result.SkippedAthletes))
		for _, athlete := range result.SkippedAthletes {
			fmt.Fprintf(w, "    - %s\n", athlete.Name)
		}
	}
	fmt.Fprintln(w)
}

func describeAssignment(result *services.AssignResult) string {
	if result.Unchanged {
		return fmt.Sprintf("\n✓ %s is already in %s\n", result.AthleteName, result.SquadName)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n✓ %s placed in %s at %s (position %d)\n", result.AthleteName, result.SquadName, result.TimeSlot, result.Position)
	if result.Created {
		fmt.Fprintf(&b, "  New squad created: %s\n", result.SquadID)
	}
	if result.PreviousSquadID != "" {
		fmt.Fprintf(&b, "  Moved from squad:  %s\n", result.PreviousSquadID)
	}
	return b.String()
}

func printSquadsView(w io.Writer, view *services.SquadsView) {
	fmt.Fprintf(w, "\nSquads for %s\n", view.TournamentName)

	for _, discipline := range view.Disciplines {
		fmt.Fprintf(w, "\n%s (%s)\n", discipline.Discipline.Name, discipline.Discipline.Mode)
		fmt.Fprintln(w, strings.Repeat("-", 60))

		if len(discipline.Slots) == 0 {
			fmt.Fprintf(w, "  %sNo time slots%s\n", colorDim, colorReset)
		}
		for _, slot := range discipline.Slots {
			fmt.Fprintf(w, "  %s\n", slot.Slot.Label())
			if len(slot.Squads) == 0 {
				fmt.Fprintf(w, "    %sNo squads (capacity %d)%s\n", colorDim, slot.Slot.Capacity, colorReset)
				continue
			}
			for _, squad := range slot.Squads {
				color := fillColor(len(squad.Members), squad.Capacity, colorGreen, colorYellow, colorRed)
				teamOnly := ""
				if squad.TeamOnly {
					teamOnly = " team-only"
				}
				fmt.Fprintf(w, "    %s%-12s %d/%d%s%s\n", color, squad.Name, len(squad.Members), squad.Capacity, teamOnly, colorReset)
				for _, member := range squad.Members {
					name := member.Name
					if name == "" {
						name = fmt.Sprintf("%s(unregistered %s)%s", colorDim, member.AthleteID, colorReset)
					}
					if member.TeamName != "" {
						name = fmt.Sprintf("%s [%s]", name, member.TeamName)
					}
					fmt.Fprintf(w, "      %d. %s\n", member.Position, name)
				}
			}
		}

		if len(discipline.Unassigned) > 0 {
			fmt.Fprintf(w, "  %sUnassigned (%d):%s\n", colorYellow, len(discipline.Unassigned), colorReset)
			for _, athlete := range discipline.Unassigned {
				fmt.Fprintf(w, "    - %s\n", athlete.Name)
			}
		}
	}
	fmt.Fprintln(w)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"plain", "viewSquads tour-1", []string{"viewSquads", "tour-1"}},
		{"extra spaces", "viewSquads   tour-1  ", []string{"viewSquads", "tour-1"}},
		{
			"quoted flag value",
			`defineTimeSlots tour-1 trap --start "2026-05-02 08:00" --fields "Field 1,Field 2"`,
			[]string{"defineTimeSlots", "tour-1", "trap", "--start", "2026-05-02 08:00", "--fields", "Field 1,Field 2"},
		},
		{"empty quotes", `seed ""`, []string{"seed", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts, err := splitCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, parts)
		})
	}

	_, err := splitCommandLine(`seed "file.yaml`)
	assert.Error(t, err)
}

func TestRunCommand_ResetsFlagsBetweenRuns(t *testing.T) {
	var (
		gotDryRun bool
		gotFields []string
		gotArgs   []string
	)
	cmd := &cobra.Command{
		Use:  "allocate <id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gotDryRun, _ = cmd.Flags().GetBool("dry-run")
			gotFields, _ = cmd.Flags().GetStringSlice("fields")
			gotArgs = args
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "")
	cmd.Flags().StringSlice("fields", nil, "")

	require.NoError(t, runCommand(cmd, []string{"tour-1", "--dry-run", "--fields", "A,B"}))
	assert.True(t, gotDryRun)
	assert.Equal(t, []string{"A", "B"}, gotFields)
	assert.Equal(t, []string{"tour-1"}, gotArgs)

	require.NoError(t, runCommand(cmd, []string{"tour-2"}))
	assert.False(t, gotDryRun)
	assert.Empty(t, gotFields)
	assert.False(t, cmd.Flags().Changed("dry-run"))
	assert.Equal(t, []string{"tour-2"}, gotArgs)

	assert.Error(t, runCommand(cmd, []string{}))
}

func TestRunCommand_RequiredFlags(t *testing.T) {
	ran := false
	cmd := &cobra.Command{
		Use:  "define",
		RunE: func(cmd *cobra.Command, args []string) error { ran = true; return nil },
	}
	cmd.Flags().String("rrule", "", "")
	cmd.MarkFlagRequired("rrule")

	assert.Error(t, runCommand(cmd, nil))
	assert.False(t, ran)

	require.NoError(t, runCommand(cmd, []string{"--rrule", "FREQ=HOURLY;COUNT=2"}))
	assert.True(t, ran)
}

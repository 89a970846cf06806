package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (connect once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands over one storage connection.
The session keeps running until you type 'exit' or 'quit'. When metrics_addr is configured,
Prometheus metrics are served on /metrics for the length of the session.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Registry != nil {
				stop := serveMetrics(app)
				defer stop()
			}

			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			commands := make(map[string]*cobra.Command)
			for _, subCmd := range cmd.Parent().Commands() {
				switch subCmd.Name() {
				case "interactive", "completion", "help":
				default:
					commands[subCmd.Name()] = subCmd
				}
			}

			return runSession(os.Stdin, commands)
		},
	}
}

func runSession(in io.Reader, commands map[string]*cobra.Command) error {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts, err := splitCommandLine(line)
		if err != nil {
			fmt.Printf("❌ %v\n\n", err)
			continue
		}
		cmdName, cmdArgs := parts[0], parts[1:]

		if cmdName == "exit" || cmdName == "quit" {
			fmt.Println("👋 Goodbye!")
			return nil
		}
		if cmdName == "help" {
			printInteractiveHelp(commands)
			continue
		}

		targetCmd, exists := commands[cmdName]
		if !exists {
			fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
			continue
		}

		if err := runCommand(targetCmd, cmdArgs); err != nil {
			fmt.Printf("❌ Error: %v\n\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

// runCommand executes a command's RunE directly so PersistentPreRunE does not reopen storage
func runCommand(targetCmd *cobra.Command, args []string) error {
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		if slice, ok := flag.Value.(pflag.SliceValue); ok {
			slice.Replace(nil)
			return
		}
		flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	if err := targetCmd.ValidateRequiredFlags(); err != nil {
		return err
	}

	args = targetCmd.Flags().Args()
	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, args); err != nil {
			return err
		}
	}

	if targetCmd.RunE != nil {
		return targetCmd.RunE(targetCmd, args)
	}
	if targetCmd.Run != nil {
		targetCmd.Run(targetCmd, args)
	}
	return nil
}

// splitCommandLine splits on whitespace, keeping double-quoted sections together
func splitCommandLine(line string) ([]string, error) {
	var (
		parts   []string
		current strings.Builder
		quoted  bool
		started bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case !quoted && (r == ' ' || r == '\t'):
			if started {
				parts = append(parts, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if quoted {
		return nil, errors.New("unterminated quote")
	}
	if started {
		parts = append(parts, current.String())
	}
	return parts, nil
}

// serveMetrics exposes the registry on the configured address until the returned stop func is called
func serveMetrics(app *AppContext) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              app.Cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		app.Logger.Info("Serving metrics", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.Logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			app.Logger.Warn("Failed to stop metrics server", zap.Error(err))
		}
	}
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-50s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                                               Show this help message")
	fmt.Println("  exit, quit                                         Exit the interactive session")
	fmt.Println()
}

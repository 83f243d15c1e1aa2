package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/deeplink/internal/config"
	"github.com/vango-dev/deeplink/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "deeplink",
		Short: "Deep link routing tools for the MovieClub app",
		Long: `deeplink resolves, simulates and publishes the app's deep links.

Every command reads deeplink.json or deeplink.toml from the current
directory or a parent, or the file named by --config. Without one the
built-in route table and defaults are used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to deeplink.json or deeplink.toml")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log engine decisions to stderr")

	rootCmd.AddCommand(
		resolveCmd(flags),
		routesCmd(flags),
		shareCmd(flags),
		simulateCmd(flags),
		serveCmd(flags),
		publishCmd(flags),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the --config file, or searches from the working
// directory. A missing file means defaults.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	if f.configPath != "" {
		return config.LoadFile(f.configPath)
	}
	cfg, err := config.LoadFromWorkingDir()
	if errors.Code(err) == "DL301" {
		return config.New(), nil
	}
	return cfg, err
}

// logger returns a stderr logger: Debug with --verbose, Warn otherwise.
func (f *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

const banner = `
   ┌─────────────────────────────────┐
   │  deeplink   link routing tools  │
   └─────────────────────────────────┘
`

// printBanner prints the serve banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

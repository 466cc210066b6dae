package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/format"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
}

// ValidFormats defines the allowed status output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Run without a subcommand it
// executes one query and prints the result.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlmongo [key=value ...]",
		Short: "Query document stores with SQL",
		Long: `Run a SQL SELECT against a MongoDB database or an embedded document store.

Settings come from defaults, a config.properties file, SQLMONGO_* environment
variables, flags and key=value arguments, later sources winning.

Example:
  sqlmongo uri=mongodb://localhost:27017/mydb "query=select userEmail from coupons where couponState = 4"
  sqlmongo --uri sqlite://docs.db -q "select * from people" -o vertical
  sqlmongo --uri sqlite://docs.db -q "select name, age from people" -o people.csv`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(cmd, opts)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args, cmd)
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "status output format (json|text)")
	pf.StringVar(&opts.ConfigFile, "config", "", "settings file (default ./"+config.DefaultFile+" when present)")
	pf.String("uri", "", "connection URI (mongodb://, mongodb+srv://, sqlite://, file:)")
	pf.StringP("output", "o", format.OutputHorizontal, "horizontal, vertical, json or a CSV file path")
	pf.Int("padding", 40, "column width for horizontal and vertical output")
	pf.String("null-value", "", "text shown for null and missing values")
	pf.String("date-format", format.DefaultDateLayout, "date layout (Go layout or yyyy-MM-dd style pattern)")
	pf.String("csv-separator", ",", "CSV cell separator")

	cmd.Flags().StringP("query", "q", "", "SQL query to run")

	// Add subcommands
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// configureLogging installs a text handler on stderr, at debug level with
// --verbose.
func configureLogging(cmd *cobra.Command, opts *RootOptions) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// loadSettings resolves the configuration layers for cmd. args are
// key=value arguments.
func loadSettings(opts *RootOptions, cmd *cobra.Command, args []string) (*config.Config, error) {
	l := config.NewLoader()
	if err := l.ReadFile(opts.ConfigFile); err != nil {
		return nil, err
	}
	if err := l.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := l.ApplyArgs(args); err != nil {
		return nil, err
	}
	return l.Load()
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

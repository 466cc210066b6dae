package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/format"
	"github.com/roach88/sqlmongo/internal/store"
)

const shellPrompt = "sqlmongo> "

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	HistoryFile string
}

// lineReader is the part of *liner.State the shell loop uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run queries interactively",
		Long: `Open a connection and read queries line by line. Each line is run and its
result printed with the configured output settings.

Besides queries the shell understands:
  show collections   list the collections
  exit, quit         leave (as does Ctrl-D)

Example:
  sqlmongo shell --uri sqlite://docs.db -o vertical`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShellCommand(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.HistoryFile, "history", defaultHistoryFile(), "history file (empty disables history)")

	return cmd
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqlmongo_history")
}

func runShellCommand(opts *ShellOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadSettings(opts.RootOptions, cmd, nil)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid settings", err)
	}
	if err := cfg.Require(config.KeyURI); err != nil {
		return formatter.Fail(ExitCommandError, "missing setting", err)
	}

	ctx := commandContext(cmd)
	conn, err := store.Open(ctx, cfg.URI)
	if err != nil {
		return formatter.Fail(ExitFailure, "failed to connect", err)
	}
	defer closeConn(conn)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if opts.HistoryFile != "" {
		if f, err := os.Open(opts.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer writeHistory(line, opts.HistoryFile)
	}

	return runShell(ctx, line, cmd.OutOrStdout(), conn, cfg.Format())
}

func writeHistory(line *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		slog.Warn("cannot write shell history", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		slog.Warn("cannot write shell history", "path", path, "error", err)
	}
}

// runShell reads queries from r until exit, quit or end of input. A failing
// query is reported on w and the loop goes on.
func runShell(ctx context.Context, r lineReader, w io.Writer, conn store.Conn, cfg format.Config) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := r.Prompt(shellPrompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		r.AppendHistory(input)

		switch strings.ToLower(strings.Join(strings.Fields(strings.TrimSuffix(input, ";")), " ")) {
		case "exit", "quit":
			return nil
		case "show collections":
			showCollections(ctx, w, conn)
			continue
		}

		res, err := engine.Run(ctx, conn, input)
		if err != nil {
			fmt.Fprintf(w, "Error [%s]: %v\n", ErrorCode(err), err)
			continue
		}
		if err := format.Print(ctx, w, res, cfg); err != nil {
			fmt.Fprintf(w, "Error [%s]: %v\n", ErrorCode(err), err)
		}
	}
}

func showCollections(ctx context.Context, w io.Writer, conn store.Conn) {
	names, err := conn.Collections(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error [%s]: %v\n", ErrorCode(err), err)
		return
	}
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
}

package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/engine"
	"github.com/roach88/sqlmongo/internal/format"
	"github.com/roach88/sqlmongo/internal/store"
)

// runQuery compiles the configured query, connects, and prints the records.
// The query is compiled before connecting, so a bad query never opens a
// connection.
func runQuery(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadSettings(opts, cmd, args)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid settings", err)
	}
	if err := cfg.Require(config.KeyURI, config.KeyQuery); err != nil {
		return formatter.Fail(ExitCommandError, "missing setting", err)
	}

	spec, err := compiler.CompileString(cfg.Query)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid query", err)
	}
	slog.Debug("query compiled", "collection", spec.Collection, "fields", spec.Fields.Len())

	// Stop on Ctrl-C or SIGTERM; the cursor is released on the way out.
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := store.Open(ctx, cfg.URI)
	if err != nil {
		return formatter.Fail(ExitFailure, "failed to connect", err)
	}
	defer closeConn(conn)

	res, err := engine.Execute(ctx, conn, spec)
	if err != nil {
		return formatter.Fail(ExitFailure, "query failed", err)
	}
	if err := format.Print(ctx, cmd.OutOrStdout(), res, cfg.Format()); err != nil {
		return formatter.Fail(ExitFailure, "query failed", err)
	}
	return nil
}

func closeConn(conn store.Conn) {
	if err := conn.Close(context.Background()); err != nil {
		slog.Error("error closing connection", "error", err)
	}
}

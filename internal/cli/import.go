package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/fixture"
	"github.com/roach88/sqlmongo/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Collection string
	Drop       bool
}

// ImportResult summarizes an import.
type ImportResult struct {
	Collection string   `json:"collection"`
	Files      []string `json:"files"`
	Documents  int      `json:"documents"`
}

func (r ImportResult) String() string {
	return fmt.Sprintf("Imported %d document(s) from %d file(s) into %s", r.Documents, len(r.Files), r.Collection)
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Load documents from files into a collection",
		Long: `Insert the documents of one or more files into a collection.

Files are read by extension: .json (a document or an array, Extended JSON),
.ndjson/.jsonl (one document per line), .yaml/.yml and .cue. All files are
read before anything is inserted.

Example:
  sqlmongo import --uri sqlite://docs.db --collection coupons coupons.json
  sqlmongo import --uri sqlite://docs.db --collection people --drop people.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Collection, "collection", "c", "", "target collection (required)")
	cmd.Flags().BoolVar(&opts.Drop, "drop", false, "drop the collection first")
	_ = cmd.MarkFlagRequired("collection")

	return cmd
}

func runImport(opts *ImportOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := loadSettings(opts.RootOptions, cmd, nil)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid settings", err)
	}
	if err := cfg.Require(config.KeyURI); err != nil {
		return formatter.Fail(ExitCommandError, "missing setting", err)
	}

	var docs []bson.D
	for _, file := range files {
		loaded, err := fixture.LoadFile(file)
		if err != nil {
			return formatter.Fail(ExitCommandError, "failed to load fixture", err)
		}
		formatter.VerboseLog("Loaded %d document(s) from %s", len(loaded), file)
		docs = append(docs, loaded...)
	}

	ctx := commandContext(cmd)
	conn, err := store.Open(ctx, cfg.URI)
	if err != nil {
		return formatter.Fail(ExitFailure, "failed to connect", err)
	}
	defer closeConn(conn)

	if opts.Drop {
		if err := conn.Drop(ctx, opts.Collection); err != nil {
			return formatter.Fail(ExitFailure, "failed to drop collection", err)
		}
		slog.Info("collection dropped", "collection", opts.Collection)
	}

	n, err := conn.Insert(ctx, opts.Collection, docs)
	if err != nil {
		return formatter.Fail(ExitFailure, "import failed", err)
	}
	slog.Debug("documents imported", "collection", opts.Collection, "count", n)

	return formatter.Success(ImportResult{Collection: opts.Collection, Files: files, Documents: n})
}

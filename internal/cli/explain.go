package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/compiler"
	"github.com/roach88/sqlmongo/internal/config"
	"github.com/roach88/sqlmongo/internal/queryir"
	"github.com/roach88/sqlmongo/internal/querysql"
)

// Explanation is the native form of one query.
type Explanation struct {
	Query      string          `json:"query"`
	Collection string          `json:"collection"`
	Fields     []ExplainField  `json:"fields"`
	Filter     json.RawMessage `json:"filter"`
	Projection json.RawMessage `json:"projection"`
}

// ExplainField is one output column of an Explanation.
type ExplainField struct {
	Alias string `json:"alias"`
	Path  string `json:"path"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [query]",
		Short: "Show the native filter and projection of a query",
		Long: `Translate a query without connecting and print the collection, the output
fields, and the filter and projection documents as Extended JSON.

Without arguments the configured query is explained.

Example:
  sqlmongo explain "select userEmail from coupons where couponState = 4"
  sqlmongo explain --format json select name, address.city as city from people`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args, cmd)
		},
	}
}

func runExplain(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	text := strings.Join(args, " ")
	if text == "" {
		cfg, err := loadSettings(opts, cmd, nil)
		if err != nil {
			return formatter.Fail(ExitCommandError, "invalid settings", err)
		}
		if err := cfg.Require(config.KeyQuery); err != nil {
			return formatter.Fail(ExitCommandError, "missing query", err)
		}
		text = cfg.Query
	}

	q, err := querysql.Parse(text)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid query", err)
	}
	spec, err := compiler.Compile(q)
	if err != nil {
		return formatter.Fail(ExitCommandError, "invalid query", err)
	}

	exp, err := Explain(q, spec)
	if err != nil {
		return formatter.Fail(ExitFailure, "explain failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(exp)
	}
	writeExplanation(formatter.Writer, exp)
	return nil
}

// Explain describes spec, the translation of q.
func Explain(q queryir.Query, spec *compiler.QuerySpec) (*Explanation, error) {
	exp := &Explanation{
		Query:      q.String(),
		Collection: spec.Collection,
		Fields:     []ExplainField{},
	}
	for alias, path := range spec.Fields.All() {
		exp.Fields = append(exp.Fields, ExplainField{Alias: alias, Path: queryir.FormatPath(path)})
	}

	filter, err := bson.MarshalExtJSON(spec.Filter, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	exp.Filter = filter

	exp.Projection = json.RawMessage("null")
	if spec.Projection != nil {
		projection, err := bson.MarshalExtJSON(spec.Projection, false, false)
		if err != nil {
			return nil, fmt.Errorf("encode projection: %w", err)
		}
		exp.Projection = projection
	}
	return exp, nil
}

func writeExplanation(w io.Writer, exp *Explanation) {
	fmt.Fprintf(w, "Query:      %s\n", exp.Query)
	fmt.Fprintf(w, "Collection: %s\n", exp.Collection)
	if len(exp.Fields) == 0 {
		fmt.Fprintln(w, "Fields:     * (every stored field)")
	} else {
		fmt.Fprintln(w, "Fields:")
		for _, f := range exp.Fields {
			fmt.Fprintf(w, "  %s <- %s\n", f.Alias, f.Path)
		}
	}
	fmt.Fprintf(w, "Filter:     %s\n", exp.Filter)
	if string(exp.Projection) == "null" {
		fmt.Fprintln(w, "Projection: none")
	} else {
		fmt.Fprintf(w, "Projection: %s\n", exp.Projection)
	}
}

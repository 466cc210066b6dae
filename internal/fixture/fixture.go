// Package fixture loads seed documents from files.
//
// Supported formats, chosen by file extension:
//
//	.json          one document, or an array of documents (Extended JSON)
//	.ndjson .jsonl one Extended JSON document per line
//	.yaml .yml     a document, a sequence of documents, or a multi-document stream
//	.cue           a struct (one document), a list, or a struct whose
//	               "documents" field is a list
//
// Key order is kept as written. Keys are normalized to Unicode NFC, the
// form query identifiers are parsed into.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/ir"
)

// Format names a fixture encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatCUE    Format = "cue"
)

// DetectFormat picks the format from path's extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".ndjson", ".jsonl":
		return FormatNDJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported fixture file %q (expected .json, .ndjson, .jsonl, .yaml, .yml or .cue)", path)
	}
}

// LoadFile reads the documents stored in path.
func LoadFile(path string) ([]bson.D, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read fixture %s", path)
	}
	return Load(format, path, data)
}

// Load decodes data in the given format. name is used in error messages.
func Load(format Format, name string, data []byte) ([]bson.D, error) {
	var docs []bson.D
	var err error
	switch format {
	case FormatJSON:
		docs, err = loadJSON(name, data)
	case FormatNDJSON:
		docs, err = loadNDJSON(name, data)
	case FormatYAML:
		docs, err = loadYAML(name, data)
	case FormatCUE:
		docs, err = loadCUE(name, data)
	default:
		return nil, fmt.Errorf("unknown fixture format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i] = normalizeDoc(docs[i])
	}
	return docs, nil
}

// Error reports a fixture that could not be decoded. Line and Column are
// 1-based and zero when the decoder gives no position.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
}

func normalizeDoc(d bson.D) bson.D {
	out := make(bson.D, len(d))
	for i, e := range d {
		out[i] = bson.E{Key: ir.NormalizeKey(e.Key), Value: normalizeValue(e.Value)}
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case bson.D:
		return normalizeDoc(val)
	case bson.A:
		out := make(bson.A, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// smallInt stores integers that fit in 32 bits as int32, the way Extended
// JSON and the mongo shell do.
func smallInt(n int64) any {
	if n >= -1<<31 && n < 1<<31 {
		return int32(n)
	}
	return n
}

package fixture

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// maxLine bounds one NDJSON record.
const maxLine = 16 << 20

func loadJSON(name string, data []byte) ([]bson.D, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &Error{File: name, Message: "empty file"}
	}

	if trimmed[0] == '[' {
		wrapped := make([]byte, 0, len(trimmed)+16)
		wrapped = append(wrapped, `{"documents":`...)
		wrapped = append(wrapped, trimmed...)
		wrapped = append(wrapped, '}')

		var batch struct {
			Documents []bson.D `bson:"documents"`
		}
		if err := bson.UnmarshalExtJSON(wrapped, false, &batch); err != nil {
			return nil, errors.Wrapf(err, "%s: decode Extended JSON array", name)
		}
		return batch.Documents, nil
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(trimmed, false, &doc); err != nil {
		return nil, errors.Wrapf(err, "%s: decode Extended JSON document", name)
	}
	return []bson.D{doc}, nil
}

func loadNDJSON(name string, data []byte) ([]bson.D, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)

	var docs []bson.D
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var doc bson.D
		if err := bson.UnmarshalExtJSON(text, false, &doc); err != nil {
			return nil, &Error{File: name, Line: line, Message: fmt.Sprintf("decode Extended JSON: %v", err)}
		}
		docs = append(docs, doc)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s: read line %d", name, line+1)
	}
	return docs, nil
}

package engine

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/sqlmongo/internal/ir"
)

// Doc is a read-only view over one record.
type Doc struct {
	root ir.IRDocument
}

// NewDoc decodes a raw record. Keys are normalized to NFC, the form query
// identifiers are parsed into.
func NewDoc(raw bson.Raw) (*Doc, error) {
	root, err := FromRaw(raw)
	if err != nil {
		return nil, err
	}
	return &Doc{root: root}, nil
}

// GetValue returns the value at path. A missing segment anywhere along the
// path yields ir.IRNull, the same as a stored null.
func (d *Doc) GetValue(path ir.Path) ir.IRValue {
	v, _ := ir.Resolve(d.root, path)
	return v
}

// Lookup is GetValue that also reports whether every segment of path
// exists.
func (d *Doc) Lookup(path ir.Path) (ir.IRValue, bool) {
	return ir.Resolve(d.root, path)
}

// GetFieldNames returns the record's top-level keys in stored order.
func (d *Doc) GetFieldNames() []string {
	return d.root.Keys()
}

// Document returns the decoded record. Callers must not modify it.
func (d *Doc) Document() ir.IRDocument {
	return d.root
}

// FromRaw converts a BSON document to an IRDocument, keeping key order.
func FromRaw(raw bson.Raw) (ir.IRDocument, error) {
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	elems, err := raw.Elements()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	doc := make(ir.IRDocument, len(elems))
	for i, e := range elems {
		key := ir.NormalizeKey(e.Key())
		v, err := fromRawValue(e.Value())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		doc[i] = ir.F(key, v)
	}
	return doc, nil
}

// fromRawValue maps a BSON value onto the IR value set. Types without an
// IR counterpart become strings in their usual shell notation: ObjectId and
// Decimal128 as text, UUID binaries as hyphenated UUIDs, other binaries as
// base64, regular expressions as /pattern/options.
func fromRawValue(rv bson.RawValue) (ir.IRValue, error) {
	switch rv.Type {
	case bson.TypeNull, bson.TypeUndefined:
		return ir.IRNull{}, nil
	case bson.TypeString:
		return ir.IRString(rv.StringValue()), nil
	case bson.TypeInt32:
		return ir.IRInt(rv.Int32()), nil
	case bson.TypeInt64:
		return ir.IRInt(rv.Int64()), nil
	case bson.TypeDouble:
		return ir.IRFloat(rv.Double()), nil
	case bson.TypeBoolean:
		return ir.IRBool(rv.Boolean()), nil
	case bson.TypeDateTime:
		return ir.NewIRDateTime(time.UnixMilli(rv.DateTime())), nil
	case bson.TypeTimestamp:
		sec, _ := rv.Timestamp()
		return ir.NewIRDateTime(time.Unix(int64(sec), 0)), nil
	case bson.TypeEmbeddedDocument:
		return FromRaw(rv.Document())
	case bson.TypeArray:
		values, err := rv.Array().Values()
		if err != nil {
			return nil, fmt.Errorf("read array: %w", err)
		}
		arr := make(ir.IRArray, len(values))
		for i, elem := range values {
			v, err := fromRawValue(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case bson.TypeObjectID:
		return ir.IRString(rv.ObjectID().Hex()), nil
	case bson.TypeDecimal128:
		return ir.IRString(rv.Decimal128().String()), nil
	case bson.TypeBinary:
		subtype, data := rv.Binary()
		if (subtype == bson.TypeBinaryUUID || subtype == bson.TypeBinaryUUIDOld) && len(data) == 16 {
			return ir.IRString(uuid.UUID(data).String()), nil
		}
		return ir.IRString(base64.StdEncoding.EncodeToString(data)), nil
	case bson.TypeRegex:
		pattern, options := rv.Regex()
		return ir.IRString("/" + pattern + "/" + options), nil
	case bson.TypeSymbol:
		return ir.IRString(rv.Symbol()), nil
	case bson.TypeJavaScript:
		return ir.IRString(rv.JavaScript()), nil
	case bson.TypeCodeWithScope:
		code, _ := rv.CodeWithScope()
		return ir.IRString(code), nil
	case bson.TypeDBPointer:
		ns, oid := rv.DBPointer()
		return ir.IRString(ns + "." + oid.Hex()), nil
	case bson.TypeMinKey:
		return ir.IRString("MinKey"), nil
	case bson.TypeMaxKey:
		return ir.IRString("MaxKey"), nil
	default:
		return nil, fmt.Errorf("unsupported BSON type %s", rv.Type)
	}
}

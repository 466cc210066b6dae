package fixture

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadCUE evaluates a CUE file. The result must be concrete: a struct is
// one document, a list holds documents, and a struct with a "documents"
// list field holds the documents of that list.
func loadCUE(name string, data []byte) ([]bson.D, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(name, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(name, err)
	}

	if list := v.LookupPath(cue.ParsePath("documents")); list.Exists() && list.Kind() == cue.ListKind {
		return cueDocuments(name, list)
	}

	switch v.Kind() {
	case cue.ListKind:
		return cueDocuments(name, v)
	case cue.StructKind:
		d, err := cueStruct(name, v)
		if err != nil {
			return nil, err
		}
		return []bson.D{d}, nil
	default:
		return nil, cueError(name, v, "expected a struct or a list of structs, got %s", v.Kind())
	}
}

func cueDocuments(name string, list cue.Value) ([]bson.D, error) {
	it, err := list.List()
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	var docs []bson.D
	for it.Next() {
		elem := it.Value()
		if elem.Kind() != cue.StructKind {
			return nil, cueError(name, elem, "expected a struct (document), got %s", elem.Kind())
		}
		d, err := cueStruct(name, elem)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// cueStruct converts a struct keeping its field order. Only regular fields
// are included; definitions and hidden fields are not data.
func cueStruct(name string, v cue.Value) (bson.D, error) {
	it, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(name, err)
	}
	var d bson.D
	for it.Next() {
		val, err := cueValue(name, it.Value())
		if err != nil {
			return nil, err
		}
		d = append(d, bson.E{Key: it.Label(), Value: val})
	}
	if d == nil {
		d = bson.D{}
	}
	return d, nil
}

func cueValue(name string, v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		return b, nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		return smallInt(i), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		return f, nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		return s, nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		return primitive.Binary{Data: b}, nil
	case cue.StructKind:
		return cueStruct(name, v)
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, formatCUEError(name, err)
		}
		arr := bson.A{}
		for it.Next() {
			elem, err := cueValue(name, it.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	default:
		return nil, cueError(name, v, "unsupported value of kind %s", v.Kind())
	}
}

func cueError(name string, v cue.Value, format string, args ...any) error {
	pos := v.Pos()
	e := &Error{File: name, Message: fmt.Sprintf(format, args...)}
	if pos.IsValid() {
		e.Line, e.Column = pos.Line(), pos.Column()
	}
	return e
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(name string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: name, Message: err.Error()}
	}

	// Report the first error, with its position when CUE has one.
	first := errs[0]
	e := &Error{File: name, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		e.Line, e.Column = positions[0].Line(), positions[0].Column()
	}
	return e
}

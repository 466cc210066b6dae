package docstore

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// projTree is a parsed projection: each key maps to the projection of its
// sub-document, or to nil when the whole value is selected.
type projTree map[string]projTree

// projection is a compiled projection document.
type projection struct {
	// none is set when there is no projection and documents pass unchanged.
	none bool

	// exclude selects exclusion mode: the paths in tree are removed.
	// Otherwise only the paths in tree are kept.
	exclude bool

	tree projTree

	// keepID reports whether _id survives an inclusion projection.
	keepID bool
}

// compileProjection validates a projection document. Values are read as
// true (1, true) or false (0, false). Inclusion and exclusion cannot be
// mixed, except that _id may be excluded from an inclusion projection.
func compileProjection(spec bson.D) (projection, error) {
	if len(spec) == 0 {
		return projection{none: true}, nil
	}

	p := projection{tree: projTree{}, keepID: true}
	idExcluded := false
	includes, excludes := 0, 0
	for _, e := range spec {
		on, err := projectionFlag(e.Value)
		if err != nil {
			return projection{}, fmt.Errorf("projection %s: %w", e.Key, err)
		}
		if e.Key == "_id" && !on {
			idExcluded = true
			continue
		}
		if on {
			includes++
		} else {
			excludes++
		}
		if err := p.tree.add(e.Key); err != nil {
			return projection{}, err
		}
	}

	switch {
	case includes > 0 && excludes > 0:
		return projection{}, fmt.Errorf("projection cannot mix inclusion and exclusion")
	case includes > 0:
		p.keepID = !idExcluded
	default:
		p.exclude = true
		if idExcluded {
			if err := p.tree.add("_id"); err != nil {
				return projection{}, err
			}
		}
	}
	return p, nil
}

func projectionFlag(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int:
		return val != 0, nil
	case int32:
		return val != 0, nil
	case int64:
		return val != 0, nil
	case float64:
		return val != 0, nil
	default:
		return false, fmt.Errorf("%w: projection value of type %T", ErrUnsupportedFilter, v)
	}
}

// add inserts a dotted path. A path and one of its ancestors both listed is
// a collision.
func (t projTree) add(key string) error {
	segs := strings.Split(key, ".")
	node := t
	for i, seg := range segs {
		if seg == "" {
			return fmt.Errorf("projection path %q: segment %d is empty", key, i)
		}
		sub, exists := node[seg]
		last := i == len(segs)-1
		switch {
		case exists && (sub == nil || last):
			return fmt.Errorf("projection path collision at %s", key)
		case last:
			node[seg] = nil
		case !exists:
			sub = projTree{}
			node[seg] = sub
		}
		node = sub
	}
	return nil
}

// apply returns the projected copy of doc. doc is not modified.
func (p projection) apply(doc bson.D) bson.D {
	switch {
	case p.none:
		return doc
	case p.exclude:
		return excludePaths(doc, p.tree)
	default:
		out := bson.D{}
		for _, e := range doc {
			if e.Key == "_id" {
				if sub, listed := p.tree["_id"]; listed {
					if v, ok := includeValue(e.Value, sub); ok {
						out = append(out, bson.E{Key: e.Key, Value: v})
					}
				} else if p.keepID {
					out = append(out, e)
				}
				continue
			}
			sub, listed := p.tree[e.Key]
			if !listed {
				continue
			}
			if v, ok := includeValue(e.Value, sub); ok {
				out = append(out, bson.E{Key: e.Key, Value: v})
			}
		}
		return out
	}
}

func includeDoc(doc bson.D, tree projTree) bson.D {
	out := bson.D{}
	for _, e := range doc {
		sub, listed := tree[e.Key]
		if !listed {
			continue
		}
		if v, ok := includeValue(e.Value, sub); ok {
			out = append(out, bson.E{Key: e.Key, Value: v})
		}
	}
	return out
}

// includeValue projects one value. A nil tree keeps the whole value. A
// sub-tree applies to a sub-document, or to every sub-document of an array;
// scalars under a sub-tree are dropped.
func includeValue(v any, tree projTree) (any, bool) {
	if tree == nil {
		return v, true
	}
	switch val := v.(type) {
	case bson.D:
		return includeDoc(val, tree), true
	case bson.A:
		out := bson.A{}
		for _, elem := range val {
			switch x := elem.(type) {
			case bson.D:
				out = append(out, includeDoc(x, tree))
			case bson.A:
				if nested, ok := includeValue(x, tree); ok {
					out = append(out, nested)
				}
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func excludePaths(doc bson.D, tree projTree) bson.D {
	out := bson.D{}
	for _, e := range doc {
		sub, listed := tree[e.Key]
		switch {
		case !listed:
			out = append(out, e)
		case sub == nil:
			// excluded
		default:
			out = append(out, bson.E{Key: e.Key, Value: excludeValue(e.Value, sub)})
		}
	}
	return out
}

func excludeValue(v any, tree projTree) any {
	switch val := v.(type) {
	case bson.D:
		return excludePaths(val, tree)
	case bson.A:
		out := make(bson.A, len(val))
		for i, elem := range val {
			out[i] = excludeValue(elem, tree)
		}
		return out
	default:
		return v
	}
}

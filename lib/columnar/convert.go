package columnar

import (
	"fmt"

	"skema/lib/schema"
)

// MapType maps one source node to its target type. The second return is the
// nullable flag: true iff the node is the [null, T] union pattern, in which
// case the returned type is the mapping of T. Any node outside the mapping
// table yields a *schema.ConversionError.
//
// Pure function; safe for concurrent use.
func MapType(n schema.Node) (Type, bool, error) {
	return mapType(n, "")
}

func mapType(n schema.Node, path string) (Type, bool, error) {
	switch n := n.(type) {
	case schema.Primitive:
		t, err := mapPrimitive(n, path)
		return t, false, err
	case schema.Enum:
		return Type{Kind: KindString}, false, nil
	case schema.Fixed:
		return Type{Kind: KindBinary}, false, nil
	case schema.Record:
		fields, err := mapFields(n, path)
		if err != nil {
			return Type{}, false, err
		}
		return Type{Kind: KindStruct, Fields: fields}, false, nil
	case schema.Array:
		elem, _, err := mapType(n.Elem, path)
		if err != nil {
			return Type{}, false, err
		}
		return Type{Kind: KindList, Elem: &elem}, false, nil
	case schema.Map:
		value, _, err := mapType(n.Value, path)
		if err != nil {
			return Type{}, false, err
		}
		return Type{Kind: KindMap, Elem: &value}, false, nil
	case schema.Union:
		inner, ok := n.Nullable()
		if !ok {
			return Type{}, false, schema.NewConversionError(path, n.String())
		}
		t, _, err := mapType(inner, path)
		return t, true, err
	default:
		return Type{}, false, schema.NewConversionError(path, fmt.Sprintf("%T", n))
	}
}

func mapPrimitive(p schema.Primitive, path string) (Type, error) {
	switch p.Kind() {
	case schema.KindString:
		return Type{Kind: KindString}, nil
	case schema.KindInt:
		return Type{Kind: KindInt32}, nil
	case schema.KindLong:
		return Type{Kind: KindInt64}, nil
	case schema.KindFloat:
		return Type{Kind: KindFloat32}, nil
	case schema.KindDouble:
		return Type{Kind: KindFloat64}, nil
	case schema.KindBoolean:
		return Type{Kind: KindBool}, nil
	case schema.KindBytes:
		return Type{Kind: KindBinary}, nil
	default:
		// A bare null outside a union has no columnar representation.
		return Type{}, schema.NewConversionError(path, p.String())
	}
}

func mapFields(r schema.Record, path string) ([]Field, error) {
	fields := make([]Field, 0, len(r.Fields))
	for _, f := range r.Fields {
		fpath := f.Name
		if path != "" {
			fpath = path + "." + f.Name
		}
		t, nullable, err := mapType(f.Type, fpath)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: f.Name, Type: t, Nullable: nullable})
	}
	return fields, nil
}

// Convert walks a source record schema and produces the target schema the
// storage layer lays columns out with. Field order follows the record's
// declared order exactly; nested records become struct columns.
//
// Pure function; same input always yields a structurally identical schema.
func Convert(root schema.Node) (Schema, error) {
	if root == nil {
		return Schema{}, schema.ErrRootNotRecord
	}
	r, ok := root.(schema.Record)
	if !ok {
		return Schema{}, fmt.Errorf("%w, got %s", schema.ErrRootNotRecord, root.Kind())
	}
	fields, err := mapFields(r, "")
	if err != nil {
		return Schema{}, err
	}
	return Schema{Fields: fields}, nil
}

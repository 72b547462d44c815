package schema

import (
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/samber/mo"
)

// FromJson parses a serialized schema document - the usual Avro JSON form
// with `type`, `name`, `namespace`, `fields` and unions as JSON arrays -
// into a Node tree. Named-type references (a bare string that is not a
// primitive name) are not supported; named types are declared inline.
func FromJson(data []byte) (Node, error) {
	vdata, vtype, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, err
	}
	return parseJson(vdata, vtype)
}

func parseJson(vdata []byte, vtype jsonparser.ValueType) (Node, error) {
	switch vtype {
	case jsonparser.String:
		s, err := jsonparser.ParseString(vdata)
		if err != nil {
			return nil, err
		}
		return parsePrimitive(s)
	case jsonparser.Array:
		return parseUnion(vdata)
	case jsonparser.Object:
		return parseObject(vdata)
	default:
		return nil, fmt.Errorf("invalid schema document: unexpected %s", vtype)
	}
}

func parsePrimitive(name string) (Node, error) {
	switch name {
	case "null":
		return Null, nil
	case "boolean":
		return Boolean, nil
	case "int":
		return Int, nil
	case "long":
		return Long, nil
	case "float":
		return Float, nil
	case "double":
		return Double, nil
	case "bytes":
		return Bytes, nil
	case "string":
		return String, nil
	default:
		return nil, fmt.Errorf("unknown type name %q", name)
	}
}

func parseUnion(vdata []byte) (Node, error) {
	var members []Node
	var errs []error
	seen := map[string]bool{}
	handler := func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		m, err := parseJson(value, dataType)
		if err != nil {
			errs = append(errs, err)
			return
		}
		sig := Signature(m)
		if seen[sig] {
			errs = append(errs, fmt.Errorf("duplicate union member %s", sig))
			return
		}
		seen[sig] = true
		members = append(members, m)
	}
	if _, err := jsonparser.ArrayEach(vdata, handler); err != nil {
		return nil, err
	}
	if len(errs) != 0 {
		return nil, errs[0]
	}
	return Union(members), nil
}

func parseObject(vdata []byte) (Node, error) {
	typ, err := jsonparser.GetString(vdata, "type")
	if err != nil {
		return nil, fmt.Errorf("schema object has no type: %v", err)
	}
	switch typ {
	case "record":
		return parseRecord(vdata)
	case "enum":
		return parseEnum(vdata)
	case "fixed":
		return parseFixed(vdata)
	case "array":
		items, itype, _, err := jsonparser.Get(vdata, "items")
		if err != nil {
			return nil, fmt.Errorf("array schema has no items: %v", err)
		}
		elem, err := parseJson(items, itype)
		if err != nil {
			return nil, err
		}
		return Array{Elem: elem}, nil
	case "map":
		values, mtype, _, err := jsonparser.Get(vdata, "values")
		if err != nil {
			return nil, fmt.Errorf("map schema has no values: %v", err)
		}
		value, err := parseJson(values, mtype)
		if err != nil {
			return nil, err
		}
		return Map{Value: value}, nil
	default:
		// {"type": "string"} and friends are also a valid spelling.
		return parsePrimitive(typ)
	}
}

func parseRecord(vdata []byte) (Node, error) {
	name, err := jsonparser.GetString(vdata, "name")
	if err != nil {
		return nil, fmt.Errorf("record schema has no name: %v", err)
	}
	namespace, _ := jsonparser.GetString(vdata, "namespace")

	var fields []Field
	var errs []error
	seen := map[string]bool{}
	handler := func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		f, err := parseField(value)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("duplicate field %q in record %q", f.Name, name))
			return
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	if _, err := jsonparser.ArrayEach(vdata, handler, "fields"); err != nil {
		return nil, fmt.Errorf("record %q has no fields: %v", name, err)
	}
	if len(errs) != 0 {
		return nil, errs[0]
	}
	return Record{Name: name, Namespace: namespace, Fields: fields}, nil
}

func parseField(vdata []byte) (Field, error) {
	name, err := jsonparser.GetString(vdata, "name")
	if err != nil {
		return Field{}, fmt.Errorf("field has no name: %v", err)
	}
	tdata, ttype, _, err := jsonparser.Get(vdata, "type")
	if err != nil {
		return Field{}, fmt.Errorf("field %q has no type: %v", name, err)
	}
	typ, err := parseJson(tdata, ttype)
	if err != nil {
		return Field{}, err
	}
	def := mo.None[string]()
	if ddata, dtype, _, derr := jsonparser.Get(vdata, "default"); derr == nil {
		// Only presence matters for evolution; the raw text is kept for
		// display. A null default is stored as the text "null".
		if dtype == jsonparser.Null {
			def = mo.Some("null")
		} else {
			def = mo.Some(string(ddata))
		}
	}
	return Field{Name: name, Type: typ, Default: def}, nil
}

func parseEnum(vdata []byte) (Node, error) {
	name, err := jsonparser.GetString(vdata, "name")
	if err != nil {
		return nil, fmt.Errorf("enum schema has no name: %v", err)
	}
	var symbols []string
	var errs []error
	handler := func(value []byte, dataType jsonparser.ValueType, offset int, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			errs = append(errs, err)
			return
		}
		symbols = append(symbols, s)
	}
	if _, err := jsonparser.ArrayEach(vdata, handler, "symbols"); err != nil {
		return nil, fmt.Errorf("enum %q has no symbols: %v", name, err)
	}
	if len(errs) != 0 {
		return nil, errs[0]
	}
	return Enum{Name: name, Symbols: symbols}, nil
}

func parseFixed(vdata []byte) (Node, error) {
	name, err := jsonparser.GetString(vdata, "name")
	if err != nil {
		return nil, fmt.Errorf("fixed schema has no name: %v", err)
	}
	size, err := jsonparser.GetInt(vdata, "size")
	if err != nil {
		return nil, fmt.Errorf("fixed %q has no size: %v", name, err)
	}
	return Fixed{Name: name, Size: int(size)}, nil
}

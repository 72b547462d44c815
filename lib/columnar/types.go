// Package columnar holds the storage engine's own column-oriented schema
// vocabulary and the conversion from source schema trees into it.
package columnar

import (
	"fmt"
	"strings"
)

// Kind enumerates the target data kinds the storage layer can lay out.
type Kind uint8

const (
	KindString Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindBinary
	KindStruct
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindBinary:
		return "binary"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Type is a target data type. Struct types carry an ordered field list;
// list and map types carry an element type (map keys are always strings).
type Type struct {
	Kind   Kind
	Elem   *Type
	Fields []Field
}

// Field is one column of a target schema.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
}

// Schema is an ordered list of target fields. Order mirrors the source
// record's declared field order and is significant for columnar layout.
type Schema struct {
	Fields []Field
}

func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if (t.Elem == nil) != (o.Elem == nil) {
		return false
	}
	if t.Elem != nil && !t.Elem.Equal(*o.Elem) {
		return false
	}
	if len(t.Fields) != len(o.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if !f.Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (t Type) String() string {
	switch t.Kind {
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem.String())
	case KindMap:
		return fmt.Sprintf("map<string, %s>", t.Elem.String())
	case KindStruct:
		parts := make([]string, 0, len(t.Fields))
		for _, f := range t.Fields {
			parts = append(parts, f.String())
		}
		return fmt.Sprintf("struct<%s>", strings.Join(parts, ", "))
	default:
		return t.Kind.String()
	}
}

func (f Field) Equal(o Field) bool {
	return f.Name == o.Name && f.Nullable == o.Nullable && f.Type.Equal(o.Type)
}

func (f Field) String() string {
	if f.Nullable {
		return fmt.Sprintf("%s: %s?", f.Name, f.Type.String())
	}
	return fmt.Sprintf("%s: %s", f.Name, f.Type.String())
}

func (s Schema) Len() int {
	return len(s.Fields)
}

// Field returns the field with the given name, if any.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s Schema) Equal(o Schema) bool {
	if len(s.Fields) != len(o.Fields) {
		return false
	}
	for i, f := range s.Fields {
		if !f.Equal(o.Fields[i]) {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("schema(%s)", strings.Join(parts, ", "))
}

package schema

import (
	"fmt"
	"strings"

	"github.com/samber/mo"
)

// Kind identifies the shape of a schema node.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBytes
	KindString
	KindRecord
	KindEnum
	KindArray
	KindMap
	KindUnion
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindRecord:
		return "record"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindUnion:
		return "union"
	case KindFixed:
		return "fixed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Node is one node of a source schema tree. Nodes are immutable once built;
// callers may share them freely across goroutines.
type Node interface {
	isNode()
	Kind() Kind
	Equal(n Node) bool
	String() string
}

var _ Node = Primitive(KindNull)
var _ Node = Record{}
var _ Node = Array{}
var _ Node = Map{}
var _ Node = Union{}
var _ Node = Enum{}
var _ Node = Fixed{}

// Primitive is a leaf node: null, boolean, int, long, float, double, bytes
// or string.
type Primitive Kind

var (
	Null    = Primitive(KindNull)
	Boolean = Primitive(KindBoolean)
	Int     = Primitive(KindInt)
	Long    = Primitive(KindLong)
	Float   = Primitive(KindFloat)
	Double  = Primitive(KindDouble)
	Bytes   = Primitive(KindBytes)
	String  = Primitive(KindString)
)

func (p Primitive) isNode()    {}
func (p Primitive) Kind() Kind { return Kind(p) }
func (p Primitive) Equal(n Node) bool {
	switch n := n.(type) {
	case Primitive:
		return n == p
	default:
		return false
	}
}
func (p Primitive) String() string {
	return Kind(p).String()
}

// Field is a named member of a Record. Default holds the field's default
// value as raw JSON text; absence of a default and a default of null are
// distinct states.
type Field struct {
	Name    string
	Type    Node
	Default mo.Option[string]
}

// HasDefault reports whether the field declares a default value.
func (f Field) HasDefault() bool {
	return f.Default.IsPresent()
}

func (f Field) equal(o Field) bool {
	return f.Name == o.Name && f.Type.Equal(o.Type) && f.HasDefault() == o.HasDefault()
}

// Record is a named, ordered collection of fields. Field names within one
// record are unique; field order is significant and is preserved all the way
// to the columnar layout.
type Record struct {
	Name      string
	Namespace string
	Fields    []Field
}

func (r Record) isNode()    {}
func (r Record) Kind() Kind { return KindRecord }

// FullName is the namespace-qualified record name.
func (r Record) FullName() string {
	if r.Namespace == "" {
		return r.Name
	}
	return r.Namespace + "." + r.Name
}

// Field returns the field with the given name, if any.
func (r Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (r Record) Equal(n Node) bool {
	switch n := n.(type) {
	case Record:
		if r.FullName() != n.FullName() || len(r.Fields) != len(n.Fields) {
			return false
		}
		for i, f := range r.Fields {
			if !f.equal(n.Fields[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (r Record) String() string {
	sb := strings.Builder{}
	sb.WriteString("record ")
	sb.WriteString(r.FullName())
	sb.WriteString("{")
	for _, f := range r.Fields {
		sb.WriteString(fmt.Sprintf("%s: %s, ", f.Name, f.Type.String()))
	}
	sb.WriteString("}")
	return sb.String()
}

// Array holds items of a single element type.
type Array struct {
	Elem Node
}

func (a Array) isNode()    {}
func (a Array) Kind() Kind { return KindArray }
func (a Array) Equal(n Node) bool {
	switch n := n.(type) {
	case Array:
		return a.Elem.Equal(n.Elem)
	default:
		return false
	}
}
func (a Array) String() string {
	return fmt.Sprintf("array<%s>", a.Elem.String())
}

// Map holds values of a single type; keys are always strings.
type Map struct {
	Value Node
}

func (m Map) isNode()    {}
func (m Map) Kind() Kind { return KindMap }
func (m Map) Equal(n Node) bool {
	switch n := n.(type) {
	case Map:
		return m.Value.Equal(n.Value)
	default:
		return false
	}
}
func (m Map) String() string {
	return fmt.Sprintf("map<string, %s>", m.Value.String())
}

// Union is an ordered list of member types, unique by kind+name signature.
type Union []Node

func (u Union) isNode()    {}
func (u Union) Kind() Kind { return KindUnion }
func (u Union) Equal(n Node) bool {
	switch n := n.(type) {
	case Union:
		if len(u) != len(n) {
			return false
		}
		for i, m := range u {
			if !m.Equal(n[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
func (u Union) String() string {
	parts := make([]string, 0, len(u))
	for _, m := range u {
		parts = append(parts, m.String())
	}
	return fmt.Sprintf("union[%s]", strings.Join(parts, ", "))
}

// Nullable reports whether the union is exactly the [null, T] pattern and
// returns T when it is. Unions with more than one non-null member, or
// without a null member, are not nullable in this sense.
func (u Union) Nullable() (Node, bool) {
	if len(u) != 2 {
		return nil, false
	}
	if u[0].Kind() == KindNull && u[1].Kind() != KindNull {
		return u[1], true
	}
	if u[1].Kind() == KindNull && u[0].Kind() != KindNull {
		return u[0], true
	}
	return nil, false
}

// Enum is a named set of symbols. Compatibility checking compares enums by
// kind and name only; symbol-set changes are not inspected.
type Enum struct {
	Name    string
	Symbols []string
}

func (e Enum) isNode()    {}
func (e Enum) Kind() Kind { return KindEnum }
func (e Enum) Equal(n Node) bool {
	switch n := n.(type) {
	case Enum:
		if e.Name != n.Name || len(e.Symbols) != len(n.Symbols) {
			return false
		}
		for i, s := range e.Symbols {
			if s != n.Symbols[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}
func (e Enum) String() string {
	return fmt.Sprintf("enum %s{%s}", e.Name, strings.Join(e.Symbols, ", "))
}

// Fixed is a named binary blob of a fixed byte size.
type Fixed struct {
	Name string
	Size int
}

func (f Fixed) isNode()    {}
func (f Fixed) Kind() Kind { return KindFixed }
func (f Fixed) Equal(n Node) bool {
	switch n := n.(type) {
	case Fixed:
		return f.Name == n.Name && f.Size == n.Size
	default:
		return false
	}
}
func (f Fixed) String() string {
	return fmt.Sprintf("fixed %s(%d)", f.Name, f.Size)
}

// Signature identifies a union member for set comparisons: the kind name
// for anonymous types, qualified by the type name for named ones.
func Signature(n Node) string {
	switch n := n.(type) {
	case Record:
		return "record:" + n.FullName()
	case Enum:
		return "enum:" + n.Name
	case Fixed:
		return "fixed:" + n.Name
	default:
		return n.Kind().String()
	}
}

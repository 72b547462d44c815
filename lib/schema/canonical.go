package schema

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Canonical renders a node in a canonical serialized form: defaults and
// other attributes that do not affect structure are stripped, record names
// are namespace-qualified, and field order is preserved. Two structurally
// identical trees always render to the same string regardless of how they
// were built.
func Canonical(n Node) string {
	var sb strings.Builder
	writeCanonical(&sb, n)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, n Node) {
	if n == nil {
		// Distinct from the null primitive, which renders quoted.
		sb.WriteString("null")
		return
	}
	switch n := n.(type) {
	case Primitive:
		sb.WriteString(`"`)
		sb.WriteString(n.String())
		sb.WriteString(`"`)
	case Record:
		fmt.Fprintf(sb, `{"name":%q,"type":"record","fields":[`, n.FullName())
		for i, f := range n.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, `{"name":%q,"type":`, f.Name)
			writeCanonical(sb, f.Type)
			sb.WriteString("}")
		}
		sb.WriteString("]}")
	case Enum:
		fmt.Fprintf(sb, `{"name":%q,"type":"enum","symbols":[`, n.Name)
		for i, s := range n.Symbols {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(sb, "%q", s)
		}
		sb.WriteString("]}")
	case Fixed:
		fmt.Fprintf(sb, `{"name":%q,"type":"fixed","size":%d}`, n.Name, n.Size)
	case Array:
		sb.WriteString(`{"type":"array","items":`)
		writeCanonical(sb, n.Elem)
		sb.WriteString("}")
	case Map:
		sb.WriteString(`{"type":"map","values":`)
		writeCanonical(sb, n.Value)
		sb.WriteString("}")
	case Union:
		sb.WriteString("[")
		for i, m := range n {
			if i > 0 {
				sb.WriteString(",")
			}
			writeCanonical(sb, m)
		}
		sb.WriteString("]")
	default:
		// Unknown nodes still need a stable rendering for fingerprinting.
		fmt.Fprintf(sb, "%q", n.String())
	}
}

// Fingerprint is a stable structural hash of a schema: the full schema name
// plus the canonical serialized structure, hashed with xxh3-128. Two
// structurally identical schemas from different sources fingerprint
// identically; object identity never matters.
func Fingerprint(n Node) string {
	name := ""
	if r, ok := n.(Record); ok {
		name = r.FullName()
	}
	h := xxh3.HashString128(name + "|" + Canonical(n))
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}

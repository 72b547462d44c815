package compat

import (
	"strings"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skema/lib/schema"
)

func record(fields ...schema.Field) schema.Record {
	return schema.Record{Name: "User", Namespace: "app", Fields: fields}
}

func field(name string, typ schema.Node) schema.Field {
	return schema.Field{Name: name, Type: typ}
}

func fieldWithDefault(name string, typ schema.Node, def string) schema.Field {
	return schema.Field{Name: name, Type: typ, Default: mo.Some(def)}
}

func TestNullHandling(t *testing.T) {
	t.Parallel()
	s := record(field("id", schema.String))
	for _, policy := range []Policy{Backward, Forward, Full, None} {
		assert.True(t, Check(nil, nil, policy).Compatible, policy)
		assert.True(t, Check(nil, s, policy).Compatible, policy)
		if policy == None {
			assert.True(t, Check(s, nil, policy).Compatible, policy)
		} else {
			res := Check(s, nil, policy)
			assert.False(t, res.Compatible, policy)
			assert.NotEmpty(t, res.Issues)
		}
	}
	// First registration is flagged, not failed.
	res := Check(nil, s, Backward)
	require.Equal(t, 1, len(res.Warnings))
	assert.Contains(t, res.Warnings[0], "no prior schema")
}

func TestIdenticalSchemas(t *testing.T) {
	t.Parallel()
	s := record(field("id", schema.String), field("age", schema.Int))
	for _, policy := range []Policy{Backward, Forward, Full} {
		res := Check(s, s, policy)
		assert.True(t, res.Compatible, policy)
		assert.Empty(t, res.Issues)
		assert.Empty(t, res.Warnings)
	}
}

func TestFieldRemovalBreaksBackward(t *testing.T) {
	t.Parallel()
	old := record(field("id", schema.String), field("name", schema.String))
	new := record(field("id", schema.String))
	res := Check(old, new, Backward)
	assert.False(t, res.Compatible)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "name")
}

func TestNewFieldWithDefaultIsCompatible(t *testing.T) {
	t.Parallel()
	old := record(field("id", schema.String))
	new := record(
		field("id", schema.String),
		fieldWithDefault("email", schema.Union{schema.Null, schema.String}, "null"),
	)
	res := Check(old, new, Backward)
	assert.True(t, res.Compatible)
	assert.Empty(t, res.Issues)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "email")
}

func TestNewFieldWithoutDefaultIsIncompatible(t *testing.T) {
	t.Parallel()
	old := record(field("id", schema.String))
	new := record(field("id", schema.String), field("name", schema.String))
	res := Check(old, new, Backward)
	assert.False(t, res.Compatible)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "name")
}

func TestNullabilityChangeIsWarningOnly(t *testing.T) {
	t.Parallel()
	plain := record(field("email", schema.String))
	nullable := record(fieldWithDefault("email", schema.Union{schema.Null, schema.String}, "null"))

	// Widening: string -> [null, string].
	res := Check(plain, nullable, Backward)
	assert.True(t, res.Compatible)
	assert.Empty(t, res.Issues)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "nullability widened")

	// Narrowing the other way is also only a warning.
	res = Check(nullable, plain, Backward)
	assert.True(t, res.Compatible)
	assert.Empty(t, res.Issues)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "nullability narrowed")
}

func TestTypeChange(t *testing.T) {
	t.Parallel()
	old := record(field("age", schema.Int))
	new := record(field("age", schema.Long))
	res := Check(old, new, Backward)
	assert.False(t, res.Compatible)
	require.NotEmpty(t, res.Issues)
	// No implicit numeric widening.
	assert.Contains(t, res.Issues[0], "type changed from int to long")
	assert.Contains(t, res.Issues[0], "age")
}

func TestNestedIssueNamesFullPath(t *testing.T) {
	t.Parallel()
	old := record(field("user", schema.Record{Name: "Inner", Fields: []schema.Field{
		field("address", schema.Record{Name: "Address", Fields: []schema.Field{
			field("zip", schema.String),
		}}),
	}}))
	new := record(field("user", schema.Record{Name: "Inner", Fields: []schema.Field{
		field("address", schema.Record{Name: "Address", Fields: []schema.Field{
			field("zip", schema.Long),
		}}),
	}}))
	res := Check(old, new, Backward)
	assert.False(t, res.Compatible)
	require.Equal(t, 1, len(res.Issues))
	assert.Contains(t, res.Issues[0], "user.address.zip")
}

func TestArrayAndMapRecurse(t *testing.T) {
	t.Parallel()
	scenarios := []struct {
		name       string
		old, new   schema.Node
		compatible bool
	}{
		{"array same", schema.Array{Elem: schema.String}, schema.Array{Elem: schema.String}, true},
		{"array elem changed", schema.Array{Elem: schema.String}, schema.Array{Elem: schema.Long}, false},
		{"map same", schema.Map{Value: schema.Int}, schema.Map{Value: schema.Int}, true},
		{"map value changed", schema.Map{Value: schema.Int}, schema.Map{Value: schema.Boolean}, false},
	}
	for _, scene := range scenarios {
		old := record(field("x", scene.old))
		new := record(field("x", scene.new))
		res := Check(old, new, Backward)
		assert.Equal(t, scene.compatible, res.Compatible, scene.name)
	}
}

func TestUnionMemberChanges(t *testing.T) {
	t.Parallel()
	old := record(field("v", schema.Union{schema.Int, schema.String}))
	grown := record(field("v", schema.Union{schema.Int, schema.String, schema.Boolean}))
	shrunk := record(field("v", schema.Union{schema.Int}))

	res := Check(old, grown, Backward)
	assert.True(t, res.Compatible)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "union member added")

	res = Check(old, shrunk, Backward)
	assert.False(t, res.Compatible)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "union member removed")
}

func TestEnumComparedLoosely(t *testing.T) {
	t.Parallel()
	// Symbol-set changes pass; only the kind is checked.
	old := record(field("color", schema.Enum{Name: "Color", Symbols: []string{"RED", "BLUE"}}))
	new := record(field("color", schema.Enum{Name: "Color", Symbols: []string{"RED", "GREEN", "MAUVE"}}))
	res := Check(old, new, Backward)
	assert.True(t, res.Compatible)
	assert.Empty(t, res.Issues)

	// Enum to something else is still a type change.
	res = Check(old, record(field("color", schema.String)), Backward)
	assert.False(t, res.Compatible)
}

func TestForwardBackwardDuality(t *testing.T) {
	t.Parallel()
	a := record(field("id", schema.String), field("name", schema.String))
	b := record(field("id", schema.String))
	c := record(field("id", schema.String), fieldWithDefault("email", schema.Union{schema.Null, schema.String}, "null"))
	pool := []schema.Node{nil, a, b, c}
	for _, x := range pool {
		for _, y := range pool {
			forward := Check(x, y, Forward)
			backward := Check(y, x, Backward)
			assert.Equal(t, backward.Compatible, forward.Compatible, "%v vs %v", x, y)
		}
	}
}

func TestFullPolicyCombinesDirections(t *testing.T) {
	t.Parallel()
	old := record(field("id", schema.String))
	new := record(field("id", schema.String), field("name", schema.String))
	res := Check(old, new, Full)
	assert.False(t, res.Compatible)
	joined := strings.Join(res.Issues, "\n")
	// Backward fails (no default); forward fails (field removed).
	assert.Contains(t, joined, "backward: ")
	assert.Contains(t, joined, "forward: ")

	both := record(field("id", schema.String))
	res = Check(both, both, Full)
	assert.True(t, res.Compatible)
}

func TestNonePolicy(t *testing.T) {
	t.Parallel()
	old := record(field("id", schema.String))
	new := record(field("count", schema.Long))
	res := Check(old, new, None)
	assert.True(t, res.Compatible)
	assert.Empty(t, res.Issues)
	require.Equal(t, 1, len(res.Warnings))
	assert.Contains(t, res.Warnings[0], "no compatibility checking performed")
}

func TestMalformedInputNeverPanics(t *testing.T) {
	t.Parallel()
	// A nil member inside a union is not a well-formed tree; the check
	// must still return instead of panicking.
	bad := record(field("v", schema.Union{nil, schema.String}))
	good := record(field("v", schema.Union{schema.Null, schema.String}))
	var res Result
	assert.NotPanics(t, func() {
		res = Check(bad, good, Backward)
	})
	assert.False(t, res.Compatible)
	require.NotEmpty(t, res.Issues)
	assert.Contains(t, res.Issues[0], "internal error")
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	scenarios := []struct {
		in   string
		want Policy
		err  bool
	}{
		{"backward", Backward, false},
		{"BACKWARD", Backward, false},
		{" Forward ", Forward, false},
		{"full", Full, false},
		{"none", None, false},
		{"sideways", Backward, true},
	}
	for _, scene := range scenarios {
		got, err := ParsePolicy(scene.in)
		if scene.err {
			assert.Error(t, err, scene.in)
		} else {
			assert.NoError(t, err, scene.in)
			assert.Equal(t, scene.want, got, scene.in)
		}
	}
}

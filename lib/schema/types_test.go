package schema

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	t.Parallel()
	user := Record{Name: "User", Namespace: "app", Fields: []Field{
		{Name: "id", Type: String},
		{Name: "age", Type: Int},
	}}
	scenarios := []struct {
		a, b  Node
		equal bool
	}{
		{String, String, true},
		{String, Int, false},
		{String, Array{Elem: String}, false},
		{Array{Elem: String}, Array{Elem: String}, true},
		{Array{Elem: String}, Array{Elem: Long}, false},
		{Map{Value: Double}, Map{Value: Double}, true},
		{Union{Null, String}, Union{Null, String}, true},
		{Union{Null, String}, Union{String, Null}, false},
		{Enum{Name: "Color", Symbols: []string{"RED", "BLUE"}}, Enum{Name: "Color", Symbols: []string{"RED", "BLUE"}}, true},
		{Enum{Name: "Color", Symbols: []string{"RED"}}, Enum{Name: "Color", Symbols: []string{"RED", "BLUE"}}, false},
		{Fixed{Name: "md5", Size: 16}, Fixed{Name: "md5", Size: 16}, true},
		{Fixed{Name: "md5", Size: 16}, Fixed{Name: "md5", Size: 32}, false},
		{user, Record{Name: "User", Namespace: "app", Fields: []Field{
			{Name: "id", Type: String},
			{Name: "age", Type: Int},
		}}, true},
		{user, Record{Name: "User", Fields: user.Fields}, false},
		{user, Record{Name: "User", Namespace: "app", Fields: []Field{
			{Name: "age", Type: Int},
			{Name: "id", Type: String},
		}}, false},
	}
	for _, scene := range scenarios {
		assert.Equal(t, scene.equal, scene.a.Equal(scene.b), "%s vs %s", scene.a, scene.b)
	}
}

func TestUnionNullable(t *testing.T) {
	t.Parallel()
	scenarios := []struct {
		u        Union
		nullable bool
		inner    Node
	}{
		{Union{Null, String}, true, String},
		{Union{String, Null}, true, String},
		{Union{Null, Record{Name: "X"}}, true, Record{Name: "X"}},
		{Union{Null, Null}, false, nil},
		{Union{Int, String}, false, nil},
		{Union{Null, Int, String}, false, nil},
		{Union{String}, false, nil},
	}
	for _, scene := range scenarios {
		inner, ok := scene.u.Nullable()
		assert.Equal(t, scene.nullable, ok, "%s", scene.u)
		if scene.nullable {
			assert.True(t, inner.Equal(scene.inner))
		}
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()
	scenarios := []struct {
		n   Node
		sig string
	}{
		{String, "string"},
		{Long, "long"},
		{Array{Elem: String}, "array"},
		{Map{Value: Int}, "map"},
		{Record{Name: "User", Namespace: "app"}, "record:app.User"},
		{Record{Name: "User"}, "record:User"},
		{Enum{Name: "Color"}, "enum:Color"},
		{Fixed{Name: "md5", Size: 16}, "fixed:md5"},
	}
	for _, scene := range scenarios {
		assert.Equal(t, scene.sig, Signature(scene.n))
	}
}

func TestFieldDefault(t *testing.T) {
	t.Parallel()
	noDefault := Field{Name: "a", Type: String}
	assert.False(t, noDefault.HasDefault())
	// A default of null is still a default.
	nullDefault := Field{Name: "b", Type: Union{Null, String}, Default: mo.Some("null")}
	assert.True(t, nullDefault.HasDefault())
}

func TestRecordField(t *testing.T) {
	t.Parallel()
	r := Record{Name: "User", Fields: []Field{
		{Name: "id", Type: String},
		{Name: "age", Type: Int},
	}}
	f, ok := r.Field("age")
	assert.True(t, ok)
	assert.True(t, f.Type.Equal(Int))
	_, ok = r.Field("email")
	assert.False(t, ok)
}

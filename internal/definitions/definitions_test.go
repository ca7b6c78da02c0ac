package definitions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"

	"github.com/euforicio/chatmd/internal/definitions"
	"github.com/euforicio/chatmd/internal/parse"
)

func TestTableFirstDefinitionWins(t *testing.T) {
	t.Parallel()

	table := definitions.NewTable()
	assert.True(t, table.Add(definitions.Definition{Identifier: "Foo", URL: "http://first"}))
	assert.False(t, table.Add(definitions.Definition{Identifier: " foo ", URL: "http://second"}))
	assert.Equal(t, 1, table.Len())

	def, ok := table.Lookup("FOO")
	require.True(t, ok)
	assert.Equal(t, "http://first", def.URL)
	assert.Equal(t, "foo", def.Identifier)
}

func TestTableLookupMissing(t *testing.T) {
	t.Parallel()

	_, ok := definitions.NewTable().Lookup("nope")
	assert.False(t, ok)

	var nilTable *definitions.Table
	_, ok = nilTable.Lookup("nope")
	assert.False(t, ok)
	assert.Zero(t, nilTable.Len())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hello world", definitions.Normalize("  Hello\t  WORLD "))
}

func TestCollectThenRemove(t *testing.T) {
	t.Parallel()

	src := "[a]: http://a.example \"A\"\n[b]: <http://b.example/x\\_y>\n\ntext [a] and [b]\n\n[A]: http://ignored.example\n"
	tree, err := parse.Parse([]byte(src), parse.Options{})
	require.NoError(t, err)

	table := definitions.NewTable()
	assert.Equal(t, 3, definitions.Collect(tree.Document, table))
	assert.Equal(t, 2, table.Len())

	a, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "http://a.example", a.URL)
	assert.Equal(t, "A", a.Title)

	b, ok := table.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "http://b.example/x_y", b.URL)

	assert.Equal(t, 3, definitions.Remove(tree.Document))
	assert.Zero(t, definitions.Remove(tree.Document))

	_ = ast.Walk(tree.Document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		assert.NotEqual(t, parse.KindDefinition, n.Kind())
		return ast.WalkContinue, nil
	})
}

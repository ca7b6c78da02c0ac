package pipeline_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euforicio/chatmd/internal/dialect"
	"github.com/euforicio/chatmd/internal/parse"
	"github.com/euforicio/chatmd/internal/pipeline"
)

func TestRunTerminatesWithOneNewline(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "hello world", "hello world\n\n\n", "```\ncode\n```\n"} {
		res, err := pipeline.Run([]byte(in), dialect.Chatwork, parse.Options{})
		require.NoError(t, err)
		assert.Regexp(t, `(^|[^\n])\n$`, res.Text, in)
	}
}

func TestRunEmptyDocument(t *testing.T) {
	t.Parallel()

	res, err := pipeline.Run(nil, dialect.Slack, parse.Options{})
	require.NoError(t, err)
	assert.Equal(t, "\n", res.Text)
	assert.Zero(t, res.Definitions)
}

func TestRunDefinitionsOnly(t *testing.T) {
	t.Parallel()

	res, err := pipeline.Run([]byte("[secret]: http://leak.example \"Hidden title\""), dialect.Lineworks, parse.Options{})
	require.NoError(t, err)
	assert.Equal(t, "\n", res.Text)
	assert.Equal(t, 1, res.Definitions)
}

func TestRunFrontmatter(t *testing.T) {
	t.Parallel()

	src := "---\ntitle: Release\nowner:\n  team: infra\n---\n# Notes\n"
	res, err := pipeline.Run([]byte(src), dialect.Slack, parse.Options{Frontmatter: true})
	require.NoError(t, err)
	assert.Equal(t, "*Notes*\n", res.Text)
	assert.Equal(t, "Release", res.Metadata["title"])
	assert.Equal(t, map[string]any{"team": "infra"}, res.Metadata["owner"])
}

func TestRunPropagatesParserFailure(t *testing.T) {
	t.Parallel()

	_, err := pipeline.Run([]byte("---\ntitle: [unterminated\n---\nbody"), dialect.Slack, parse.Options{Frontmatter: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse markdown")

	_, err = pipeline.Run([]byte("x"), dialect.Slack, parse.Options{Extensions: []string{"nope"}})
	require.ErrorIs(t, err, parse.ErrUnknownExtension)
}

func TestTerminate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a\n", pipeline.Terminate("a"))
	assert.Equal(t, "\na\n", pipeline.Terminate("\na\n\n"))
	assert.Equal(t, "\n", pipeline.Terminate("\n\n"))
}

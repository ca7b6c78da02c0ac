package chatmd_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/euforicio/chatmd"
)

type conversionCase struct {
	name string
	in   string
	want string
}

func runCases(t *testing.T, convert func(string, ...chatmd.Option) (string, error), cases []conversionCase) {
	t.Helper()
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := convert(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatworkify(t *testing.T) {
	t.Parallel()

	runCases(t, chatmd.Chatworkify, []conversionCase{
		{name: "simple text", in: "hello world", want: "hello world\n"},
		{name: "escaped text", in: "*h&ello>world<", want: "*h&ello>world<\n"},
		{name: "headings", in: "# heading 1\n## heading 2\n### heading 3", want: "[info]heading 1[/info][hr]\n\n[info]heading 2[/info][hr]\n\n[info]heading 3[/info][hr]\n"},
		{name: "bold", in: "**bold text**", want: "bold text\n"},
		{name: "italic", in: "*italic text*", want: "italic text\n"},
		{name: "strike", in: "~~strike text~~", want: "~strike text~\n"},
		{name: "unordered list", in: "* list\n* list\n* list", want: "•   list\n•   list\n•   list\n"},
		{name: "ordered list", in: "1. list\n2. list\n3. list", want: "1.  list\n2.  list\n3.  list\n"},
		{name: "link with title", in: `[](http://atlassian.com "Atlassian")`, want: "\nAtlassian (http://atlassian.com)\n"},
		{name: "link with alt", in: "[test](http://atlassian.com)", want: "\ntest (http://atlassian.com)\n"},
		{name: "link with alt and title", in: `[test](http://atlassian.com "Atlassian")`, want: "\ntest (http://atlassian.com)\n"},
		{name: "angle bracket link", in: "<http://atlassian.com>", want: "\nhttp://atlassian.com (http://atlassian.com)\n"},
		{name: "link without text", in: "[](http://atlassian.com)", want: "\nhttp://atlassian.com\n"},
		{name: "link with invalid url", in: "[test](/atlassian)", want: "test\n"},
		{name: "reference link", in: "[Atlassian]\n\n[atlassian]: http://atlassian.com", want: "\nAtlassian (http://atlassian.com)\n"},
		{name: "reference link with custom label", in: "[][test]\n\n[test]: http://atlassian.com", want: "\nhttp://atlassian.com\n"},
		{name: "image with title", in: `![](https://bitbucket.org/repo/123/images/logo.png "test")`, want: "\ntest (https://bitbucket.org/repo/123/images/logo.png)\n"},
		{name: "inline code", in: "hello `world`", want: "hello [code]world[/code]\n"},
		{name: "code block", in: "```\ncode block\n```", want: "[code]code block[/code]\n"},
		{name: "code block with language", in: "```javascript\ncode block\n```", want: "[code]code block[/code]\n"},
		{name: "code block with deprecated language", in: "```\n#!javascript\ncode block\n```", want: "[code]code block[/code]\n"},
		{name: "inline code without space", in: "hello`world`", want: "hello[code]world[/code]\n"},
		{name: "relative link", in: "[test](/relative/path)", want: "test\n"},
		{name: "link inside heading", in: "# see [docs](http://x.example)", want: "[info]see \ndocs (http://x.example)\n[/info][hr]\n"},
		{name: "deprecated language with fence language", in: "```python\n#!javascript\ncode\n```", want: "[code]code[/code]\n"},
	})
}

func TestLineworksify(t *testing.T) {
	t.Parallel()

	runCases(t, chatmd.Lineworksify, []conversionCase{
		{name: "simple text", in: "hello world", want: "hello world\n"},
		{name: "escaped text", in: "*h&ello>world<", want: "*h&ello>world<\n"},
		{name: "headings", in: "# heading 1\n## heading 2\n### heading 3", want: "📍 heading 1 📍\n\n📍 heading 2 📍\n\n📍 heading 3 📍\n"},
		{name: "bold", in: "**bold text**", want: "bold text\n"},
		{name: "italic", in: "*italic text*", want: "italic text\n"},
		{name: "strike", in: "~~strike text~~", want: " ❌strike text❌ \n"},
		{name: "unordered list", in: "* list\n* list\n* list", want: "✔️   list\n✔️   list\n✔️   list\n"},
		{name: "ordered list", in: "1. list\n2. list\n3. list", want: "1.  list\n2.  list\n3.  list\n"},
		{name: "link with title", in: `[](http://atlassian.com "Atlassian")`, want: "\nAtlassian (http://atlassian.com)\n"},
		{name: "link with alt", in: "[test](http://atlassian.com)", want: "\ntest (http://atlassian.com)\n"},
		{name: "angle bracket link", in: "<http://atlassian.com>", want: "\nhttp://atlassian.com (http://atlassian.com)\n"},
		{name: "link without text", in: "[](http://atlassian.com)", want: "\nhttp://atlassian.com\n"},
		{name: "link with invalid url", in: "[test](/atlassian)", want: "test\n"},
		{name: "reference link", in: "[Atlassian]\n\n[atlassian]: http://atlassian.com", want: "\nAtlassian (http://atlassian.com)\n"},
		{name: "reference link with custom label", in: "[][test]\n\n[test]: http://atlassian.com", want: "\nhttp://atlassian.com\n"},
		{name: "image with title", in: `![](https://bitbucket.org/repo/123/images/logo.png "test")`, want: "\ntest (https://bitbucket.org/repo/123/images/logo.png)\n"},
		{name: "inline code", in: "hello `world`", want: "hello world\n"},
		{name: "code block", in: "```\ncode block\n```", want: "\n\ncode block\n"},
		{name: "code block with language", in: "```javascript\ncode block\n```", want: "\n\ncode block\n"},
		{name: "code block with deprecated language", in: "```\n#!javascript\ncode block\n```", want: "\n\ncode block\n"},
		{name: "inline code without space", in: "hello`world`", want: "helloworld\n"},
	})
}

func TestSlackify(t *testing.T) {
	t.Parallel()

	runCases(t, chatmd.Slackify, []conversionCase{
		{name: "simple text", in: "hello world", want: "hello world\n"},
		{name: "heading", in: "# heading 1", want: "*heading 1*\n"},
		{name: "bold", in: "**bold text**", want: "*bold text*\n"},
		{name: "italic", in: "*italic text*", want: "_italic text_\n"},
		{name: "strike", in: "~~strike text~~", want: "~strike text~\n"},
		{name: "unordered list", in: "- list\n- list", want: "•   list\n•   list\n"},
		{name: "inline code", in: "hello `world`", want: "hello `world`\n"},
		{name: "code block", in: "```go\n#!go\nfmt.Println()\n```", want: "```\nfmt.Println()\n```\n"},
		{name: "reference link", in: "[docs][d]\n\n[d]: https://example.com/docs", want: "\ndocs (https://example.com/docs)\n"},
	})
}

func TestHelloWorldInEveryDialect(t *testing.T) {
	t.Parallel()

	for _, d := range chatmd.Dialects() {
		got, err := chatmd.Convert("hello world", d)
		require.NoError(t, err)
		assert.Equal(t, "hello world\n", got, d)
	}
}

func TestBareURLWithNonASCIIPath(t *testing.T) {
	t.Parallel()

	want := "see \nhttps://ja.wikipedia.org/wiki/日本 (https://ja.wikipedia.org/wiki/%E6%97%A5%E6%9C%AC)\n now\n"
	for _, d := range chatmd.Dialects() {
		got, err := chatmd.Convert("see https://ja.wikipedia.org/wiki/日本 now", d)
		require.NoError(t, err)
		assert.Equal(t, want, got, d)
	}
}

func TestInvalidTargetsInEveryDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "image without alt and relative url", in: "![](/rel.png)", want: "\n"},
		{name: "image with alt and relative url", in: "![alt](/rel.png)", want: "alt\n"},
		{name: "image with empty url", in: "![alt]()", want: "alt\n"},
		{name: "image with title and relative url", in: `![](/rel.png "Logo")`, want: "Logo\n"},
		{name: "link with empty url", in: "[text]()", want: "text\n"},
		{name: "link without text and relative url", in: "[](/relative)", want: "\n"},
	}

	for _, d := range chatmd.Dialects() {
		for _, tt := range tests {
			got, err := chatmd.Convert(tt.in, d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "%s: %s", d, tt.name)
		}
	}
}

func TestDefinitionsNeverLeak(t *testing.T) {
	t.Parallel()

	for _, d := range chatmd.Dialects() {
		got, err := chatmd.Convert(`[unused]: http://secret.example "Secret title"`, d)
		require.NoError(t, err)
		assert.NotContains(t, got, "secret.example", d)
		assert.NotContains(t, got, "Secret title", d)
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()

	in := "# Title\n\n* [a][x]\n* ![img](http://i.example/a b.png)\n\n[x]: http://x.example \"X\"\n"
	for _, d := range chatmd.Dialects() {
		first, err := chatmd.Convert(in, d)
		require.NoError(t, err)
		for range 5 {
			again, err := chatmd.Convert(in, d)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestConcurrentConversions(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = chatmd.Chatworkify("[a]\n\n[a]: http://a.example")
		}()
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, "\na (http://a.example)\n", got)
	}
}

func TestUnknownDialect(t *testing.T) {
	t.Parallel()

	_, err := chatmd.Convert("x", chatmd.Dialect("teams"))
	require.ErrorIs(t, err, chatmd.ErrUnknownDialect)

	_, err = chatmd.ParseDialect("teams")
	require.ErrorIs(t, err, chatmd.ErrUnknownDialect)

	d, err := chatmd.ParseDialect("LineWorks")
	require.NoError(t, err)
	assert.Equal(t, chatmd.Lineworks, d)

	d, err = chatmd.ParseDialect("chat")
	require.NoError(t, err)
	assert.Equal(t, chatmd.Chatwork, d)

	out, err := chatmd.Convert("# heading 1", "chat")
	require.NoError(t, err)
	assert.Equal(t, "[info]heading 1[/info][hr]\n", out)
}

func TestConvertDocumentFrontmatter(t *testing.T) {
	t.Parallel()

	doc, err := chatmd.ConvertDocument([]byte("---\ntitle: Weekly\n---\n**hi**\n"), chatmd.Slack, chatmd.WithFrontmatter())
	require.NoError(t, err)
	assert.Equal(t, "*hi*\n", doc.Text)
	assert.Equal(t, "Weekly", doc.Metadata["title"])

	_, err = chatmd.Convert("x", chatmd.Slack, chatmd.WithExtensions("bogus"))
	require.ErrorIs(t, err, chatmd.ErrUnknownExtension)
}

func TestEmptyDocument(t *testing.T) {
	t.Parallel()

	got, err := chatmd.Slackify("")
	require.NoError(t, err)
	assert.Equal(t, "\n", got)
}

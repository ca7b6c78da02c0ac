package urlutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/euforicio/chatmd/internal/urlutil"
)

func TestIsURL(t *testing.T) {
	t.Parallel()

	valid := []string{
		"http://atlassian.com",
		"https://bitbucket.org/repo/123/images/logo.png",
		"ftp://files.example.com/a",
	}
	for _, in := range valid {
		assert.True(t, urlutil.IsURL(in), in)
	}

	invalid := []string{
		"/relative/path",
		"relative/path",
		"mailto:someone@example.com",
		"",
		"http://",
		"http://[::1",
	}
	for _, in := range invalid {
		assert.False(t, urlutil.IsURL(in), in)
	}
}

func TestIsPotentiallyEncoded(t *testing.T) {
	t.Parallel()

	assert.True(t, urlutil.IsPotentiallyEncoded("http://a.example/%E3%81%82"))
	assert.True(t, urlutil.IsPotentiallyEncoded("http://a.example/a%20b"))
	assert.False(t, urlutil.IsPotentiallyEncoded("http://a.example/100%"))
	assert.False(t, urlutil.IsPotentiallyEncoded("http://a.example/%zz"))
	assert.False(t, urlutil.IsPotentiallyEncoded("http://a.example/plain"))
}

func TestEncodeURI(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://atlassian.com", urlutil.EncodeURI("http://atlassian.com"))
	assert.Equal(t, "http://a.example/a%20b?q=1&r=2#frag", urlutil.EncodeURI("http://a.example/a b?q=1&r=2#frag"))
	assert.Equal(t, "http://a.example/%E3%81%82", urlutil.EncodeURI("http://a.example/あ"))
	assert.Equal(t, "http://a.example/50%25", urlutil.EncodeURI("http://a.example/50%"))
	assert.Equal(t, "http://a.example/%5Bx%5D", urlutil.EncodeURI("http://a.example/[x]"))
}

func TestEncodePolicy(t *testing.T) {
	t.Parallel()

	pre := "http://a.example/%E3%81%82"
	assert.Equal(t, pre, urlutil.Encode(pre, true))
	assert.Equal(t, "http://a.example/%25E3%2581%2582", urlutil.Encode(pre, false))
	assert.Equal(t, "http://a.example/a%20b", urlutil.Encode("http://a.example/a b", true))
}

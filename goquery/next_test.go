package goquery_test

import (
	"testing"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextURL(t *testing.T) {
	t.Parallel()

	const baseURL = "https://example.com/listings?page=2"

	t.Run("explicit selector takes precedence", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a rel="next" href="/listings?page=9">Next</a>
<a class="pager-next" href="/listings?page=3">More listings</a>
</body></html>`

		next, err := goquery.NextURL(html, "a.pager-next", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("selector matching wrapper finds nested anchor", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="pagination-next"><a href="/listings?page=3">Next</a></div>
</body></html>`

		next, err := goquery.NextURL(html, ".pagination-next", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("falls back to rel next anchor", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/listings?page=1">1</a>
<a rel="next" href="/listings?page=3">3</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("falls back to rel next link element", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
<link rel="next" href="https://example.com/listings?page=3">
</head><body></body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("falls back to next link text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/listings?page=1">Previous</a>
<a href="/listings?page=3">Next</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("recognizes arrow glyph link text", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/listings?page=3">»</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("link text match is case insensitive", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/listings?page=3">NEXT PAGE</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("returns empty when no next link", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a href="/about">About</a>
<a href="/contact">Contact</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Empty(t, next)
	})

	t.Run("ignores self-referential next link", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a rel="next" href="/listings?page=2">Next</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Empty(t, next)
	})

	t.Run("ignores next link on different host", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a rel="next" href="https://other.com/listings?page=3">Next</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Empty(t, next)
	})

	t.Run("ignores javascript href", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a rel="next" href="javascript:void(0)">Next</a>
</body></html>`

		next, err := goquery.NextURL(html, "", baseURL)

		require.NoError(t, err)
		assert.Empty(t, next)
	})

	t.Run("selector miss falls through to heuristics", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<a rel="next" href="/listings?page=3">3</a>
</body></html>`

		next, err := goquery.NextURL(html, ".does-not-exist", baseURL)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/listings?page=3", next)
	})

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := goquery.NextURL("<html></html>", "", "://bad")

		require.Error(t, err)
		assert.Equal(t, pagemine.EINVALID, pagemine.ErrorCode(err))
	})
}

package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/htmltomarkdown"
	pmhttp "github.com/fwojciec/pagemine/http"
	"github.com/fwojciec/pagemine/mock"
	"github.com/fwojciec/pagemine/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(opts ...pmhttp.Option) *pmhttp.Fetcher {
	return pmhttp.NewFetcher(trafilatura.NewExtractor(), htmltomarkdown.NewConverter(), opts...)
}

const listingPage = `<!DOCTYPE html>
<html>
<head><title>Houses for Sale</title></head>
<body>
<article>
<h1>Houses for Sale in Hanoi</h1>
<p>Beautiful 3-bedroom house in Tay Ho district with lake views and a private garden, asking 12 billion VND. Contact the agent for a viewing this weekend.</p>
<p>Modern apartment in Ba Dinh with two bathrooms and a balcony overlooking the park, asking 5 billion VND.</p>
</article>
</body>
</html>`

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns raw HTML and markdown", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		fetcher := newTestFetcher()
		defer fetcher.Close()

		result, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.NoError(t, err)
		assert.Equal(t, server.URL, result.URL)
		assert.Contains(t, result.HTML, "<article>")
		assert.Contains(t, result.Markdown, "Tay Ho")
		assert.Contains(t, result.Markdown, "12 billion VND")
		assert.NotContains(t, result.Markdown, "<p>")
	})

	t.Run("sends custom user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		fetcher := newTestFetcher(pmhttp.WithUserAgent("pagemine/1.0"))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.NoError(t, err)
		assert.Equal(t, "pagemine/1.0", gotUA)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		// Use a very short timeout that will expire before server responds
		fetcher := newTestFetcher(pmhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		fetcher := newTestFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		_, err := fetcher.Fetch(ctx, server.URL, pagemine.FetchOptions{})
		require.Error(t, err)
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := newTestFetcher(pmhttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page", pagemine.FetchOptions{})
		require.Error(t, err)
		assert.Equal(t, pagemine.EUNAVAILABLE, pagemine.ErrorCode(err))
	})

	t.Run("returns error for non-200 status codes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		fetcher := newTestFetcher()
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.Error(t, err)
		assert.Contains(t, pagemine.ErrorMessage(err), "404")
	})

	t.Run("follows redirects and reports the final URL", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		server := httptest.NewServer(mux)
		defer server.Close()

		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listingPage))
		})

		fetcher := newTestFetcher()
		defer fetcher.Close()

		result, err := fetcher.Fetch(context.Background(), server.URL+"/old", pagemine.FetchOptions{})
		require.NoError(t, err)
		assert.Equal(t, server.URL+"/new", result.URL)
	})

	t.Run("propagates extractor failures", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		extractor := &mock.Extractor{
			ExtractFn: func(string) (*pagemine.ExtractResult, error) {
				return nil, pagemine.Errorf(pagemine.EINTERNAL, "extraction failed")
			},
		}
		fetcher := pmhttp.NewFetcher(extractor, htmltomarkdown.NewConverter())
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.Error(t, err)
		assert.Equal(t, pagemine.EINTERNAL, pagemine.ErrorCode(err))
	})

	t.Run("propagates converter failures", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(listingPage))
		}))
		defer server.Close()

		extractor := &mock.Extractor{
			ExtractFn: func(html string) (*pagemine.ExtractResult, error) {
				return &pagemine.ExtractResult{Title: "Houses", ContentHTML: "<p>ok</p>"}, nil
			},
		}
		converter := &mock.Converter{
			ConvertFn: func(string) (string, error) {
				return "", pagemine.Errorf(pagemine.EINVALID, "bad html")
			},
		}
		fetcher := pmhttp.NewFetcher(extractor, converter)
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL, pagemine.FetchOptions{})
		require.Error(t, err)
		assert.Equal(t, pagemine.EINVALID, pagemine.ErrorCode(err))
	})
}

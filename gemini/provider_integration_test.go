//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"

	"github.com/fwojciec/pagemine/gemini"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestProvider_Extract_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	require.NoError(t, err)

	p := gemini.NewProvider(client, gemini.Config{})

	content := "Apartment in Hanoi, 3 bedrooms, $250,000.\n\nHouse in Da Nang, 5 bedrooms, $410,000."
	items, err := p.Extract(ctx, content, "Extract each property listing with title and price.", nil)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	t.Logf("extracted %d items", len(items))
}

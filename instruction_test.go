package pagemine_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pagemine"
	"github.com/stretchr/testify/assert"
)

func TestBuildInstruction(t *testing.T) {
	t.Parallel()

	t.Run("without schema", func(t *testing.T) {
		t.Parallel()
		got := pagemine.BuildInstruction("extract all listings", nil)
		assert.True(t, strings.HasPrefix(got, "extract all listings"))
		assert.Contains(t, got, "Return ONLY the JSON object/list.")
		assert.NotContains(t, got, "JSON schema")
	})

	t.Run("with schema", func(t *testing.T) {
		t.Parallel()
		schema := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
			},
		}
		got := pagemine.BuildInstruction("extract all listings", schema)
		assert.Contains(t, got, "Output must strictly follow this JSON schema:")
		assert.Contains(t, got, `"title"`)
		assert.Contains(t, got, "Return ONLY the JSON object/list.")
	})
}

package pagemine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Item is one extracted structured record: an open mapping of field names to
// scalar or nested values. Conventional fields when using the default
// instruction template include title, price, area, location, link and
// source, but only "id" carries a guarantee - every item leaving
// AssignUniqueIDs has a unique, non-empty id string.
type Item map[string]any

// ID returns the item's id field, or "" when absent or not a string.
func (it Item) ID() string {
	id, _ := it["id"].(string)
	return id
}

// Title returns the item's title field, or "" when absent or not a string.
func (it Item) Title() string {
	title, _ := it["title"].(string)
	return title
}

// maxSlugLen bounds slugs derived from titles.
const maxSlugLen = 30

var nonSlugRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)

// Slugify derives an id candidate from a title: lowercase, non-word
// characters stripped, whitespace runs collapsed to single hyphens,
// truncated to maxSlugLen runes.
func Slugify(title string) string {
	s := nonSlugRe.ReplaceAllString(title, "")
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	if runes := []rune(s); len(runes) > maxSlugLen {
		s = strings.TrimRight(string(runes[:maxSlugLen]), "-")
	}
	return s
}

// AssignUniqueIDs ensures every item carries a unique, non-empty id.
//
// Items lacking an id get one derived from their title, or a short random
// token when no title is present. Candidate ids colliding with existing
// items' ids, or with ids assigned earlier in the same call, are suffixed
// with -1, -2, ... until unique. The input slice is modified in place and
// returned; the output has exactly as many items as the input.
func AssignUniqueIDs(items []Item, existing []Item) []Item {
	seen := make(map[string]struct{}, len(existing)+len(items))
	for _, it := range existing {
		if id := it.ID(); id != "" {
			seen[id] = struct{}{}
		}
	}

	for _, it := range items {
		id := it.ID()
		if id == "" {
			if title := it.Title(); title != "" {
				id = Slugify(title)
			}
			if id == "" {
				id = uuid.NewString()[:8]
			}
		}

		base := id
		for n := 1; ; n++ {
			if _, taken := seen[id]; !taken {
				break
			}
			id = base + "-" + strconv.Itoa(n)
		}

		seen[id] = struct{}{}
		it["id"] = id
	}
	return items
}

package pagemine

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe   = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	trailingCommaRe = regexp.MustCompile(`,\s*([\]}])`)
)

// ExtractJSON recovers a JSON value from arbitrary model output text.
//
// Attempts are made in order, first success wins:
//  1. a fenced code block (optionally tagged json) is parsed as JSON; a
//     fenced block that fails to parse is a terminal EMARKDOWN failure,
//  2. the whole trimmed text is parsed as JSON,
//  3. the outermost bracketed substring is located, trailing commas before a
//     closing bracket are stripped, and the substring is parsed (ESUBSTRING
//     on failure).
//
// Empty or whitespace-only input fails with EEMPTY; input with no
// recoverable JSON structure fails with ENOJSON.
func ExtractJSON(raw string) (any, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, Errorf(EEMPTY, "empty response text")
	}

	// Models often wrap their JSON in a markdown code fence even when asked
	// not to. A present-but-broken fence is not worth second-guessing: the
	// fence is the model telling us where the JSON is.
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		var v any
		if err := json.Unmarshal([]byte(m[1]), &v); err != nil {
			return nil, Errorf(EMARKDOWN, "markdown block JSON decode error: %s", err)
		}
		return v, nil
	}

	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}

	if candidate := outerBracketed(text); candidate != "" {
		candidate = trailingCommaRe.ReplaceAllString(candidate, "$1")
		var v any
		if err := json.Unmarshal([]byte(candidate), &v); err != nil {
			return nil, Errorf(ESUBSTRING, "substring JSON decode error: %s", err)
		}
		return v, nil
	}

	return nil, Errorf(ENOJSON, "no valid JSON structure found in text")
}

// outerBracketed returns the outermost [...] or {...} substring of text,
// choosing whichever pair is the true outer container when both exist.
// It returns "" when no bracket pair is found.
func outerBracketed(text string) string {
	startList := strings.Index(text, "[")
	endList := strings.LastIndex(text, "]")
	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")

	hasList := startList != -1 && endList > startList
	hasObj := startObj != -1 && endObj > startObj

	switch {
	case hasList && startObj != -1:
		if startList < startObj && endList > endObj {
			return text[startList : endList+1] // list wraps object
		}
		if startObj < startList {
			return text[startObj : endObj+1] // object wraps list
		}
		return text[startList : endList+1]
	case hasList:
		return text[startList : endList+1]
	case hasObj:
		return text[startObj : endObj+1]
	}
	return ""
}

// payloadKind classifies a parsed JSON value for normalization.
type payloadKind int

const (
	payloadArray payloadKind = iota
	payloadObject
	payloadScalar
)

func classify(v any) payloadKind {
	switch v.(type) {
	case []any:
		return payloadArray
	case map[string]any:
		return payloadObject
	default:
		return payloadScalar
	}
}

// Normalize coerces a parsed JSON value into a flat list of items.
//
// Arrays are returned as-is. A single object is inspected for fields holding
// non-empty lists of objects: exactly one such field unwraps to it, several
// select the longest, none wraps the object itself as a one-item list.
// Scalars normalize to nil.
func Normalize(v any) []Item {
	switch classify(v) {
	case payloadArray:
		list := v.([]any)
		items := make([]Item, 0, len(list))
		for _, el := range list {
			if obj, ok := el.(map[string]any); ok {
				items = append(items, Item(obj))
			}
		}
		return items
	case payloadObject:
		obj := v.(map[string]any)
		if wrapped := longestObjectList(obj); wrapped != nil {
			return wrapped
		}
		return []Item{Item(obj)}
	default:
		return nil
	}
}

// longestObjectList returns the longest field value of obj that is a
// non-empty list of objects, or nil if no field qualifies. Length ties go to
// the lexicographically smallest key so the result does not depend on map
// iteration order.
func longestObjectList(obj map[string]any) []Item {
	var best []Item
	var bestKey string
	for key, value := range obj {
		list, ok := value.([]any)
		if !ok || len(list) == 0 {
			continue
		}
		items := make([]Item, 0, len(list))
		for _, el := range list {
			obj, ok := el.(map[string]any)
			if !ok {
				items = nil
				break
			}
			items = append(items, Item(obj))
		}
		if len(items) > len(best) || (len(items) == len(best) && len(items) > 0 && key < bestKey) {
			best = items
			bestKey = key
		}
	}
	return best
}

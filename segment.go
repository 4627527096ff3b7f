package pagemine

import (
	"log/slog"
	"regexp"
	"strings"
)

// noiseThreshold is the length at or below which a block is treated as
// boilerplate (nav remnants, footers, cookie banners) and dropped.
const noiseThreshold = 300

// SplitBlocks splits scraped markdown into blocks of at most maxChars bytes,
// suitable for inclusion in an LLM context window.
//
// When pattern is non-empty it is compiled as a regular expression and used
// as the split boundary; literal `\n` sequences in the pattern are treated as
// real newlines. An invalid pattern is logged and ignored rather than failing
// the call. Without a usable pattern the splitter falls back to heuristics:
// list-item boundaries (a newline immediately followed by "[", common in
// markdown produced from listing pages) or blank-line paragraph boundaries.
//
// Blocks of noiseThreshold bytes or fewer are dropped. Blocks above maxChars
// are repacked from their paragraphs, hard-cutting any single paragraph that
// exceeds maxChars on its own.
func SplitBlocks(text string, maxChars int, pattern string) []string {
	if text == "" {
		return nil
	}

	var raw []string

	if pattern != "" {
		// Users type the two characters `\n` to mean a newline.
		expanded := strings.ReplaceAll(pattern, `\n`, "\n")
		re, err := regexp.Compile(expanded)
		if err != nil {
			slog.Warn("invalid split pattern, falling back to heuristics",
				"pattern", pattern,
				"err", err,
			)
		} else {
			raw = re.Split(text, -1)
		}
	}

	if len(raw) == 0 {
		if strings.Contains(text, "\n[") {
			raw = splitBeforeListMarkers(text)
		} else {
			raw = strings.Split(text, "\n\n")
		}
	}

	var blocks []string
	for _, block := range raw {
		block = strings.TrimSpace(block)
		if len(block) <= noiseThreshold {
			continue
		}
		if len(block) > maxChars {
			blocks = append(blocks, repack(block, maxChars)...)
		} else {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// splitBeforeListMarkers splits at every newline that is immediately followed
// by "[", keeping the marker at the start of the following block. Go regexps
// have no lookahead, so the boundary scan is done by hand.
func splitBeforeListMarkers(text string) []string {
	var blocks []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '[' {
			blocks = append(blocks, text[start:i])
			start = i + 1
		}
	}
	return append(blocks, text[start:])
}

// repack splits an oversized block on paragraph boundaries and re-accumulates
// the pieces into chunks that stay within maxChars. A single paragraph larger
// than maxChars is hard-cut into maxChars-sized slices with no attempt to
// respect word boundaries.
func repack(block string, maxChars int) []string {
	var out []string
	var parts []string
	joined := 0 // length of strings.Join(parts, "\n\n")

	flush := func() {
		if len(parts) == 0 {
			return
		}
		if chunk := strings.TrimSpace(strings.Join(parts, "\n\n")); chunk != "" {
			out = append(out, chunk)
		}
		parts, joined = nil, 0
	}

	for _, sub := range strings.Split(block, "\n\n") {
		if sub == "" {
			continue
		}

		sep := 0
		if len(parts) > 0 {
			sep = 2
		}
		if joined+sep+len(sub) > maxChars {
			flush()
		}

		// A paragraph that cannot fit on its own gets hard-cut.
		for len(sub) > maxChars {
			out = append(out, sub[:maxChars])
			sub = sub[maxChars:]
		}
		if sub == "" {
			continue
		}

		if len(parts) > 0 {
			joined += 2
		}
		parts = append(parts, sub)
		joined += len(sub)
	}
	flush()

	return out
}

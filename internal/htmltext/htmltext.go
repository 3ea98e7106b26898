// Package htmltext turns rendered page markup into plain text for the model.
package htmltext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// rawBlockTag matches opening and closing script/style tags.
var rawBlockTag = regexp.MustCompile(`(?is)<(/?)(script|style)\b[^>]*>`)

// TypeError is returned by FromValue when the input is not text.
type TypeError struct {
	Got any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("htmltext: input must be text, got %T", e.Got)
}

// FromValue strips markup from v, which must be a string, a byte slice or a fmt.Stringer.
func FromValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return Strip(val), nil
	case []byte:
		return Strip(string(val)), nil
	case fmt.Stringer:
		return Strip(val.String()), nil
	default:
		return "", &TypeError{Got: v}
	}
}

// Strip removes script and style elements with their content, then drops every
// remaining tag and returns the text nodes concatenated in document order.
// Character references are decoded.
func Strip(markup string) string {
	markup = removeRawBlocks(markup)

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce
			return sb.String()
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

// removeRawBlocks cuts every script/style block. A block ends at a closing tag
// of its own name; tags of the other name inside it are text. Same-name openers
// nest, and when they never balance the first same-name closer ends the block.
// A block with no closer at all runs to the end of the input.
func removeRawBlocks(markup string) string {
	locs := rawBlockTag.FindAllStringSubmatchIndex(markup, -1)
	if len(locs) == 0 {
		return markup
	}

	var out bytes.Buffer
	out.Grow(len(markup))
	last := 0
	for i := 0; i < len(locs); {
		loc := locs[i]
		out.WriteString(markup[last:loc[0]])
		if isClosing(loc) {
			// stray closing tag outside any block
			last = loc[1]
			i++
			continue
		}
		end, next := blockEnd(markup, locs, i)
		if end < 0 {
			return out.String()
		}
		last, i = end, next
	}
	out.WriteString(markup[last:])
	return out.String()
}

// blockEnd returns the offset just past the closer of the block opened at
// locs[open] and the index of the first tag after it, or -1 when no closer exists.
func blockEnd(markup string, locs [][]int, open int) (int, int) {
	name := tagName(markup, locs[open])
	depth := 0
	first, firstNext := -1, -1
	for j := open; j < len(locs); j++ {
		loc := locs[j]
		if !strings.EqualFold(tagName(markup, loc), name) {
			continue
		}
		if !isClosing(loc) {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			return loc[1], j + 1
		}
		if first < 0 {
			first, firstNext = loc[1], j+1
		}
	}
	return first, firstNext
}

func isClosing(loc []int) bool { return loc[3] > loc[2] }

func tagName(markup string, loc []int) string { return markup[loc[4]:loc[5]] }

// Compact applies NFC normalisation and collapses whitespace runs. Runs that
// contain a newline become a single newline, others a single space.
func Compact(text string) string {
	text = norm.NFC.String(text)

	var sb strings.Builder
	sb.Grow(len(text))
	inSpace, sawNewline := false, false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			if r == '\n' {
				sawNewline = true
			}
			continue
		}
		if inSpace && sb.Len() > 0 {
			if sawNewline {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		inSpace, sawNewline = false, false
		sb.WriteRune(r)
	}
	return sb.String()
}

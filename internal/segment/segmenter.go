package segment

import (
	"strings"

	"github.com/codalotl/deltas/internal/token"
)

// DefaultAbbreviations are words whose trailing period does not end a sentence. Matching is case-insensitive.
var DefaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "mt", "vs", "etc", "cf", "al", "approx", "vol", "fig", "inc", "ltd", "co", "e.g", "i.e",
}

// terminals end a sentence when followed by whitespace. fullWidthTerminals end one regardless.
const (
	terminals          = ".!?…"
	fullWidthTerminals = "。！？"
)

// Segmenter builds segment trees. It is immutable and safe for concurrent use.
type Segmenter struct {
	abbreviations map[string]struct{}
}

// New returns a Segmenter using abbreviations as the exception list. A nil list means DefaultAbbreviations; an empty non-nil list disables exceptions.
func New(abbreviations []string) *Segmenter {
	if abbreviations == nil {
		abbreviations = DefaultAbbreviations
	}
	s := &Segmenter{abbreviations: make(map[string]struct{}, len(abbreviations))}
	for _, a := range abbreviations {
		s.abbreviations[strings.ToLower(strings.TrimSuffix(a, "."))] = struct{}{}
	}
	return s
}

// Segment builds the segment tree for tokens. The tree keeps a reference to tokens, which must not be modified afterward.
func (s *Segmenter) Segment(tokens []token.Token) *Tree {
	t := &Tree{Tokens: tokens}
	n := len(tokens)
	for i := 0; i < n; {
		if isSpace(tokens[i]) {
			j, newlines := spaceRun(tokens, i, n)
			if i == 0 || j == n || newlines >= 2 {
				t.Roots = append(t.Roots, t.add(i, j, Whitespace, nil))
				i = j
				continue
			}
		}
		end := paragraphEnd(tokens, i)
		t.Roots = append(t.Roots, t.add(i, end, Paragraph, s.sentences(t, i, end)))
		i = end
	}
	return t
}

func (t *Tree) add(start, end int, level Level, children []int) int {
	t.Nodes = append(t.Nodes, Segment{Start: start, End: end, Level: level, Children: children, Hash: hashTokens(t.Tokens[start:end])})
	return len(t.Nodes) - 1
}

// paragraphEnd returns the end of the paragraph starting at the non-space token i: the start of the next paragraph break or trailing whitespace run.
func paragraphEnd(tokens []token.Token, i int) int {
	n := len(tokens)
	for i < n {
		if !isSpace(tokens[i]) {
			i++
			continue
		}
		j, newlines := spaceRun(tokens, i, n)
		if newlines >= 2 || j == n {
			return i
		}
		i = j
	}
	return n
}

// sentences splits the paragraph [start, end) and returns the child ids. A paragraph always has at least one child.
func (s *Segmenter) sentences(t *Tree, start, end int) []int {
	tokens := t.Tokens
	var kids []int
	sentStart := start
	for i := start; i < end; {
		if !isPunct(tokens[i]) {
			i++
			continue
		}
		j := i
		for j < end && isPunct(tokens[j]) {
			j++
		}
		run := token.Join(tokens[i:j])
		switch {
		case strings.ContainsAny(run, terminals) && j < end && isSpace(tokens[j]) && !s.isAbbreviation(tokens, sentStart, i, run):
			k, _ := spaceRun(tokens, j, end)
			kids = append(kids, t.add(sentStart, j, Sentence, nil), t.add(j, k, Whitespace, nil))
			sentStart, i = k, k
		case strings.ContainsAny(run, fullWidthTerminals) && j < end:
			kids = append(kids, t.add(sentStart, j, Sentence, nil))
			if k, _ := spaceRun(tokens, j, end); k > j {
				kids = append(kids, t.add(j, k, Whitespace, nil))
				j = k
			}
			sentStart, i = j, j
		default:
			i = j
		}
	}
	if sentStart < end {
		kids = append(kids, t.add(sentStart, end, Sentence, nil))
	}
	return kids
}

// isAbbreviation reports whether the punctuation run at i is a lone "." following an abbreviation word in the current sentence.
func (s *Segmenter) isAbbreviation(tokens []token.Token, sentStart, i int, run string) bool {
	if run != "." || i <= sentStart {
		return false
	}
	prev := tokens[i-1]
	if prev.Kind != token.Word {
		return false
	}
	_, ok := s.abbreviations[strings.ToLower(prev.Text)]
	return ok
}

// spaceRun returns the end of the whitespace run starting at i (bounded by end) and the number of newlines in it.
func spaceRun(tokens []token.Token, i, end int) (int, int) {
	newlines := 0
	for i < end && isSpace(tokens[i]) {
		newlines += strings.Count(tokens[i].Text, "\n")
		i++
	}
	return i, newlines
}

// isSpace treats Other tokens made only of whitespace (as produced between regex matches) like Whitespace tokens.
func isSpace(t token.Token) bool {
	return t.Kind == token.Whitespace || (t.Kind == token.Other && strings.TrimSpace(t.Text) == "")
}

func isPunct(t token.Token) bool {
	return t.Kind == token.Punctuation || (t.Kind == token.Other && strings.ContainsAny(t.Text, terminals+fullWidthTerminals))
}

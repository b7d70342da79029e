package token

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
	"golang.org/x/text/cases"

	"github.com/codalotl/deltas/internal/config"
)

// wikiMarkup lists markup sequences kept whole in wikitext mode, longest first so that bold markup wins over italic markup.
var wikiMarkup = []string{"~~~~~", "~~~~", "<!--", "-->", "'''", "[[", "]]", "{{", "}}", "''", "==", "{|", "|}", "|-", "|+", "||"}

// Tokenizer splits text according to a validated config.Tokenizer. It holds no mutable state and is safe for concurrent use.
type Tokenizer struct {
	mode config.Mode
	re   *regexp.Regexp
	fold bool
}

// New returns a Tokenizer for cfg. It returns a *config.Error for an unknown mode or an invalid regex pattern.
func New(cfg config.Tokenizer) (*Tokenizer, error) {
	re, err := cfg.CompilePattern()
	if err != nil {
		return nil, err
	}
	return &Tokenizer{mode: cfg.Mode, re: re, fold: cfg.LowercaseForMatching}, nil
}

// Mode returns the tokenizer's mode.
func (tz *Tokenizer) Mode() config.Mode {
	return tz.mode
}

// Tokenize splits text into tokens. It never fails; the result covers every byte of text exactly once.
func (tz *Tokenizer) Tokenize(text string) []Token {
	if text == "" {
		return nil
	}
	b := &builder{text: text}
	switch tz.mode {
	case config.ModeRegex:
		tz.tokenizeRegex(b)
	default:
		tz.tokenizeWords(b)
	}
	if tz.fold {
		caser := cases.Fold()
		for i := range b.out {
			t := &b.out[i]
			if n := caser.String(t.Text); n != t.Text {
				t.Norm = n
			}
		}
	}
	return b.out
}

func (tz *Tokenizer) tokenizeWords(b *builder) {
	seg := words.FromString(b.text)
	for seg.Next() {
		v := seg.Value()
		if !utf8.ValidString(v) {
			b.addInvalid(v)
			continue
		}
		if tz.mode == config.ModeCJK && strings.IndexFunc(v, isCJK) >= 0 {
			b.addCJK(v)
			continue
		}
		b.add(v, classify(v))
	}
	if tz.mode == config.ModeWikitext {
		b.out = splitMarkup(b.out)
	}
}

func (tz *Tokenizer) tokenizeRegex(b *builder) {
	prev := 0
	for _, loc := range tz.re.FindAllStringIndex(b.text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		b.addRunes(b.text[prev:loc[0]])
		v := b.text[loc[0]:loc[1]]
		if utf8.ValidString(v) {
			b.addWhole(v, classify(v))
		} else {
			b.addInvalid(v)
		}
		prev = loc[1]
	}
	b.addRunes(b.text[prev:])
}

// builder accumulates tokens, tracking offsets and coalescing runs of whitespace and punctuation.
type builder struct {
	text string
	pos  int
	out  []Token
}

// add appends s, merging it into the previous token when both are whitespace or both are punctuation. Other text is split into single runes.
func (b *builder) add(s string, k Kind) {
	if k == Other {
		b.addRunes(s)
		return
	}
	if n := len(b.out); n > 0 && (k == Whitespace || k == Punctuation) && b.out[n-1].Kind == k {
		last := &b.out[n-1]
		last.Text = b.text[last.Offset : b.pos+len(s)]
		b.pos += len(s)
		return
	}
	b.addWhole(s, k)
}

// addWhole appends s as its own token.
func (b *builder) addWhole(s string, k Kind) {
	b.out = append(b.out, Token{Text: s, Kind: k, Offset: b.pos})
	b.pos += len(s)
}

// addRunes appends each rune of s as an Other token.
func (b *builder) addRunes(s string) {
	for len(s) > 0 {
		_, size := utf8.DecodeRuneInString(s)
		b.addWhole(s[:size], Other)
		s = s[size:]
	}
}

// addInvalid appends s, which contains invalid UTF-8: valid stretches are classified, each invalid byte is its own Other token.
func (b *builder) addInvalid(s string) {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size <= 1 {
			b.addWhole(s[:1], Other)
			s = s[1:]
			continue
		}
		b.add(s[:size], classify(s[:size]))
		s = s[size:]
	}
}

// addCJK splits s so that each CJK code point is its own token; the remaining runs are classified as usual.
func (b *builder) addCJK(s string) {
	start := 0
	for i, r := range s {
		if !isCJK(r) {
			continue
		}
		if start < i {
			b.add(s[start:i], classify(s[start:i]))
		}
		size := utf8.RuneLen(r)
		b.addWhole(s[i:i+size], CJK)
		start = i + size
	}
	if start < len(s) {
		b.add(s[start:], classify(s[start:]))
	}
}

// splitMarkup splits punctuation runs so that wiki markup sequences become tokens of their own.
func splitMarkup(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Kind != Punctuation || len(t.Text) < 2 {
			out = append(out, t)
			continue
		}
		s, off, plain := t.Text, t.Offset, 0
		flush := func() {
			if plain > 0 {
				out = append(out, Token{Text: s[:plain], Kind: Punctuation, Offset: off})
				s, off, plain = s[plain:], off+plain, 0
			}
		}
		for plain < len(s) {
			m := markupPrefix(s[plain:])
			if m == "" {
				_, size := utf8.DecodeRuneInString(s[plain:])
				plain += size
				continue
			}
			flush()
			out = append(out, Token{Text: m, Kind: Punctuation, Offset: off})
			s, off = s[len(m):], off+len(m)
		}
		flush()
	}
	return out
}

func markupPrefix(s string) string {
	for _, m := range wikiMarkup {
		if strings.HasPrefix(s, m) {
			return m
		}
	}
	return ""
}

// classify returns the kind of a valid UTF-8 segment produced by word segmentation.
func classify(s string) Kind {
	allSpace, allPunct := true, true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r):
			return Word
		case unicode.IsSpace(r):
			allPunct = false
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			allSpace = false
		default:
			allSpace, allPunct = false, false
		}
	}
	switch {
	case allSpace:
		return Whitespace
	case allPunct:
		return Punctuation
	default:
		return Other
	}
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

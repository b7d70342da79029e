package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token.
type Kind int

// Token kinds.
const (
	Word        Kind = iota // Letters, digits, and the connectors UAX #29 keeps inside words.
	Punctuation             // A run of punctuation or symbols.
	Whitespace              // A run of whitespace, including newlines.
	CJK                     // A single Han, Hiragana, Katakana, or Hangul code point (cjk mode only).
	Other                   // Anything else, one rune (or one invalid byte) at a time.
)

var kindNames = [...]string{"word", "punctuation", "whitespace", "cjk", "other"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes k by name, so persisted tokens stay readable and stable if kinds are reordered.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("token: invalid kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if string(b) == name {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("token: unknown kind %q", string(b))
}

// Token is an immutable slice of the input text.
type Token struct {
	Text   string `json:"text"`
	Kind   Kind   `json:"kind"`
	Offset int    `json:"offset"`         // Byte offset of Text in the input.
	Norm   string `json:"norm,omitempty"` // Match text when it differs from Text.
}

// Match returns the text used for equality.
func (t Token) Match() string {
	if t.Norm != "" {
		return t.Norm
	}
	return t.Text
}

// Key returns a string that is equal for two tokens exactly when the tokens are equal.
func (t Token) Key() string {
	return string(rune('a'+t.Kind)) + t.Match()
}

// Equal reports whether t and u have the same kind and match text.
func (t Token) Equal(u Token) bool {
	return t.Kind == u.Kind && t.Match() == u.Match()
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q@%d)", t.Kind, t.Text, t.Offset)
}

// Keys returns the equality keys of tokens.
func Keys(tokens []Token) []string {
	keys := make([]string, len(tokens))
	for i, t := range tokens {
		keys[i] = t.Key()
	}
	return keys
}

// Join concatenates token texts. For tokens produced by a single Tokenize call, this is the original text.
func Join(tokens []Token) string {
	n := 0
	for _, t := range tokens {
		n += len(t.Text)
	}
	var b strings.Builder
	b.Grow(n)
	for _, t := range tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// HasText reports whether tokens, concatenated, equal text. It does not allocate.
func HasText(tokens []Token, text string) bool {
	pos := 0
	for _, t := range tokens {
		if len(text)-pos < len(t.Text) || text[pos:pos+len(t.Text)] != t.Text {
			return false
		}
		pos += len(t.Text)
	}
	return pos == len(text)
}

// Validate checks that tokens tile a text: no empty tokens, valid kinds, and each offset equal to the running byte length of the preceding tokens.
func Validate(tokens []Token) error {
	pos := 0
	for i, t := range tokens {
		if t.Text == "" {
			return fmt.Errorf("token[%d]: empty text", i)
		}
		if t.Kind < Word || t.Kind > Other {
			return fmt.Errorf("token[%d]: invalid kind %d", i, int(t.Kind))
		}
		if t.Offset != pos {
			return fmt.Errorf("token[%d]: offset %d, want %d", i, t.Offset, pos)
		}
		pos += len(t.Text)
	}
	return nil
}

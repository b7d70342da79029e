package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codalotl/deltas/internal/config"
)

type tk struct {
	text string
	kind Kind
}

func newTokenizer(t *testing.T, cfg config.Tokenizer) *Tokenizer {
	t.Helper()
	tz, err := New(cfg)
	require.NoError(t, err)
	return tz
}

func simplify(tokens []Token) []tk {
	out := make([]tk, len(tokens))
	for i, t := range tokens {
		out[i] = tk{t.Text, t.Kind}
	}
	return out
}

func TestTokenize_Modes(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Tokenizer
		text string
		want []tk
	}{
		{
			name: "words and spaces",
			cfg:  config.Tokenizer{Mode: config.ModeWord},
			text: "the quick fox",
			want: []tk{{"the", Word}, {" ", Whitespace}, {"quick", Word}, {" ", Whitespace}, {"fox", Word}},
		},
		{
			name: "punctuation runs",
			cfg:  config.Tokenizer{Mode: config.ModeWord},
			text: "Hello, world!!",
			want: []tk{{"Hello", Word}, {",", Punctuation}, {" ", Whitespace}, {"world", Word}, {"!!", Punctuation}},
		},
		{
			name: "whitespace runs coalesce across newlines",
			cfg:  config.Tokenizer{Mode: config.ModeWord},
			text: "a  \n\n b",
			want: []tk{{"a", Word}, {"  \n\n ", Whitespace}, {"b", Word}},
		},
		{
			name: "contractions stay whole",
			cfg:  config.Tokenizer{Mode: config.ModeWord},
			text: "don't",
			want: []tk{{"don't", Word}},
		},
		{
			name: "cjk code points split",
			cfg:  config.Tokenizer{Mode: config.ModeCJK},
			text: "我爱Go语言",
			want: []tk{{"我", CJK}, {"爱", CJK}, {"Go", Word}, {"语", CJK}, {"言", CJK}},
		},
		{
			name: "hangul split, latin kept",
			cfg:  config.Tokenizer{Mode: config.ModeCJK},
			text: "안녕 hello",
			want: []tk{{"안", CJK}, {"녕", CJK}, {" ", Whitespace}, {"hello", Word}},
		},
		{
			name: "wiki links",
			cfg:  config.Tokenizer{Mode: config.ModeWikitext},
			text: "[[Link]].",
			want: []tk{{"[[", Punctuation}, {"Link", Word}, {"]]", Punctuation}, {".", Punctuation}},
		},
		{
			name: "wiki bold",
			cfg:  config.Tokenizer{Mode: config.ModeWikitext},
			text: "'''bold'''",
			want: []tk{{"'''", Punctuation}, {"bold", Word}, {"'''", Punctuation}},
		},
		{
			name: "regex gaps are single-rune other tokens",
			cfg:  config.Tokenizer{Mode: config.ModeRegex, Pattern: `[a-z]+`},
			text: "ab, cd",
			want: []tk{{"ab", Word}, {",", Other}, {" ", Other}, {"cd", Word}},
		},
		{
			name: "regex empty matches ignored",
			cfg:  config.Tokenizer{Mode: config.ModeRegex, Pattern: `x*`},
			text: "aé",
			want: []tk{{"a", Other}, {"é", Other}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTokenizer(t, tt.cfg).Tokenize(tt.text)
			assert.Equal(t, tt.want, simplify(got))
			require.NoError(t, Validate(got))
			assert.Equal(t, tt.text, Join(got))
		})
	}
}

func TestTokenize_Total(t *testing.T) {
	inputs := []string{
		"",
		"a\xffb",
		"\xfe\xff",
		"tab\there\r\nnext",
		"emoji 👍🏽 and \x00 control",
		"==Heading==\n{{cite|x}}<!-- c -->",
		"Mr. Smith went to Washington. He said \"hi.\"",
		"数字123と카나カナ",
	}
	for _, mode := range config.Modes {
		cfg := config.Tokenizer{Mode: mode}
		if mode == config.ModeRegex {
			cfg.Pattern = `\w+|\s+`
		}
		tz := newTokenizer(t, cfg)
		for _, in := range inputs {
			got := tz.Tokenize(in)
			require.NoError(t, Validate(got), "mode=%s input=%q", mode, in)
			require.Equal(t, in, Join(got), "mode=%s input=%q", mode, in)
			require.True(t, HasText(got, in))
		}
	}
}

func TestTokenize_InvalidBytes(t *testing.T) {
	got := newTokenizer(t, config.Tokenizer{Mode: config.ModeWord}).Tokenize("a\xffb")
	var invalid []Token
	for _, tok := range got {
		if tok.Text == "\xff" {
			invalid = append(invalid, tok)
		}
	}
	require.Len(t, invalid, 1)
	assert.Equal(t, Other, invalid[0].Kind)
	assert.Equal(t, 1, invalid[0].Offset)
}

func TestTokenize_LowercaseForMatching(t *testing.T) {
	tz := newTokenizer(t, config.Tokenizer{Mode: config.ModeWord, LowercaseForMatching: true})
	a := tz.Tokenize("STRASSE Hello")
	b := tz.Tokenize("straße hello")
	require.Len(t, a, 3)
	require.Len(t, b, 3)
	for i := range a {
		assert.True(t, a[i].Equal(b[i]), "%v vs %v", a[i], b[i])
		assert.Equal(t, a[i].Key(), b[i].Key())
	}
	assert.Equal(t, "hello", a[2].Norm)
	assert.Empty(t, b[2].Norm, "Norm is only set when it differs from Text")

	plain := newTokenizer(t, config.Tokenizer{Mode: config.ModeWord})
	assert.False(t, plain.Tokenize("Hello")[0].Equal(plain.Tokenize("hello")[0]))
}

func TestNew_ConfigurationErrors(t *testing.T) {
	_, err := New(config.Tokenizer{Mode: "html"})
	var cerr *config.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, config.KeyMode, cerr.Option)

	_, err = New(config.Tokenizer{Mode: config.ModeRegex, Pattern: "[a-"})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, config.KeyPattern, cerr.Option)
}

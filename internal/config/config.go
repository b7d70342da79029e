package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
)

// Mode selects how text is split into tokens.
type Mode string

// Tokenizer modes.
const (
	ModeWord     Mode = "word"     // UAX #29 word boundaries.
	ModeRegex    Mode = "regex"    // Tokens are the matches of a caller-supplied pattern.
	ModeWikitext Mode = "wikitext" // Word mode, plus wiki markup digraphs kept whole.
	ModeCJK      Mode = "cjk"      // Word mode, with each CJK code point as its own token.
)

// Modes lists every recognized mode.
var Modes = []Mode{ModeWord, ModeRegex, ModeWikitext, ModeCJK}

// ErrUnknownMode is wrapped by the *Error returned for an unrecognized tokenizer mode.
var ErrUnknownMode = errors.New("unknown tokenizer mode")

// ParseMode parses s (case-insensitive) into a Mode. "cjkaware" and "cjk_aware" are accepted as spellings of ModeCJK.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "word", "":
		return ModeWord, nil
	case "regex":
		return ModeRegex, nil
	case "wikitext":
		return ModeWikitext, nil
	case "cjk", "cjkaware", "cjk_aware":
		return ModeCJK, nil
	}
	return "", &Error{Option: KeyMode, Value: s, Err: ErrUnknownMode}
}

// Tokenizer configures tokenization.
type Tokenizer struct {
	Mode                 Mode   `json:"mode"`
	Pattern              string `json:"pattern,omitempty"`
	LowercaseForMatching bool   `json:"lowercase_for_matching"`
}

// Segmentation configures the segmenter and whether the segment matcher is used.
type Segmentation struct {
	Enabled       bool     `json:"enabled"`
	Abbreviations []string `json:"abbreviations,omitempty"` // nil means the segmenter's default list; an empty non-nil slice disables exceptions.
}

// Config is the full configuration record.
type Config struct {
	Tokenizer     Tokenizer    `json:"tokenizer"`
	Segmentation  Segmentation `json:"segmentation"`
	JunkThreshold *float64     `json:"junk_threshold,omitempty"` // nil disables the junk heuristic.
}

// Default returns the default configuration: word tokenization, segmentation on, no junk heuristic.
func Default() Config {
	return Config{
		Tokenizer:    Tokenizer{Mode: ModeWord},
		Segmentation: Segmentation{Enabled: true},
	}
}

// Validate checks every option, returning a *Error for the first invalid one.
func (c Config) Validate() error {
	if err := c.Tokenizer.Validate(); err != nil {
		return err
	}
	if t := c.JunkThreshold; t != nil {
		if math.IsNaN(*t) || *t <= 0 || *t > 1 {
			return &Error{Option: KeyJunkThreshold, Value: fmt.Sprint(*t), Err: errors.New("must be in (0, 1]")}
		}
	}
	for _, abbr := range c.Segmentation.Abbreviations {
		if abbr == "" || strings.IndexFunc(abbr, unicode.IsSpace) >= 0 {
			return &Error{Option: KeyAbbreviations, Value: abbr, Err: errors.New("abbreviations must be non-empty and contain no whitespace")}
		}
	}
	return nil
}

// Validate checks the mode and, for ModeRegex, compiles the pattern.
func (t Tokenizer) Validate() error {
	_, err := t.CompilePattern()
	return err
}

// CompilePattern validates t and returns the compiled pattern for ModeRegex (nil for other modes).
func (t Tokenizer) CompilePattern() (*regexp.Regexp, error) {
	switch t.Mode {
	case ModeWord, ModeWikitext, ModeCJK:
		return nil, nil
	case ModeRegex:
		if t.Pattern == "" {
			return nil, &Error{Option: KeyPattern, Err: errors.New("required when tokenizer.mode is regex")}
		}
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, &Error{Option: KeyPattern, Value: t.Pattern, Err: err}
		}
		return re, nil
	default:
		return nil, &Error{Option: KeyMode, Value: string(t.Mode), Err: ErrUnknownMode}
	}
}

// Fingerprint returns a short, filesystem-safe digest of the options that affect tokens and segments. Two configs with the same fingerprint produce
// identical tokens and segment trees for the same text.
func (c Config) Fingerprint() string {
	type tokenShape struct {
		Tokenizer     Tokenizer `json:"tokenizer"`
		Abbreviations []string  `json:"abbreviations"`
		Segmented     bool      `json:"segmented"`
	}
	b, err := json.Marshal(tokenShape{Tokenizer: c.Tokenizer, Abbreviations: c.Segmentation.Abbreviations, Segmented: c.Segmentation.Enabled})
	if err != nil {
		panic(err) // only plain strings and bools
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}

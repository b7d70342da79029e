// Package deltas tokenizes text, computes edit scripts between token sequences, detects moved paragraphs and sentences, and diffs long streams of
// revisions incrementally.
//
// For one-off comparisons use DiffText. For a stream of revisions of one document, use an Engine:
//
//	e, err := deltas.NewEngine(deltas.DefaultConfig())
//	for _, rev := range revisions {
//		ops := e.Process(rev)
//		...
//	}
package deltas

import (
	"log/slog"

	"github.com/codalotl/deltas/internal/config"
	"github.com/codalotl/deltas/internal/diff"
	"github.com/codalotl/deltas/internal/engine"
	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/token"
)

type (
	Config        = config.Config
	ConfigError   = config.Error
	Token         = token.Token
	Tree          = segment.Tree
	Operation     = diff.Operation
	Op            = diff.Op
	Engine        = engine.Engine
	RenderOptions = diff.RenderOptions
	Stats         = diff.Stats
	EngineOption  = engine.Option
)

const (
	OpEqual  = diff.OpEqual
	OpInsert = diff.OpInsert
	OpDelete = diff.OpDelete
)

// DefaultConfig returns the default configuration: word tokenization with segmentation.
func DefaultConfig() Config {
	return config.Default()
}

// LoadConfig loads a configuration from defaults, then the JSON file at path (skipped if path is empty or the file does not exist), then DELTAS_*
// environment variables, and validates it.
func LoadConfig(path string) (Config, error) {
	l := config.NewLoader()
	if path != "" {
		l = l.WithJSONFile(path)
	}
	return l.WithEnv(config.DefaultEnv).Load()
}

// Tokenize splits text into tokens as configured by cfg.
func Tokenize(cfg Config, text string) ([]Token, error) {
	tz, err := token.New(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	return tz.Tokenize(text), nil
}

// Segment splits tokens into paragraphs, sentences, and whitespace, using cfg's abbreviations.
func Segment(cfg Config, tokens []Token) *Tree {
	return segment.New(cfg.Segmentation.Abbreviations).Segment(tokens)
}

// Diff returns the edit script turning a into b. With segmentation enabled, moved paragraphs and sentences are reported as out-of-order Equal
// operations; otherwise the script is in order.
func Diff(cfg Config, a, b []Token) ([]Operation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := matcherOptions(cfg)
	if !cfg.Segmentation.Enabled {
		return diff.NewSequenceMatcher(opts).Diff(a, b), nil
	}
	s := segment.New(cfg.Segmentation.Abbreviations)
	return diff.NewSegmentMatcher(opts).Diff(s.Segment(a), s.Segment(b)), nil
}

// DiffText tokenizes a and b and diffs them, returning both token sequences with the script.
func DiffText(cfg Config, a, b string) (ta, tb []Token, ops []Operation, err error) {
	tz, err := token.New(cfg.Tokenizer)
	if err != nil {
		return nil, nil, nil, err
	}
	ta, tb = tz.Tokenize(a), tz.Tokenize(b)
	ops, err = Diff(cfg, ta, tb)
	if err != nil {
		return nil, nil, nil, err
	}
	return ta, tb, ops, nil
}

// NewEngine returns an Empty engine for cfg.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	return engine.New(cfg, opts...)
}

// WithLogger makes an Engine log to logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return engine.WithLogger(logger)
}

// Render returns b's text with the changes of ops marked inline.
func Render(a, b []Token, ops []Operation, opts RenderOptions) string {
	return diff.Render(a, b, ops, opts)
}

// Summarize counts what ops change.
func Summarize(a, b []Token, ops []Operation) Stats {
	return diff.Summarize(a, b, ops)
}

func matcherOptions(cfg Config) diff.Options {
	var opts diff.Options
	if cfg.JunkThreshold != nil {
		opts.JunkThreshold = *cfg.JunkThreshold
	}
	return opts
}

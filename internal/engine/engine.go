package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/codalotl/deltas/internal/config"
	"github.com/codalotl/deltas/internal/diff"
	"github.com/codalotl/deltas/internal/segment"
	"github.com/codalotl/deltas/internal/simplelogger"
	"github.com/codalotl/deltas/internal/snapshot"
	"github.com/codalotl/deltas/internal/token"
)

// Engine computes edit scripts between consecutive revisions.
type Engine struct {
	cfg       config.Config
	tokenizer *token.Tokenizer
	segmenter *segment.Segmenter // nil when segmentation is disabled
	seq       *diff.SequenceMatcher
	seg       *diff.SegmentMatcher
	logger    *slog.Logger

	// Cache of the previous revision. Zero until primed.
	primed bool
	tokens []token.Token
	tree   *segment.Tree
	hash   uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for cache events and restore failures. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an Empty engine for cfg. It returns a *config.Error if cfg is invalid.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tz, err := token.New(cfg.Tokenizer)
	if err != nil {
		return nil, err
	}
	var mopts diff.Options
	if cfg.JunkThreshold != nil {
		mopts.JunkThreshold = *cfg.JunkThreshold
	}

	e := &Engine{
		cfg:       cfg,
		tokenizer: tz,
		seq:       diff.NewSequenceMatcher(mopts),
		seg:       diff.NewSegmentMatcher(mopts),
		logger:    slog.New(slog.DiscardHandler),
	}
	if cfg.Segmentation.Enabled {
		e.segmenter = segment.New(cfg.Segmentation.Abbreviations)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Primed reports whether the engine holds a previous revision.
func (e *Engine) Primed() bool {
	return e.primed
}

// Process diffs the previous revision against text and makes text the previous revision.
func (e *Engine) Process(text string) []diff.Operation {
	h := hashText(text)
	if e.primed && h == e.hash && token.HasText(e.tokens, text) {
		return e.unchanged()
	}
	return e.process(e.tokenizer.Tokenize(text), h)
}

// ProcessContext is Process, but returns ctx.Err() without touching the cache if ctx is already done.
func (e *Engine) ProcessContext(ctx context.Context, text string) ([]diff.Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.Process(text), nil
}

// ProcessTokens is Process for an already tokenized revision. The tokens should come from a tokenizer configured like the engine's; the engine keeps
// them as its cache.
func (e *Engine) ProcessTokens(tokens []token.Token) []diff.Operation {
	h := hashText(token.Join(tokens))
	if e.primed && h == e.hash && sameTokens(e.tokens, tokens) {
		return e.unchanged()
	}
	return e.process(tokens, h)
}

func (e *Engine) unchanged() []diff.Operation {
	e.logger.Debug("revision unchanged", "tokens", len(e.tokens))
	if len(e.tokens) == 0 {
		return nil
	}
	return []diff.Operation{{Op: diff.OpEqual, A1: 0, A2: len(e.tokens), B1: 0, B2: len(e.tokens)}}
}

func (e *Engine) process(tokens []token.Token, h uint64) []diff.Operation {
	start := time.Now()

	var tree *segment.Tree
	if e.segmenter != nil {
		tree = e.segmenter.Segment(tokens)
	}

	var ops []diff.Operation
	switch {
	case !e.primed:
		if len(tokens) > 0 {
			ops = []diff.Operation{{Op: diff.OpInsert, A1: 0, A2: 0, B1: 0, B2: len(tokens)}}
		}
	case tree != nil && e.tree != nil:
		ops = e.seg.Diff(e.tree, tree)
	default:
		ops = e.seq.Diff(e.tokens, tokens)
	}

	simplelogger.Log("engine: diffed %d -> %d tokens into %d ops in %s", len(e.tokens), len(tokens), len(ops), time.Since(start))
	e.logger.Debug("revision processed", "old_tokens", len(e.tokens), "new_tokens", len(tokens), "ops", len(ops), "first", !e.primed)

	e.primed = true
	e.tokens = tokens
	e.tree = tree
	e.hash = h
	return ops
}

// Reset returns the engine to the Empty state.
func (e *Engine) Reset() {
	e.primed = false
	e.tokens = nil
	e.tree = nil
	e.hash = 0
}

// Snapshot returns the engine's cache, or false if the engine is Empty. The state shares the cache's slices, which the engine never modifies.
func (e *Engine) Snapshot() (snapshot.State, bool) {
	if !e.primed {
		return snapshot.State{}, false
	}
	st := snapshot.State{Version: snapshot.Version, Hash: e.hash, Tokens: e.tokens}
	if e.tree != nil {
		st.Nodes, st.Roots = e.tree.Nodes, e.tree.Roots
	}
	return st, true
}

// Restore primes the engine with st, as if the revision st was taken from had just been processed. The state is validated first; on error the engine
// is unchanged.
func (e *Engine) Restore(st snapshot.State) error {
	if err := st.Validate(); err != nil {
		return e.logErr(fmt.Errorf("engine: restore: %w", err))
	}
	if h := hashText(token.Join(st.Tokens)); h != st.Hash {
		return e.logErr(fmt.Errorf("engine: restore: hash %s does not match tokens (%s)", st.Key(), snapshot.HashKey(h)))
	}

	var tree *segment.Tree
	if e.segmenter != nil {
		if st.Segmented() || len(st.Tokens) == 0 {
			tree = st.Tree()
		} else {
			tree = e.segmenter.Segment(st.Tokens)
		}
	}

	e.primed = true
	e.tokens = st.Tokens
	e.tree = tree
	e.hash = st.Hash
	e.logger.Debug("cache restored", "key", st.Key(), "tokens", len(st.Tokens))
	return nil
}

// Namespace returns the snapshot namespace for this engine's configuration.
func (e *Engine) Namespace() string {
	return snapshot.Namespace(e.cfg.Fingerprint())
}

// Save stores the engine's cache in db. It is a no-op for an Empty engine.
func (e *Engine) Save(db *snapshot.DB) error {
	st, ok := e.Snapshot()
	if !ok {
		return nil
	}
	if err := db.Store(e.Namespace(), st); err != nil {
		return e.logErr(fmt.Errorf("engine: save: %w", err))
	}
	return nil
}

// Load restores the cache stored in db for the revision with text, reporting whether one was found.
func (e *Engine) Load(db *snapshot.DB, text string) (bool, error) {
	st, ok, err := db.Retrieve(e.Namespace(), snapshot.HashKey(hashText(text)))
	if err != nil {
		return false, e.logErr(fmt.Errorf("engine: load: %w", err))
	}
	if !ok {
		return false, nil
	}
	if !token.HasText(st.Tokens, text) {
		return false, nil
	}
	return true, e.Restore(st)
}

// logErr logs err and returns it.
func (e *Engine) logErr(err error) error {
	e.logger.Error(err.Error())
	return err
}

func hashText(text string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return h.Sum64()
}

func sameTokens(a, b []token.Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) || a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}

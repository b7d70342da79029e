package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Option keys.
const (
	KeyMode          = "tokenizer.mode"
	KeyPattern       = "tokenizer.pattern"
	KeyLowercase     = "tokenizer.lowercase_for_matching"
	KeySegmentation  = "segmentation.enabled"
	KeyAbbreviations = "segmentation.abbreviations"
	KeyJunkThreshold = "junk_threshold"
)

// DefaultEnv maps option keys to the environment variables read by WithEnv(DefaultEnv).
var DefaultEnv = map[string]string{
	KeyMode:          "DELTAS_TOKENIZER_MODE",
	KeyPattern:       "DELTAS_TOKENIZER_PATTERN",
	KeyLowercase:     "DELTAS_LOWERCASE_FOR_MATCHING",
	KeySegmentation:  "DELTAS_SEGMENTATION",
	KeyAbbreviations: "DELTAS_ABBREVIATIONS",
	KeyJunkThreshold: "DELTAS_JUNK_THRESHOLD",
}

// Provenance records which source last set an option.
type Provenance struct {
	SourceType       string // "default", "json_file", or "env".
	SourceIdentifier string // File path or variable name; "" for defaults.
}

// IsSet reports whether any source set the option.
func (p Provenance) IsSet() bool {
	return p.SourceType != ""
}

func (p Provenance) String() string {
	if p.SourceIdentifier == "" {
		return p.SourceType
	}
	return p.SourceType + " " + p.SourceIdentifier
}

// source supplies raw option values. Values are string, bool, float64, []string, or nil.
type source interface {
	name() string
	provenance(key string) Provenance
	values() (map[string]any, error)
}

// Loader applies configuration sources in registration order, lowest priority first. The zero value is ready to use; NewLoader exists for chaining.
type Loader struct {
	sources []source
	prov    map[string]Provenance
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// WithDefaults registers m as a source of values keyed by option key (ex: "tokenizer.mode"). Values are applied on top of Default().
func (l *Loader) WithDefaults(m map[string]any) *Loader {
	l.sources = append(l.sources, mapSource(m))
	return l
}

// WithJSONFile registers a JSON file read at load time. Keys nest as objects ({"tokenizer": {"mode": "cjk"}}) and are matched case-insensitively. A
// leading "~" expands to the home directory. A missing or empty file contributes nothing.
func (l *Loader) WithJSONFile(path string) *Loader {
	l.sources = append(l.sources, jsonFileSource(path))
	return l
}

// WithEnv registers environment variables, given as a map from option key to variable name. Unset variables contribute nothing. Abbreviations are
// comma-separated.
func (l *Loader) WithEnv(keyToVar map[string]string) *Loader {
	l.sources = append(l.sources, envSource(keyToVar))
	return l
}

// Provenance returns where the option key was last set by the most recent Load. The zero Provenance means only Default() applied.
func (l *Loader) Provenance(key string) Provenance {
	return l.prov[key]
}

// Load starts from Default(), applies every source in order, and validates the result. A validation failure is a *Error whose Source names the source
// that supplied the bad value.
func (l *Loader) Load() (Config, error) {
	cfg := Default()
	l.prov = map[string]Provenance{}

	for _, src := range l.sources {
		vals, err := src.values()
		if err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", src.name(), err)
		}
		for _, f := range fields {
			v, ok := vals[f.key]
			if !ok {
				continue
			}
			if err := f.set(&cfg, v); err != nil {
				return Config{}, &Error{Option: f.key, Value: fmt.Sprint(v), Source: src.provenance(f.key).String(), Err: err}
			}
			l.prov[f.key] = src.provenance(f.key)
		}
	}

	if err := cfg.Validate(); err != nil {
		var cerr *Error
		if errors.As(err, &cerr) && cerr.Source == "" {
			if p := l.prov[cerr.Option]; p.IsSet() {
				cerr.Source = p.String()
			}
		}
		return Config{}, err
	}
	return cfg, nil
}

type field struct {
	key string
	set func(cfg *Config, v any) error
}

var fields = []field{
	{KeyMode, func(cfg *Config, v any) error {
		s, err := asString(v)
		if err != nil {
			return err
		}
		m, err := ParseMode(s)
		if err != nil {
			return ErrUnknownMode
		}
		cfg.Tokenizer.Mode = m
		return nil
	}},
	{KeyPattern, func(cfg *Config, v any) error {
		s, err := asString(v)
		cfg.Tokenizer.Pattern = s
		return err
	}},
	{KeyLowercase, func(cfg *Config, v any) error {
		b, err := asBool(v)
		cfg.Tokenizer.LowercaseForMatching = b
		return err
	}},
	{KeySegmentation, func(cfg *Config, v any) error {
		b, err := asBool(v)
		cfg.Segmentation.Enabled = b
		return err
	}},
	{KeyAbbreviations, func(cfg *Config, v any) error {
		ss, err := asStrings(v)
		cfg.Segmentation.Abbreviations = ss
		return err
	}},
	{KeyJunkThreshold, func(cfg *Config, v any) error {
		if v == nil {
			cfg.JunkThreshold = nil
			return nil
		}
		f, err := asFloat(v)
		if err != nil {
			return err
		}
		cfg.JunkThreshold = &f
		return nil
	}},
}

type mapSource map[string]any

func (m mapSource) name() string {
	return "defaults"
}

func (m mapSource) provenance(string) Provenance {
	return Provenance{SourceType: "default"}
}

func (m mapSource) values() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out, nil
}

type jsonFileSource string

func (s jsonFileSource) name() string {
	return "json_file " + string(s)
}

func (s jsonFileSource) provenance(string) Provenance {
	return Provenance{SourceType: "json_file", SourceIdentifier: string(s)}
}

func (s jsonFileSource) values() (map[string]any, error) {
	data, err := os.ReadFile(expandPath(string(s)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.New("top-level JSON must be an object")
	}

	out := map[string]any{}
	for _, f := range fields {
		r, ok := lookupFold(root, strings.Split(f.key, "."))
		if !ok {
			continue
		}
		v, err := jsonValue(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		out[f.key] = v
	}
	return out, nil
}

// lookupFold walks path through nested objects, matching keys case-insensitively.
func lookupFold(r gjson.Result, path []string) (gjson.Result, bool) {
	for _, part := range path {
		if !r.IsObject() {
			return gjson.Result{}, false
		}
		var next gjson.Result
		found := false
		r.ForEach(func(k, v gjson.Result) bool {
			if strings.EqualFold(k.String(), part) {
				next, found = v, true
				return false
			}
			return true
		})
		if !found {
			return gjson.Result{}, false
		}
		r = next
	}
	return r, true
}

func jsonValue(r gjson.Result) (any, error) {
	switch r.Type {
	case gjson.Null:
		return nil, nil
	case gjson.True, gjson.False:
		return r.Bool(), nil
	case gjson.Number:
		return r.Float(), nil
	case gjson.String:
		return r.String(), nil
	}
	if r.IsArray() {
		var out []string
		var err error
		r.ForEach(func(_, v gjson.Result) bool {
			if v.Type != gjson.String {
				err = fmt.Errorf("array elements must be strings, got %s", v.Raw)
				return false
			}
			out = append(out, v.String())
			return true
		})
		if out == nil && err == nil {
			out = []string{}
		}
		return out, err
	}
	return nil, fmt.Errorf("unsupported JSON value %s", r.Raw)
}

type envSource map[string]string

func (s envSource) name() string {
	return "env"
}

func (s envSource) provenance(key string) Provenance {
	return Provenance{SourceType: "env", SourceIdentifier: s[key]}
}

func (s envSource) values() (map[string]any, error) {
	out := map[string]any{}
	for key, name := range s {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		if key == KeyAbbreviations {
			out[key] = splitList(v)
			continue
		}
		out[key] = v
	}
	return out, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func asString(v any) (string, error) {
	switch vv := v.(type) {
	case string:
		return vv, nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func asBool(v any) (bool, error) {
	switch vv := v.(type) {
	case bool:
		return vv, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(vv))
		if err != nil {
			return false, fmt.Errorf("expected a boolean: %w", err)
		}
		return b, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

func asFloat(v any) (float64, error) {
	switch vv := v.(type) {
	case float64:
		return vv, nil
	case int:
		return float64(vv), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(vv), 64)
		if err != nil {
			return 0, fmt.Errorf("expected a number: %w", err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func asStrings(v any) ([]string, error) {
	switch vv := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return append([]string{}, vv...), nil
	case string:
		return splitList(vv), nil
	default:
		return nil, fmt.Errorf("expected a list of strings, got %T", v)
	}
}

// expandPath expands a leading "~" to the user's home directory.
func expandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

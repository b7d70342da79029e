// Package config defines the configuration record shared by the tokenizer, segmenter, matchers, and engine, and loads it from layered sources.
//
// A Config is plain data. Validate checks it eagerly and returns a *Error naming the offending option; nothing downstream re-validates, so a Config
// that passed Validate never causes a failure mid-diff.
//
// Options (dot-separated keys, case-insensitive):
//
//	tokenizer.mode                    word | regex | wikitext | cjk
//	tokenizer.pattern                 regular expression; required when mode is regex
//	tokenizer.lowercase_for_matching  compare tokens by their Unicode case fold
//	segmentation.enabled              diff with move detection (segment matcher) instead of the plain sequence matcher
//	segmentation.abbreviations        words whose trailing '.' never ends a sentence (nil means the segmenter's default list)
//	junk_threshold                    optional fraction in (0, 1]; tokens more frequent than this in the new sequence are left out of the match index
//
// Loading: a Loader applies sources from lowest to highest priority (defaults, JSON files, environment variables) and then validates:
//
//	cfg, err := config.NewLoader().
//	    WithJSONFile("deltas.json").
//	    WithEnv(config.DefaultEnv).
//	    Load()
//
// Missing files and unset variables contribute nothing. A file that exists but is not valid JSON, or a value that cannot be coerced to the option's type,
// is an error that records the source it came from.
package config

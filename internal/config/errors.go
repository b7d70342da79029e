package config

import (
	"fmt"
	"strings"
)

// Error reports an invalid configuration option. It is returned eagerly, when a config is validated or a component is constructed, never mid-diff.
type Error struct {
	Option string // Dot-separated option key, ex: "tokenizer.pattern".
	Value  string // Offending value, if any.
	Source string // Where the value came from, ex: "env DELTAS_TOKENIZER_MODE" or "json_file /etc/deltas.json". Empty when unknown.
	Err    error  // Underlying cause.
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("config: invalid ")
	b.WriteString(e.Option)
	if e.Value != "" {
		fmt.Fprintf(&b, " %q", e.Value)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

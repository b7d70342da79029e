package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
)

const recordKind = "deltas-snapshot-v1"

// DB is a filesystem-backed State store rooted at AbsRoot.
type DB struct {
	AbsRoot string
}

type record struct {
	Kind  string `json:"kind"`
	State State  `json:"state"`
}

// Namespace returns the namespace for states produced under a configuration with the given fingerprint.
func Namespace(fingerprint string) string {
	return "deltas-engine-" + fingerprint
}

// Store writes st under (namespace, st.Key()). Writing the same state twice is a no-op; a different state with the same key replaces the old one.
func (db *DB) Store(namespace string, st State) error {
	if err := db.check(namespace); err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(record{Kind: recordKind, State: st})
	if err != nil {
		return err
	}
	var compressed bytes.Buffer
	w := brotli.NewWriterLevel(&compressed, brotli.DefaultCompression)
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	out := compressed.Bytes()

	finalPath := db.recordPath(namespace, st.Key())
	if existing, err := os.ReadFile(finalPath); err == nil && bytes.Equal(existing, out) {
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(finalPath), "snapshot-tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if _, err := tmp.Write(out); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, finalPath)
}

// Retrieve loads the state stored under (namespace, key). It returns whether a state was found; a missing record is not an error. A record that cannot
// be decoded, fails validation, or whose hash does not match key is an error.
func (db *DB) Retrieve(namespace, key string) (State, bool, error) {
	if err := db.check(namespace); err != nil {
		return State{}, false, err
	}
	if err := validateKey(key); err != nil {
		return State{}, false, err
	}

	f, err := os.Open(db.recordPath(namespace, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	defer f.Close()

	payload, err := io.ReadAll(brotli.NewReader(f))
	if err != nil {
		return State{}, false, fmt.Errorf("snapshot: decompress %s/%s: %w", namespace, key, err)
	}
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return State{}, false, fmt.Errorf("snapshot: decode %s/%s: %w", namespace, key, err)
	}
	if rec.Kind != recordKind {
		return State{}, false, fmt.Errorf("snapshot: unknown record kind %q", rec.Kind)
	}
	if rec.State.Key() != key {
		return State{}, false, fmt.Errorf("snapshot: record %s/%s holds state %s", namespace, key, rec.State.Key())
	}
	if err := rec.State.Validate(); err != nil {
		return State{}, false, err
	}
	return rec.State, true, nil
}

// Delete removes the record under (namespace, key), if present.
func (db *DB) Delete(namespace, key string) error {
	if err := db.check(namespace); err != nil {
		return err
	}
	if err := validateKey(key); err != nil {
		return err
	}
	err := os.Remove(db.recordPath(namespace, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (db *DB) check(namespace string) error {
	if db.AbsRoot == "" {
		return errors.New("snapshot: DB.AbsRoot is empty")
	}
	return validatePathSegment("namespace", namespace)
}

func (db *DB) recordPath(namespace, key string) string {
	return filepath.Join(db.AbsRoot, namespace, key[:2], key[2:])
}

func validateKey(key string) error {
	if err := validatePathSegment("key", key); err != nil {
		return err
	}
	if len(key) < 3 {
		return fmt.Errorf("snapshot: key %q is too short", key)
	}
	return nil
}

func validatePathSegment(name, s string) error {
	if s == "" {
		return fmt.Errorf("snapshot: %s is empty", name)
	}
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return fmt.Errorf("snapshot: %s %q is not a single path segment", name, s)
	}
	return nil
}

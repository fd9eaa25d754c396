package dict

import (
	_ "embed"
	"sync"

	"github.com/pdbredo/cifkit/diag"
)

// defaultDictionarySrc is the embedded fallback dictionary consulted
// per §6.4 ("An optional default-dictionary resolver (file path or
// embedded resource)") and §4.F ("Reading a file without a loaded
// dictionary loads a default dictionary; explicit load overrides.").
// It is intentionally a minimal excerpt — the core categories this
// library's own reconstruction pipeline writes — rather than the full
// ~15MB mmCIF dictionary; a caller that has the real PDBx/mmCIF
// dictionary parses it with Parse and uses that Validator instead of
// this default.
//
//go:embed default.dic
var defaultDictionarySrc []byte

var (
	defaultOnce sync.Once
	defaultVal  *Validator
	defaultErr  error
)

// Default returns the parsed embedded default dictionary, parsing it
// once and caching the result. It is shared (read-only after parse)
// across callers, consistent with §5's "two files using the same
// dictionary must each hold their own copy or the validator must be
// refcounted" — callers that need per-file mutable state (e.g. a
// different Strict setting) should call Clone.
func Default(diagCtx *diag.Context) (*Validator, error) {
	defaultOnce.Do(func() {
		defaultVal, defaultErr = Parse(defaultDictionarySrc, diagCtx)
	})
	return defaultVal, defaultErr
}

// Clone returns a shallow copy of v suitable for a caller that wants
// its own Strict flag without mutating a shared default dictionary.
// Types and Categories maps are shared (read-only in practice once a
// dictionary has finished parsing).
func (v *Validator) Clone() *Validator {
	cp := *v
	return &cp
}

// Package exercise checks learner answers for self-check exercise blocks.
//
// A Validator owns the answer map and result map of one exercise block. It is
// not safe for concurrent use; callers load it from a session store, apply one
// action and save the resulting State back.
package exercise

import (
	"fmt"
	"sort"
)

// Result is the outcome of checking a single field.
type Result int

const (
	Unknown Result = iota
	Correct
	Incorrect
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result as its lowercase name.
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name produced by MarshalText.
func (r *Result) UnmarshalText(b []byte) error {
	switch string(b) {
	case "correct":
		*r = Correct
	case "incorrect":
		*r = Incorrect
	case "unknown", "":
		*r = Unknown
	default:
		return fmt.Errorf("unknown result %q", string(b))
	}
	return nil
}

// Key maps a field ID to every accepted answer for that field.
type Key map[string][]string

// Fields returns the key's field IDs in sorted order.
func (k Key) Fields() []string {
	ids := make([]string, 0, len(k))
	for id := range k {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// State is the persisted form of a block's answers and results.
type State struct {
	Answers map[string]string `json:"answers"`
	Results map[string]Result `json:"results"`
}

// NewState returns an empty state.
func NewState() State {
	return State{
		Answers: make(map[string]string),
		Results: make(map[string]Result),
	}
}

// Checked reports whether results are present for the state.
func (s State) Checked() bool {
	return len(s.Results) > 0
}

// Result returns the result for a field, Unknown if it has not been checked.
func (s State) Result(fieldID string) Result {
	return s.Results[fieldID]
}

// Validator tracks input for one exercise block and checks it against a key.
type Validator struct {
	key        Key
	normalizer Normalizer
	state      State
}

// Option configures a Validator.
type Option func(*Validator)

// WithNormalizer replaces the default Strict normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(v *Validator) {
		if n != nil {
			v.normalizer = n
		}
	}
}

// WithState seeds the validator with previously saved state.
func WithState(s State) Option {
	return func(v *Validator) {
		v.state = s.Clone()
	}
}

// NewValidator creates a validator with an empty answer map.
func NewValidator(key Key, opts ...Option) *Validator {
	v := &Validator{
		key:        key,
		normalizer: Strict,
		state:      NewState(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetField records the latest value for a field. It never validates.
func (v *Validator) SetField(fieldID, value string) {
	v.state.Answers[fieldID] = value
}

// Answer returns the current value for a field.
func (v *Validator) Answer(fieldID string) string {
	return v.state.Answers[fieldID]
}

// Check compares every field of the key against the current answers and
// replaces the result map. Answers are left untouched.
func (v *Validator) Check() map[string]Result {
	results := make(map[string]Result, len(v.key))
	for fieldID, accepted := range v.key {
		results[fieldID] = v.checkField(v.state.Answers[fieldID], accepted)
	}
	v.state.Results = results
	return cloneResults(results)
}

func (v *Validator) checkField(answer string, accepted []string) Result {
	got := v.normalizer.Normalize(answer)
	for _, want := range accepted {
		if got == v.normalizer.Normalize(want) {
			return Correct
		}
	}
	return Incorrect
}

// Reset clears both the answer map and the result map.
func (v *Validator) Reset() {
	v.state = NewState()
}

// Results returns a copy of the current result map.
func (v *Validator) Results() map[string]Result {
	return cloneResults(v.state.Results)
}

// Score counts correct fields in the last check against the key size.
func (v *Validator) Score() (correct, total int) {
	for fieldID := range v.key {
		if v.state.Results[fieldID] == Correct {
			correct++
		}
	}
	return correct, len(v.key)
}

// State returns a copy of the validator state for persistence.
func (v *Validator) State() State {
	return v.state.Clone()
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := NewState()
	for k, val := range s.Answers {
		out.Answers[k] = val
	}
	for k, r := range s.Results {
		out.Results[k] = r
	}
	return out
}

func cloneResults(in map[string]Result) map[string]Result {
	out := make(map[string]Result, len(in))
	for k, r := range in {
		out[k] = r
	}
	return out
}

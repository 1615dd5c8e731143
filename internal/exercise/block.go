package exercise

import (
	"errors"
	"fmt"
)

// Kind is the input style of a field.
type Kind string

const (
	KindText   Kind = "text"
	KindChoice Kind = "choice"
)

// Field is one checkable input of a block.
type Field struct {
	ID      string   `yaml:"id" json:"id"`
	Prompt  string   `yaml:"prompt" json:"prompt"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
	Accept  []string `yaml:"accept" json:"-"`
	Hint    string   `yaml:"hint,omitempty" json:"hint,omitempty"`
}

// Block is a self-contained group of fields with its own check and reset.
type Block struct {
	ID           string  `yaml:"id" json:"id"`
	TopicID      string  `yaml:"topic_id" json:"topic_id"`
	Tab          string  `yaml:"tab,omitempty" json:"tab,omitempty"`
	Order        int     `yaml:"order" json:"order"`
	Title        string  `yaml:"title" json:"title"`
	Instructions string  `yaml:"instructions" json:"instructions"`
	Fields       []Field `yaml:"fields" json:"fields"`
}

// Key builds the solution key of the block.
func (b Block) Key() Key {
	key := make(Key, len(b.Fields))
	for _, f := range b.Fields {
		key[f.ID] = append([]string(nil), f.Accept...)
	}
	return key
}

// Field returns the field with the given ID.
func (b Block) Field(id string) (Field, bool) {
	for _, f := range b.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Option returns the option of a choice field that value selects, compared
// under Strict normalization.
func (f Field) Option(value string) (string, bool) {
	want := Strict.Normalize(value)
	for _, o := range f.Options {
		if Strict.Normalize(o) == want {
			return o, true
		}
	}
	return "", false
}

// Validate checks the block for authoring mistakes that a schema cannot catch.
func (b Block) Validate() error {
	if b.ID == "" {
		return errors.New("block id is required")
	}
	if len(b.Fields) == 0 {
		return fmt.Errorf("block %s has no fields", b.ID)
	}
	seen := make(map[string]bool, len(b.Fields))
	for i, f := range b.Fields {
		if f.ID == "" {
			return fmt.Errorf("block %s field %d missing id", b.ID, i)
		}
		if seen[f.ID] {
			return fmt.Errorf("block %s has duplicate field %s", b.ID, f.ID)
		}
		seen[f.ID] = true

		if len(f.Accept) == 0 {
			return fmt.Errorf("block %s field %s has no accepted answers", b.ID, f.ID)
		}
		for _, a := range f.Accept {
			if Strict.Normalize(a) == "" {
				return fmt.Errorf("block %s field %s has an empty accepted answer", b.ID, f.ID)
			}
		}

		switch f.Kind {
		case KindText:
		case KindChoice:
			if len(f.Options) < 2 {
				return fmt.Errorf("block %s field %s needs at least two options", b.ID, f.ID)
			}
			for _, a := range f.Accept {
				if _, ok := f.Option(a); !ok {
					return fmt.Errorf("block %s field %s accepts %q which is not an option", b.ID, f.ID, a)
				}
			}
		default:
			return fmt.Errorf("block %s field %s has unknown kind %q", b.ID, f.ID, f.Kind)
		}
	}
	return nil
}

package exercise_test

import (
	"testing"

	"github.com/hku-span/span2030/internal/exercise"
)

func validBlock() exercise.Block {
	return exercise.Block{
		ID:      "sustantivos-plural",
		TopicID: "1-3",
		Title:   "Formación del plural",
		Fields: []exercise.Field{
			{ID: "luz", Kind: exercise.KindText, Prompt: "la luz", Accept: []string{"luces"}},
			{ID: "intruso1", Kind: exercise.KindChoice, Options: []string{"Montaña", "Río", "Lago"}, Accept: []string{"montaña"}},
		},
	}
}

func TestBlock_Key(t *testing.T) {
	key := validBlock().Key()

	if len(key) != 2 {
		t.Fatalf("len(Key()) = %d, want 2", len(key))
	}
	if got := key["luz"]; len(got) != 1 || got[0] != "luces" {
		t.Errorf("Key()[luz] = %v, want [luces]", got)
	}
	if ids := key.Fields(); ids[0] != "intruso1" || ids[1] != "luz" {
		t.Errorf("Fields() = %v, want sorted ids", ids)
	}
}

func TestBlock_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b *exercise.Block)
		wantErr bool
	}{
		{"valid", func(b *exercise.Block) {}, false},
		{"missing id", func(b *exercise.Block) { b.ID = "" }, true},
		{"no fields", func(b *exercise.Block) { b.Fields = nil }, true},
		{"duplicate field", func(b *exercise.Block) { b.Fields[1].ID = "luz" }, true},
		{"no accepted answers", func(b *exercise.Block) { b.Fields[0].Accept = nil }, true},
		{"blank accepted answer", func(b *exercise.Block) { b.Fields[0].Accept = []string{"  "} }, true},
		{"choice answer not an option", func(b *exercise.Block) { b.Fields[1].Accept = []string{"mar"} }, true},
		{"choice with one option", func(b *exercise.Block) { b.Fields[1].Options = []string{"Montaña"} }, true},
		{"unknown kind", func(b *exercise.Block) { b.Fields[0].Kind = "essay" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBlock()
			tt.mutate(&b)
			err := b.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBlock_Field(t *testing.T) {
	b := validBlock()

	if _, ok := b.Field("luz"); !ok {
		t.Error("Field(luz) not found")
	}
	if _, ok := b.Field("nope"); ok {
		t.Error("Field(nope) should not be found")
	}
}

func TestField_Option(t *testing.T) {
	f := exercise.Field{ID: "intruso1", Kind: exercise.KindChoice, Options: []string{"Montaña", "Río", "Lago"}}

	tests := []struct {
		value  string
		want   string
		wantOK bool
	}{
		{"Montaña", "Montaña", true},
		{"  montaña ", "Montaña", true},
		{"MONTAÑA", "Montaña", true},
		{"rio", "", false},
		{"mar", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := f.Option(tt.value)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Option(%q) = %q, %v, want %q, %v", tt.value, got, ok, tt.want, tt.wantOK)
		}
	}
}

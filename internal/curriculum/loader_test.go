package curriculum_test

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
)

func TestLoad_DefaultContent(t *testing.T) {
	catalog, err := curriculum.Load(curriculum.DefaultFS())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	topics := catalog.AllTopics()
	if len(topics) != 9 {
		t.Fatalf("AllTopics() = %d topics, want 9", len(topics))
	}
	if topics[0].ID != "1-1" || topics[8].ID != "2-4" {
		t.Errorf("AllTopics() order = %s..%s, want 1-1..2-4", topics[0].ID, topics[8].ID)
	}

	course := catalog.Course()
	if len(course.Parts) != 2 {
		t.Fatalf("Parts = %d, want 2", len(course.Parts))
	}
	if len(course.Parts[0].Topics) != 5 || len(course.Parts[1].Topics) != 4 {
		t.Errorf("topics per part = %d/%d, want 5/4", len(course.Parts[0].Topics), len(course.Parts[1].Topics))
	}
}

func TestLoad_DefaultContent_PluralBlock(t *testing.T) {
	catalog, err := curriculum.Load(curriculum.DefaultFS())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	block, ok := catalog.Block("sustantivos-plural")
	if !ok {
		t.Fatal("Block(sustantivos-plural) not found")
	}
	if block.Tab != curriculum.TabPractica {
		t.Errorf("Tab = %q, want default %q", block.Tab, curriculum.TabPractica)
	}

	v := exercise.NewValidator(block.Key())
	v.SetField("luz", "luzes")
	v.SetField("bambu", "bambús")
	results := v.Check()

	if results["luz"] != exercise.Incorrect {
		t.Errorf("luz = %v, want incorrect", results["luz"])
	}
	if results["bambu"] != exercise.Correct {
		t.Errorf("bambu = %v, want correct", results["bambu"])
	}
}

func TestTopic_NumberAndIcon(t *testing.T) {
	catalog, err := curriculum.Load(curriculum.DefaultFS())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	topic, ok := catalog.Topic("2-3")
	if !ok {
		t.Fatal("Topic(2-3) not found")
	}
	if topic.Number != 3 {
		t.Errorf("Number = %d, want 3", topic.Number)
	}
	if topic.PartID != "parte-2" {
		t.Errorf("PartID = %q, want parte-2", topic.PartID)
	}
	if topic.Icon != curriculum.IconSettings {
		t.Errorf("Icon = %q, want settings", topic.Icon)
	}
}

func TestIcon_Normalized(t *testing.T) {
	tests := []struct {
		in   curriculum.Icon
		want curriculum.Icon
	}{
		{curriculum.IconBook, curriculum.IconBook},
		{curriculum.IconMessage, curriculum.IconMessage},
		{"rocket", curriculum.IconLink},
		{"", curriculum.IconLink},
	}
	for _, tt := range tests {
		if got := tt.in.Normalized(); got != tt.want {
			t.Errorf("Icon(%q).Normalized() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

const minimalCourse = `
code: TEST
parts:
  - id: parte-1
    topics:
      - id: "1-1"
        title: Morfología
        icon: settings
`

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing course",
			files:   map[string]string{},
			wantErr: "loading course",
		},
		{
			name: "topic content for unknown topic",
			files: map[string]string{
				"topics/x.yaml": "topic_id: \"9-9\"\n",
			},
			wantErr: "topic not found",
		},
		{
			name: "table row width",
			files: map[string]string{
				"topics/a.yaml": `
topic_id: "1-1"
sections:
  teoria:
    - kind: table
      columns: [A, B]
      rows:
        - [only-one]
`,
			},
			wantErr: "has 1 cells",
		},
		{
			name: "comparison needs two sides",
			files: map[string]string{
				"topics/a.yaml": `
topic_id: "1-1"
sections:
  teoria:
    - kind: comparison
      items:
        - {name: A, text: solo uno}
`,
			},
			wantErr: "needs 2 items",
		},
		{
			name: "schema violation",
			files: map[string]string{
				"exercises/a.yaml": `
blocks:
  - id: Bad_ID
    topic_id: "1-1"
    title: x
    fields:
      - id: f
        accept: [a]
`,
			},
			wantErr: "schema violations",
		},
		{
			name: "choice answer outside options",
			files: map[string]string{
				"exercises/a.yaml": `
blocks:
  - id: ok
    topic_id: "1-1"
    title: x
    fields:
      - id: f
        kind: choice
        options: [uno, dos]
        accept: [tres]
`,
			},
			wantErr: "not an option",
		},
		{
			name: "unknown tab",
			files: map[string]string{
				"exercises/a.yaml": `
blocks:
  - id: ok
    topic_id: "1-1"
    tab: numerales
    title: x
    fields:
      - id: f
        accept: [a]
`,
			},
			wantErr: "unknown tab",
		},
		{
			name: "duplicate block",
			files: map[string]string{
				"exercises/a.yaml": `
blocks:
  - id: ok
    topic_id: "1-1"
    title: x
    fields:
      - id: f
        accept: [a]
  - id: ok
    topic_id: "1-1"
    title: y
    fields:
      - id: g
        accept: [b]
`,
			},
			wantErr: "duplicate block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{}
			if tt.name != "missing course" {
				fsys["course.yaml"] = &fstest.MapFile{Data: []byte(minimalCourse)}
			}
			for name, data := range tt.files {
				fsys[name] = &fstest.MapFile{Data: []byte(data)}
			}

			_, err := curriculum.Load(fsys)
			if err == nil {
				t.Fatal("Load() should return error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_TopicNotFoundIsWrapped(t *testing.T) {
	fsys := fstest.MapFS{
		"course.yaml":   &fstest.MapFile{Data: []byte(minimalCourse)},
		"topics/x.yaml": &fstest.MapFile{Data: []byte("topic_id: \"9-9\"\n")},
	}

	_, err := curriculum.Load(fsys)
	if !errors.Is(err, curriculum.ErrTopicNotFound) {
		t.Errorf("Load() error = %v, want ErrTopicNotFound", err)
	}
}

func TestLoad_NoTopicsOrExercisesDir(t *testing.T) {
	fsys := fstest.MapFS{
		"course.yaml": &fstest.MapFile{Data: []byte(minimalCourse)},
	}

	catalog, err := curriculum.Load(fsys)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(catalog.AllTopics()) != 1 {
		t.Errorf("AllTopics() = %d, want 1", len(catalog.AllTopics()))
	}
	if len(catalog.TopicBlocks("1-1")) != 0 {
		t.Error("TopicBlocks(1-1) should be empty")
	}
}

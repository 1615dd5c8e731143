// Package curriculum loads the course syllabus, topic content and exercise
// blocks, and routes a topic and tab selection to the content to render.
package curriculum

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hku-span/span2030/internal/exercise"
)

// ErrTopicNotFound is returned for topic IDs missing from the syllabus.
var ErrTopicNotFound = errors.New("topic not found")

//go:embed content
var embedded embed.FS

// DefaultFS returns the course content compiled into the binary.
func DefaultFS() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(fmt.Sprintf("curriculum: embedded content: %v", err))
	}
	return sub
}

// Catalog is the loaded, validated course.
type Catalog struct {
	course        Course
	topics        map[string]Topic
	order         []string
	providers     map[string]ContentProvider
	blocks        map[string]exercise.Block
	blocksByTopic map[string][]exercise.Block
	mu            sync.RWMutex
}

// Load reads course.yaml, topics/*.yaml and exercises/*.yaml from fsys.
func Load(fsys fs.FS) (*Catalog, error) {
	c := &Catalog{
		topics:        make(map[string]Topic),
		providers:     make(map[string]ContentProvider),
		blocks:        make(map[string]exercise.Block),
		blocksByTopic: make(map[string][]exercise.Block),
	}

	if err := c.loadCourse(fsys); err != nil {
		return nil, fmt.Errorf("loading course: %w", err)
	}
	if err := c.loadTopics(fsys); err != nil {
		return nil, fmt.Errorf("loading topics: %w", err)
	}
	if err := c.loadExercises(fsys); err != nil {
		return nil, fmt.Errorf("loading exercises: %w", err)
	}

	slog.Info("curriculum loaded",
		"topics", len(c.topics),
		"authored", len(c.providers),
		"exercise_blocks", len(c.blocks),
	)
	return c, nil
}

// Course returns the syllabus.
func (c *Catalog) Course() Course {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.course
}

// Topic returns a topic by ID.
func (c *Catalog) Topic(id string) (Topic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.topics[id]
	return t, ok
}

// AllTopics returns every topic in syllabus order.
func (c *Catalog) AllTopics() []Topic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	topics := make([]Topic, 0, len(c.order))
	for _, id := range c.order {
		topics = append(topics, c.topics[id])
	}
	return topics
}

// Block returns an exercise block by ID.
func (c *Catalog) Block(id string) (exercise.Block, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.blocks[id]
	return b, ok
}

// TopicBlocks returns every exercise block of a topic regardless of tab.
func (c *Catalog) TopicBlocks(topicID string) []exercise.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]exercise.Block(nil), c.blocksByTopic[topicID]...)
}

func (c *Catalog) loadCourse(fsys fs.FS) error {
	data, err := fs.ReadFile(fsys, "course.yaml")
	if err != nil {
		return err
	}

	var course Course
	if err := yaml.Unmarshal(data, &course); err != nil {
		return fmt.Errorf("parse course.yaml: %w", err)
	}
	if len(course.Parts) == 0 {
		return errors.New("course.yaml declares no parts")
	}

	for pi := range course.Parts {
		part := &course.Parts[pi]
		for ti := range part.Topics {
			t := &part.Topics[ti]
			if t.ID == "" {
				return fmt.Errorf("part %s topic %d missing id", part.ID, ti)
			}
			if _, dup := c.topics[t.ID]; dup {
				return fmt.Errorf("duplicate topic %s", t.ID)
			}
			t.Icon = t.Icon.Normalized()
			t.Number = ti + 1
			t.PartID = part.ID
			c.topics[t.ID] = *t
			c.order = append(c.order, t.ID)
		}
	}

	c.course = course
	return nil
}

func (c *Catalog) loadTopics(fsys fs.FS) error {
	return walkYAML(fsys, "topics", func(name string, data []byte) error {
		var doc topicFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		if _, ok := c.topics[doc.TopicID]; !ok {
			return fmt.Errorf("%s: %w: %q", name, ErrTopicNotFound, doc.TopicID)
		}

		tabs := doc.Tabs
		if len(tabs) == 0 {
			tabs = DefaultTabs
		}
		seen := make(map[string]bool, len(tabs))
		for i := range tabs {
			if tabs[i].ID == "" {
				return fmt.Errorf("%s: tab %d missing id", name, i)
			}
			if seen[tabs[i].ID] {
				return fmt.Errorf("%s: duplicate tab %s", name, tabs[i].ID)
			}
			seen[tabs[i].ID] = true
			if tabs[i].Kind == "" {
				tabs[i].Kind = TabTheory
			}
		}
		for tabID, blocks := range doc.Sections {
			if !seen[tabID] {
				return fmt.Errorf("%s: section for unknown tab %s", name, tabID)
			}
			for i, b := range blocks {
				if err := validateContentBlock(b); err != nil {
					return fmt.Errorf("%s: section %s block %d: %w", name, tabID, i, err)
				}
			}
		}

		c.providers[doc.TopicID] = authoredContent{tabs: tabs, sections: doc.Sections}
		return nil
	})
}

func (c *Catalog) loadExercises(fsys fs.FS) error {
	schema, err := newExerciseSchema()
	if err != nil {
		return err
	}

	err = walkYAML(fsys, "exercises", func(name string, data []byte) error {
		if err := schema.validate(data); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		var doc exerciseFile
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}

		for _, b := range doc.Blocks {
			if b.Tab == "" {
				b.Tab = TabPractica
			}
			for i := range b.Fields {
				if b.Fields[i].Kind == "" {
					b.Fields[i].Kind = exercise.KindText
				}
			}
			if err := b.Validate(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if _, ok := c.topics[b.TopicID]; !ok {
				return fmt.Errorf("%s: block %s: %w: %q", name, b.ID, ErrTopicNotFound, b.TopicID)
			}
			if !hasTab(c.provider(b.TopicID).Tabs(), b.Tab) {
				return fmt.Errorf("%s: block %s targets unknown tab %s", name, b.ID, b.Tab)
			}
			if _, dup := c.blocks[b.ID]; dup {
				return fmt.Errorf("%s: duplicate block %s", name, b.ID)
			}
			c.blocks[b.ID] = b
			c.blocksByTopic[b.TopicID] = append(c.blocksByTopic[b.TopicID], b)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id := range c.blocksByTopic {
		blocks := c.blocksByTopic[id]
		sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })
	}
	return nil
}

func validateContentBlock(b ContentBlock) error {
	switch b.Kind {
	case BlockParagraph, BlockCallout:
		if b.Text == "" {
			return fmt.Errorf("%s block needs text", b.Kind)
		}
	case BlockCards, BlockList, BlockExamples:
		if len(b.Items) == 0 {
			return fmt.Errorf("%s block needs items", b.Kind)
		}
	case BlockComparison:
		if len(b.Items) != 2 {
			return fmt.Errorf("comparison block needs 2 items, has %d", len(b.Items))
		}
	case BlockTable:
		if len(b.Columns) == 0 {
			return errors.New("table block needs columns")
		}
		for i, row := range b.Rows {
			if len(row) != len(b.Columns) {
				return fmt.Errorf("table row %d has %d cells, want %d", i, len(row), len(b.Columns))
			}
		}
	default:
		return fmt.Errorf("unknown block kind %q", b.Kind)
	}
	return nil
}

func hasTab(tabs []Tab, id string) bool {
	for _, t := range tabs {
		if t.ID == id {
			return true
		}
	}
	return false
}

// walkYAML calls fn for every .yaml/.yml file under dir in lexical order.
// A missing dir is not an error.
func walkYAML(fsys fs.FS, dir string, fn func(name string, data []byte) error) error {
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if !strings.EqualFold(ext, ".yaml") && !strings.EqualFold(ext, ".yml") {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return fn(p, data)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

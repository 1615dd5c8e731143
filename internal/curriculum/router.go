package curriculum

import (
	"fmt"

	"github.com/hku-span/span2030/internal/exercise"
)

const (
	TabTeoria   = "teoria"
	TabPractica = "practica"
)

// DefaultTabs is the tab layout of topics that do not declare their own.
var DefaultTabs = []Tab{
	{ID: TabTeoria, Label: "Teoría", Kind: TabTheory, Icon: "book"},
	{ID: TabPractica, Label: "Práctica", Kind: TabPractice, Icon: "pen"},
}

// ContentProvider supplies the tabs and static content of one topic.
type ContentProvider interface {
	Tabs() []Tab
	Blocks(tabID string) []ContentBlock
}

// authoredContent is backed by a topics/<id>.yaml document.
type authoredContent struct {
	tabs     []Tab
	sections map[string][]ContentBlock
}

func (a authoredContent) Tabs() []Tab { return a.tabs }

func (a authoredContent) Blocks(tabID string) []ContentBlock { return a.sections[tabID] }

// pendingContent stands in for topics whose lessons are not written yet.
type pendingContent struct{}

func (pendingContent) Tabs() []Tab { return DefaultTabs }

func (pendingContent) Blocks(string) []ContentBlock { return nil }

// Page is a topic detail view with one selected tab.
type Page struct {
	Topic   Topic
	Tabs    []Tab
	Active  Tab
	Section Section
}

// Page resolves the content of topicID with tabID selected. An empty or unknown
// tabID selects the topic's first tab.
func (c *Catalog) Page(topicID, tabID string) (Page, error) {
	topic, ok := c.Topic(topicID)
	if !ok {
		return Page{}, fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
	}

	provider := c.provider(topicID)
	tabs := provider.Tabs()
	active := selectTab(tabs, tabID)

	section := Section{
		Tab:       active,
		Blocks:    provider.Blocks(active.ID),
		Exercises: c.Blocks(topicID, active.ID),
	}

	switch {
	case active.Kind == TabPractice && len(section.Exercises) == 0:
		section.Placeholder = "Próximamente incluiremos ejercicios para este tema."
	case active.Kind == TabTheory && len(section.Blocks) == 0 && len(section.Exercises) == 0:
		if _, authored := provider.(authoredContent); authored {
			section.Placeholder = "Contenido próximamente..."
		} else {
			section.Placeholder = fmt.Sprintf("Contenido disponible próximamente para %s.", topic.Title)
		}
	}

	return Page{
		Topic:   topic,
		Tabs:    tabs,
		Active:  active,
		Section: section,
	}, nil
}

func (c *Catalog) provider(topicID string) ContentProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if p, ok := c.providers[topicID]; ok {
		return p
	}
	return pendingContent{}
}

func selectTab(tabs []Tab, id string) Tab {
	for _, t := range tabs {
		if t.ID == id {
			return t
		}
	}
	return tabs[0]
}

// Blocks returns the exercise blocks shown on a topic tab, in authored order.
func (c *Catalog) Blocks(topicID, tabID string) []exercise.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []exercise.Block
	for _, b := range c.blocksByTopic[topicID] {
		if b.Tab == tabID {
			out = append(out, b)
		}
	}
	return out
}

package curriculum

import "github.com/hku-span/span2030/internal/exercise"

// Icon names the pictogram shown on a topic card.
type Icon string

const (
	IconBook     Icon = "book"
	IconEdit     Icon = "edit"
	IconMessage  Icon = "message"
	IconSettings Icon = "settings"
	IconLink     Icon = "link"
)

// Normalized maps unknown icons to IconLink.
func (i Icon) Normalized() Icon {
	switch i {
	case IconBook, IconEdit, IconMessage, IconSettings:
		return i
	default:
		return IconLink
	}
}

// Topic is a catalog entry for one grammar lesson.
type Topic struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        Icon   `yaml:"icon"`

	// Number is the 1-based position of the topic within its part.
	Number int    `yaml:"-"`
	PartID string `yaml:"-"`
}

// Part is one of the two thematic blocks of the course.
type Part struct {
	ID        string  `yaml:"id"`
	Title     string  `yaml:"title"`
	Subtitle  string  `yaml:"subtitle"`
	Alternate bool    `yaml:"alternate"`
	Topics    []Topic `yaml:"topics"`
}

// Course is the syllabus loaded from course.yaml.
type Course struct {
	Code        string `yaml:"code"`
	Title       string `yaml:"title"`
	Highlight   string `yaml:"highlight"`
	Tagline     string `yaml:"tagline"`
	Semester    string `yaml:"semester"`
	Institution string `yaml:"institution"`
	School      string `yaml:"school"`
	Structure   string `yaml:"structure"`
	Divider     string `yaml:"divider"`
	Quote       string `yaml:"quote"`
	Contact     struct {
		Office  string `yaml:"office"`
		Email   string `yaml:"email"`
		Website string `yaml:"website"`
	} `yaml:"contact"`
	Parts []Part `yaml:"parts"`
}

// TabKind distinguishes theory tabs from practice tabs.
type TabKind string

const (
	TabTheory   TabKind = "theory"
	TabPractice TabKind = "practice"
)

// Tab is one selectable sub-view of a topic page.
type Tab struct {
	ID    string  `yaml:"id"`
	Label string  `yaml:"label"`
	Kind  TabKind `yaml:"kind"`
	Icon  string  `yaml:"icon"`
}

// BlockKind selects how a content block is rendered.
type BlockKind string

const (
	BlockParagraph  BlockKind = "paragraph"
	BlockCallout    BlockKind = "callout"
	BlockCards      BlockKind = "cards"
	BlockTable      BlockKind = "table"
	BlockList       BlockKind = "list"
	BlockExamples   BlockKind = "examples"
	BlockComparison BlockKind = "comparison"
)

// Item is an entry of a cards, list, examples or comparison block.
type Item struct {
	Name    string `yaml:"name"`
	Text    string `yaml:"text"`
	Example string `yaml:"example"`
}

// ContentBlock is a piece of static theory content.
type ContentBlock struct {
	Kind    BlockKind  `yaml:"kind"`
	Title   string     `yaml:"title"`
	Text    string     `yaml:"text"`
	Note    string     `yaml:"note"`
	Items   []Item     `yaml:"items"`
	Columns []string   `yaml:"columns"`
	Rows    [][]string `yaml:"rows"`
}

// Section is the rendered body of one tab.
type Section struct {
	Tab       Tab
	Blocks    []ContentBlock
	Exercises []exercise.Block

	// Placeholder is set when the topic has no authored content for the tab.
	Placeholder string
}

// topicFile is the YAML structure of topics/<id>.yaml.
type topicFile struct {
	TopicID  string                    `yaml:"topic_id"`
	Tabs     []Tab                     `yaml:"tabs"`
	Sections map[string][]ContentBlock `yaml:"sections"`
}

// exerciseFile is the YAML structure of exercises/*.yaml.
type exerciseFile struct {
	Blocks []exercise.Block `yaml:"blocks"`
}

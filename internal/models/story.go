package models

// Story is a branching narrative graph
type Story struct {
	// ID is the unique identifier for the story
	ID string `json:"id" yaml:"id"`

	// Title is the display title
	Title string `json:"title" yaml:"title"`

	// InitialChapterID is where every session starts
	InitialChapterID string `json:"initial_chapter_id" yaml:"initial_chapter_id"`

	// Chapters maps chapter ID to chapter
	Chapters map[string]*Chapter `json:"chapters" yaml:"chapters"`
}

// Chapter is one node of the story graph
type Chapter struct {
	ID      string          `json:"id" yaml:"id"`
	Title   string          `json:"title" yaml:"title"`
	Text    string          `json:"text" yaml:"text"`
	Options []*ChapterOption `json:"options" yaml:"options"`

	// IsCombat marks chapters where a fight can be initiated
	IsCombat bool `json:"is_combat" yaml:"is_combat"`

	// VictoryOptionID is followed automatically when the players win a fight
	VictoryOptionID string `json:"victory_option_id,omitempty" yaml:"victory_option_id"`

	// DefeatOptionID is followed automatically when the party is wiped out
	DefeatOptionID string `json:"defeat_option_id,omitempty" yaml:"defeat_option_id"`
}

// ChapterOption is an outgoing edge of a chapter
type ChapterOption struct {
	ID              string `json:"id" yaml:"id"`
	Text            string `json:"text" yaml:"text"`
	TargetChapterID string `json:"target_chapter_id" yaml:"target"`
}

// GetChapter returns a chapter by ID, or nil
func (s *Story) GetChapter(chapterID string) *Chapter {
	if s == nil || s.Chapters == nil {
		return nil
	}
	return s.Chapters[chapterID]
}

// IsFinal reports whether the chapter has no outgoing options
func (c *Chapter) IsFinal() bool {
	return len(c.Options) == 0
}

// GetOption returns the option with the given ID, or nil
func (c *Chapter) GetOption(optionID string) *ChapterOption {
	for _, o := range c.Options {
		if o.ID == optionID {
			return o
		}
	}
	return nil
}

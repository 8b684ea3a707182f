package models

// Category classifies an encounter subject. The set is closed: exactly
// these three categories exist.
type Category string

const (
	// CategoryJunk marks disposable clutter (caches, temp files, leftovers).
	CategoryJunk Category = "junk"
	// CategoryHoard marks oversized files that eat disk space.
	CategoryHoard Category = "hoard"
	// CategoryCursed marks subjects that drain the player every round,
	// shield or not (think log files that keep growing back).
	CategoryCursed Category = "cursed"
)

// Tier is the narrative threat tier shown on the entity detail screen.
type Tier string

const (
	TierMinor     Tier = "minor"
	TierDire      Tier = "dire"
	TierNightmare Tier = "nightmare"
)

// Subject is the file-like entity being fought. It is built once per
// session by the scanner and never mutated during an encounter.
type Subject struct {
	ID         string     `yaml:"id"`   // file path or synthetic id
	Name       string     `yaml:"name"` // monster name shown to the player
	SizeBytes  int64      `yaml:"size_bytes"`
	Categories []Category `yaml:"categories"`
	Lore       string     `yaml:"lore,omitempty"`
	Sprite     string     `yaml:"sprite,omitempty"` // fixed glyph/image reference
	Tier       Tier       `yaml:"tier,omitempty"`
}

// HasCategory reports whether the subject carries the given category tag.
func (s Subject) HasCategory(c Category) bool {
	for _, have := range s.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// Outcome is the story-level result of one encounter.
type Outcome string

const (
	// OutcomeBanished means the player won and the file was dealt with.
	OutcomeBanished Outcome = "banished"
	// OutcomeSkipped means the player retreated or abandoned the fight.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSurvived means the subject won; the file lives on.
	OutcomeSurvived Outcome = "survived"
)

// Completion is the one-shot signal emitted when an encounter ends.
type Completion struct {
	EncounterID string
	Outcome     Outcome
	SizeFreed   int64 // bytes reclaimed; zero unless banished
}

// IntelReport is the enrichment returned by the file-intelligence lookup.
// It is display-only and never feeds back into combat or story rules.
type IntelReport struct {
	Analysis        string   `yaml:"analysis"`
	Tier            Tier     `yaml:"tier"`
	Recommendations []string `yaml:"recommendations"`
}

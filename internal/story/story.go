// Package story sequences encounters: it gates which encounter may be
// fought next, records one outcome per encounter, and aggregates the
// final summary. It is the only component with cross-encounter memory.
package story

import (
	"errors"
	"log"

	"github.com/tatianab/filebane/internal/models"
)

// Phase is the story progression phase.
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseScanning
	PhaseOverview
	PhaseEntityDetail
	PhaseOutcome
	PhaseSummary
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseScanning:
		return "scanning"
	case PhaseOverview:
		return "overview"
	case PhaseEntityDetail:
		return "entity_detail"
	case PhaseOutcome:
		return "outcome"
	case PhaseSummary:
		return "summary"
	}
	return "unknown"
}

// ErrDuplicateResult is returned when a result arrives for an encounter
// that already has one. The first write wins; the machine returns to the
// overview without appending.
var ErrDuplicateResult = errors.New("story: encounter already has a result")

// ErrUnknownEncounter is returned when a result names an id that is not
// part of this session.
var ErrUnknownEncounter = errors.New("story: unknown encounter id")

// Stats is the aggregate over recorded results, computed on demand.
type Stats struct {
	Banished   int
	Skipped    int
	Survived   int
	BytesFreed int64
}

// Total is the number of recorded results the stats cover.
func (s Stats) Total() int {
	return s.Banished + s.Skipped + s.Survived
}

// Machine is the story progression state machine. Transitions that are
// not valid for the current phase are silent no-ops; its methods are not
// safe for concurrent use (the caller serializes external events).
type Machine struct {
	logger *log.Logger

	phase      Phase
	encounters []models.Subject
	results    map[string]models.Outcome

	selectedID     string
	activeBattleID string
	lastOutcomeID  string
}

// NewMachine returns a machine in the intro phase. logger receives
// diagnostics (nil means the standard logger).
func NewMachine(logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.Default()
	}
	return &Machine{
		logger:  logger,
		phase:   PhaseIntro,
		results: make(map[string]models.Outcome),
	}
}

// Phase returns the current story phase.
func (m *Machine) Phase() Phase { return m.phase }

// Encounters returns the session's fixed encounter list.
func (m *Machine) Encounters() []models.Subject {
	out := make([]models.Subject, len(m.encounters))
	copy(out, m.encounters)
	return out
}

// SelectedID returns the encounter currently open in the detail view.
func (m *Machine) SelectedID() string { return m.selectedID }

// ActiveBattleID returns the encounter currently being fought.
func (m *Machine) ActiveBattleID() string { return m.activeBattleID }

// LastOutcomeID returns the encounter the outcome screen refers to.
func (m *Machine) LastOutcomeID() string { return m.lastOutcomeID }

// Result looks up the recorded outcome for an encounter.
func (m *Machine) Result(id string) (models.Outcome, bool) {
	out, ok := m.results[id]
	return out, ok
}

// AllResolved reports whether every encounter has a recorded result.
func (m *Machine) AllResolved() bool {
	return len(m.results) == len(m.encounters) && len(m.encounters) > 0
}

// Start begins the session: intro to scanning.
func (m *Machine) Start() {
	if m.phase != PhaseIntro {
		return
	}
	m.phase = PhaseScanning
}

// ScanComplete installs the session's encounter list and moves to the
// overview. The list is fixed for the session and never reordered.
func (m *Machine) ScanComplete(subjects []models.Subject) {
	if m.phase != PhaseScanning {
		return
	}
	m.encounters = make([]models.Subject, len(subjects))
	copy(m.encounters, subjects)
	m.phase = PhaseOverview
}

// Selectable reports whether the encounter at list position i may be
// fought: every encounter before it must already have a result.
func (m *Machine) Selectable(i int) bool {
	if i < 0 || i >= len(m.encounters) {
		return false
	}
	for j := 0; j < i; j++ {
		if _, ok := m.results[m.encounters[j].ID]; !ok {
			return false
		}
	}
	return true
}

// Select opens the detail view for an unlocked, unresolved encounter.
// Selecting a locked encounter is a no-op.
func (m *Machine) Select(id string) {
	if m.phase != PhaseOverview {
		return
	}
	i := m.indexOf(id)
	if i < 0 || !m.Selectable(i) {
		return
	}
	if _, done := m.results[id]; done {
		return
	}
	m.selectedID = id
	m.phase = PhaseEntityDetail
}

// Back leaves the detail view without recording anything.
func (m *Machine) Back() {
	if m.phase != PhaseEntityDetail {
		return
	}
	m.selectedID = ""
	m.phase = PhaseOverview
}

// Fight marks the selected encounter as the active battle and returns
// its subject. The battle itself runs outside this machine; ok is false
// if there is nothing to fight.
func (m *Machine) Fight() (models.Subject, bool) {
	if m.phase != PhaseEntityDetail || m.selectedID == "" {
		return models.Subject{}, false
	}
	i := m.indexOf(m.selectedID)
	if i < 0 {
		return models.Subject{}, false
	}
	m.activeBattleID = m.selectedID
	return m.encounters[i], true
}

// RecordResult records the outcome for one encounter. Exactly one result
// per id is kept: a duplicate is ignored and the machine returns to the
// overview. An unknown id records nothing and also returns to the
// overview, so a stray signal can never corrupt the results.
func (m *Machine) RecordResult(id string, out models.Outcome) error {
	if m.indexOf(id) < 0 {
		m.toOverview()
		return ErrUnknownEncounter
	}
	if _, dup := m.results[id]; dup {
		m.toOverview()
		return ErrDuplicateResult
	}
	m.results[id] = out
	m.lastOutcomeID = id
	m.activeBattleID = ""
	m.selectedID = ""
	m.phase = PhaseOutcome
	return nil
}

// Continue leaves the outcome screen: back to the overview while
// unresolved encounters remain, to the summary once none do.
func (m *Machine) Continue() {
	if m.phase != PhaseOutcome {
		return
	}
	if m.AllResolved() {
		m.phase = PhaseSummary
		return
	}
	m.phase = PhaseOverview
}

// Summary computes aggregate statistics over the recorded results. It is
// a pure function of the results map; nothing is cached.
func (m *Machine) Summary() Stats {
	var s Stats
	for _, sub := range m.encounters {
		out, ok := m.results[sub.ID]
		if !ok {
			continue
		}
		switch out {
		case models.OutcomeBanished:
			s.Banished++
			s.BytesFreed += sub.SizeBytes
		case models.OutcomeSkipped:
			s.Skipped++
		case models.OutcomeSurvived:
			s.Survived++
		}
	}
	return s
}

// Replay re-initializes the session from the same fixed encounter list —
// a fresh copy, sharing nothing mutable with the finished session — and
// returns to the intro. The retained list means the next Start can reuse
// it via ScanComplete(m.Encounters()) instead of rescanning.
func (m *Machine) Replay() {
	if m.phase != PhaseSummary {
		return
	}
	encounters := make([]models.Subject, len(m.encounters))
	copy(encounters, m.encounters)
	m.reset()
	m.encounters = encounters
}

// Exit abandons the session from any phase and resets to initial state.
func (m *Machine) Exit() {
	m.reset()
}

func (m *Machine) reset() {
	m.phase = PhaseIntro
	m.encounters = nil
	m.results = make(map[string]models.Outcome)
	m.selectedID = ""
	m.activeBattleID = ""
	m.lastOutcomeID = ""
}

func (m *Machine) toOverview() {
	m.activeBattleID = ""
	m.selectedID = ""
	if m.phase != PhaseSummary {
		m.phase = PhaseOverview
	}
}

func (m *Machine) indexOf(id string) int {
	for i, sub := range m.encounters {
		if sub.ID == id {
			return i
		}
	}
	return -1
}

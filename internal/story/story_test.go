package story

import (
	"io"
	"log"
	"testing"

	"github.com/tatianab/filebane/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testSubjects() []models.Subject {
	return []models.Subject{
		{ID: "a", Name: "A", SizeBytes: 1 << 20},
		{ID: "b", Name: "B", SizeBytes: 2 << 20},
		{ID: "c", Name: "C", SizeBytes: 3 << 20},
	}
}

func startedMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine(quietLogger())
	m.Start()
	m.ScanComplete(testSubjects())
	if m.Phase() != PhaseOverview {
		t.Fatalf("setup: phase = %s, want overview", m.Phase())
	}
	return m
}

func resolve(t *testing.T, m *Machine, id string, out models.Outcome) {
	t.Helper()
	m.Select(id)
	if _, ok := m.Fight(); !ok {
		t.Fatalf("Fight() refused for %s", id)
	}
	if err := m.RecordResult(id, out); err != nil {
		t.Fatalf("RecordResult(%s): %v", id, err)
	}
	m.Continue()
}

func TestHappyPathTransitions(t *testing.T) {
	m := NewMachine(quietLogger())
	if m.Phase() != PhaseIntro {
		t.Fatalf("initial phase = %s", m.Phase())
	}
	m.Start()
	if m.Phase() != PhaseScanning {
		t.Fatalf("after start: %s", m.Phase())
	}
	m.ScanComplete(testSubjects())
	if m.Phase() != PhaseOverview {
		t.Fatalf("after scan: %s", m.Phase())
	}

	m.Select("a")
	if m.Phase() != PhaseEntityDetail || m.SelectedID() != "a" {
		t.Fatalf("after select: phase=%s selected=%q", m.Phase(), m.SelectedID())
	}

	sub, ok := m.Fight()
	if !ok || sub.ID != "a" || m.ActiveBattleID() != "a" {
		t.Fatalf("fight: ok=%v sub=%s active=%q", ok, sub.ID, m.ActiveBattleID())
	}

	if err := m.RecordResult("a", models.OutcomeBanished); err != nil {
		t.Fatalf("record: %v", err)
	}
	if m.Phase() != PhaseOutcome || m.LastOutcomeID() != "a" {
		t.Fatalf("after record: phase=%s last=%q", m.Phase(), m.LastOutcomeID())
	}
	if m.ActiveBattleID() != "" {
		t.Error("active battle id not cleared after record")
	}

	m.Continue()
	if m.Phase() != PhaseOverview {
		t.Fatalf("after continue with unresolved encounters: %s", m.Phase())
	}
}

func TestUnlockOrder(t *testing.T) {
	m := startedMachine(t)

	// Only the first encounter is selectable at the start.
	if !m.Selectable(0) || m.Selectable(1) || m.Selectable(2) {
		t.Fatalf("initial selectability = %v %v %v", m.Selectable(0), m.Selectable(1), m.Selectable(2))
	}

	// Selecting a locked encounter is a no-op.
	m.Select("b")
	if m.Phase() != PhaseOverview || m.SelectedID() != "" {
		t.Fatalf("locked select changed state: phase=%s selected=%q", m.Phase(), m.SelectedID())
	}

	resolve(t, m, "a", models.OutcomeBanished)
	if !m.Selectable(1) || m.Selectable(2) {
		t.Fatalf("after a: selectable(1)=%v selectable(2)=%v", m.Selectable(1), m.Selectable(2))
	}

	resolve(t, m, "b", models.OutcomeSkipped)
	resolve(t, m, "c", models.OutcomeSurvived)
	if m.Phase() != PhaseSummary {
		t.Fatalf("after all resolved: %s, want summary", m.Phase())
	}
}

func TestBackRecordsNothing(t *testing.T) {
	m := startedMachine(t)
	m.Select("a")
	m.Back()
	if m.Phase() != PhaseOverview || m.SelectedID() != "" {
		t.Fatalf("after back: phase=%s selected=%q", m.Phase(), m.SelectedID())
	}
	if _, ok := m.Result("a"); ok {
		t.Error("back recorded a result")
	}
}

func TestDuplicateResultIgnored(t *testing.T) {
	m := startedMachine(t)
	resolve(t, m, "a", models.OutcomeBanished)

	err := m.RecordResult("a", models.OutcomeSurvived)
	if err != ErrDuplicateResult {
		t.Fatalf("duplicate record err = %v, want ErrDuplicateResult", err)
	}
	if out, _ := m.Result("a"); out != models.OutcomeBanished {
		t.Errorf("first write did not win: %s", out)
	}
	if m.Phase() != PhaseOverview {
		t.Errorf("phase after duplicate = %s, want overview", m.Phase())
	}
}

func TestUnknownResultRejected(t *testing.T) {
	m := startedMachine(t)
	err := m.RecordResult("nope", models.OutcomeBanished)
	if err != ErrUnknownEncounter {
		t.Fatalf("err = %v, want ErrUnknownEncounter", err)
	}
	if _, ok := m.Result("nope"); ok {
		t.Error("unknown id was recorded")
	}
}

func TestSummaryStats(t *testing.T) {
	m := startedMachine(t)
	resolve(t, m, "a", models.OutcomeBanished)
	resolve(t, m, "b", models.OutcomeSkipped)
	resolve(t, m, "c", models.OutcomeSurvived)

	s := m.Summary()
	if s.Banished != 1 || s.Skipped != 1 || s.Survived != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.Total() != 3 {
		t.Errorf("total = %d, want 3", s.Total())
	}
	if s.BytesFreed != 1<<20 {
		t.Errorf("bytes freed = %d, want %d", s.BytesFreed, 1<<20)
	}
}

func TestReplayFreshState(t *testing.T) {
	m := startedMachine(t)
	resolve(t, m, "a", models.OutcomeBanished)
	resolve(t, m, "b", models.OutcomeBanished)
	resolve(t, m, "c", models.OutcomeBanished)
	if m.Phase() != PhaseSummary {
		t.Fatalf("phase = %s", m.Phase())
	}

	m.Replay()
	if m.Phase() != PhaseIntro {
		t.Fatalf("after replay: %s, want intro", m.Phase())
	}
	if len(m.Encounters()) != 3 {
		t.Fatalf("replay lost the encounter list")
	}
	if _, ok := m.Result("a"); ok {
		t.Error("replay kept old results")
	}

	// The retained list replays the same session.
	m.Start()
	m.ScanComplete(m.Encounters())
	if !m.Selectable(0) || m.Selectable(1) {
		t.Error("unlock order not reset on replay")
	}
}

func TestExitResetsFromAnyPhase(t *testing.T) {
	m := startedMachine(t)
	m.Select("a")
	m.Fight()
	m.Exit()
	if m.Phase() != PhaseIntro {
		t.Fatalf("after exit: %s, want intro", m.Phase())
	}
	if len(m.Encounters()) != 0 || m.ActiveBattleID() != "" {
		t.Error("exit did not clear session state")
	}
}

func TestInvalidTransitionsAreNoOps(t *testing.T) {
	m := NewMachine(quietLogger())

	m.ScanComplete(testSubjects()) // not scanning yet
	if m.Phase() != PhaseIntro || len(m.Encounters()) != 0 {
		t.Error("scan complete applied in intro")
	}

	m.Select("a") // nothing to select
	m.Continue()  // not on the outcome screen
	m.Replay()    // not on the summary screen
	if m.Phase() != PhaseIntro {
		t.Errorf("phase drifted to %s", m.Phase())
	}

	m.Start()
	m.Start() // double start
	if m.Phase() != PhaseScanning {
		t.Errorf("double start: %s", m.Phase())
	}
}

func TestResolvedEncounterNotReselectable(t *testing.T) {
	m := startedMachine(t)
	resolve(t, m, "a", models.OutcomeBanished)

	m.Select("a")
	if m.Phase() != PhaseOverview {
		t.Error("resolved encounter was selectable again")
	}
}

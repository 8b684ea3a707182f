package battle

import (
	"sync"
	"time"

	"github.com/tatianab/filebane/internal/models"
)

// Result is how a battle ended, before the story layer translates it
// into an outcome tag.
type Result int

const (
	ResultWon Result = iota
	ResultLost
	ResultAbandoned
)

func (r Result) String() string {
	switch r {
	case ResultWon:
		return "won"
	case ResultLost:
		return "lost"
	case ResultAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// Delays between staged sub-steps. The settle delay gives the attack
// animation room to play before the subject responds; the banner delay
// keeps the result banner on screen before the completion signal fires.
const (
	settleDelay     = 750 * time.Millisecond
	enemyPreDelay   = 600 * time.Millisecond
	curseDelay      = 500 * time.Millisecond
	turnReturnDelay = 400 * time.Millisecond
	bannerDelay     = 1200 * time.Millisecond
)

// Event is the closed set of signals the orchestrator emits for the
// presentation layer.
type Event interface {
	battleEvent()
}

// PhaseChanged reports a battle phase transition.
type PhaseChanged struct {
	From, To Phase
}

// DamageDealt reports one damage application, for floating combat text.
type DamageDealt struct {
	Damage    Damage
	PlayerHP  int
	SubjectHP int
}

// Completed is the one-shot end-of-encounter signal.
type Completed struct {
	EncounterID string
	Result      Result
	SizeFreed   int64 // subject bytes if won, zero otherwise
}

func (PhaseChanged) battleEvent() {}
func (DamageDealt) battleEvent()  {}
func (Completed) battleEvent()    {}

// Orchestrator owns one battle for its whole lifetime. It gates input,
// sequences the timed sub-steps of each round, and guarantees exactly one
// completion signal. It is safe for concurrent use, but each battle has a
// single logical thread of control: at most one action or sub-step
// sequence is ever in flight.
//
// The notify callback must not call back into the orchestrator.
type Orchestrator struct {
	mu        sync.Mutex
	clock     Clock
	subject   models.Subject
	state     State
	notify    func(Event)
	timer     Timer
	gen       int // bumped on Cancel; stale timer callbacks check it
	resolving bool
	completed bool
}

// NewOrchestrator starts a fresh battle against sub. notify receives all
// emitted events; pass nil to discard them.
func NewOrchestrator(sub models.Subject, clock Clock, notify func(Event)) *Orchestrator {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Orchestrator{
		clock:   clock,
		subject: sub,
		state:   NewState(sub),
		notify:  notify,
	}
}

// Subject returns the encounter subject this battle is against.
func (o *Orchestrator) Subject() models.Subject {
	return o.subject
}

// State returns a snapshot of the current battle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submit offers one player action. It is a no-op unless the battle is in
// the player's turn with nothing already resolving; rejected submissions
// change nothing and emit nothing.
func (o *Orchestrator) Submit(a ActionKind) {
	o.mu.Lock()
	if o.resolving || o.completed || o.state.Phase != PhasePlayerTurn {
		o.mu.Unlock()
		return
	}

	next, hits := Apply(o.state, a)
	if next == o.state && len(hits) == 0 {
		// Rejected by the reducer (e.g. special without resource).
		o.mu.Unlock()
		return
	}

	prev := o.state.Phase
	o.state = next
	o.resolving = true

	var evs []Event
	if next.Abandoned {
		evs = o.finishLocked(ResultAbandoned, evs)
		o.mu.Unlock()
		o.emit(evs)
		return
	}

	evs = append(evs, PhaseChanged{From: prev, To: next.Phase})
	evs = appendDamage(evs, next, hits)

	switch {
	case next.Phase == PhaseWon:
		o.scheduleLocked(bannerDelay, o.finishStep(ResultWon))
	default:
		o.scheduleLocked(settleDelay, o.enemyTurnStep)
	}
	o.mu.Unlock()
	o.emit(evs)
}

// Cancel aborts the battle: all pending sub-steps are dropped and no
// completion signal will ever fire. Used on UI teardown.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	o.completed = true
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

// scheduleLocked arms the next sub-step. Caller holds o.mu. The callback
// re-checks the generation so a Cancel between arming and firing wins.
func (o *Orchestrator) scheduleLocked(d time.Duration, step func() []Event) {
	gen := o.gen
	o.timer = o.clock.AfterFunc(d, func() {
		o.mu.Lock()
		if gen != o.gen {
			o.mu.Unlock()
			return
		}
		evs := step()
		o.mu.Unlock()
		o.emit(evs)
	})
}

// enemyTurnStep moves into the enemy turn and arms its first sub-step.
// Runs under o.mu.
func (o *Orchestrator) enemyTurnStep() []Event {
	if o.state.Phase.Terminal() {
		return nil
	}
	prev := o.state.Phase
	o.state.Phase = PhaseEnemyTurn
	o.scheduleLocked(enemyPreDelay, o.enemyStrikeStep)
	return []Event{PhaseChanged{From: prev, To: PhaseEnemyTurn}}
}

// enemyStrikeStep resolves the subject's primary attack. Runs under o.mu.
func (o *Orchestrator) enemyStrikeStep() []Event {
	next, hits := enemyStrike(o.state)
	prev := o.state.Phase
	o.state = next

	var evs []Event
	evs = appendDamage(evs, next, hits)

	switch {
	case next.Phase == PhaseLost:
		evs = append(evs, PhaseChanged{From: prev, To: PhaseLost})
		o.scheduleLocked(bannerDelay, o.finishStep(ResultLost))
	case next.Cursed:
		o.scheduleLocked(curseDelay, o.curseStep)
	default:
		o.scheduleLocked(turnReturnDelay, o.playerTurnStep)
	}
	return evs
}

// curseStep applies the cursed drain after the main enemy action. It can
// independently lose the battle. Runs under o.mu.
func (o *Orchestrator) curseStep() []Event {
	next, hits := curseDrain(o.state)
	prev := o.state.Phase
	o.state = next

	var evs []Event
	evs = appendDamage(evs, next, hits)

	if next.Phase == PhaseLost {
		evs = append(evs, PhaseChanged{From: prev, To: PhaseLost})
		o.scheduleLocked(bannerDelay, o.finishStep(ResultLost))
		return evs
	}
	o.scheduleLocked(turnReturnDelay, o.playerTurnStep)
	return evs
}

// playerTurnStep hands control back to the player. Runs under o.mu.
func (o *Orchestrator) playerTurnStep() []Event {
	if o.state.Phase.Terminal() {
		return nil
	}
	prev := o.state.Phase
	o.state.Phase = PhasePlayerTurn
	o.resolving = false
	return []Event{PhaseChanged{From: prev, To: PhasePlayerTurn}}
}

// finishStep returns a sub-step that fires the completion signal.
func (o *Orchestrator) finishStep(r Result) func() []Event {
	return func() []Event {
		return o.finishLocked(r, nil)
	}
}

// finishLocked appends the one-shot completion event. Idempotent: a
// second call for the same encounter appends nothing. Runs under o.mu.
func (o *Orchestrator) finishLocked(r Result, evs []Event) []Event {
	if o.completed {
		return evs
	}
	o.completed = true
	var freed int64
	if r == ResultWon {
		freed = o.subject.SizeBytes
	}
	return append(evs, Completed{
		EncounterID: o.subject.ID,
		Result:      r,
		SizeFreed:   freed,
	})
}

func (o *Orchestrator) emit(evs []Event) {
	for _, ev := range evs {
		o.notify(ev)
	}
}

func appendDamage(evs []Event, s State, hits []Damage) []Event {
	for _, h := range hits {
		evs = append(evs, DamageDealt{Damage: h, PlayerHP: s.PlayerHP, SubjectHP: s.SubjectHP})
	}
	return evs
}

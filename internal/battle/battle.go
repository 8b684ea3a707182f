// Package battle implements the turn-based combat core: a pure reducer
// over immutable state snapshots, plus the orchestrator that sequences
// timed sub-steps around it.
package battle

import "github.com/tatianab/filebane/internal/models"

// Combat rule constants. These numbers are the game balance; changing
// them changes every fight.
const (
	MaxPlayerHP   = 100
	MaxResource   = 100
	StrikeDamage  = 20
	SpecialDamage = 50
	SpecialCost   = 30
	EnemyDamage   = 15
	CurseDrain    = 10
)

// Phase is the battle state machine phase. Won and Lost are terminal.
type Phase int

const (
	PhasePlayerTurn Phase = iota
	PhaseResolving
	PhaseEnemyTurn
	PhaseWon
	PhaseLost
)

func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseResolving:
		return "resolving"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseWon:
		return "won"
	case PhaseLost:
		return "lost"
	}
	return "unknown"
}

// Terminal reports whether no further actions are accepted in this phase.
func (p Phase) Terminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// ActionKind is the closed set of player actions.
type ActionKind int

const (
	ActionStrike ActionKind = iota
	ActionSpecial
	ActionShield
	ActionRetreat
)

func (a ActionKind) String() string {
	switch a {
	case ActionStrike:
		return "strike"
	case ActionSpecial:
		return "special"
	case ActionShield:
		return "shield"
	case ActionRetreat:
		return "retreat"
	}
	return "unknown"
}

// Target identifies which side a damage amount landed on.
type Target int

const (
	TargetSubject Target = iota
	TargetPlayer
)

// Damage is a per-application damage record, consumed by the presentation
// layer for floating combat text. Blocked damage carries Amount 0.
type Damage struct {
	Target  Target
	Amount  int
	Blocked bool
}

// State is one immutable snapshot of a battle. Transitions return a new
// value; nothing mutates a State in place.
type State struct {
	Phase          Phase
	PlayerHP       int
	PlayerResource int
	SubjectHP      int
	SubjectHPMax   int
	ShieldActive   bool
	Cursed         bool // derived once from the subject's categories
	Abandoned      bool // set by retreat; bypasses win/lose
}

// SubjectHitPoints derives a subject's max HP from its byte size:
// 10 HP per MiB, floored at 20 and capped at 200.
func SubjectHitPoints(sizeBytes int64) int {
	hp := int(sizeBytes/(1<<20)) * 10
	if hp < 20 {
		hp = 20
	}
	if hp > 200 {
		hp = 200
	}
	return hp
}

// NewState builds the initial battle state for a subject.
func NewState(sub models.Subject) State {
	hp := SubjectHitPoints(sub.SizeBytes)
	return State{
		Phase:          PhasePlayerTurn,
		PlayerHP:       MaxPlayerHP,
		PlayerResource: MaxResource,
		SubjectHP:      hp,
		SubjectHPMax:   hp,
		Cursed:         sub.HasCategory(models.CategoryCursed),
	}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// Apply dispatches one player action against a state snapshot and returns
// the next snapshot plus any damage applications. Invalid actions (wrong
// phase, insufficient resource) return the input unchanged with no
// events: the caller sees "nothing happened".
//
// Ordering matters: the primary effect is applied and clamped, the
// terminal condition checked, before anything else. A kill short-circuits
// everything downstream.
func Apply(s State, a ActionKind) (State, []Damage) {
	if s.Phase != PhasePlayerTurn || s.Abandoned {
		return s, nil
	}

	switch a {
	case ActionStrike:
		return playerHit(s, StrikeDamage, 0)

	case ActionSpecial:
		if s.PlayerResource < SpecialCost {
			return s, nil
		}
		return playerHit(s, SpecialDamage, SpecialCost)

	case ActionShield:
		s.ShieldActive = true
		s.Phase = PhaseResolving
		return s, nil

	case ActionRetreat:
		s.Abandoned = true
		return s, nil
	}
	return s, nil
}

func playerHit(s State, dmg, cost int) (State, []Damage) {
	s.PlayerResource = clamp(s.PlayerResource-cost, MaxResource)
	s.SubjectHP = clamp(s.SubjectHP-dmg, s.SubjectHPMax)
	if s.SubjectHP == 0 {
		s.Phase = PhaseWon
	} else {
		s.Phase = PhaseResolving
	}
	return s, []Damage{{Target: TargetSubject, Amount: dmg}}
}

// enemyStrike resolves the subject's primary attack. The shield is always
// consumed if active, whether or not it had anything to block.
func enemyStrike(s State) (State, []Damage) {
	if s.Phase.Terminal() {
		return s, nil
	}
	if s.ShieldActive {
		s.ShieldActive = false
		return s, []Damage{{Target: TargetPlayer, Amount: 0, Blocked: true}}
	}
	s.PlayerHP = clamp(s.PlayerHP-EnemyDamage, MaxPlayerHP)
	if s.PlayerHP == 0 {
		s.Phase = PhaseLost
	}
	return s, []Damage{{Target: TargetPlayer, Amount: EnemyDamage}}
}

// curseDrain resolves the cursed category's per-round drain. It ignores
// the shield and can kill on its own.
func curseDrain(s State) (State, []Damage) {
	if s.Phase.Terminal() || !s.Cursed {
		return s, nil
	}
	s.PlayerHP = clamp(s.PlayerHP-CurseDrain, MaxPlayerHP)
	if s.PlayerHP == 0 {
		s.Phase = PhaseLost
	}
	return s, []Damage{{Target: TargetPlayer, Amount: CurseDrain}}
}

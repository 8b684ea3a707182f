package story

import (
	"errors"
	"log"

	"github.com/tatianab/filebane/internal/battle"
	"github.com/tatianab/filebane/internal/models"
)

// ErrNoEncounterID is returned when a completion signal arrives without
// an encounter id. The bridge requires the id to be explicit: recording
// against a guessed encounter would be worse than dropping the signal.
var ErrNoEncounterID = errors.New("story: completion signal carries no encounter id")

// Bridge translates battle completion signals into story outcomes and
// records them. It is the only path from a finished battle into the
// results map.
type Bridge struct {
	machine *Machine
	logger  *log.Logger
	sinks   []func(models.Completion)
}

// NewBridge wires a bridge to the machine. Each sink receives the
// translated completion after it has been recorded (e.g. the progress
// store); sinks are skipped for duplicates and unresolvable signals.
func NewBridge(m *Machine, logger *log.Logger, sinks ...func(models.Completion)) *Bridge {
	if logger == nil {
		logger = log.Default()
	}
	return &Bridge{machine: m, logger: logger, sinks: sinks}
}

// OutcomeForResult maps how a battle ended onto the story outcome tag.
func OutcomeForResult(r battle.Result) models.Outcome {
	switch r {
	case battle.ResultWon:
		return models.OutcomeBanished
	case battle.ResultLost:
		return models.OutcomeSurvived
	}
	return models.OutcomeSkipped
}

// Resolve records one battle completion. Unresolvable or duplicate
// signals are logged and dropped; the machine is left on the overview
// either way, never with a corrupted results map.
func (b *Bridge) Resolve(c battle.Completed) error {
	if c.EncounterID == "" {
		b.logger.Printf("story: dropping completion with no encounter id (result=%s)", c.Result)
		return ErrNoEncounterID
	}

	out := OutcomeForResult(c.Result)
	if err := b.machine.RecordResult(c.EncounterID, out); err != nil {
		b.logger.Printf("story: completion for %q not recorded: %v", c.EncounterID, err)
		return err
	}

	comp := models.Completion{
		EncounterID: c.EncounterID,
		Outcome:     out,
		SizeFreed:   c.SizeFreed,
	}
	for _, sink := range b.sinks {
		sink(comp)
	}
	return nil
}

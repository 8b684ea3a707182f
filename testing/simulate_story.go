// Command simulate_story plays a full Story Mode session headlessly on a
// virtual clock: scan, fight every encounter with a naive policy, print
// the summary. Useful for eyeballing game balance without the TUI.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/tatianab/filebane/internal/battle"
	"github.com/tatianab/filebane/internal/scan"
	"github.com/tatianab/filebane/internal/story"
)

const maxRounds = 50

func main() {
	machine := story.NewMachine(nil)
	bridge := story.NewBridge(machine, nil)
	clock := battle.NewVirtualClock()

	machine.Start()
	subjects, err := scan.Curated()
	if err != nil {
		log.Fatalf("Failed to load bestiary: %v", err)
	}
	machine.ScanComplete(subjects)
	fmt.Printf("--- Scanned %d subjects ---\n", len(subjects))

	for !machine.AllResolved() {
		id := nextSelectable(machine)
		if id == "" {
			log.Fatal("No selectable encounter but session unresolved")
		}
		machine.Select(id)
		sub, ok := machine.Fight()
		if !ok {
			log.Fatalf("Fight() refused for %s", id)
		}
		fmt.Printf("\n--- Fighting %s (%d bytes) ---\n", sub.Name, sub.SizeBytes)

		var end *battle.Completed
		orch := battle.NewOrchestrator(sub, clock, func(ev battle.Event) {
			switch ev := ev.(type) {
			case battle.DamageDealt:
				fmt.Printf("  hit: target=%d amount=%d blocked=%v (player=%d subject=%d)\n",
					ev.Damage.Target, ev.Damage.Amount, ev.Damage.Blocked, ev.PlayerHP, ev.SubjectHP)
			case battle.Completed:
				end = &ev
			}
		})

		for round := 0; end == nil && round < maxRounds; round++ {
			st := orch.State()
			if st.Phase == battle.PhasePlayerTurn {
				if st.Cursed && !st.ShieldActive && st.PlayerHP <= 30 {
					orch.Submit(battle.ActionShield)
				} else if st.PlayerResource >= battle.SpecialCost {
					orch.Submit(battle.ActionSpecial)
				} else {
					orch.Submit(battle.ActionStrike)
				}
			}
			clock.Advance(5 * time.Second)
		}
		if end == nil {
			log.Fatalf("Battle against %s never completed", sub.Name)
		}

		fmt.Printf("  result: %s\n", end.Result)
		if err := bridge.Resolve(*end); err != nil {
			log.Fatalf("Bridge rejected completion: %v", err)
		}
		machine.Continue()
	}

	s := machine.Summary()
	fmt.Printf("\n--- Summary ---\nBanished: %d  Skipped: %d  Survived: %d  Freed: %d bytes\n",
		s.Banished, s.Skipped, s.Survived, s.BytesFreed)
}

func nextSelectable(m *story.Machine) string {
	for i, sub := range m.Encounters() {
		if _, done := m.Result(sub.ID); done {
			continue
		}
		if m.Selectable(i) {
			return sub.ID
		}
	}
	return ""
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tatianab/filebane/internal/config"
	"github.com/tatianab/filebane/internal/intel"
	"github.com/tatianab/filebane/internal/models"
	"github.com/tatianab/filebane/internal/progress"
	"github.com/tatianab/filebane/internal/story"
	"github.com/tatianab/filebane/internal/tui"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Progress persistence is best-effort: the game plays fine without it.
	var store *progress.Store
	if err := os.MkdirAll(filepath.Dir(cfg.ProgressDB), 0755); err != nil {
		log.Printf("progress store disabled: %v", err)
	} else if store, err = progress.Open(cfg.ProgressDB); err != nil {
		log.Printf("progress store disabled: %v", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	var eng *intel.Engine
	if cfg.GeminiAPIKey != "" {
		eng, err = intel.NewEngine(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("intel lookup disabled: %v", err)
		} else {
			defer eng.Close()
		}
	}

	machine := story.NewMachine(nil)
	var sinks []func(models.Completion)
	if store != nil {
		sinks = append(sinks, func(c models.Completion) {
			if err := store.Record(c); err != nil {
				log.Printf("record outcome: %v", err)
			}
		})
	}
	bridge := story.NewBridge(machine, nil, sinks...)

	if err := tui.Run(machine, bridge, eng, store, cfg); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

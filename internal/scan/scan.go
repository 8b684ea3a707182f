// Package scan supplies the encounter subjects for a story session,
// either by walking a real directory or from the curated bestiary.
package scan

import (
	_ "embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tatianab/filebane/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed bestiary.yaml
var bestiaryYAML []byte

// DefaultLimit caps how many subjects one session presents.
const DefaultLimit = 6

const hoardThreshold = 100 << 20 // 100 MiB

var (
	cursedExts = map[string]bool{".log": true, ".bak": true, ".old": true}
	junkExts   = map[string]bool{".tmp": true, ".cache": true, ".swp": true, ".part": true}
)

// Curated returns the fixed Story Mode bestiary embedded in the binary.
func Curated() ([]models.Subject, error) {
	var doc struct {
		Subjects []models.Subject `yaml:"subjects"`
	}
	if err := yaml.Unmarshal(bestiaryYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse bestiary: %w", err)
	}
	return doc.Subjects, nil
}

// Dir walks root and turns up to limit regular files into encounter
// subjects, largest first. Hidden files and directories are skipped.
// An empty walk is not an error; callers fall back to Curated.
func Dir(root string, limit int) ([]models.Subject, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var subjects []models.Subject
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are not monsters, just skip
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		subjects = append(subjects, Classify(path, info.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.SliceStable(subjects, func(i, j int) bool {
		return subjects[i].SizeBytes > subjects[j].SizeBytes
	})
	if len(subjects) > limit {
		subjects = subjects[:limit]
	}
	return subjects, nil
}

// Classify builds a subject from a file path and size: category tags
// from the extension and size, a monster name from the base name, and a
// threat tier from the size.
func Classify(path string, size int64) models.Subject {
	ext := strings.ToLower(filepath.Ext(path))

	var cats []models.Category
	switch {
	case cursedExts[ext]:
		cats = append(cats, models.CategoryCursed)
	case junkExts[ext]:
		cats = append(cats, models.CategoryJunk)
	}
	if size >= hoardThreshold {
		cats = append(cats, models.CategoryHoard)
	}
	if len(cats) == 0 {
		cats = append(cats, models.CategoryJunk)
	}

	return models.Subject{
		ID:         path,
		Name:       MonsterName(path),
		SizeBytes:  size,
		Categories: cats,
		Tier:       tierFor(size),
	}
}

// MonsterName derives a display name from a file path, e.g.
// "node_modules.tar" becomes "Node Modules the Tar Fiend".
func MonsterName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	stem = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(stem)
	stem = strings.TrimSpace(stem)
	if stem == "" {
		stem = "Nameless"
	}
	stem = title(stem)

	if ext == "" {
		return stem
	}
	kind := title(strings.TrimPrefix(ext, "."))
	return fmt.Sprintf("%s the %s Fiend", stem, kind)
}

func tierFor(size int64) models.Tier {
	switch {
	case size >= hoardThreshold:
		return models.TierNightmare
	case size >= 10<<20:
		return models.TierDire
	}
	return models.TierMinor
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

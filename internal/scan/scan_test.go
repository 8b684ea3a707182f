package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tatianab/filebane/internal/models"
)

func TestCuratedBestiary(t *testing.T) {
	subjects, err := Curated()
	if err != nil {
		t.Fatalf("Curated: %v", err)
	}
	if len(subjects) == 0 {
		t.Fatal("curated bestiary is empty")
	}
	seen := make(map[string]bool)
	for _, sub := range subjects {
		if sub.ID == "" || sub.Name == "" || sub.SizeBytes <= 0 {
			t.Errorf("incomplete subject: %+v", sub)
		}
		if seen[sub.ID] {
			t.Errorf("duplicate subject id %q", sub.ID)
		}
		seen[sub.ID] = true
		if len(sub.Categories) == 0 {
			t.Errorf("subject %s has no categories", sub.ID)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		size int64
		want []models.Category
		tier models.Tier
	}{
		{"debug.log", 1 << 20, []models.Category{models.CategoryCursed}, models.TierMinor},
		{"download.part", 5 << 20, []models.Category{models.CategoryJunk}, models.TierMinor},
		{"movie.mkv", 200 << 20, []models.Category{models.CategoryHoard}, models.TierNightmare},
		{"old-db.bak", 150 << 20, []models.Category{models.CategoryCursed, models.CategoryHoard}, models.TierNightmare},
		{"notes.md", 12 << 20, []models.Category{models.CategoryJunk}, models.TierDire},
	}
	for _, tt := range tests {
		sub := Classify(tt.path, tt.size)
		if len(sub.Categories) != len(tt.want) {
			t.Errorf("Classify(%s) categories = %v, want %v", tt.path, sub.Categories, tt.want)
			continue
		}
		for i, c := range tt.want {
			if sub.Categories[i] != c {
				t.Errorf("Classify(%s) categories = %v, want %v", tt.path, sub.Categories, tt.want)
			}
		}
		if sub.Tier != tt.tier {
			t.Errorf("Classify(%s) tier = %s, want %s", tt.path, sub.Tier, tt.tier)
		}
		if sub.ID != tt.path || sub.SizeBytes != tt.size {
			t.Errorf("Classify(%s) identity mangled: %+v", tt.path, sub)
		}
	}
}

func TestMonsterName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"node_modules.tar", "Node Modules the Tar Fiend"},
		{"/var/log/old-system.log", "Old System the Log Fiend"},
		{"README", "README"},
		{"a.b.c.tmp", "A B C the Tmp Fiend"},
	}
	for _, tt := range tests {
		if got := MonsterName(tt.path); got != tt.want {
			t.Errorf("MonsterName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDirScansAndRanks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "big.log"), 3000)
	writeFile(t, filepath.Join(dir, "small.tmp"), 10)
	writeFile(t, filepath.Join(dir, ".hidden"), 500)

	sub := filepath.Join(dir, ".git")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(sub, "object"), 999)

	subjects, err := Dir(dir, 10)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("scanned %d subjects, want 2 (hidden entries skipped): %+v", len(subjects), subjects)
	}
	if subjects[0].SizeBytes < subjects[1].SizeBytes {
		t.Error("subjects not ordered largest first")
	}
	if !subjects[0].HasCategory(models.CategoryCursed) {
		t.Errorf("big.log not classified cursed: %+v", subjects[0])
	}
}

func TestDirRespectsLimit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.tmp", "b.tmp", "c.tmp", "d.tmp"} {
		writeFile(t, filepath.Join(dir, name), 100)
	}
	subjects, err := Dir(dir, 2)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if len(subjects) != 2 {
		t.Errorf("got %d subjects, want 2", len(subjects))
	}
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

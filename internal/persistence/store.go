// Package persistence loads and saves a room as a single JSON blob file,
// one per room, named by a sanitized version of the room name.
package persistence

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lukev/elpres/internal/model"
)

// Store reads and writes room blobs under a directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily on
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// sanitize replaces every character outside [a-zA-Z0-9-_] with an
// underscore, matching the on-disk room blob naming rule.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, sanitize(name)+".json")
}

// Load reads a room's blob. A missing file, an empty file, or a file that
// fails to parse is treated as a brand-new, empty room rather than an
// error — the room simply didn't exist yet.
func (s *Store) Load(name string) *model.Room {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		return model.NewRoom(name)
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return model.NewRoom(name)
	}

	room := model.NewRoom(name)
	if err := json.Unmarshal([]byte(trimmed), room); err != nil {
		log.Printf("persistence: room %q has an unparseable blob, starting fresh: %v", name, err)
		return model.NewRoom(name)
	}
	if room.SpectatorPreferences == nil {
		room.SpectatorPreferences = make(map[string]bool)
	}
	if g := room.CurrentGame; g != nil && g.PassedThisRound == nil {
		g.PassedThisRound = make(map[int]bool)
	}
	room.Name = name
	return room
}

// Save writes room's current state, replacing any existing blob.
func (s *Store) Save(room *model.Room) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(room, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(room.Name), data, 0o644)
}

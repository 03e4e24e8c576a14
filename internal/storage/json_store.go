package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julianstephens/shareplan/internal/constants"
	"github.com/julianstephens/shareplan/internal/models"
)

const jsonStoreVersion = 1

type jsonDocument struct {
	Version int `json:"version"`
	Snapshot
}

// JSONStore keeps the snapshot in a single JSON file.
//
// It is not safe for concurrent use, and two processes sharing one file
// may lose writes.
type JSONStore struct {
	path string
	doc  *jsonDocument
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init creates an empty document unless the file already exists.
func (s *JSONStore) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}
	s.doc = &jsonDocument{
		Version:  jsonStoreVersion,
		Snapshot: emptySnapshot(),
	}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &jsonDocument{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Version > jsonStoreVersion {
		return fmt.Errorf("storage file version (%d) is newer than supported version (%d) - please upgrade %s", doc.Version, jsonStoreVersion, constants.AppName)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) ReadSnapshot() (Snapshot, error) {
	if s.doc == nil {
		return Snapshot{}, fmt.Errorf("storage not loaded")
	}
	return s.doc.Snapshot, nil
}

func (s *JSONStore) WriteSnapshot(snap Snapshot) error {
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.doc.Snapshot = snap
	return s.save()
}

// save replaces the file through a temporary sibling.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Templates:        []models.Template{},
		NextTemplateID:   constants.FirstTemplateID,
		SchedulesByOwner: map[string][]*models.Schedule{},
		Bindings:         map[string]int{},
		FriendVisible:    map[string][]string{},
	}
}

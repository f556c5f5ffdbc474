// ABOUTME: Manages the recent images list for the news form image picker
// ABOUTME: Stores recently uploaded image paths in the kabar config directory

package recentfiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// MaxRecentFiles is the maximum number of recent images to keep
const MaxRecentFiles = 5

// fileName is the list's file under the config directory
const fileName = "recent-images.json"

// RecentFiles manages the list of recently uploaded images
type RecentFiles struct {
	configDir string

	mu    sync.Mutex
	files []string
}

type recentData struct {
	Files []string `json:"files"`
}

// New creates a new RecentFiles manager with the given config directory
func New(configDir string) *RecentFiles {
	return &RecentFiles{configDir: configDir}
}

func (rf *RecentFiles) configFile() string {
	return filepath.Join(rf.configDir, fileName)
}

// Load reads the list from disk, dropping images that no longer exist
func (rf *RecentFiles) Load() ([]string, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.load()
}

func (rf *RecentFiles) load() ([]string, error) {
	data, err := os.ReadFile(rf.configFile())
	if os.IsNotExist(err) {
		rf.files = []string{}
		return rf.files, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		// Invalid JSON, start fresh
		rf.files = []string{}
		return rf.files, nil
	}

	rf.files = make([]string, 0, len(recent.Files))
	for _, path := range recent.Files {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			rf.files = append(rf.files, path)
		}
	}

	return rf.files, nil
}

// Save writes the list to disk, keeping at most MaxRecentFiles entries
func (rf *RecentFiles) Save(files []string) error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	return rf.save(files)
}

func (rf *RecentFiles) save(files []string) error {
	if err := os.MkdirAll(rf.configDir, 0o700); err != nil {
		return err
	}

	if len(files) > MaxRecentFiles {
		files = files[:MaxRecentFiles]
	}
	rf.files = files

	data, err := json.MarshalIndent(recentData{Files: files}, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(rf.configFile(), data, 0o600)
}

// Add moves path to the front of the list, adding it if missing
func (rf *RecentFiles) Add(path string) error {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.files == nil {
		if _, err := rf.load(); err != nil {
			rf.files = []string{}
		}
	}

	newFiles := make([]string, 0, len(rf.files)+1)
	newFiles = append(newFiles, path)
	for _, f := range rf.files {
		if f != path {
			newFiles = append(newFiles, f)
		}
	}

	return rf.save(newFiles)
}

// List returns the current list of recent images
func (rf *RecentFiles) List() []string {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.files == nil {
		if _, err := rf.load(); err != nil {
			return nil
		}
	}
	return append([]string(nil), rf.files...)
}

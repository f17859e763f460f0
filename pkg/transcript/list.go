package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info summarizes one saved transcript for listings.
type Info struct {
	Name    string
	Path    string
	SavedAt time.Time
	Turns   int
}

// List enumerates the transcripts in dir, newest first. A missing directory
// yields an empty list; files that do not parse as transcripts are skipped.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read transcripts directory: %w", err)
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil || doc.ID == "" {
			continue
		}

		infos = append(infos, Info{
			Name:    entry.Name(),
			Path:    path,
			SavedAt: doc.SavedAt,
			Turns:   len(doc.History),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].SavedAt.After(infos[j].SavedAt)
	})

	return infos, nil
}

package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	battleout "focusforge/internal/modules/battle/port/out"
)

// FileObserver reads foreground activity from a JSON file maintained by an
// external helper. A missing file means nothing observable, not an error, so
// the engine keeps ticking when no helper is installed.
type FileObserver struct {
	path string
}

func NewFileObserver(path string) *FileObserver {
	return &FileObserver{path: path}
}

type foregroundFile struct {
	Hostname string `json:"hostname"`
	TabID    string `json:"tabId"`
}

func (o *FileObserver) Sample(_ context.Context) (battleout.Observation, error) {
	data, err := os.ReadFile(o.path)
	if errors.Is(err, os.ErrNotExist) {
		return battleout.Observation{}, nil
	}
	if err != nil {
		return battleout.Observation{}, fmt.Errorf("read foreground file: %w", err)
	}
	var fg foregroundFile
	if err := json.Unmarshal(data, &fg); err != nil {
		return battleout.Observation{}, fmt.Errorf("decode foreground file: %w", err)
	}
	return battleout.Observation{Hostname: fg.Hostname, TabID: fg.TabID}, nil
}

func (o *FileObserver) Close() error { return nil }

var _ battleout.ActivityObserver = (*FileObserver)(nil)

package config

import (
	"fmt"
	"path/filepath"
)

// Config describes the on-disk layout rooted at the data directory.
type Config struct {
	DataDir        string
	DBPath         string
	MonstersPath   string
	XPConfigPath   string
	ChronicleDir   string
	ForegroundPath string
	// ObserverBin optionally points at an activity-observer plugin binary.
	// When empty the file observer reads ForegroundPath directly.
	ObserverBin string
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:        dataDir,
		DBPath:         filepath.Join(dataDir, "focusforge.db"),
		MonstersPath:   filepath.Join(dataDir, "monsters.yaml"),
		XPConfigPath:   filepath.Join(dataDir, "xp-config.yaml"),
		ChronicleDir:   filepath.Join(dataDir, "chronicles"),
		ForegroundPath: filepath.Join(dataDir, "foreground.json"),
	}, nil
}

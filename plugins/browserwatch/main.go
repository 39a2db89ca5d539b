package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-plugin"

	battlerpc "focusforge/internal/modules/battle/adapter/out/rpc"
)

// browserwatch reports the foreground browser activity written by a companion
// browser extension to $FOCUSFORGE_DATA/foreground.json. It exists so the
// engine can run the observer out of process; a richer watcher can replace it
// by speaking the same contract.

type server struct {
	path string
}

type foregroundFile struct {
	Hostname string `json:"hostname"`
	TabID    string `json:"tabId"`
}

func (s *server) Observe(_ context.Context, _ *battlerpc.Empty) (*battlerpc.Observation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		// Nothing observable right now.
		return &battlerpc.Observation{}, nil
	}
	var fg foregroundFile
	if err := json.Unmarshal(data, &fg); err != nil {
		return &battlerpc.Observation{}, nil
	}
	return &battlerpc.Observation{Hostname: fg.Hostname, TabID: fg.TabID}, nil
}

func main() {
	dataDir := os.Getenv("FOCUSFORGE_DATA")
	if dataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataDir = filepath.Join(home, ".focusforge")
		} else {
			dataDir = ".focusforge"
		}
	}
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: battlerpc.HandshakeConfig,
		Plugins:         battlerpc.PluginMap(&server{path: filepath.Join(dataDir, "foreground.json")}),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}

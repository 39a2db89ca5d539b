package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	battlerpc "focusforge/internal/modules/battle/adapter/out/rpc"
	battleout "focusforge/internal/modules/battle/port/out"
)

const (
	pluginStartTimeout = 3 * time.Second
	sampleCallTimeout  = 800 * time.Millisecond
)

// PluginObserver samples foreground activity from an external watcher binary
// over go-plugin. Unlike a one-shot command host it keeps the subprocess
// alive between samples, since the engine asks every second; a dead plugin is
// relaunched on the next sample.
type PluginObserver struct {
	binary string

	mu     sync.Mutex
	client *plugin.Client
	rpc    battlerpc.ActivityObserverClient
}

func NewPluginObserver(binary string) *PluginObserver {
	return &PluginObserver{binary: binary}
}

func (o *PluginObserver) Sample(ctx context.Context) (battleout.Observation, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	client, err := o.connectLocked()
	if err != nil {
		return battleout.Observation{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, sampleCallTimeout)
	defer cancel()
	obs, err := client.Observe(callCtx)
	if err != nil {
		// Drop the connection so the next sample relaunches the plugin.
		o.resetLocked()
		return battleout.Observation{}, fmt.Errorf("observe: %w", err)
	}
	return battleout.Observation{Hostname: obs.Hostname, TabID: obs.TabID}, nil
}

func (o *PluginObserver) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resetLocked()
	return nil
}

func (o *PluginObserver) connectLocked() (battlerpc.ActivityObserverClient, error) {
	if o.rpc != nil {
		return o.rpc, nil
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  battlerpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          battlerpc.PluginMap(nil),
		Cmd:              exec.Command(o.binary),
		Managed:          true,
		StartTimeout:     pluginStartTimeout,
		Logger:           hclog.New(&hclog.LoggerOptions{Output: io.Discard, Level: hclog.NoLevel}),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("start observer plugin: %w", err)
	}
	raw, err := rpcClient.Dispense(battlerpc.PluginMapKey)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("dispense observer: %w", err)
	}
	typed, ok := raw.(battlerpc.ActivityObserverClient)
	if !ok {
		client.Kill()
		return nil, fmt.Errorf("observer rpc client type mismatch")
	}

	o.client = client
	o.rpc = typed
	return typed, nil
}

func (o *PluginObserver) resetLocked() {
	if o.client != nil {
		o.client.Kill()
	}
	o.client = nil
	o.rpc = nil
}

var _ battleout.ActivityObserver = (*PluginObserver)(nil)

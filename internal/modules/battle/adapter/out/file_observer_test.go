package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	out "focusforge/internal/modules/battle/adapter/out"
)

func TestFileObserverMissingFileMeansNothingObservable(t *testing.T) {
	t.Parallel()
	observer := out.NewFileObserver(filepath.Join(t.TempDir(), "foreground.json"))

	obs, err := observer.Sample(context.Background())
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if obs.Hostname != "" || obs.TabID != "" {
		t.Fatalf("got %+v", obs)
	}
}

func TestFileObserverReadsForegroundFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "foreground.json")
	payload := `{"hostname":"www.reddit.com","tabId":"tab-42"}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write foreground file: %v", err)
	}

	observer := out.NewFileObserver(path)
	obs, err := observer.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if obs.Hostname != "www.reddit.com" || obs.TabID != "tab-42" {
		t.Fatalf("got %+v", obs)
	}
}

func TestFileObserverRejectsGarbage(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "foreground.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatalf("write foreground file: %v", err)
	}

	observer := out.NewFileObserver(path)
	if _, err := observer.Sample(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

package clients_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mediclogger/auth-service/internal/clients"
)

func writeClientDef(t *testing.T, dir string, name string, client clients.Client) {
	t.Helper()
	def, err := json.Marshal(client)
	if err != nil {
		t.Fatalf("failed to marshal client definition: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), def, 0o644); err != nil {
		t.Fatalf("failed to write client definition: %v", err)
	}
}

func TestNewCatalog_LoadsDefinitions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeClientDef(t, dir, "medic-logger", clients.Client{Display: "Medic Logger", Audience: "medic-logger"})
	writeClientDef(t, dir, "dashboard", clients.Client{Display: "Dashboard", Audience: "dashboard-app"})

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}

	client, err := catalog.Get("medic-logger")
	if err != nil {
		t.Fatalf("expected client, got %v", err)
	}
	if client.Audience != "medic-logger" {
		t.Errorf("expected audience 'medic-logger', got '%s'", client.Audience)
	}

	if !catalog.HasAudience("dashboard-app") {
		t.Error("expected audience 'dashboard-app' to be registered")
	}
	if catalog.HasAudience("unknown-app") {
		t.Error("audience 'unknown-app' should not be registered")
	}
}

func TestNewCatalog_UnknownClient(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeClientDef(t, dir, "medic-logger", clients.Client{Audience: "medic-logger"})

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}

	if _, err := catalog.Get("ghost"); !errors.Is(err, clients.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got %v", err)
	}
}

// The initial load is strict so a misconfigured deployment fails at boot.
func TestNewCatalog_StrictInitialLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()
		if _, err := clients.NewCatalog(filepath.Join(t.TempDir(), "absent")); err == nil {
			t.Error("expected an error for a missing directory")
		}
	})

	t.Run("malformed definition", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "broken"), []byte("{not json"), 0o644); err != nil {
			t.Fatalf("failed to write definition: %v", err)
		}
		if _, err := clients.NewCatalog(dir); err == nil {
			t.Error("expected an error for a malformed definition")
		}
	})

	t.Run("missing audience", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeClientDef(t, dir, "no-aud", clients.Client{Display: "No Audience"})
		if _, err := clients.NewCatalog(dir); err == nil {
			t.Error("expected an error for a definition without an audience")
		}
	})
}

func TestReload_PicksUpNewDefinitions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeClientDef(t, dir, "medic-logger", clients.Client{Audience: "medic-logger"})

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}

	writeClientDef(t, dir, "dashboard", clients.Client{Audience: "dashboard-app"})
	catalog.Reload()

	if _, err := catalog.Get("dashboard"); err != nil {
		t.Errorf("expected new client after reload, got %v", err)
	}
}

// A bad edit is skipped on reload instead of emptying the running catalog.
func TestReload_LenientOnBadDefinitions(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeClientDef(t, dir, "medic-logger", clients.Client{Audience: "medic-logger"})

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write definition: %v", err)
	}
	catalog.Reload()

	if _, err := catalog.Get("medic-logger"); err != nil {
		t.Errorf("good client should survive a reload with a bad sibling, got %v", err)
	}
	if _, err := catalog.Get("broken"); !errors.Is(err, clients.ErrClientNotFound) {
		t.Errorf("bad definition should be skipped, got %v", err)
	}
}

func TestWatch_ReloadsOnDirectoryChange(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeClientDef(t, dir, "medic-logger", clients.Client{Audience: "medic-logger"})

	catalog, err := clients.NewCatalog(dir)
	if err != nil {
		t.Fatalf("expected catalog to load, got %v", err)
	}
	if err := catalog.Watch(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}

	writeClientDef(t, dir, "dashboard", clients.Client{Audience: "dashboard-app"})

	// reloads are debounced; poll until the watcher catches up
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := catalog.Get("dashboard"); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error("watcher never picked up the new client definition")
}

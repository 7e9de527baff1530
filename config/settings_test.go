package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	m := NewManager(path)

	s, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Storage.Backend != StorageBackendFile || s.Lookup.TimeoutSeconds != 10 || s.Catalog.Concurrency != 4 {
		t.Fatalf("unexpected defaults %+v", s)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("defaults were not written: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestLoadBackfillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"lookup":{"apiKey":"abc"},"storage":{"backend":"SQLite"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewManager(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Lookup.APIKey != "abc" {
		t.Fatalf("api key lost: %q", s.Lookup.APIKey)
	}
	if s.Storage.Backend != StorageBackendSQLite {
		t.Fatalf("backend = %q", s.Storage.Backend)
	}
	if s.Lookup.MaxRetries != 3 || s.Lookup.BaseURL == "" || s.Storage.Key == "" || s.Catalog.Directory == "" {
		t.Fatalf("defaults not backfilled: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "settings.json"))
	want := DefaultSettings()
	want.Lookup.APIKey = "key"
	want.Storage.Backend = StorageBackendMemory
	if err := m.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestApplyEnvAndValidate(t *testing.T) {
	t.Setenv(EnvAPIKey, " from-env ")
	s := DefaultSettings()
	ApplyEnv(&s)
	if s.Lookup.APIKey != "from-env" {
		t.Fatalf("env override not applied: %q", s.Lookup.APIKey)
	}

	s.Storage.Backend = "redis"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected unknown backend to fail validation")
	}
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	if got := PathFromEnv(); got != DefaultConfigPath {
		t.Fatalf("PathFromEnv = %q", got)
	}
	t.Setenv(EnvConfigPath, "/etc/koleksiyon.json")
	if got := PathFromEnv(); got != "/etc/koleksiyon.json" {
		t.Fatalf("PathFromEnv = %q", got)
	}
}

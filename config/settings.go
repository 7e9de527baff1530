package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfigPath selects the settings file.
	EnvConfigPath = "KOLEKSIYON_CONFIG"
	// EnvAPIKey overrides lookup.apiKey without writing it to disk.
	EnvAPIKey = "OMDB_API_KEY"

	DefaultConfigPath = "data/settings.json"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Lookup  LookupSettings  `json:"lookup"`
	Storage StorageSettings `json:"storage"`
	Catalog CatalogSettings `json:"catalog"`
	Log     LogConfig       `json:"log"`
}

// LookupSettings configures the metadata provider client.
type LookupSettings struct {
	APIKey            string  `json:"apiKey"`
	BaseURL           string  `json:"baseUrl"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
	MaxRetries        int     `json:"maxRetries"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

type StorageBackend string

const (
	StorageBackendFile   StorageBackend = "file"
	StorageBackendSQLite StorageBackend = "sqlite"
	StorageBackendMemory StorageBackend = "memory"
)

// StorageSettings selects where the state document lives. Directory is used
// by the file backend, Path by sqlite.
type StorageSettings struct {
	Backend   StorageBackend `json:"backend"`
	Directory string         `json:"directory"`
	Path      string         `json:"path"`
	Key       string         `json:"key"`
}

type CatalogSettings struct {
	Directory   string `json:"directory"`
	Concurrency int    `json:"concurrency"`
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

func DefaultSettings() Settings {
	return Settings{
		Lookup: LookupSettings{
			APIKey:            "",
			BaseURL:           "https://www.omdbapi.com/",
			TimeoutSeconds:    10,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},
		Storage: StorageSettings{
			Backend:   StorageBackendFile,
			Directory: "data/state",
			Path:      "data/state.db",
			Key:       "koleksiyon-takip-state",
		},
		Catalog: CatalogSettings{Directory: "data", Concurrency: 4},
		Log: LogConfig{
			File:       "",
			MaxSize:    10, // MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// PathFromEnv returns the settings path from the environment or the default.
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultConfigPath
}

func (m *Manager) Path() string { return m.path }

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing. Fields
// missing from an older file are backfilled with defaults.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}
	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	f, err := os.Open(m.path)
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()

	var s Settings
	if err := json.NewDecoder(f).Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode %s: %w", m.path, err)
	}
	backfill(&s)
	return s, nil
}

func backfill(s *Settings) {
	def := DefaultSettings()

	if strings.TrimSpace(s.Lookup.BaseURL) == "" {
		s.Lookup.BaseURL = def.Lookup.BaseURL
	}
	if s.Lookup.TimeoutSeconds <= 0 {
		s.Lookup.TimeoutSeconds = def.Lookup.TimeoutSeconds
	}
	if s.Lookup.MaxRetries <= 0 {
		s.Lookup.MaxRetries = def.Lookup.MaxRetries
	}
	if s.Lookup.RequestsPerSecond < 0 {
		s.Lookup.RequestsPerSecond = 0
	}

	if s.Storage.Backend == "" {
		s.Storage.Backend = def.Storage.Backend
	}
	s.Storage.Backend = StorageBackend(strings.ToLower(strings.TrimSpace(string(s.Storage.Backend))))
	if strings.TrimSpace(s.Storage.Directory) == "" {
		s.Storage.Directory = def.Storage.Directory
	}
	if strings.TrimSpace(s.Storage.Path) == "" {
		s.Storage.Path = def.Storage.Path
	}
	if strings.TrimSpace(s.Storage.Key) == "" {
		s.Storage.Key = def.Storage.Key
	}

	if strings.TrimSpace(s.Catalog.Directory) == "" {
		s.Catalog.Directory = def.Catalog.Directory
	}
	if s.Catalog.Concurrency <= 0 {
		s.Catalog.Concurrency = def.Catalog.Concurrency
	}

	if s.Log.MaxSize <= 0 {
		s.Log.MaxSize = def.Log.MaxSize
	}
	if s.Log.MaxBackups <= 0 {
		s.Log.MaxBackups = def.Log.MaxBackups
	}
	if s.Log.MaxAge <= 0 {
		s.Log.MaxAge = def.Log.MaxAge
	}
}

// ApplyEnv overlays environment overrides. The result is meant for the
// running process and should not be saved back.
func ApplyEnv(s *Settings) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		s.Lookup.APIKey = key
	}
}

// Validate reports settings the application cannot start with.
func (s Settings) Validate() error {
	switch s.Storage.Backend {
	case StorageBackendFile, StorageBackendSQLite, StorageBackendMemory:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", s.Storage.Backend)
	}
	return nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

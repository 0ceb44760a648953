// Package config loads the JSON configuration file described in
// co-located with the tool ("native" and "native_triggerstrings" at
// minimum), extended with
// an optional list of project libraries and a glob for discovering them,
// plus a.env overlay for operational knobs that shouldn't live in the
// checked-in JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joho/godotenv"
)

// LibraryPaths names the files backing one project library.
type LibraryPaths struct {
	Name            string `json:"name"`
	TriggersFile    string `json:"triggers_file"`
	TriggerStrings  string `json:"trigger_strings"`
	DocumentInfo    string `json:"document_info,omitempty"`
}

// Config is the JSON document co-located with the tool. Native carries
// the built-in library's Triggers file and NativeTriggerStrings its
// localization file; these two fields are required. Libraries enumerates each project library explicitly;
// LibrariesGlob (e.g. "Mods/*.SC2Mod/Triggers") resolves additional
// libraries by pattern for authors who would rather not list every file
// by hand.
type Config struct {
	Native               string         `json:"native"`
	NativeTriggerStrings string         `json:"native_triggerstrings"`
	Libraries            []LibraryPaths `json:"libraries,omitempty"`
	LibrariesGlob        string         `json:"libraries_glob,omitempty"`

	// CacheDSN overrides the cache's SQLite DSN (internal/cache); it is
	// sourced from the environment only (TRIGFORGE_CACHE_DSN), never the
	// JSON file, keeping
	// operational knobs out of checked-in config (db/sqlite.go's
	// MORFX_LIBSQL_AUTH_TOKEN).
	CacheDSN string `json:"-"`
}

const cacheDSNEnvVar = "TRIGFORGE_CACHE_DSN"
const defaultCacheDSN = "trigforge-cache.db"

// Load reads path as JSON into a Config, overlays a sibling.env file if
// present (godotenv.Load is a no-op, not an error, when the file is
// absent), resolves LibrariesGlob into additional Libraries entries, and
// fills CacheDSN from the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}

	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	if cfg.LibrariesGlob != "" {
		matches, err := doublestar.FilepathGlob(cfg.LibrariesGlob)
		if err != nil {
			return nil, fmt.Errorf("expanding libraries_glob %q: %w", cfg.LibrariesGlob, err)
		}
		for _, triggersFile := range matches {
			name := filepath.Base(filepath.Dir(triggersFile))
			cfg.Libraries = append(cfg.Libraries, LibraryPaths{
				Name:         name,
				TriggersFile: triggersFile,
			})
		}
	}

	cfg.CacheDSN = os.Getenv(cacheDSNEnvVar)
	if cfg.CacheDSN == "" {
		cfg.CacheDSN = defaultCacheDSN
	}

	if cfg.Native == "" {
		return nil, fmt.Errorf("config %q: %q is required", path, "native")
	}
	if cfg.NativeTriggerStrings == "" {
		return nil, fmt.Errorf("config %q: %q is required", path, "native_triggerstrings")
	}

	return &cfg, nil
}

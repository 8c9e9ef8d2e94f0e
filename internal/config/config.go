package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// ActThreshold is the classifier confidence at or above which the agent
	// acts without asking. The 0.70/0.50 split is tunable, not proven
	// optimal.
	ActThreshold float64 `json:"act_threshold"`

	// ConfirmThreshold is the confidence at or above which (but below
	// ActThreshold) the agent asks the user to confirm before acting.
	// Below it, the agent asks an open clarifying question.
	ConfirmThreshold float64 `json:"confirm_threshold"`

	// ContextWindowTurns is the number of recent turns fed to the
	// classifier. Older turns are collapsed into one summary turn; nothing
	// is deleted from the log.
	ContextWindowTurns int `json:"context_window_turns"`

	// TaskMaxChars is the maximum character count for task content.
	TaskMaxChars int `json:"task_max_chars"`

	// ListDefaultLimit is the task count returned by list when the caller
	// gives no limit.
	ListDefaultLimit int `json:"list_default_limit"`

	// ListMaxLimit caps the limit a caller may request.
	ListMaxLimit int `json:"list_max_limit"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ActThreshold:       0.70,
		ConfirmThreshold:   0.50,
		ContextWindowTurns: 20,
		TaskMaxChars:       2000,
		ListDefaultLimit:   50,
		ListMaxLimit:       100,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of
// ~/.taskpilot.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.taskpilot) and
// repo (.taskpilot) directories. Repo config is found by walking upward from
// startDir. Repo config takes precedence for scalar values; arrays are
// merged (deduplicated). Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .taskpilot/config.json. Returns the path if found, or empty string.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".taskpilot", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ActThreshold = overlay.ActThreshold
	if result.ActThreshold == 0 {
		result.ActThreshold = base.ActThreshold
	}

	result.ConfirmThreshold = overlay.ConfirmThreshold
	if result.ConfirmThreshold == 0 {
		result.ConfirmThreshold = base.ConfirmThreshold
	}

	result.ContextWindowTurns = overlay.ContextWindowTurns
	if result.ContextWindowTurns == 0 {
		result.ContextWindowTurns = base.ContextWindowTurns
	}

	result.TaskMaxChars = overlay.TaskMaxChars
	if result.TaskMaxChars == 0 {
		result.TaskMaxChars = base.TaskMaxChars
	}

	result.ListDefaultLimit = overlay.ListDefaultLimit
	if result.ListDefaultLimit == 0 {
		result.ListDefaultLimit = base.ListDefaultLimit
	}

	result.ListMaxLimit = overlay.ListMaxLimit
	if result.ListMaxLimit == 0 {
		result.ListMaxLimit = base.ListMaxLimit
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

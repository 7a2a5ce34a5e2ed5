package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
//
// The file path is explicitPath when non-empty, else $GH_REPO_SEARCH_CONFIG,
// else ~/.gh-repo-search.yaml. A missing file is an error only when the path
// was chosen explicitly; otherwise ENV + defaults are used.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	explicit := path != ""
	if !explicit {
		defaultPath, err := GetDefaultConfigPath()
		if err == nil {
			path = defaultPath
		}
	}

	var cfg Config
	fileFound := false
	if path != "" {
		found, err := checkReadable(path)
		if err != nil {
			return nil, err
		}
		fileFound = found
	}

	switch {
	case fileFound:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("parse error: %v", err),
				Hint:    "Restore from .bak file if available, or run 'gh-repo-search config init --force'",
			}
		}
	case explicit:
		return nil, &ConfigNotFoundError{
			Path: path,
			Hint: "Run 'gh-repo-search config init' to create configuration",
		}
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if cfg.Storage.Path == "" {
		dbPath, err := GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Storage.Path = dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// checkReadable reports whether path exists, turning permission problems
// into a *PermissionError with a platform-specific fix.
func checkReadable(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to access config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return false, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return false, fmt.Errorf("failed to read config: %w", err)
	}
	f.Close()

	return true, nil
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default: // unix-like
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}

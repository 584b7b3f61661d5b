package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/conf"
)

const namespace = "CATALOG"

type Config struct {
	APIURL      string `conf:"default:http://localhost:5000/api,env:API_URL,flag:api-url,help:base URL of the course service"`
	StoragePath string `conf:"env:STORAGE_PATH,flag:storage-path,help:local storage file (default ~/.config/course-catalog/storage.db)"`
	LogLevel    string `conf:"default:warn,env:LOG_LEVEL,flag:log-level"`
	NewRelic    struct {
		AppName    string `conf:"default:course-catalog,env:NEW_RELIC_APP_NAME,flag:new-relic-app-name"`
		LicenseKey string `conf:"noprint,env:NEW_RELIC_LICENSE_KEY,flag:new-relic-license-key"`
	}
}

// errHelp is returned when --help was among the global flags.
var errHelp = errors.New("help requested")

// ReadConfig parses the environment and the global flags that precede the
// command name.
func ReadConfig(args []string) (*Config, error) {
	var cfg Config
	if err := conf.Parse(args, namespace, &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, errHelp
		}
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultStoragePath()
	}

	return &cfg, nil
}

// configUsage describes the global flags and their environment variables.
func configUsage() (string, error) {
	var cfg Config
	usage, err := conf.Usage(namespace, &cfg)
	if err != nil {
		return "", fmt.Errorf("generating config usage: %w", err)
	}
	return usage, nil
}

// defaultStoragePath is $XDG_CONFIG_HOME/course-catalog/storage.db, falling
// back to ~/.config.
func defaultStoragePath() string {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "course-catalog", "storage.db")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "course-catalog", "storage.db")
}

// splitArgs separates global flags from the command and its own arguments.
// Global flags must come first; a flag without "=" consumes the next
// argument as its value.
func splitArgs(args []string) (global []string, command string, rest []string) {
	i := 0
	for i < len(args) {
		arg := args[i]
		if arg == "--" {
			i++
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			break
		}

		global = append(global, arg)
		i++

		name := arg
		for len(name) > 0 && name[0] == '-' {
			name = name[1:]
		}
		if name != "help" && name != "h" && !strings.Contains(arg, "=") && i < len(args) {
			global = append(global, args[i])
			i++
		}
	}

	if i < len(args) {
		command = args[i]
		rest = args[i+1:]
	}

	return global, command, rest
}

package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultLMStudioBase is the base URL of a local LM Studio server.
	DefaultLMStudioBase = "http://127.0.0.1:1234/v1"
	// DatabaseFileName is the SQLite file kept inside the data directory.
	DatabaseFileName = "chat_history.db"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where lmchat stores its own data
	DSN string
	// Driver is the database driver (only sqlite)
	Driver string
	// PublicDir holds index.html and the other front-end files
	PublicDir string
	// Version is the current version of server
	Version string

	// Upstream configuration
	LMStudioBase string // LM_STUDIO_BASE (default: http://127.0.0.1:1234/v1)
	SystemPrompt string // LMCHAT_SYSTEM_PROMPT (default: built-in instruction)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads the upstream configuration from environment variables.
// Values already set (e.g. from flags) are kept.
func (p *Profile) FromEnv() {
	if p.LMStudioBase == "" {
		p.LMStudioBase = getEnvOrDefault("LM_STUDIO_BASE", DefaultLMStudioBase)
	}
	if p.SystemPrompt == "" {
		p.SystemPrompt = os.Getenv("LMCHAT_SYSTEM_PROMPT")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if dataDir == "" {
		dataDir = string(filepath.Separator)
	}
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.Data == "" {
		p.Data = "."
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(dataDir, DatabaseFileName)
	}
	if p.PublicDir == "" {
		p.PublicDir = "public"
	}
	if p.LMStudioBase == "" {
		p.LMStudioBase = DefaultLMStudioBase
	}
	p.LMStudioBase = strings.TrimRight(p.LMStudioBase, "/")

	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (p *Profile) ListenAddr() string {
	return fmt.Sprintf("%s:%d", p.Addr, p.Port)
}

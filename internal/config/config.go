// Package config loads flatblog configuration from layered JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/tailscale/hujson"
)

// FileName is the project config file looked up in the working directory.
const FileName = ".flatblog.json"

// Errors returned by [Load].
var (
	ErrFileNotFound  = errors.New("config file not found")
	ErrFileRead      = errors.New("cannot read config file")
	ErrInvalid       = errors.New("invalid config")
	ErrPostsDirEmpty = errors.New("posts_dir cannot be empty")
)

// Config holds all configuration options.
type Config struct {
	PostsDir  string   `json:"posts_dir"`
	Hidden    []string `json:"hidden"`
	Markdown  bool     `json:"markdown"`
	Addr      string   `json:"addr"`
	SiteTitle string   `json:"site_title"`
	LogLevel  string   `json:"log_level"`
	LogFormat string   `json:"log_format"`

	// Resolved (not serialized)
	EffectiveCwd string  `json:"-"`
	PostsDirAbs  string  `json:"-"`
	Sources      Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // empty if not loaded
	Project string // project or explicit --config file; empty if not loaded
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		PostsDir:  "posts",
		Hidden:    []string{"secret"},
		Addr:      "127.0.0.1:8080",
		SiteTitle: "flatblog",
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// fileConfig is one config file. Pointer fields distinguish "absent" from
// an explicit zero value.
type fileConfig struct {
	PostsDir  *string  `json:"posts_dir"`
	Hidden    []string `json:"hidden"`
	Markdown  *bool    `json:"markdown"`
	Addr      *string  `json:"addr"`
	SiteTitle *string  `json:"site_title"`
	LogLevel  *string  `json:"log_level"`
	LogFormat *string  `json:"log_format"`
}

// Input holds the inputs for [Load].
type Input struct {
	WorkDirOverride  string            // -C/--cwd; os.Getwd() when empty
	ConfigPath       string            // -c/--config
	PostsDirOverride string            // --posts-dir; empty means no override
	Env              map[string]string // environment variables
}

// GlobalPath returns $XDG_CONFIG_HOME/flatblog/config.json, falling back to
// ~/.config/flatblog/config.json. Empty if neither variable is set.
func GlobalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "flatblog", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "flatblog", "config.json")
	}

	return ""
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config
//  3. Project config (.flatblog.json in the working directory), or the
//     explicit --config file instead when one is given
//  4. CLI overrides
//
// Relative posts_dir values resolve against the working directory.
func Load(input Input) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
	}

	cfg := Default()

	if globalPath := GlobalPath(input.Env); globalPath != "" {
		loaded, loadErr := mergeFile(&cfg, globalPath, false)
		if loadErr != nil {
			return Config{}, loadErr
		}

		if loaded {
			cfg.Sources.Global = globalPath
		}
	}

	projectPath := filepath.Join(workDir, FileName)
	mustExist := false

	if input.ConfigPath != "" {
		projectPath = input.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(workDir, projectPath)
		}

		mustExist = true
	}

	loaded, err := mergeFile(&cfg, projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg.Sources.Project = projectPath
	}

	if input.PostsDirOverride != "" {
		cfg.PostsDir = input.PostsDirOverride
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, validateErr)
	}

	cfg.EffectiveCwd = workDir

	cfg.PostsDirAbs = cfg.PostsDir
	if !filepath.IsAbs(cfg.PostsDirAbs) {
		cfg.PostsDirAbs = filepath.Join(workDir, cfg.PostsDirAbs)
	}

	return cfg, nil
}

// mergeFile overlays the config file at path onto cfg. A missing file is not
// an error unless mustExist is set. Reports whether the file was loaded.
func mergeFile(cfg *Config, path string, mustExist bool) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}

			return false, nil
		}

		return false, fmt.Errorf("%w %s: %w", ErrFileRead, path, err)
	}

	overlay, err := parse(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	if overlay.PostsDir != nil && *overlay.PostsDir == "" {
		return false, fmt.Errorf("%w %s: %w", ErrInvalid, path, ErrPostsDirEmpty)
	}

	merge(cfg, overlay)

	return true, nil
}

func parse(data []byte) (fileConfig, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var fc fileConfig

	unmarshalErr := json.Unmarshal(standardized, &fc)
	if unmarshalErr != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return fc, nil
}

func merge(cfg *Config, overlay fileConfig) {
	setString(&cfg.PostsDir, overlay.PostsDir)
	setString(&cfg.Addr, overlay.Addr)
	setString(&cfg.SiteTitle, overlay.SiteTitle)
	setString(&cfg.LogLevel, overlay.LogLevel)
	setString(&cfg.LogFormat, overlay.LogFormat)

	// An explicit [] clears the markers.
	if overlay.Hidden != nil {
		cfg.Hidden = overlay.Hidden
	}

	if overlay.Markdown != nil {
		cfg.Markdown = *overlay.Markdown
	}
}

func setString(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

// Validate checks the merged configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PostsDir, validation.Required.Error(ErrPostsDirEmpty.Error())),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	)
}

// Format returns the config as indented JSON followed by its sources, the
// way print-config shows it.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	var b strings.Builder

	b.Write(data)
	b.WriteString("\n\n# sources\n")

	switch {
	case cfg.Sources.Global == "" && cfg.Sources.Project == "":
		b.WriteString("(defaults only)\n")
	default:
		if cfg.Sources.Global != "" {
			b.WriteString("global_config=" + cfg.Sources.Global + "\n")
		}

		if cfg.Sources.Project != "" {
			b.WriteString("project_config=" + cfg.Sources.Project + "\n")
		}
	}

	b.WriteString("posts_dir_abs=" + cfg.PostsDirAbs + "\n")

	return b.String(), nil
}

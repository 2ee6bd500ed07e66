package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Board   BoardConfig   `toml:"board"`
	Keys    KeyConfig     `toml:"keys"`
}

type StorageConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	ShowHidden     bool `toml:"show_hidden"`
	ActivityWindow int  `toml:"activity_window"`
}

type KeyConfig struct {
	EditMode string `toml:"edit_mode"`
	Save     string `toml:"save"`
	Reset    string `toml:"reset"`
	Undo     string `toml:"undo"`
	Redo     string `toml:"redo"`
}

func Default(dbPath string) Config {
	return Config{
		Storage: StorageConfig{
			Path: dbPath,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
			},
		},
		Board: BoardConfig{
			ShowHidden:     false,
			ActivityWindow: 50,
		},
		Keys: KeyConfig{
			EditMode: "e",
			Save:     "s",
			Reset:    "R",
			Undo:     "z",
			Redo:     "Z",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage path is required")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.Board.ActivityWindow < 0 {
		return errors.New("board.activity_window must be >= 0")
	}

	keys := map[string]string{
		"keys.edit_mode": c.Keys.EditMode,
		"keys.save":      c.Keys.Save,
		"keys.reset":     c.Keys.Reset,
		"keys.undo":      c.Keys.Undo,
		"keys.redo":      c.Keys.Redo,
	}
	seen := map[string]string{}
	for name, val := range keys {
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("%s is required", name)
		}
		if prev, ok := seen[val]; ok {
			return fmt.Errorf("%s and %s are both bound to %q", prev, name, val)
		}
		seen[val] = name
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

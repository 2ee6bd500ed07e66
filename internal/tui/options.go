package tui

// BoardConfig carries board rendering settings from the TOML config.
type BoardConfig struct {
	ShowHidden     bool
	ActivityWindow int
}

// Option defines a functional option for model configuration.
type Option func(*Model)

// DefaultBoardConfig returns the board defaults used without a config file.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ShowHidden:     false,
		ActivityWindow: 50,
	}
}

// WithBoardConfig applies board rendering settings.
func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		if cfg.ActivityWindow <= 0 {
			cfg.ActivityWindow = DefaultBoardConfig().ActivityWindow
		}
		m.board = cfg
		m.showHidden = cfg.ShowHidden
	}
}

// WithKeyOverrides applies configurable key bindings.
func WithKeyOverrides(overrides KeyOverrides) Option {
	return func(m *Model) {
		m.keys = newKeyMap(overrides)
	}
}

// WithClipboard overrides the clipboard write function (used in tests).
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}

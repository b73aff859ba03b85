// Package config loads nerdbook configuration: user-tunable editor display
// settings (with per-language overrides) plus app-level preferences. The
// renderer merges a small set of fixed, non-negotiable overrides on top so
// every cell renders uniformly regardless of user-global editor settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Fixed display constants applied to every embedded cell editor. These are
// deliberately not configurable: uniform cell chrome is what keeps the
// virtualized list visually stable while templates are recycled.
const (
	EditorPaddingTop    = 1
	EditorPaddingBottom = 1
	EditorMaxLines      = 64
)

// Config is the top-level configuration tree.
type Config struct {
	Editor EditorConfig
	UI     UIConfig
	Kernel KernelConfig
}

// EditorConfig holds user-tunable editor display settings. Languages maps a
// language id (e.g. "go", "markdown") to overrides for that language.
type EditorConfig struct {
	TabSize   int  `mapstructure:"tab_size"`
	WordWrap  bool `mapstructure:"word_wrap"`
	Languages map[string]EditorOverride
}

// EditorOverride is a sparse per-language override of EditorConfig.
type EditorOverride struct {
	TabSize  *int  `mapstructure:"tab_size"`
	WordWrap *bool `mapstructure:"word_wrap"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme      string
	LineHeight int `mapstructure:"line_height"`
}

// KernelConfig holds execution settings.
type KernelConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// EditorOptions is the fully resolved option set handed to the editor host:
// the user settings for a language with the fixed overrides merged in.
type EditorOptions struct {
	TabSize       int
	WordWrap      bool
	PaddingTop    int
	PaddingBottom int
	MaxLines      int
	// Always-off chrome. Present so callers never consult user settings
	// for these; see the package comment.
	ShowLineNumbers bool
	ShowGutter      bool
}

// ForLanguage resolves the editor options for a language, applying the
// per-language override and then the fixed constants.
func (c Config) ForLanguage(lang string) EditorOptions {
	opts := EditorOptions{
		TabSize:  c.Editor.TabSize,
		WordWrap: c.Editor.WordWrap,
	}
	if ov, ok := c.Editor.Languages[lang]; ok {
		if ov.TabSize != nil {
			opts.TabSize = *ov.TabSize
		}
		if ov.WordWrap != nil {
			opts.WordWrap = *ov.WordWrap
		}
	}
	opts.PaddingTop = EditorPaddingTop
	opts.PaddingBottom = EditorPaddingBottom
	opts.MaxLines = EditorMaxLines
	opts.ShowLineNumbers = false
	opts.ShowGutter = false
	return opts
}

// Load reads configuration from file and env. Env overrides use prefix
// NERDBOOK_ (e.g. NERDBOOK_UI_THEME).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("editor.tab_size", 4)
	v.SetDefault("editor.word_wrap", true)
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("ui.line_height", 1)
	v.SetDefault("kernel.timeout_seconds", 30)

	v.SetConfigType("yaml")

	if cfgPath := os.Getenv("NERDBOOK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "nerdbook"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("NERDBOOK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Default returns the built-in configuration without touching disk or env.
func Default() Config {
	return Config{
		Editor: EditorConfig{TabSize: 4, WordWrap: true},
		UI:     UIConfig{Theme: "dark", LineHeight: 1},
		Kernel: KernelConfig{TimeoutSeconds: 30},
	}
}

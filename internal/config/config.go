// Package config loads vela settings from a YAML file, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/vela/internal/export"
	"github.com/rcliao/vela/internal/layout"
	"github.com/rcliao/vela/internal/model"
)

// Config is the full vela configuration.
type Config struct {
	Accent string       `yaml:"accent"`
	Preset string       `yaml:"preset"`
	Ratio  string       `yaml:"ratio"`
	Font   string       `yaml:"font"`
	AI     AIConfig     `yaml:"ai"`
	Export ExportConfig `yaml:"export"`
}

// AIConfig selects the layout designer.
type AIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"-"` // environment only
}

// ExportConfig controls PNG export.
type ExportConfig struct {
	Dir          string        `yaml:"dir"`
	SettleBefore time.Duration `yaml:"settle_before"`
	SettleAfter  time.Duration `yaml:"settle_after"`
}

// Default returns the built-in settings: lime accent, Kinetic Type,
// 9:16, Bebas Neue, AI on through Anthropic.
func Default() Config {
	return Config{
		Accent: model.AccentLime,
		Preset: model.PresetKineticType,
		Ratio:  "9:16",
		Font:   "Bebas Neue",
		AI: AIConfig{
			Enabled:  true,
			Provider: layout.ProviderAnthropic,
		},
		Export: ExportConfig{
			Dir:          ".",
			SettleBefore: export.DefaultSettleBefore,
			SettleAfter:  export.DefaultSettleAfter,
		},
	}
}

// Load reads a .env file from the working directory if present, then the
// YAML file at path (a missing file yields defaults), then applies
// environment overrides.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		contents, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(contents, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal config: %w", err)
			}
		}
	}
	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyEnv overrides settings from VELA_* variables and API keys.
func (c *Config) ApplyEnv() {
	if v, ok := os.LookupEnv("VELA_AI"); ok {
		c.AI.Enabled = parseSwitch(v, c.AI.Enabled)
	}
	if v := os.Getenv("VELA_AI_PROVIDER"); v != "" {
		c.AI.Provider = v
	}
	if v := os.Getenv("VELA_AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("VELA_AI_URL"); v != "" {
		c.AI.BaseURL = v
	}
	if v := os.Getenv("VELA_EXPORT_DIR"); v != "" {
		c.Export.Dir = v
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	switch c.AI.Provider {
	case layout.ProviderOpenAI:
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		c.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

func parseSwitch(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "yes":
		return true
	case "0", "off", "false", "no":
		return false
	}
	return def
}

// ApplyDefaults fills fields the YAML left empty.
func (c *Config) ApplyDefaults() {
	d := Default()
	c.Accent = strings.TrimSpace(c.Accent)
	if c.Accent == "" {
		c.Accent = d.Accent
	}
	if c.Preset == "" {
		c.Preset = d.Preset
	}
	if c.Ratio == "" {
		c.Ratio = d.Ratio
	}
	if c.Font == "" {
		c.Font = d.Font
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = d.AI.Provider
	}
	if c.Export.Dir == "" {
		c.Export.Dir = d.Export.Dir
	}
	if c.Export.SettleBefore == 0 {
		c.Export.SettleBefore = d.Export.SettleBefore
	}
	if c.Export.SettleAfter == 0 {
		c.Export.SettleAfter = d.Export.SettleAfter
	}
}

// Validate rejects unknown names and raises settle delays to the minimum.
func (c *Config) Validate() error {
	if !model.IsHexColor(c.Accent) {
		return fmt.Errorf("invalid accent %q: want a hex color like #d4f73c", c.Accent)
	}
	if !model.ValidPresets[c.Preset] {
		return fmt.Errorf("invalid preset %q (valid: %s)", c.Preset, strings.Join(model.Presets, ", "))
	}
	if _, ok := model.Ratios[c.Ratio]; !ok {
		return fmt.Errorf("invalid ratio %q (valid: 9:16, 16:9, 1:1)", c.Ratio)
	}
	if !model.ValidFonts[c.Font] {
		return fmt.Errorf("invalid font %q (valid: %s)", c.Font, strings.Join(model.Fonts, ", "))
	}
	switch c.AI.Provider {
	case layout.ProviderAnthropic, layout.ProviderOpenAI:
	default:
		return fmt.Errorf("invalid ai provider %q (valid: anthropic, openai)", c.AI.Provider)
	}
	c.Export.SettleBefore = max(c.Export.SettleBefore, export.MinSettle)
	c.Export.SettleAfter = max(c.Export.SettleAfter, export.MinSettle)
	return nil
}

// DesignerOptions returns the layout provider settings.
func (c Config) DesignerOptions() layout.Options {
	return layout.Options{
		Provider: c.AI.Provider,
		Model:    c.AI.Model,
		BaseURL:  c.AI.BaseURL,
		APIKey:   c.AI.APIKey,
	}
}

// RatioValue returns the configured preview box.
func (c Config) RatioValue() model.Ratio {
	if r, ok := model.Ratios[c.Ratio]; ok {
		return r
	}
	return model.Ratios["9:16"]
}

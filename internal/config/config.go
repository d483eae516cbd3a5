package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all echolon configuration.
type Config struct {
	General    GeneralConfig      `toml:"general"`
	Benchmarks BenchmarkOverrides `toml:"benchmarks"`
	Goals      GoalsConfig        `toml:"goals"`
	Scenario   ScenarioConfig     `toml:"scenario"`
	Vault      VaultConfig        `toml:"vault"`
	AI         AIConfig           `toml:"ai"`
	Server     ServerConfig       `toml:"server"`
	Appearance AppearanceConfig   `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Industry string `toml:"industry"`
	Seed     int64  `toml:"seed"`
	Periods  int    `toml:"periods"`
	DataDir  string `toml:"data_dir,omitempty"`
}

// GoalsConfig holds the monthly targets used by goal tracking.
type GoalsConfig struct {
	Revenue        float64 `toml:"revenue"`
	ConversionRate float64 `toml:"conversion_rate"`
	Orders         float64 `toml:"orders"`
}

// ScenarioConfig holds scenario and goal-projection settings.
type ScenarioConfig struct {
	// DailyPace is the assumed revenue gain per day used to predict goal dates.
	DailyPace float64 `toml:"daily_pace"`
}

// VaultConfig holds context vault settings.
type VaultConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	UserID  string `toml:"user_id,omitempty"`
	Token   string `toml:"token,omitempty"`
}

// AIConfig holds settings for live insight summaries.
type AIConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	Model   string `toml:"model,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// Default values shared by config and callers that run without a config file.
const (
	DefaultIndustry  = "general"
	DefaultSeed      = 9
	DefaultPeriods   = 7
	DefaultDailyPace = 2000
	DefaultUserID    = "demo-user"
	DefaultAIModel   = "gpt-4o-mini"
	DefaultAddr      = "127.0.0.1:8787"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Industry: DefaultIndustry,
			Seed:     DefaultSeed,
			Periods:  DefaultPeriods,
		},
		Goals: GoalsConfig{
			Revenue:        120000,
			ConversionRate: 0.10,
			Orders:         50,
		},
		Scenario: ScenarioConfig{
			DailyPace: DefaultDailyPace,
		},
		Vault: VaultConfig{
			UserID: DefaultUserID,
		},
		AI: AIConfig{
			Model: DefaultAIModel,
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "echolon")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "echolon")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillZeroes()

	return cfg, nil
}

// fillZeroes restores defaults for keys a partial file left empty.
func (c *Config) fillZeroes() {
	def := DefaultConfig()
	if c.General.Industry == "" {
		c.General.Industry = def.General.Industry
	}
	if c.General.Periods <= 0 {
		c.General.Periods = def.General.Periods
	}
	if c.Scenario.DailyPace <= 0 {
		c.Scenario.DailyPace = def.Scenario.DailyPace
	}
	if c.Vault.UserID == "" {
		c.Vault.UserID = def.Vault.UserID
	}
	if c.AI.Model == "" {
		c.AI.Model = def.AI.Model
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = def.Appearance.Theme
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to an explicit path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-supplied config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// GetVaultToken returns the vault token from env var or config, in that order.
func GetVaultToken(cfg Config) string {
	if tok := os.Getenv("ECHOLON_VAULT_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Vault.Token
}

// GetOpenAIKey returns the OpenAI key from env var or config, in that order.
func GetOpenAIKey(cfg Config) string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return cfg.AI.APIKey
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGameURL      = "https://melvoridle.com/"
	DefaultGloveSlot    = "melvorD:Gloves"
	DefaultPollInterval = 10 * time.Second
	MinPollInterval     = 5 * time.Second
	MaxPollInterval     = 10 * time.Second
)

// Duration accepts "10s" style strings in both yaml and toml files.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(v)

	return nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	GameURL       string `yaml:"game_url" toml:"game_url"`
	Username      string `yaml:"username" toml:"username"`
	Password      string `yaml:"password" toml:"password"`
	CharacterName string `yaml:"character_name" toml:"character_name"`

	PrimaryOre     string            `yaml:"primary_ore" toml:"primary_ore"`
	FallbackOres   []string          `yaml:"fallback_ores" toml:"fallback_ores"`
	Gloves         map[string]string `yaml:"gloves" toml:"gloves"`
	GlovesRequired *bool             `yaml:"gloves_required" toml:"gloves_required"`
	GloveSlot      string            `yaml:"glove_slot" toml:"glove_slot"`
	EquipmentSet   int               `yaml:"equipment_set" toml:"equipment_set"`

	PollInterval  Duration `yaml:"poll_interval" toml:"poll_interval"`
	ConfirmWindow Duration `yaml:"confirm_window" toml:"confirm_window"`
	ConfirmPoll   Duration `yaml:"confirm_poll" toml:"confirm_poll"`
	RetryAttempts int      `yaml:"retry_attempts" toml:"retry_attempts"`
	RetryDelay    Duration `yaml:"retry_delay" toml:"retry_delay"`

	Browser  BrowserCfg  `yaml:"browser" toml:"browser"`
	Log      LogCfg      `yaml:"log" toml:"log"`
	Discord  DiscordCfg  `yaml:"discord" toml:"discord"`
	Telegram TelegramCfg `yaml:"telegram" toml:"telegram"`
	Journal  JournalCfg  `yaml:"journal" toml:"journal"`
}

type BrowserCfg struct {
	Headless        bool      `yaml:"headless" toml:"headless"`
	ChromePath      string    `yaml:"chrome_path" toml:"chrome_path"`
	UserDataDir     string    `yaml:"user_data_dir" toml:"user_data_dir"`
	ProfileTemplate string    `yaml:"profile_template" toml:"profile_template"`
	ReadyTimeout    Duration  `yaml:"ready_timeout" toml:"ready_timeout"`
	Selectors       Selectors `yaml:"selectors" toml:"selectors"`
}

// Selectors for the login and character select pages.
type Selectors struct {
	Username      string `yaml:"username" toml:"username"`
	Password      string `yaml:"password" toml:"password"`
	LoginButton   string `yaml:"login_button" toml:"login_button"`
	CharacterSlot string `yaml:"character_slot" toml:"character_slot"`
}

type LogCfg struct {
	Level string `yaml:"level" toml:"level"`
	Dir   string `yaml:"dir" toml:"dir"`
	Debug bool   `yaml:"debug" toml:"debug"`
}

type DiscordCfg struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Token     string `yaml:"token" toml:"token"`
	ChannelID string `yaml:"channel_id" toml:"channel_id"`
}

type TelegramCfg struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Token   string `yaml:"token" toml:"token"`
	ChatID  int64  `yaml:"chat_id" toml:"chat_id"`
}

type JournalCfg struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Path    string `yaml:"path" toml:"path"`
}

// RequireGloves reports whether every mined ore must have a glove mapping.
func (c *Config) RequireGloves() bool {
	return c.GlovesRequired == nil || *c.GlovesRequired
}

// Load reads the config file (yaml or toml, chosen by extension), then applies the optional
// .env file and environment overrides, then defaults.
func Load(path, envFile string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("error parsing toml config %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing yaml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}
	cfg.applyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Username, "MELVOR_USERNAME")
	setFromEnv(&c.Password, "MELVOR_PASSWORD")
	setFromEnv(&c.CharacterName, "CHARACTER_NAME")
	setFromEnv(&c.Discord.Token, "DISCORD_TOKEN")
	setFromEnv(&c.Telegram.Token, "TELEGRAM_TOKEN")

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Telegram.ChatID = id
		}
	}
}

func setFromEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// ApplyDefaults fills every unset option with its default value.
func (c *Config) ApplyDefaults() {
	if c.GameURL == "" {
		c.GameURL = DefaultGameURL
	}
	if c.GloveSlot == "" {
		c.GloveSlot = DefaultGloveSlot
	}
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.ConfirmWindow == 0 {
		c.ConfirmWindow = Duration(15 * time.Second)
	}
	if c.ConfirmPoll == 0 {
		c.ConfirmPoll = Duration(time.Second)
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = Duration(time.Second)
	}
	if c.Browser.ReadyTimeout == 0 {
		c.Browser.ReadyTimeout = Duration(2 * time.Minute)
	}
	if c.Browser.Selectors.Username == "" {
		c.Browser.Selectors.Username = "#username-set-main"
	}
	if c.Browser.Selectors.Password == "" {
		c.Browser.Selectors.Password = "#password-set-main"
	}
	if c.Browser.Selectors.LoginButton == "" {
		c.Browser.Selectors.LoginButton = "#btn-login-main"
	}
	if c.Browser.Selectors.CharacterSlot == "" {
		c.Browser.Selectors.CharacterSlot = ".character-selection"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "journal.db"
	}
	if c.Gloves == nil {
		c.Gloves = map[string]string{}
	}
}

// Validate checks the ore priority configuration and timings.
func (c *Config) Validate() error {
	if c.PrimaryOre == "" {
		return errors.New("primary_ore must be set")
	}

	seen := make(map[string]struct{}, len(c.FallbackOres))
	for _, ore := range c.FallbackOres {
		if ore == "" {
			return errors.New("fallback_ores contains an empty ore id")
		}
		if ore == c.PrimaryOre {
			return fmt.Errorf("primary ore %s must not be listed in fallback_ores", ore)
		}
		if _, dup := seen[ore]; dup {
			return fmt.Errorf("fallback ore %s listed more than once", ore)
		}
		seen[ore] = struct{}{}
	}

	if p := c.PollInterval.Std(); p < MinPollInterval || p > MaxPollInterval {
		return fmt.Errorf("poll_interval must be between %s and %s, got %s", MinPollInterval, MaxPollInterval, p)
	}
	if c.ConfirmPoll.Std() <= 0 || c.ConfirmWindow.Std() < c.ConfirmPoll.Std() {
		return fmt.Errorf("confirm_window (%s) must be at least confirm_poll (%s)", c.ConfirmWindow.Std(), c.ConfirmPoll.Std())
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", c.RetryAttempts)
	}
	if c.Discord.Enabled && (c.Discord.Token == "" || c.Discord.ChannelID == "") {
		return errors.New("discord is enabled but token or channel_id is missing")
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		return errors.New("telegram is enabled but token or chat_id is missing")
	}

	return nil
}

// Ores returns the primary ore followed by the fallbacks in priority order.
func (c *Config) Ores() []string {
	return append([]string{c.PrimaryOre}, c.FallbackOres...)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const Version = "v1.0.0"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Bind modes decide which prompt/template a completion renders.
const (
	BindAtCompletion = "completion"
	BindAtSubmit     = "submit"
)

type Config struct {
	GenerationDelay time.Duration `mapstructure:"generation_delay"`
	BindPromptAt    string        `mapstructure:"bind_prompt_at"`
	AllowOverlap    bool          `mapstructure:"allow_overlap"`
	ServerHost      string        `mapstructure:"server_host"`
	ServerPort      int           `mapstructure:"server_port"`
	Theme           string        `mapstructure:"theme"`
	CodeStyle       string        `mapstructure:"code_style"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFile         string        `mapstructure:"log_file"`
	HistoryFile     string        `mapstructure:"history_file"`
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		GenerationDelay: 2 * time.Second,
		BindPromptAt:    BindAtCompletion,
		AllowOverlap:    true,
		ServerHost:      "127.0.0.1",
		ServerPort:      3000,
		Theme:           "light",
		CodeStyle:       "dracula",
		LogLevel:        "info",
		LogFile:         dataFile("appgen.log"),
		HistoryFile:     dataFile("history.json"),
	}
}

// dataFile places name under ~/.appgen, or the temp dir without a home.
func dataFile(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "appgen-"+name)
	}
	return filepath.Join(home, ".appgen", name)
}

// Keys lists every recognised config key.
var Keys = []string{
	"generation_delay", "bind_prompt_at", "allow_overlap",
	"server_host", "server_port", "theme", "code_style",
	"log_level", "log_file", "history_file",
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("generation_delay", d.GenerationDelay)
	v.SetDefault("bind_prompt_at", d.BindPromptAt)
	v.SetDefault("allow_overlap", d.AllowOverlap)
	v.SetDefault("server_host", d.ServerHost)
	v.SetDefault("server_port", d.ServerPort)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("code_style", d.CodeStyle)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("history_file", d.HistoryFile)
}

func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	viper.AddConfigPath(home)
	viper.SetConfigName(".appgen")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("APPGEN")
	viper.AutomaticEnv()

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return decode(viper.GetViper())
}

// LoadFrom reads a single explicit config file. Used by tests and --config.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects values the controller and server cannot run with.
func (c *Config) Validate() error {
	if c.GenerationDelay <= 0 {
		return fmt.Errorf("%w: generation_delay must be positive, got %s", ErrInvalid, c.GenerationDelay)
	}
	switch c.BindPromptAt {
	case BindAtCompletion, BindAtSubmit:
	default:
		return fmt.Errorf("%w: bind_prompt_at must be %q or %q, got %q", ErrInvalid, BindAtCompletion, BindAtSubmit, c.BindPromptAt)
	}
	switch strings.ToLower(c.Theme) {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: theme must be light or dark, got %q", ErrInvalid, c.Theme)
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("%w: server_port out of range: %d", ErrInvalid, c.ServerPort)
	}
	return nil
}

// Addr is the host:port the web server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Watch reloads the global config on file changes and hands the fresh,
// validated value to fn. Invalid edits are reported through onErr and ignored.
func Watch(fn func(*Config), onErr func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(viper.GetViper())
		if err != nil {
			if onErr != nil {
				onErr(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(cfg)
	})
	viper.WatchConfig()
}

func SaveConfig(key string, value interface{}) error {
	viper.Set(key, value)
	return Write()
}

func Write() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(home, ".appgen.yaml")
	return viper.WriteConfigAs(configPath)
}

func Set(key string, value interface{}) {
	viper.Set(key, value)
}

func GetString(key string) string {
	return viper.GetString(key)
}

// Clean rewrites the config file at path, dropping unknown keys and keys
// whose value fails validation so that their defaults apply again. It
// returns the removed keys in sorted order. With dryRun the file is left
// untouched.
func Clean(path string, dryRun bool) ([]string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	out := viper.New()
	var removed []string
	for _, key := range v.AllKeys() {
		if !slices.Contains(Keys, key) || !validValue(key, v.Get(key)) {
			removed = append(removed, key)
			continue
		}
		out.Set(key, v.Get(key))
	}
	sort.Strings(removed)
	if dryRun || len(removed) == 0 {
		return removed, nil
	}

	if err := out.WriteConfigAs(path); err != nil {
		return nil, fmt.Errorf("write config %s: %w", path, err)
	}
	return removed, nil
}

func validValue(key string, value interface{}) bool {
	v := viper.New()
	setDefaults(v)
	v.Set(key, value)
	_, err := decode(v)
	return err == nil
}

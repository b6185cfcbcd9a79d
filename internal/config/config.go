// Package config loads csmatchstats settings from a config file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leighmacdonald/steamid/v4/steamid"
	"github.com/spf13/viper"

	"github.com/pable/go-cs-matchstats/internal/model"
)

var ErrInvalidObserver = errors.New("invalid observer steam id")

type Config struct {
	DB       string      `mapstructure:"db"`
	Log      LogConfig   `mapstructure:"log"`
	Match    MatchConfig `mapstructure:"match"`
	Observer string      `mapstructure:"observer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type MatchConfig struct {
	HalfLength  int           `mapstructure:"half_length"`
	TradeWindow time.Duration `mapstructure:"trade_window"`
}

// ObserverID parses the configured default observer. An empty setting yields
// the zero identity.
func (c Config) ObserverID() (model.PlayerID, error) {
	return ParseSteamID(c.Observer)
}

// ParseSteamID accepts any steam id format the steamid package understands.
// An empty string yields the zero identity.
func ParseSteamID(s string) (model.PlayerID, error) {
	if s == "" {
		return model.PlayerID{}, nil
	}
	sid := steamid.New(s)
	if !sid.Valid() {
		return model.PlayerID{}, fmt.Errorf("%w: %q", ErrInvalidObserver, s)
	}
	return sid, nil
}

// Dir is the default directory for the config file and database.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".csmatchstats")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.AddConfigPath(Dir())
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetEnvPrefix("csmatchstats")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaultConfig := map[string]any{
		"db":                 filepath.Join(Dir(), "matches.db"),
		"log.level":          "warn",
		"log.file":           "",
		"match.half_length":  12,
		"match.trade_window": "5s",
		"observer":           "",
	}
	for k, val := range defaultConfig {
		v.SetDefault(k, val)
	}
	return v
}

// Read loads configFile, or searches the default locations when it is empty,
// and decodes the result. A missing config file is fine unless one was named
// explicitly.
func Read(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	if errReadConfig := v.ReadInConfig(); errReadConfig != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(errReadConfig, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", errReadConfig)
		}
	}

	var conf Config
	if errUnmarshal := v.Unmarshal(&conf); errUnmarshal != nil {
		return Config{}, fmt.Errorf("invalid config file format: %w", errUnmarshal)
	}
	if conf.Match.HalfLength <= 0 {
		return Config{}, fmt.Errorf("match.half_length must be positive, got %d", conf.Match.HalfLength)
	}
	if conf.Match.TradeWindow <= 0 {
		return Config{}, fmt.Errorf("match.trade_window must be positive, got %s", conf.Match.TradeWindow)
	}
	if _, err := conf.ObserverID(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

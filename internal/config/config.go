package config

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode             string        `mapstructure:"mode"`
	Port             int           `mapstructure:"port"`
	Secret           string        `mapstructure:"secret"`
	DirectoryURL     string        `mapstructure:"directory_url"`
	DirectoryTimeout time.Duration `mapstructure:"directory_timeout"`
	SignalURL        string        `mapstructure:"signal_url"`
}

// Flags reads runtime flags straight from viper on every call, no caching.
// Load watches the config file, so an edited flag takes effect on the next
// read without a restart.
type Flags struct {
	v *viper.Viper
}

func (f *Flags) Bool(key string) bool {
	return f.v.GetBool(key)
}

func Load() (*Config, *Flags, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("directory_url", "http://localhost:8090")
	v.SetDefault("directory_timeout", "10s")
	v.SetDefault("signal_url", "ws://localhost:8091/signal")
	v.SetDefault("voip.obey_asserted_identity", false)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("config loaded")
		v.WatchConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, &Flags{v: v}, nil
}

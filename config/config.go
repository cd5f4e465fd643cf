package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hogwarts-cloud/hpcctl/internal/hoststack"
	"github.com/hogwarts-cloud/hpcctl/internal/mailrelay"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const EnvPrefix = "HPCCTL"

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Host struct {
	RouteTable string `mapstructure:"route_table"`
	ResolvConf string `mapstructure:"resolv_conf"`
}

type Relay struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	LocalName string        `mapstructure:"local_name"`
}

type Config struct {
	Log   Log   `mapstructure:"log"`
	Host  Host  `mapstructure:"host"`
	Relay Relay `mapstructure:"relay"`
}

// Load reads the tool settings. An empty path uses defaults and the
// environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("host.route_table", hoststack.DefaultRouteTable)
	v.SetDefault("host.resolv_conf", hoststack.DefaultResolvConf)
	v.SetDefault("relay.timeout", mailrelay.DefaultTimeout)
	v.SetDefault("relay.local_name", "localhost")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		))); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

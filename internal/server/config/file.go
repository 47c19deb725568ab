package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dmitrijs2005/gnmweb/internal/flagx"
)

// EnvPrefix prefixes environment variables, e.g. GNM_API_BASE_URL.
const EnvPrefix = "GNM"

// loadEnvFile exports variables from the file given with -env, or from ./.env
// when present. Variables already set in the environment win.
func loadEnvFile(args []string) error {
	path := flagx.EnvFile(args)
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// parseFile overlays the file given with -c/-config and GNM_* environment
// variables on top of the current values of config.
func parseFile(config *Config, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows, so register every
	// field with its current value as the default.
	rv := reflect.ValueOf(config).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		if key := rt.Field(i).Tag.Get("mapstructure"); key != "" {
			v.SetDefault(key, rv.Field(i).Interface())
		}
	}

	if path := flagx.ConfigFile(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

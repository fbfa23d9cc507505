package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "SHARDKV_"

// LoadFile merges an optional config file and SHARDKV_* environment
// variables into cfg. File values override defaults; environment
// variables override the file. Flag handling stays in main, which
// applies flags last.
func LoadFile(path string, cfg *Config) error {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// Viper's AutomaticEnv does not surface unknown keys to Unmarshal,
	// so mirror the environment into explicit Set calls.
	// SHARDKV_FILE_CODEC=cbor -> file.codec
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, envPrefix) {
			propKey := strings.TrimPrefix(key, envPrefix)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")
			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

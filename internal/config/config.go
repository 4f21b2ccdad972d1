// Package config loads civicmap's runtime configuration the way spec.md §6
// "Configuration" describes: a .env file, then the process environment,
// then CLI flags, with later sources winning. Built on viper/cobra the way
// steveyegge-beads wires its own CLI config, generalized from a single
// config struct to civicmap's option set.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is every option a running civicmap-api process needs.
type Config struct {
	Addr                 string
	DBURL                string
	DBConnectionPoolSize int
	IndexDir             string
	EnableCORS           bool
	SessionHashKey       string
	SessionBlockKey      string
}

// Load builds a Config from (in increasing priority) defaults, a .env file
// in the working directory, the process environment (CIVICMAP_ prefixed),
// and flags already parsed onto fs.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_url", "data/civicmap.sqlite")
	v.SetDefault("db_connection_pool_size", 1)
	v.SetDefault("index_dir", "data/index")
	v.SetDefault("enable_cors", false)
	v.SetDefault("session_hash_key", "")
	v.SetDefault("session_block_key", "")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("civicmap")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, err
		}
	}

	return Config{
		Addr:                 v.GetString("addr"),
		DBURL:                v.GetString("db_url"),
		DBConnectionPoolSize: v.GetInt("db_connection_pool_size"),
		IndexDir:             v.GetString("index_dir"),
		EnableCORS:           v.GetBool("enable_cors"),
		SessionHashKey:       v.GetString("session_hash_key"),
		SessionBlockKey:      v.GetString("session_block_key"),
	}, nil
}

// RegisterFlags binds the CLI flags Load understands onto fs, so cobra
// commands can share one flag set with viper's override layer.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("db_url", "data/civicmap.sqlite", "sqlite database file path")
	fs.Int("db_connection_pool_size", 1, "sqlite connection pool size (loaded into Config; the store always opens a single connection)")
	fs.String("index_dir", "data/index", "search index directory (loaded into Config; the search index is held in memory and does not use it)")
	fs.Bool("enable_cors", false, "enable permissive CORS for the HTTP API")
	fs.String("session_hash_key", "", "hex-encoded session cookie HMAC key")
	fs.String("session_block_key", "", "hex-encoded session cookie AES key")
}

// Package config holds runtime settings for the field CLI.
package config

import (
	"flag"
	"time"
)

type Config struct {
	// ServerURL is the base URL of the hub, e.g. http://localhost:8080.
	ServerURL string
	// DBPath is the SQLite file backing the on-device capture store.
	DBPath string
	// OnlineCheckInterval is how often the client probes server reachability.
	OnlineCheckInterval time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.DBPath = "osca-field.db"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig applies defaults and overlays command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()

	flag.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the hub server")
	flag.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to the local capture database")
	interval := flag.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	flag.Parse()

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return cfg
}

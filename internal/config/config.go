// Package config loads server configuration from an optional YAML file,
// with environment variables overriding individual fields — the same
// pattern the rest of the ecosystem uses for small service configs.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Timing holds the concurrency model's production timer constants.
type Timing struct {
	HeartbeatTimeout   time.Duration `yaml:"heartbeat_timeout"`
	DisconnectGrace    time.Duration `yaml:"disconnect_grace"`
	NextGameDelay      time.Duration `yaml:"next_game_delay"`
	RestartVoteTimeout time.Duration `yaml:"restart_vote_timeout"`
	DickTagCooldown    time.Duration `yaml:"dick_tag_cooldown"`
}

// Config is the full set of tunables for one server process.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataDir    string `yaml:"data_dir"`
	StaticDir  string `yaml:"static_dir"`
	Timing     Timing `yaml:"timing"`
}

// Default returns the production tuning named throughout the design: a 7s
// heartbeat timeout, 60s disconnect grace, a 13s next-game delay, a 30s
// restart vote window, and a 15s dick-tag transfer cooldown.
func Default() Config {
	return Config{
		ListenAddr: ":8080",
		DataDir:    "/elpres",
		StaticDir:  "static",
		Timing: Timing{
			HeartbeatTimeout:   7 * time.Second,
			DisconnectGrace:    60 * time.Second,
			NextGameDelay:      13 * time.Second,
			RestartVoteTimeout: 30 * time.Second,
			DickTagCooldown:    15 * time.Second,
		},
	}
}

// Load reads path (if non-empty and present) over the defaults, then
// applies ELPRES_DATA and ELPRES_ADDR environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("ELPRES_DATA"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ELPRES_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	return cfg, nil
}

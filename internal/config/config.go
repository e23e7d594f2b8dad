package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level gateway configuration loaded from file/env.
type Config struct {
	Workers           int           `json:"workers"`
	QueueCapacity     int           `json:"queueCapacity"`
	DrainOnShutdown   bool          `json:"drainOnShutdown"`
	DrainTimeoutMs    int           `json:"drainTimeoutMs"`
	DuplicateWindowMs int           `json:"duplicateWindowMs"`
	OriginHost        string        `json:"originHost"`
	OriginRealm       string        `json:"originRealm"`
	DestinationRealm  string        `json:"destinationRealm"`
	DropExpr          string        `json:"dropExpr"`
	Gateway           Defaults      `json:"gateway"`
	Clients           []ClientEntry `json:"clients"`
}

// ClientEntry declares one known peer. Identity may be empty to skip the
// identity consistency check for that peer.
type ClientEntry struct {
	Addr     string `json:"addr"`
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// Defaults captures per-message baseline limits.
type Defaults struct {
	PayloadMaxBytes int `json:"payloadMaxBytes"`
	AttributesMax   int `json:"attributesMax"`
	AnswerTimeoutMs int `json:"answerTimeoutMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Workers:           2,
		QueueCapacity:     1024,
		DrainOnShutdown:   true,
		DrainTimeoutMs:    5_000,
		DuplicateWindowMs: 30_000,
		OriginHost:        "radgw.localdomain",
		OriginRealm:       "localdomain",
		DestinationRealm:  "localdomain",
		Gateway: Defaults{
			PayloadMaxBytes: 4096,
			AttributesMax:   128,
			AnswerTimeoutMs: 30_000,
		},
	}
}

// Validate rejects configurations the worker pool cannot run with.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Workers)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("config: queueCapacity must be >= 1, got %d", c.QueueCapacity)
	}
	if c.OriginHost == "" || c.OriginRealm == "" {
		return fmt.Errorf("config: originHost and originRealm are required")
	}
	return nil
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

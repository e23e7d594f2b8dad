package config

import (
	"os"
	"strconv"
)

// FromEnv overlays RADGW_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("RADGW_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("RADGW_QUEUE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueCapacity = n
		}
	}
	if v := os.Getenv("RADGW_DRAIN_ON_SHUTDOWN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DrainOnShutdown = b
		}
	}
	if v := os.Getenv("RADGW_DRAIN_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DrainTimeoutMs = n
		}
	}
	if v := os.Getenv("RADGW_DUPLICATE_WINDOW_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DuplicateWindowMs = n
		}
	}
	if v := os.Getenv("RADGW_ORIGIN_HOST"); v != "" {
		cfg.OriginHost = v
	}
	if v := os.Getenv("RADGW_ORIGIN_REALM"); v != "" {
		cfg.OriginRealm = v
	}
	if v := os.Getenv("RADGW_DESTINATION_REALM"); v != "" {
		cfg.DestinationRealm = v
	}
	if v := os.Getenv("RADGW_DROP_EXPR"); v != "" {
		cfg.DropExpr = v
	}
	if v := os.Getenv("RADGW_ANSWER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.AnswerTimeoutMs = n
		}
	}
}

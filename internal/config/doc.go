// Package config provides loading and environment overlay for gateway
// configuration. It exposes a Default() baseline, JSON file loading, and a
// RADGW_* environment overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/radgw.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//	    // refuse to start
//	}
package config

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/maoweiqiang/indigo/pkg/message"
	"github.com/pion/logging"
)

type fileConfig struct {
	Listen           string `toml:"listen"`
	MaxVersion       string `toml:"max_version"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	DisableEchoReply bool   `toml:"disable_echo_reply"`
	LogLevel         string `toml:"log_level"`
}

// loadConfig overlays settings from the TOML file at path onto opts.
// Keys absent from the file leave the current values untouched.
func loadConfig(path string, opts *options) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("listen") {
		opts.Listen = strings.TrimSpace(raw.Listen)
	}

	if meta.IsDefined("max_version") {
		v, err := message.ParseVersion(strings.TrimSpace(raw.MaxVersion))
		if err != nil {
			return fmt.Errorf("parse max_version: %w", err)
		}
		opts.MaxVersion = v
	}

	if meta.IsDefined("handshake_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HandshakeTimeout))
		if err != nil {
			return fmt.Errorf("parse handshake_timeout: %w", err)
		}
		opts.HandshakeTimeout = d
	}

	if meta.IsDefined("disable_echo_reply") {
		opts.DisableEchoReply = raw.DisableEchoReply
	}

	if meta.IsDefined("log_level") {
		lv, err := parseLogLevel(strings.TrimSpace(raw.LogLevel))
		if err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		opts.LogLevel = lv
	}

	return nil
}

// parseLogLevel maps a level name to its pion logging constant.
func parseLogLevel(s string) (logging.LogLevel, error) {
	switch strings.ToLower(s) {
	case "disabled":
		return logging.LogLevelDisabled, nil
	case "error":
		return logging.LogLevelError, nil
	case "warn":
		return logging.LogLevelWarn, nil
	case "info":
		return logging.LogLevelInfo, nil
	case "debug":
		return logging.LogLevelDebug, nil
	case "trace":
		return logging.LogLevelTrace, nil
	default:
		return logging.LogLevelDisabled, fmt.Errorf("unknown log level %q", s)
	}
}

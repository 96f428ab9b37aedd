package config

import (
	"strings"
	"time"

	"grimm.is/ifconf/internal/errors"
)

// Validate checks value ranges. It expects defaults to be filled.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf(errors.KindParse, "log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}

	for name, value := range map[string]string{
		"autoconf.timeout":      c.Autoconf.Timeout,
		"autoconf.dhcp_timeout": c.Autoconf.DHCPTimeout,
		"autoconf.ra_timeout":   c.Autoconf.RATimeout,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Attr(errors.Wrapf(err, errors.KindParse, "invalid %s", name), "value", value)
		}
		if d <= 0 {
			return errors.Errorf(errors.KindParse, "%s must be positive, got %s", name, value)
		}
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return errors.Errorf(errors.KindParse, "output.format must be text, json or yaml, got %q", c.Output.Format)
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf(errors.KindParse, "output.color must be auto, always or never, got %q", c.Output.Color)
	}
	return nil
}

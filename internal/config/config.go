package config

import (
	"time"

	"grimm.is/ifconf/internal/brand"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string    `hcl:"log_level,optional" json:"log_level"`
	LogJSON  bool      `hcl:"log_json,optional" json:"log_json"`
	Autoconf *Autoconf `hcl:"autoconf,block" json:"autoconf"`
	Output   *Output   `hcl:"output,block" json:"output"`
}

// Autoconf configures the auto-configuration service and its clients.
type Autoconf struct {
	Socket        string `hcl:"socket,optional" json:"socket"`
	Timeout       string `hcl:"timeout,optional" json:"timeout"`
	MetricsListen string `hcl:"metrics_listen,optional" json:"metrics_listen,omitempty"`
	DHCPTimeout   string `hcl:"dhcp_timeout,optional" json:"dhcp_timeout"`
	RATimeout     string `hcl:"ra_timeout,optional" json:"ra_timeout"`
	StateDir      string `hcl:"state_dir,optional" json:"state_dir"`
}

// Output configures how listings are rendered.
type Output struct {
	Format string `hcl:"format,optional" json:"format"`
	Color  string `hcl:"color,optional" json:"color"`
}

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Autoconf: &Autoconf{
			Socket:      brand.GetSocketPath(),
			Timeout:     "30s",
			DHCPTimeout: "15s",
			RATimeout:   "10s",
			StateDir:    brand.GetStateDir(),
		},
		Output: &Output{
			Format: FormatText,
			Color:  ColorAuto,
		},
	}
}

// applyDefaults fills every unset field from Default.
func (c *Config) applyDefaults() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Autoconf == nil {
		c.Autoconf = d.Autoconf
	} else {
		a := c.Autoconf
		fill(&a.Socket, d.Autoconf.Socket)
		fill(&a.Timeout, d.Autoconf.Timeout)
		fill(&a.DHCPTimeout, d.Autoconf.DHCPTimeout)
		fill(&a.RATimeout, d.Autoconf.RATimeout)
		fill(&a.StateDir, d.Autoconf.StateDir)
	}
	if c.Output == nil {
		c.Output = d.Output
	} else {
		fill(&c.Output.Format, d.Output.Format)
		fill(&c.Output.Color, d.Output.Color)
	}
}

func fill(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Durations returns the parsed autoconf timeouts. Call Validate first.
func (a *Autoconf) Durations() (timeout, dhcp, ra time.Duration) {
	timeout, _ = time.ParseDuration(a.Timeout)
	dhcp, _ = time.ParseDuration(a.DHCPTimeout)
	ra, _ = time.ParseDuration(a.RATimeout)
	return
}

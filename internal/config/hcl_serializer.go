package config

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Serialize renders c as HCL.
func (c *Config) Serialize() []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("log_level", cty.StringVal(c.LogLevel))
	body.SetAttributeValue("log_json", cty.BoolVal(c.LogJSON))

	if a := c.Autoconf; a != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("autoconf", nil).Body()
		b.SetAttributeValue("socket", cty.StringVal(a.Socket))
		b.SetAttributeValue("timeout", cty.StringVal(a.Timeout))
		if a.MetricsListen != "" {
			b.SetAttributeValue("metrics_listen", cty.StringVal(a.MetricsListen))
		}
		b.SetAttributeValue("dhcp_timeout", cty.StringVal(a.DHCPTimeout))
		b.SetAttributeValue("ra_timeout", cty.StringVal(a.RATimeout))
		b.SetAttributeValue("state_dir", cty.StringVal(a.StateDir))
	}

	if o := c.Output; o != nil {
		body.AppendNewline()
		b := body.AppendNewBlock("output", nil).Body()
		b.SetAttributeValue("format", cty.StringVal(o.Format))
		b.SetAttributeValue("color", cty.StringVal(o.Color))
	}
	return f.Bytes()
}

package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"grimm.is/ifconf/internal/errors"
)

// Load reads path. A missing file yields Default.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil && errors.HasKind(err, errors.KindNotFound) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads path, which must exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.KindNotFound, "config file %s", path)
		}
		return nil, errors.Wrapf(err, errors.KindOperation, "failed to read config file %s", path)
	}
	return LoadHCL(data, path)
}

// LoadHCL decodes data, fills defaults and validates the result.
func LoadHCL(data []byte, filename string) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, data, evalContext(), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindParse, "failed to parse config")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// evalContext exposes the process environment as env.NAME.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclsyntaxIdent(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

// hclsyntaxIdent reports whether name can be used as an attribute name.
func hclsyntaxIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '-'):
		default:
			return false
		}
	}
	return true
}

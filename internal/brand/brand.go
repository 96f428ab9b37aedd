// Package brand holds the program identity and its default paths.
//
// The identity is loaded from brand.json at compile time via go:embed so
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultStateDir  string `json:"defaultStateDir"`
	DefaultRunDir    string `json:"defaultRunDir"`
	SocketName       string `json:"socketName"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultStateDir = b.DefaultStateDir
	DefaultRunDir = b.DefaultRunDir
	SocketName = b.SocketName
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
}

var (
	Name             string
	LowerName        string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultStateDir  string
	DefaultRunDir    string
	SocketName       string
	BinaryName       string
	ConfigFileName   string

	// Version is set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// dir resolves a directory: <PREFIX>_<KEY> > <PREFIX>_PREFIX/<sub> > def.
func dir(key, sub, def string) string {
	if d := os.Getenv(ConfigEnvPrefix + "_" + key); d != "" {
		return d
	}
	if prefix := os.Getenv(ConfigEnvPrefix + "_PREFIX"); prefix != "" {
		return filepath.Join(prefix, sub)
	}
	return def
}

// GetConfigDir returns the configuration directory.
// Priority: IFCONF_CONFIG_DIR > IFCONF_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	return dir("CONFIG_DIR", "config", DefaultConfigDir)
}

// GetStateDir returns the directory saved leases are kept in.
func GetStateDir() string {
	return dir("STATE_DIR", "state", DefaultStateDir)
}

// GetRunDir returns the runtime directory for sockets.
func GetRunDir() string {
	return dir("RUN_DIR", "run", DefaultRunDir)
}

// GetConfigPath returns the default configuration file. IFCONF_CONFIG names
// the file directly.
func GetConfigPath() string {
	if p := os.Getenv(ConfigEnvPrefix + "_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(GetConfigDir(), ConfigFileName)
}

// GetSocketPath returns the auto-configuration service socket.
func GetSocketPath() string {
	return filepath.Join(GetRunDir(), SocketName)
}

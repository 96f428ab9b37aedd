package autoconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SystemController reads and writes kernel tunables.
type SystemController interface {
	ReadSysctl(path string) (string, error)
	WriteSysctl(path, value string) error
	IsNotExist(err error) bool
}

// RealSystemController goes through /proc/sys.
type RealSystemController struct {
	// Root replaces /proc/sys; empty means the real tree.
	Root string
}

// resolve turns dotted notation into a path under Root. Absolute paths are
// taken relative to /proc/sys.
func (r *RealSystemController) resolve(path string) string {
	root := r.Root
	if root == "" {
		root = "/proc/sys"
	}
	if strings.HasPrefix(path, "/") {
		return filepath.Join(root, strings.TrimPrefix(path, "/proc/sys"))
	}
	return filepath.Join(root, strings.ReplaceAll(path, ".", "/"))
}

func (r *RealSystemController) ReadSysctl(path string) (string, error) {
	data, err := os.ReadFile(r.resolve(path))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (r *RealSystemController) WriteSysctl(path, value string) error {
	return os.WriteFile(r.resolve(path), []byte(value), 0644)
}

func (r *RealSystemController) IsNotExist(err error) bool {
	return os.IsNotExist(err)
}

// DryRunSystemController records writes instead of making them.
type DryRunSystemController struct {
	mu     sync.Mutex
	Writes []string
}

func (s *DryRunSystemController) ReadSysctl(path string) (string, error) {
	return "0", nil
}

func (s *DryRunSystemController) WriteSysctl(path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Writes = append(s.Writes, fmt.Sprintf("sysctl -w %s=%s", path, value))
	return nil
}

func (s *DryRunSystemController) IsNotExist(err error) bool {
	return false
}

// acceptRAPath is the per-interface accept_ra tunable. Interface names may
// contain dots, so the path form is used.
func acceptRAPath(iface string) string {
	return "/proc/sys/net/ipv6/conf/" + iface + "/accept_ra"
}

package gateway

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/naka-gawa/lint-gate/internal/domain"
)

// Environment is the process environment handed to the lint tool.
// It is computed as a value; the gate's own environment is never modified.
type Environment struct {
	// Root is the activated environment directory, empty when activation is disabled.
	Root string
	Vars []string
}

// binDir returns the directory holding an environment's executables.
func binDir(root string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts")
	}
	return filepath.Join(root, "bin")
}

// Activate derives the child environment for envRoot from base, the way a
// virtualenv activate script does: VIRTUAL_ENV is set, the environment's
// bin directory is prepended to PATH, and PYTHONHOME is unset.
// An empty envRoot returns base unchanged.
func Activate(envRoot string, base []string) (*Environment, error) {
	vars := make([]string, 0, len(base)+2)
	if envRoot == "" {
		vars = append(vars, base...)
		return &Environment{Vars: vars}, nil
	}

	bin := binDir(envRoot)
	info, err := os.Stat(bin)
	if err != nil || !info.IsDir() {
		return nil, &domain.ConfigurationError{Path: envRoot, Err: domain.ErrEnvironmentMissing}
	}

	path := ""
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch envKey(key) {
		case "PATH":
			path = value
			continue
		case "VIRTUAL_ENV", "PYTHONHOME":
			continue
		}
		vars = append(vars, kv)
	}
	if path == "" {
		path = bin
	} else {
		path = bin + string(os.PathListSeparator) + path
	}
	vars = append(vars, "VIRTUAL_ENV="+envRoot, "PATH="+path)

	return &Environment{Root: envRoot, Vars: vars}, nil
}

// envKey normalizes an environment variable name for comparison.
// Names are case-insensitive only on Windows.
func envKey(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}

// Lookup returns the value of key in the environment.
func (e *Environment) Lookup(key string) (string, bool) {
	for i := len(e.Vars) - 1; i >= 0; i-- {
		k, v, ok := strings.Cut(e.Vars[i], "=")
		if ok && envKey(k) == envKey(key) {
			return v, true
		}
	}
	return "", false
}

// LookPath resolves tool against the environment's PATH rather than the
// gate's own. Names containing a separator are resolved against dir.
func (e *Environment) LookPath(tool, dir string) (string, error) {
	if strings.ContainsRune(tool, filepath.Separator) || strings.ContainsRune(tool, '/') {
		if !filepath.IsAbs(tool) {
			tool = filepath.Join(dir, tool)
		}
		if isExecutable(tool) {
			return tool, nil
		}
		return "", fmt.Errorf("%s: %w", tool, exec.ErrNotFound)
	}

	path, _ := e.Lookup("PATH")
	for _, d := range filepath.SplitList(path) {
		if d == "" {
			d = "."
		}
		if !filepath.IsAbs(d) {
			d = filepath.Join(dir, d)
		}
		candidate := filepath.Join(d, tool)
		if isExecutable(candidate) {
			return candidate, nil
		}
		if runtime.GOOS == "windows" && isExecutable(candidate+".exe") {
			return candidate + ".exe", nil
		}
	}
	return "", fmt.Errorf("%s: %w", tool, exec.ErrNotFound)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

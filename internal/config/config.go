// Package config loads the gate configuration from defaults, an optional
// lintgate.yaml file, LINTGATE_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	DefaultConfigFile    = "lintgate.yaml"
	DefaultEnvDir        = "venv"
	DefaultTool          = "flake8"
	DefaultFormat        = "text"
	DefaultStatusContext = "lint-gate"
	EnvPrefix            = "LINTGATE_"
)

// Config holds everything the gate needs for a single run.
type Config struct {
	ProjectRoot string        `koanf:"project_root"`
	EnvDir      string        `koanf:"env_dir"`
	Tool        string        `koanf:"tool"`
	ToolArgs    []string      `koanf:"tool_args"`
	Timeout     time.Duration `koanf:"timeout"`
	Format      string        `koanf:"format"`
	Verbose     bool          `koanf:"verbose"`
	GitHub      GitHubConfig  `koanf:"github"`
}

// GitHubConfig configures result publishing. Publishing is enabled only
// when Token, Repo and SHA are all set.
type GitHubConfig struct {
	Token         string `koanf:"-"`
	Repo          string `koanf:"repo"`
	SHA           string `koanf:"sha"`
	PR            int    `koanf:"pr"`
	StatusContext string `koanf:"status_context"`
}

// Enabled reports whether enough is configured to publish a commit status.
func (g GitHubConfig) Enabled() bool {
	return g.Token != "" && g.Repo != "" && g.SHA != ""
}

// Owner and Name split Repo ("owner/name").
func (g GitHubConfig) Owner() string {
	owner, _, _ := strings.Cut(g.Repo, "/")
	return owner
}

func (g GitHubConfig) Name() string {
	_, name, _ := strings.Cut(g.Repo, "/")
	return name
}

// EnvRoot returns the absolute path of the isolated environment, or "" when
// activation is disabled. A relative EnvDir is resolved against ProjectRoot.
func (c *Config) EnvRoot() string {
	if c.EnvDir == "" {
		return ""
	}
	if filepath.IsAbs(c.EnvDir) {
		return c.EnvDir
	}
	return filepath.Join(c.ProjectRoot, c.EnvDir)
}

// flagKeys maps flag names to config keys where they differ from the
// kebab-to-snake default.
var flagKeys = map[string]string{
	"tool-arg":       "tool_args",
	"github-repo":    "github.repo",
	"github-sha":     "github.sha",
	"github-pr":      "github.pr",
	"status-context": "github.status_context",
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project_root":          ".",
		"env_dir":               DefaultEnvDir,
		"tool":                  DefaultTool,
		"tool_args":             []string{},
		"timeout":               "0s",
		"format":                DefaultFormat,
		"verbose":               false,
		"github.status_context": DefaultStatusContext,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file: explicit path must exist, the default is optional.
	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	} else if _, err := os.Stat(cfgFile); err != nil {
		return nil, fmt.Errorf("config file %s: %w", cfgFile, err)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment: LINTGATE_PROJECT_ROOT -> project_root,
	// LINTGATE_GITHUB__REPO -> github.repo
	// LINTGATE_TOOL_ARGS is split on whitespace like a shell word list.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s, v string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "tool_args" {
			return key, strings.Fields(v)
		}
		return key, v
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if f.Value.Type() == "stringArray" {
				vals, _ := flags.GetStringArray(f.Name)
				return key, vals
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}
	cfg.ProjectRoot = root

	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root must not be empty")
	}
	if c.Tool == "" {
		return fmt.Errorf("tool must not be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported format %q (want text or json)", c.Format)
	}
	if c.GitHub.Repo != "" && (c.GitHub.Owner() == "" || c.GitHub.Name() == "") {
		return fmt.Errorf("github repo must be owner/name, got %q", c.GitHub.Repo)
	}
	if c.GitHub.PR < 0 {
		return fmt.Errorf("github pr must not be negative: %d", c.GitHub.PR)
	}
	return nil
}

// RegisterFlags defines the gate's override flags on fs. Flag defaults are
// zero values; real defaults live in Load so that unset flags never shadow
// the config file or environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("project-root", "C", "", "Project directory to lint (default: current directory)")
	fs.StringP("env-dir", "e", "", "Isolated environment directory, relative to the project root (default: venv)")
	fs.StringP("tool", "t", "", "Lint tool to invoke (default: flake8)")
	fs.StringArray("tool-arg", nil, "Extra argument passed to the lint tool (repeatable)")
	fs.Duration("timeout", 0, "Abort the lint tool after this long (0 disables)")
	fs.String("format", "", "Report format: text or json (default: text)")
	fs.String("github-repo", "", "Repository (owner/name) to publish the result to")
	fs.String("github-sha", "", "Commit SHA to attach the status to")
	fs.Int("github-pr", 0, "Pull request number to comment on")
	fs.String("status-context", "", "Commit status context (default: lint-gate)")
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlags returns a flag set as the root command would build it.
func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("lint-gate", pflag.ContinueOnError)
	RegisterFlags(fs)
	fs.Bool("verbose", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, cfg.ProjectRoot)
	assert.Equal(t, DefaultEnvDir, cfg.EnvDir)
	assert.Equal(t, DefaultTool, cfg.Tool)
	assert.Empty(t, cfg.ToolArgs)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultStatusContext, cfg.GitHub.StatusContext)
	assert.False(t, cfg.GitHub.Enabled())
	assert.Equal(t, filepath.Join(wd, DefaultEnvDir), cfg.EnvRoot())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, filepath.Join(dir, DefaultConfigFile), `
project_root: /srv/from-file
env_dir: .venv
tool: ruff
timeout: 30s
github:
  repo: acme/widgets
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load("", newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "/srv/from-file", cfg.ProjectRoot)
		assert.Equal(t, ".venv", cfg.EnvDir)
		assert.Equal(t, "ruff", cfg.Tool)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, "acme", cfg.GitHub.Owner())
		assert.Equal(t, "widgets", cfg.GitHub.Name())
		assert.Equal(t, "/srv/from-file/.venv", cfg.EnvRoot())
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LINTGATE_TOOL", "pylint")
		t.Setenv("LINTGATE_GITHUB__SHA", "abc123")
		cfg, err := Load("", newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "pylint", cfg.Tool)
		assert.Equal(t, "abc123", cfg.GitHub.SHA)
		assert.Equal(t, "/srv/from-file", cfg.ProjectRoot)
	})

	t.Run("flags override env", func(t *testing.T) {
		t.Setenv("LINTGATE_TOOL", "pylint")
		cfg, err := Load("", newFlags(t,
			"--tool", "flake8",
			"--tool-arg", "--max-line-length=120",
			"--tool-arg", "--select=E,W",
			"--github-pr", "42",
			"-C", "/srv/from-flag",
		))
		require.NoError(t, err)
		assert.Equal(t, "flake8", cfg.Tool)
		assert.Equal(t, []string{"--max-line-length=120", "--select=E,W"}, cfg.ToolArgs)
		assert.Equal(t, 42, cfg.GitHub.PR)
		assert.Equal(t, "/srv/from-flag", cfg.ProjectRoot)
	})
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "ci.yaml")
	writeFile(t, path, "env_dir: \"\"\nformat: json\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "", cfg.EnvRoot())

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_ToolArgsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())

	testCases := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "whitespace separated", value: "--max-line-length 120", expected: []string{"--max-line-length", "120"}},
		{name: "commas are kept", value: "--select=E,W  src", expected: []string{"--select=E,W", "src"}},
		{name: "blank", value: "  ", expected: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("LINTGATE_TOOL_ARGS", tc.value)
			cfg, err := Load("", nil)
			require.NoError(t, err)
			if tc.expected == nil {
				assert.Empty(t, cfg.ToolArgs)
				return
			}
			assert.Equal(t, tc.expected, cfg.ToolArgs)
		})
	}
}

func TestLoad_GitHubToken(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("GITHUB_TOKEN", "secret")

	cfg, err := Load("", newFlags(t, "--github-repo", "acme/widgets", "--github-sha", "deadbeef"))
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.True(t, cfg.GitHub.Enabled())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{ProjectRoot: ".", Tool: "flake8", Format: "text"}
	}

	testCases := []struct {
		name           string
		mutate         func(c *Config)
		expectedErrMsg string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty tool", mutate: func(c *Config) { c.Tool = "" }, expectedErrMsg: "tool must not be empty"},
		{name: "empty project root", mutate: func(c *Config) { c.ProjectRoot = "" }, expectedErrMsg: "project_root"},
		{name: "bad format", mutate: func(c *Config) { c.Format = "xml" }, expectedErrMsg: "unsupported format"},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, expectedErrMsg: "timeout"},
		{name: "bad repo", mutate: func(c *Config) { c.GitHub.Repo = "widgets" }, expectedErrMsg: "owner/name"},
		{name: "negative pr", mutate: func(c *Config) { c.GitHub.PR = -1 }, expectedErrMsg: "pr must not be negative"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.expectedErrMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
			}
		})
	}
}

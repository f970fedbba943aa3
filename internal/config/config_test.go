package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitializeLoadsDefaults(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := BaseURL(); got != DefaultBaseURL {
		t.Fatalf("expected default base url %q, got %q", DefaultBaseURL, got)
	}
	if got := Timeout(); got != DefaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", DefaultTimeout, got)
	}
	if got := GetString(KeyOutputFormat); got != "rich" {
		t.Fatalf("expected default %s to be rich, got %q", KeyOutputFormat, got)
	}
	if got := GetString(KeyJournalPath); got != "" {
		t.Fatalf("expected journal disabled by default, got %q", got)
	}
	if GetBool(KeyDebug) {
		t.Fatalf("expected debug disabled by default")
	}
}

func TestProjectConfigOverridesUser(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectDir := filepath.Join(tmp, "repo", "nested")
	mustMkdir(t, projectDir)
	writeFile(t, filepath.Join(tmp, "repo", ".tally", "config.yaml"), `
api:
  base-url: http://project.example:8080/
output:
  format: plain
`)

	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, `
api:
  base-url: http://user.example
  timeout: 3s
output:
  format: light
`)

	if err := Initialize(WithWorkingDir(projectDir), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := BaseURL(); got != "http://project.example:8080" {
		t.Fatalf("expected project base url without trailing slash, got %q", got)
	}
	if got := GetString(KeyOutputFormat); got != "plain" {
		t.Fatalf("expected project config to win for %s, got %q", KeyOutputFormat, got)
	}
	if got := Timeout(); got != 3*time.Second {
		t.Fatalf("expected user timeout to survive merge, got %s", got)
	}
}

func TestEnvironmentAndOverridesPrecedence(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, ".tally", "config.yaml")
	writeFile(t, projectCfg, `
auth:
  token: from-project
theme: nord
`)

	t.Setenv("TL_AUTH_TOKEN", "from-env")
	t.Setenv("TL_API_BASE_URL", "http://env.example")

	if err := Initialize(
		WithWorkingDir(tmp),
		WithProjectConfig(projectCfg),
		WithUserConfig(filepath.Join(tmp, "missing.yaml")),
	); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if got := GetString(KeyAuthToken); got != "from-env" {
		t.Fatalf("expected env override for %s, got %q", KeyAuthToken, got)
	}
	if got := BaseURL(); got != "http://env.example" {
		t.Fatalf("expected env override for %s, got %q", KeyBaseURL, got)
	}

	if err := ApplyOverrides(map[string]any{KeyTheme: "mono", KeyTimeout: "250ms"}); err != nil {
		t.Fatalf("ApplyOverrides returned error: %v", err)
	}
	if got := GetString(KeyTheme); got != "mono" {
		t.Fatalf("expected CLI override for theme, got %q", got)
	}
	if got := Timeout(); got != 250*time.Millisecond {
		t.Fatalf("expected CLI override for timeout, got %s", got)
	}
}

func TestTimeoutFallsBackForNonPositive(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "u.yaml"))); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if err := Set(KeyTimeout, "-1s"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if got := Timeout(); got != DefaultTimeout {
		t.Fatalf("expected fallback to %s, got %s", DefaultTimeout, got)
	}
}

func TestConfigPathIsDirectory(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	dirAsFile := filepath.Join(tmp, "user.yaml")
	mustMkdir(t, dirAsFile)

	err := Initialize(WithWorkingDir(tmp), WithUserConfig(dirAsFile))
	if err == nil {
		t.Fatal("expected error when user config path is a directory")
	}
}

func TestSaveThemeWritesUserConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "home", "config.yaml")
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if err := SaveTheme("nord"); err != nil {
		t.Fatalf("SaveTheme returned error: %v", err)
	}
	data, err := os.ReadFile(userCfg)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if want := "theme: nord"; !strings.Contains(string(data), want) {
		t.Fatalf("expected %q in saved config:\n%s", want, data)
	}
	if got := GetString(KeyTheme); got != "nord" {
		t.Fatalf("expected in-memory theme to follow save, got %q", got)
	}
}

func TestSaveThemePrefersProjectConfig(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	projectCfg := filepath.Join(tmp, ".tally", "config.yaml")
	writeFile(t, projectCfg, `
api:
  base-url: http://project.example
`)
	userCfg := filepath.Join(tmp, "user.yaml")
	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if err := SaveTheme("mono"); err != nil {
		t.Fatalf("SaveTheme returned error: %v", err)
	}
	data, err := os.ReadFile(projectCfg)
	if err != nil {
		t.Fatalf("read project config: %v", err)
	}
	for _, want := range []string{"theme: mono", "base-url: http://project.example"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in project config:\n%s", want, data)
		}
	}
	if _, err := os.Stat(userCfg); !os.IsNotExist(err) {
		t.Fatalf("expected user config untouched, stat err = %v", err)
	}
}

func TestFilesListsMergedConfigs(t *testing.T) {
	reset()
	t.Cleanup(reset)

	tmp := t.TempDir()
	userCfg := filepath.Join(tmp, "user.yaml")
	writeFile(t, userCfg, "debug: true\n")
	emptyProject := filepath.Join(tmp, "project.yaml")
	writeFile(t, emptyProject, "\n")

	if err := Initialize(WithWorkingDir(tmp), WithUserConfig(userCfg), WithProjectConfig(emptyProject)); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	files := Files()
	if len(files) != 1 || files[0] != userCfg {
		t.Fatalf("expected only the user config to count, got %v", files)
	}
	if !GetBool(KeyDebug) {
		t.Fatal("expected debug from user config")
	}
}

func TestOutputFormatNormalizes(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"plain", "plain"},
		{" Light ", "light"},
		{"fancy", DefaultOutputFormat},
		{"", DefaultOutputFormat},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			reset()
			t.Cleanup(reset)
			tmp := t.TempDir()
			if err := Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, "u.yaml"))); err != nil {
				t.Fatalf("Initialize returned error: %v", err)
			}
			if err := Set(KeyOutputFormat, tt.value); err != nil {
				t.Fatalf("Set returned error: %v", err)
			}
			if got := OutputFormat(); got != tt.want {
				t.Fatalf("OutputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func mustMkdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	mustMkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

// Package config resolves tally settings from defaults, YAML files, the
// environment and command-line overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyBaseURL      = "api.base-url"
	KeyTimeout      = "api.timeout"
	KeyAuthToken    = "auth.token"
	KeyOutputFormat = "output.format"
	KeyTheme        = "theme"
	KeyJournalPath  = "journal.path"
	KeyDebug        = "debug"
)

const (
	// DefaultBaseURL is where the dashboards look for the REST backend.
	DefaultBaseURL = "http://localhost:5000"
	// DefaultTimeout bounds every request issued by the dashboards.
	DefaultTimeout = 10 * time.Second
	// DefaultOutputFormat is the detail pane markdown style.
	DefaultOutputFormat = "rich"

	dirName        = ".tally"
	configFileName = "config.yaml"
	envPrefix      = "TL"
)

var outputFormats = map[string]bool{"rich": true, "light": true, "plain": true}

type initSettings struct {
	workingDir        string
	projectConfigPath string
	userConfigPath    string
}

// Option configures Initialize behaviour. Useful for tests to override paths.
type Option func(*initSettings)

// WithWorkingDir overrides the directory project config discovery starts from.
func WithWorkingDir(dir string) Option {
	return func(cfg *initSettings) {
		cfg.workingDir = dir
	}
}

// WithProjectConfig explicitly sets the project config path instead of discovery.
func WithProjectConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.projectConfigPath = path
	}
}

// WithUserConfig overrides the default user config path (~/.tally/config.yaml).
func WithUserConfig(path string) Option {
	return func(cfg *initSettings) {
		cfg.userConfigPath = path
	}
}

// store is the resolved configuration plus the files it was read from.
type store struct {
	v           *viper.Viper
	userPath    string
	projectPath string
	loaded      []string
}

var (
	once    sync.Once
	mu      sync.RWMutex
	current *store
	initErr error
)

// Initialize loads configuration once. Later layers win:
// defaults, user file, project file, TL_* environment, then ApplyOverrides.
func Initialize(opts ...Option) error {
	once.Do(func() {
		settings := initSettings{}
		for _, opt := range opts {
			opt(&settings)
		}
		var s *store
		s, initErr = load(settings)
		if initErr == nil {
			mu.Lock()
			current = s
			mu.Unlock()
		}
	})
	return initErr
}

func load(settings initSettings) (*store, error) {
	workingDir := strings.TrimSpace(settings.workingDir)
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		workingDir = wd
	}

	s := &store{
		userPath:    strings.TrimSpace(settings.userConfigPath),
		projectPath: strings.TrimSpace(settings.projectConfigPath),
	}
	if s.userPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		s.userPath = filepath.Join(dir, configFileName)
	}
	if s.projectPath == "" {
		found, err := discoverProjectConfig(workingDir)
		if err != nil {
			return nil, err
		}
		s.projectPath = found
	}

	s.v = viper.New()
	s.v.SetConfigType("yaml")
	s.v.SetDefault(KeyBaseURL, DefaultBaseURL)
	s.v.SetDefault(KeyTimeout, DefaultTimeout)
	s.v.SetDefault(KeyAuthToken, "")
	s.v.SetDefault(KeyOutputFormat, DefaultOutputFormat)
	s.v.SetDefault(KeyTheme, "tokyonight")
	s.v.SetDefault(KeyJournalPath, "")
	s.v.SetDefault(KeyDebug, false)
	s.v.SetEnvPrefix(envPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	s.v.AutomaticEnv()

	for _, layer := range []struct{ name, path string }{
		{"user", s.userPath},
		{"project", s.projectPath},
	} {
		merged, err := mergeFile(s.v, layer.path)
		if err != nil {
			return nil, fmt.Errorf("load %s config: %w", layer.name, err)
		}
		if merged {
			s.loaded = append(s.loaded, layer.path)
		}
	}
	return s, nil
}

// mergeFile layers a YAML file over v. A missing or blank file is skipped
// and reported as not merged.
func mergeFile(v *viper.Viper, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	//nolint:gosec // G304: reading the user's own config files
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// discoverProjectConfig walks up from startDir looking for .tally/config.yaml.
func discoverProjectConfig(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", nil
	}
	for dir := startDir; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, dirName, configFileName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return "", fmt.Errorf("config path %s is a directory", candidate)
			}
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		if filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

func resolved() (*store, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return current, nil
}

// ApplyOverrides injects values typically coming from CLI flags.
func ApplyOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return nil
	}
	s, err := resolved()
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	for k, v := range overrides {
		s.v.Set(k, v)
	}
	return nil
}

// Set updates a single key at runtime.
func Set(key string, value any) error {
	return ApplyOverrides(map[string]any{key: value})
}

// GetString fetches a string value, initializing on demand.
func GetString(key string) string {
	s, err := resolved()
	if err != nil {
		return ""
	}
	mu.RLock()
	defer mu.RUnlock()
	return s.v.GetString(key)
}

// GetBool fetches a bool value, initializing on demand.
func GetBool(key string) bool {
	s, err := resolved()
	if err != nil {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	return s.v.GetBool(key)
}

// GetDuration fetches a duration value, initializing on demand.
func GetDuration(key string) time.Duration {
	s, err := resolved()
	if err != nil {
		return 0
	}
	mu.RLock()
	defer mu.RUnlock()
	return s.v.GetDuration(key)
}

// BaseURL returns the configured backend root without a trailing slash.
func BaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(GetString(KeyBaseURL)), "/")
	if base == "" {
		return DefaultBaseURL
	}
	return base
}

// Timeout returns the per-request timeout, falling back to DefaultTimeout
// for missing or non-positive values.
func Timeout() time.Duration {
	if d := GetDuration(KeyTimeout); d > 0 {
		return d
	}
	return DefaultTimeout
}

// OutputFormat returns rich, light or plain; anything else reads as rich.
func OutputFormat() string {
	f := strings.ToLower(strings.TrimSpace(GetString(KeyOutputFormat)))
	if !outputFormats[f] {
		return DefaultOutputFormat
	}
	return f
}

// AllSettings returns the effective configuration as a nested map.
func AllSettings() (map[string]any, error) {
	s, err := resolved()
	if err != nil {
		return nil, err
	}
	mu.RLock()
	defer mu.RUnlock()
	return s.v.AllSettings(), nil
}

// Files returns the config files that contributed values, lowest
// precedence first.
func Files() []string {
	s, err := resolved()
	if err != nil {
		return nil
	}
	mu.RLock()
	defer mu.RUnlock()
	return append([]string(nil), s.loaded...)
}

// Dir returns ~/.tally, the home of the user config, credentials and logs.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// SaveTheme writes the theme into the project config when one was found at
// startup, otherwise into the user config, and applies it in memory.
func SaveTheme(themeName string) error {
	s, err := resolved()
	if err != nil {
		return err
	}
	target := s.projectPath
	if target == "" {
		target = s.userPath
	}

	fileCfg := viper.New()
	fileCfg.SetConfigType("yaml")
	fileCfg.SetConfigFile(target)
	_ = fileCfg.ReadInConfig() // missing file is fine
	fileCfg.Set(KeyTheme, themeName)

	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := fileCfg.WriteConfigAs(target); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return Set(KeyTheme, themeName)
}

// reset clears package state for tests.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	current = nil
	initErr = nil
	once = sync.Once{}
}

// ResetForTesting initializes the package against a temp directory for
// tests in other packages. The returned func clears it again.
func ResetForTesting(t interface{ TempDir() string }) func() {
	reset()
	tmp := t.TempDir()
	_ = Initialize(WithWorkingDir(tmp), WithUserConfig(filepath.Join(tmp, configFileName)))
	return reset
}

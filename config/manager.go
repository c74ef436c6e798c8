package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager persists a Config on disk. Files ending in .yaml or .yml are
// encoded as YAML, everything else as JSON.
type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
}

type ManagerOption func(*managerOptions)

func NewManager(opts ...ManagerOption) (*Manager, error) {
	var options managerOptions
	for _, opt := range opts {
		opt(&options)
	}

	configPath := options.configPath
	if configPath == "" {
		var err error
		configPath, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	cfg, err := loadOrCreateConfig(configPath, options)
	if err != nil {
		return nil, err
	}

	return &Manager{
		path: configPath,
		cfg:  cfg,
	}, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) UpdateFromJSON(jsonStr string) error {
	var cfg Config
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

func (m *Manager) Update(newCfg Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if reflect.DeepEqual(m.cfg, newCfg) {
		return nil
	}
	if err := writeConfigFile(m.path, newCfg); err != nil {
		return err
	}
	m.cfg = newCfg
	return nil
}

// Reload re-reads the file, keeping the current config when the file is invalid.
func (m *Manager) Reload() error {
	var cfg Config
	if err := loadConfigFromFile(m.path, &cfg); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	return nil
}

// loadOrCreateConfig reads path when it exists. Otherwise it seeds the file
// from the initial config, or from defaults rooted next to the file.
func loadOrCreateConfig(path string, options managerOptions) (Config, error) {
	var cfg Config
	err := loadConfigFromFile(path, &cfg)
	switch {
	case err == nil:
		return cfg, cfg.Validate()
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	seed := DefaultConfigWithRoot(filepath.Dir(path))
	if options.initialConfig != nil {
		seed = options.initialConfig
	}
	if err := seed.Validate(); err != nil {
		return Config{}, err
	}
	if err := writeConfigFile(path, *seed); err != nil {
		return Config{}, fmt.Errorf("write initial config: %w", err)
	}
	return *seed, nil
}

// codec is the on-disk format of a config file.
type codec struct {
	marshal   func(cfg *Config) ([]byte, error)
	unmarshal func(data []byte, cfg *Config) error
}

var (
	yamlCodec = codec{
		marshal: func(cfg *Config) ([]byte, error) {
			var buf bytes.Buffer
			enc := yaml.NewEncoder(&buf)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return nil, err
			}
			err := enc.Close()
			return buf.Bytes(), err
		},
		unmarshal: func(data []byte, cfg *Config) error { return yaml.Unmarshal(data, cfg) },
	}
	jsonCodec = codec{
		marshal: func(cfg *Config) ([]byte, error) {
			data, err := json.MarshalIndent(cfg, "", "  ")
			return append(data, '\n'), err
		},
		unmarshal: func(data []byte, cfg *Config) error { return json.Unmarshal(data, cfg) },
	}
)

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlCodec
	default:
		return jsonCodec
	}
}

func loadConfigFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return codecFor(path).unmarshal(data, cfg)
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		if dir, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "hedgehog", "config.json"), nil
}

// writeConfigFile replaces path atomically: the encoded config is synced to a
// sibling temp file that is then renamed over the target.
func writeConfigFile(path string, cfg Config) (err error) {
	data, err := codecFor(path).marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("flush config: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir == "" {
			return
		}
		o.configPath = filepath.Join(dir, "config.json")
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}

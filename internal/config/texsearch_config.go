package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// DefaultConfigTOML is the commented configuration written by
// `texsearch init --write-config`.
//
//go:embed default_config.toml
var DefaultConfigTOML string

// Defaults for the process-wide configuration.
const (
	DefaultIndexPath       = "/opt/texsearch/index_store"
	DefaultStoreURL        = "http://localhost:5984/documents"
	DefaultPreprocessorURL = "http://localhost:8082/preprocess"
	DefaultConfigFile      = ".texsearch.toml"
)

// Config is the resolved process configuration.
type Config struct {
	IndexPath       string
	StoreURL        string
	PreprocessorURL string
}

// tomlConfig mirrors the .texsearch.toml layout. Pointer fields detect
// unset values so file settings only override what they name.
type tomlConfig struct {
	Index struct {
		Path *string `toml:"path"`
	} `toml:"index"`
	Store struct {
		URL *string `toml:"url"`
	} `toml:"store"`
	Preprocessor struct {
		URL *string `toml:"url"`
	} `toml:"preprocessor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		IndexPath:       DefaultIndexPath,
		StoreURL:        DefaultStoreURL,
		PreprocessorURL: DefaultPreprocessorURL,
	}
}

// Load resolves the configuration: defaults, then the TOML file (the
// explicit path if given, otherwise ./.texsearch.toml when present),
// then TEXSEARCH_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg tomlConfig
		if err := toml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		fileCfg.apply(cfg)
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; run on defaults.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(cfg)
	return cfg, nil
}

func (t *tomlConfig) apply(cfg *Config) {
	if t.Index.Path != nil {
		cfg.IndexPath = *t.Index.Path
	}
	if t.Store.URL != nil {
		cfg.StoreURL = *t.Store.URL
	}
	if t.Preprocessor.URL != nil {
		cfg.PreprocessorURL = *t.Preprocessor.URL
	}
}

// applyEnv overlays TEXSEARCH_INDEX_PATH, TEXSEARCH_STORE_URL and
// TEXSEARCH_PREPROCESSOR_URL.
func applyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix("texsearch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("index.path"); s != "" {
		cfg.IndexPath = s
	}
	if s := v.GetString("store.url"); s != "" {
		cfg.StoreURL = s
	}
	if s := v.GetString("preprocessor.url"); s != "" {
		cfg.PreprocessorURL = s
	}
}

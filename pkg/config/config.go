/*
Package config manages TOML config for MentionServe services.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/mentionserve/internal/utils"
	"github.com/bastiangx/mentionserve/pkg/autocomplete"
	"github.com/bastiangx/mentionserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Server ServerConfig `toml:"server"`
	Engine EngineConfig `toml:"engine"`
	Dict   DictConfig   `toml:"dict"`
	CLI    CliConfig    `toml:"cli"`
	Types  []TypeConfig `toml:"types"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxLimit  int     `toml:"max_limit"`
	MinWord   int     `toml:"min_word"`
	MaxWord   int     `toml:"max_word"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
	HTTPAddr  string  `toml:"http_addr"`
}

// EngineConfig holds autocomplete engine options.
type EngineConfig struct {
	DebounceMs      int  `toml:"debounce_ms"`
	DefaultLimit    int  `toml:"default_limit"`
	SearchTimeoutMs int  `toml:"search_timeout_ms"`
	Fuzzy           bool `toml:"fuzzy"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	MinScore     int `toml:"min_score"`
	HotCacheSize int `toml:"hot_cache_size"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	Limit     int  `toml:"limit"`
	Highlight bool `toml:"highlight"`
}

// TypeConfig declares one candidate type: the pattern a token must match
// and the trigger stripped before lookup.
type TypeConfig struct {
	Name       string `toml:"name"`
	Expression string `toml:"expression"`
	Trigger    string `toml:"trigger"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. platform config dir (~/.config/mentionserve, $XDG_CONFIG_HOME, %APPDATA%)
// 2. Current executable dir
func GetConfigDir() (string, error) {
	primaryPath := utils.ConfigDir()
	err := utils.EnsureDir(primaryPath)
	if err == nil {
		return primaryPath, nil
	}
	log.Warnf("Cannot create config directory %s: %v", primaryPath, err)

	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/mentionserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultTypes are the mention and hashtag types used when none are configured.
func DefaultTypes() []TypeConfig {
	return []TypeConfig{
		{Name: "mention", Expression: `^@\w+`, Trigger: "@"},
		{Name: "hashtag", Expression: `^#\w+`, Trigger: "#"},
	}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:  64,
			MinWord:   1,
			MaxWord:   64,
			RateLimit: 200,
			Burst:     50,
			HTTPAddr:  "",
		},
		Engine: EngineConfig{
			DebounceMs:      250,
			DefaultLimit:    10,
			SearchTimeoutMs: 2000,
			Fuzzy:           true,
		},
		Dict: DictConfig{
			MinScore:     0,
			HotCacheSize: suggest.DefaultHotCacheSize,
		},
		CLI: CliConfig{
			Limit:     8,
			Highlight: true,
		},
		Types: DefaultTypes(),
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	// decoding into the default slice would merge tables field by field
	config.Types = nil

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	if len(config.Types) == 0 {
		config.Types = DefaultTypes()
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if engineSection, ok := utils.ExtractSection(tempConfig, "engine"); ok {
		extractEngineConfig(engineSection, &config.Engine)
	}
	if dictSection, ok := utils.ExtractSection(tempConfig, "dict"); ok {
		extractDictConfig(dictSection, &config.Dict)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	if tables, ok := utils.ExtractTables(tempConfig, "types"); ok {
		if types := extractTypes(tables); len(types) > 0 {
			config.Types = types
		}
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_word"); ok {
		server.MinWord = val
	}
	if val, ok := utils.ExtractInt64(data, "max_word"); ok {
		server.MaxWord = val
	}
	if val, ok := utils.ExtractFloat(data, "rate_limit"); ok {
		server.RateLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "burst"); ok {
		server.Burst = val
	}
	if val, ok := utils.ExtractString(data, "http_addr"); ok {
		server.HTTPAddr = val
	}
}

// extractEngineConfig extracts engine configuration from a map
func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		engine.DebounceMs = val
	}
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		engine.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "search_timeout_ms"); ok {
		engine.SearchTimeoutMs = val
	}
	if val, ok := utils.ExtractBool(data, "fuzzy"); ok {
		engine.Fuzzy = val
	}
}

// extractDictConfig extracts dictionary configuration from a map
func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.ExtractInt64(data, "min_score"); ok {
		dict.MinScore = val
	}
	if val, ok := utils.ExtractInt64(data, "hot_cache_size"); ok {
		dict.HotCacheSize = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "limit"); ok {
		cli.Limit = val
	}
	if val, ok := utils.ExtractBool(data, "highlight"); ok {
		cli.Highlight = val
	}
}

// extractTypes keeps every [[types]] table that has a name and an expression
func extractTypes(tables []map[string]any) []TypeConfig {
	var types []TypeConfig
	for _, table := range tables {
		name, okName := utils.ExtractString(table, "name")
		expr, okExpr := utils.ExtractString(table, "expression")
		if !okName || !okExpr {
			log.Warnf("Ignoring [[types]] entry without name or expression: %v", table)
			continue
		}
		trigger, _ := utils.ExtractString(table, "trigger")
		types = append(types, TypeConfig{Name: name, Expression: expr, Trigger: trigger})
	}
	return types
}

// Validate reports settings no component can work with.
func (c *Config) Validate() error {
	if c.Server.MinWord < 0 || (c.Server.MaxWord > 0 && c.Server.MaxWord < c.Server.MinWord) {
		return fmt.Errorf("invalid word length bounds %d..%d", c.Server.MinWord, c.Server.MaxWord)
	}
	if c.Server.MaxLimit <= 0 {
		return fmt.Errorf("max_limit must be positive, got %d", c.Server.MaxLimit)
	}
	if _, err := c.Matcher(); err != nil {
		return err
	}
	return nil
}

// Matcher compiles the configured types.
func (c *Config) Matcher() (*autocomplete.Matcher, error) {
	types := make([]autocomplete.TypeConfig, len(c.Types))
	for i, t := range c.Types {
		types[i] = autocomplete.TypeConfig{Name: t.Name, Expression: t.Expression}
	}
	return autocomplete.NewMatcher(types)
}

// TypeSpecs lists the index declaration of every configured type.
func (c *Config) TypeSpecs() []suggest.TypeSpec {
	specs := make([]suggest.TypeSpec, len(c.Types))
	for i, t := range c.Types {
		specs[i] = suggest.TypeSpec{Name: t.Name, Trigger: t.Trigger}
	}
	return specs
}

// IndexOptions maps the config onto suggest.Options.
func (c *Config) IndexOptions() suggest.Options {
	return suggest.Options{
		MinScore:     c.Dict.MinScore,
		Limit:        c.Engine.DefaultLimit,
		HotCacheSize: c.Dict.HotCacheSize,
		Fuzzy:        c.Engine.Fuzzy,
	}
}

// DebounceDelay is the keyup debounce as a duration.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Engine.DebounceMs) * time.Millisecond
}

// SearchTimeout is the engine search timeout; zero disables it.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Engine.SearchTimeoutMs) * time.Millisecond
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

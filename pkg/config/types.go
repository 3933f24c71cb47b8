package config

// Config represents the persistent promptlane configuration stored as
// config.toml in the .promptlane/ directory. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	API      APIConfig      `toml:"api"`
	Provider ProviderConfig `toml:"provider"`
	Prompts  PromptsConfig  `toml:"prompts"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ProviderConfig holds upstream LLM provider settings.
type ProviderConfig struct {
	Upstream string `toml:"upstream,omitempty"`
	APIKey   string `toml:"api_key,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// PromptsConfig holds prompt registry settings.
type PromptsConfig struct {
	Dir   string `toml:"dir,omitempty"`
	Watch bool   `toml:"watch,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"provider.upstream": {
		get: func(c *Config) string { return c.Provider.Upstream },
		set: func(c *Config, v string) error { c.Provider.Upstream = v; return nil },
	},
	"provider.api_key": {
		get: func(c *Config) string { return c.Provider.APIKey },
		set: func(c *Config, v string) error { c.Provider.APIKey = v; return nil },
	},
	"provider.model": {
		get: func(c *Config) string { return c.Provider.Model },
		set: func(c *Config, v string) error { c.Provider.Model = v; return nil },
	},
	"prompts.dir": {
		get: func(c *Config) string { return c.Prompts.Dir },
		set: func(c *Config, v string) error { c.Prompts.Dir = v; return nil },
	},
}

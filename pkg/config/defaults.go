package config

const (
	defaultAPIListen = ":8090"
	defaultUpstream  = "https://openrouter.ai/api/v1"
	defaultModel     = "openai/gpt-4o-mini"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Provider: ProviderConfig{
			Upstream: defaultUpstream,
			Model:    defaultModel,
		},
		Prompts: PromptsConfig{
			Watch: true,
		},
	}
}

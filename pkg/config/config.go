package config

type Config struct {
	Listen  Listen  `yaml:"listen"`
	Auth    Auth    `yaml:"auth"`
	Log     Log     `yaml:"log"`
	Suggest Suggest `yaml:"suggest"`
	DryRun  bool    `yaml:"dry_run"` // compute and report the order without moving tabs
}

// Listen is the bridge endpoint the browser extension connects to.
type Listen struct {
	Host string `yaml:"host"` // default: 127.0.0.1
	Port int    `yaml:"port"` // default: 7425
}

type Auth struct {
	Token string `yaml:"token"` // empty disables auth (loopback-only setups)
}

type Log struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Suggest configures the LLM used for group-title suggestions.
type Suggest struct {
	Provider string `yaml:"provider"` // anthropic, openai, ollama (default: anthropic)
	Model    string `yaml:"model"`    // default chosen per provider
	APIKey   string `yaml:"api_key"`  // falls back to the provider env var
}

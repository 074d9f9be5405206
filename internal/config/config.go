package config

import "path/filepath"

type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Ollama    OllamaConfig
	OpenAI    OpenAIConfig
	Storage   StorageConfig
	Retrieval RetrievalConfig
	Chunking  ChunkingConfig
	Log       LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// EngineConfig selects the inference backend. Provider is "ollama" (default)
// or "openai" for any OpenAI-compatible server.
type EngineConfig struct {
	Provider string
}

type OllamaConfig struct {
	BaseURL    string
	ChatModel  string
	JudgeModel string
	EmbedModel string
}

type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
	// LogFile and AuditFile default to paths under DataDir when empty.
	LogFile   string
	AuditFile string
}

type RetrievalConfig struct {
	TopK int
}

type ChunkingConfig struct {
	Size    int
	Overlap int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Engine: EngineConfig{
			Provider: "ollama",
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.2:1b",
			JudgeModel: "llama3.2:1b",
			EmbedModel: "nomic-embed-text",
		},
		OpenAI: OpenAIConfig{
			ChatModel:  "gpt-4o-mini",
			EmbedModel: "text-embedding-3-small",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 150,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend and environment
// variables. The backend is a flat JSON object at
// $XDG_CONFIG_HOME/storyrag/config.json; STORYRAG_* environment variables
// override backend values on top of it.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Storage.LogFile == "" {
		cfg.Storage.LogFile = filepath.Join(cfg.Storage.DataDir, "interaction_logs.json")
	}
	if cfg.Storage.AuditFile == "" {
		cfg.Storage.AuditFile = filepath.Join(cfg.Storage.DataDir, "audit_results.json")
	}

	return cfg, nil
}

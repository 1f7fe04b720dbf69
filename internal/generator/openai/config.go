package openai

// Config contains OpenAI generator configuration. Fields map to OpenAI SDK
// options (APIKey -> option.WithAPIKey, BaseURL -> option.WithBaseURL,
// Timeout -> option.WithRequestTimeout in seconds).
type Config struct {
	APIKey     string `env:"OPENAI_API_KEY"`
	BaseURL    string `env:"OPENAI_BASE_URL"    envDefault:"https://api.openai.com/v1"`
	Model      string `env:"OPENAI_MODEL"       envDefault:"gpt-4"`
	Timeout    int    `env:"OPENAI_TIMEOUT"     envDefault:"60"`
	MaxRetries int    `env:"OPENAI_MAX_RETRIES" envDefault:"3"`
}

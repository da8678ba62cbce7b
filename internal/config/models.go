package config

import (
	"strings"
	"time"
)

// ClassifierConfig selects the backend that produces the three labels
type ClassifierConfig struct {
	Provider   string
	Categories []string
}

// ModelConfig locates the local model artifacts
type ModelConfig struct {
	SpamModel      string
	SpamVectorizer string
	CategoryModel  string
	UrgencyModel   string
}

// ServerConfig represents the dashboard HTTP server configuration
type ServerConfig struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	MaxBodyBytes    int64
}

// SMTPIntakeConfig represents the optional SMTP submission listener
type SMTPIntakeConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	MaxRecipients   int
	AllowedDomains  []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider:   strings.ToLower(c.GetString("classifier.provider")),
		Categories: c.GetStringSlice("classifier.categories"),
	}
}

// GetModels returns the local model artifact paths
func (c *Config) GetModels() ModelConfig {
	return ModelConfig{
		SpamModel:      c.GetString("models.spam_model"),
		SpamVectorizer: c.GetString("models.spam_vectorizer"),
		CategoryModel:  c.GetString("models.category_model"),
		UrgencyModel:   c.GetString("models.urgency_model"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	cfg := ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		MaxBodyBytes:  c.GetInt64("server.max_body_bytes"),
	}

	var err error
	if cfg.ReadTimeout, err = c.GetDuration("server.read_timeout"); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = c.GetDuration("server.write_timeout"); err != nil {
		return cfg, err
	}
	if cfg.ShutdownTimeout, err = c.GetDuration("server.shutdown_timeout"); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = c.GetDuration("server.request_timeout"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GetSMTPIntake returns the SMTP intake configuration
func (c *Config) GetSMTPIntake() SMTPIntakeConfig {
	return SMTPIntakeConfig{
		Enabled:         c.GetBool("intake.smtp.enabled"),
		ListenAddress:   c.GetString("intake.smtp.listen_address"),
		Domain:          c.GetString("intake.smtp.domain"),
		MaxMessageBytes: c.GetInt64("intake.smtp.max_message_bytes"),
		MaxRecipients:   c.GetInt("intake.smtp.max_recipients"),
		AllowedDomains:  c.GetStringSlice("intake.smtp.allowed_domains"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ContentActivation/internal/brandvoice"
	"ContentActivation/internal/validation"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "CONTENT_ACTIVATION_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	ollamaURLEnv      = "OLLAMA_URL"
	cmsTokenEnv       = "CMS_ACCESS_TOKEN"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	webhookTokenEnv   = "WEBHOOK_TOKEN"
	platformEnv       = "MARKETING_PLATFORM"
	activationLogEnv  = "ACTIVATION_LOG_PATH"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Source        SourceConfig       `yaml:"source"`
	Providers     []ProviderConfig   `yaml:"providers"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	Ollama        OllamaConfig       `yaml:"ollama"`
	Enrichment    EnrichmentConfig   `yaml:"enrichment"`
	Validation    validation.Rules   `yaml:"validation"`
	Vocabulary    []string           `yaml:"vocabulary"`
	BrandVoice    BrandVoiceConfig   `yaml:"brandVoice"`
	Destination   DestinationConfig  `yaml:"destination"`
	Audit         AuditConfig        `yaml:"audit"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP trigger surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// SourceConfig points at the headless CMS. Kind is "http" or "mock".
type SourceConfig struct {
	Kind        string        `yaml:"kind"`
	BaseURL     string        `yaml:"baseUrl"`
	AccessToken string        `yaml:"accessToken"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ProviderConfig is one position of the enrichment fallback chain.
type ProviderConfig struct {
	Name             string        `yaml:"name"`
	RatePerMinute    float64       `yaml:"ratePerMinute"`
	Burst            int           `yaml:"burst"`
	FailureThreshold uint32        `yaml:"failureThreshold"`
	OpenTimeout      time.Duration `yaml:"openTimeout"`
}

// OpenAIConfig defines how to contact an OpenAI-compatible API.
type OpenAIConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
	TextModel   string `yaml:"textModel"`
	VisionModel string `yaml:"visionModel"`
	MaxTokens   int    `yaml:"maxTokens"`
}

// OllamaConfig describes the local model server.
type OllamaConfig struct {
	URL         string `yaml:"url"`
	TextModel   string `yaml:"textModel"`
	VisionModel string `yaml:"visionModel"`
}

// EnrichmentConfig bounds provider calls and image handling.
type EnrichmentConfig struct {
	TextTimeout      time.Duration `yaml:"textTimeout"`
	VisionTimeout    time.Duration `yaml:"visionTimeout"`
	ImageConcurrency int           `yaml:"imageConcurrency"`
	MaxImageBytes    int64         `yaml:"maxImageBytes"`
}

// BrandVoiceConfig carries the scoring weights and cut-offs.
type BrandVoiceConfig struct {
	Weights    brandvoice.Weights    `yaml:"weights"`
	Thresholds brandvoice.Thresholds `yaml:"thresholds"`
}

// DestinationConfig selects the marketing platform. Platform is "mock" or "webhook".
type DestinationConfig struct {
	Platform string        `yaml:"platform"`
	Timeout  time.Duration `yaml:"timeout"`
	Webhook  WebhookConfig `yaml:"webhook"`
}

// WebhookConfig is the generic HTTP destination.
type WebhookConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// AuditConfig locates the activation log and sizes its write queue.
type AuditConfig struct {
	LogPath       string        `yaml:"logPath"`
	QueueSize     int           `yaml:"queueSize"`
	EnqueueBudget time.Duration `yaml:"enqueueBudget"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables the history mirror.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	// NotifyAdvisory also pages reviewers for advisory results, not only blocked ones.
	NotifyAdvisory bool `yaml:"notifyAdvisory"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// SchedulerConfig lists recurring activations.
type SchedulerConfig struct {
	Timezone    string                `yaml:"timezone"`
	Activations []ScheduledActivation `yaml:"activations"`
	location    *time.Location        `yaml:"-"`
}

// ScheduledActivation activates one entry on a cron expression.
type ScheduledActivation struct {
	Cron              string `yaml:"cron"`
	EntryID           string `yaml:"entryId"`
	ListID            string `yaml:"listId"`
	EnrichmentEnabled *bool  `yaml:"enrichmentEnabled"`
}

// Enrichment reports whether AI enrichment is requested, defaulting to true.
func (s ScheduledActivation) Enrichment() bool {
	return s.EnrichmentEnabled == nil || *s.EnrichmentEnabled
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := decode(raw); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultConfig().Providers
	}
	if len(cfg.Vocabulary) == 0 {
		cfg.Vocabulary = append([]string(nil), validation.DefaultTags...)
	}

	return cfg
}

// decode unmarshals raw YAML on top of the defaults, so absent keys keep their default value.
func decode(raw []byte) (Config, error) {
	cfg := defaultConfig()
	cfg.Providers = nil
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(ollamaURLEnv); v != "" {
		c.Ollama.URL = v
	}

	if v := os.Getenv(cmsTokenEnv); v != "" {
		c.Source.AccessToken = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(webhookTokenEnv); v != "" {
		c.Destination.Webhook.Token = v
	}

	if v := os.Getenv(platformEnv); v != "" {
		c.Destination.Platform = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(activationLogEnv); v != "" {
		c.Audit.LogPath = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    90 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Source: SourceConfig{Kind: "mock", Timeout: 10 * time.Second},
		Providers: []ProviderConfig{
			{Name: "openai", RatePerMinute: 50, Burst: 5, FailureThreshold: 5, OpenTimeout: 30 * time.Second},
			{Name: "ollama", RatePerMinute: 120, Burst: 2, FailureThreshold: 3, OpenTimeout: 30 * time.Second},
			{Name: "stub"},
		},
		OpenAI: OpenAIConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			TextModel:   "gpt-4o-mini",
			VisionModel: "gpt-4o",
			MaxTokens:   300,
		},
		Ollama: OllamaConfig{
			URL:         "http://localhost:11434",
			TextModel:   "llama3.2:latest",
			VisionModel: "qwen2.5vl:latest",
		},
		Enrichment: EnrichmentConfig{
			TextTimeout:      30 * time.Second,
			VisionTimeout:    10 * time.Second,
			ImageConcurrency: 4,
			MaxImageBytes:    10 << 20,
		},
		Validation: validation.DefaultRules(),
		BrandVoice: BrandVoiceConfig{
			Weights:    brandvoice.DefaultWeights(),
			Thresholds: brandvoice.DefaultThresholds(),
		},
		Destination: DestinationConfig{Platform: "mock", Timeout: 15 * time.Second},
		Audit: AuditConfig{
			LogPath:       "activation_log.jsonl",
			QueueSize:     256,
			EnqueueBudget: 50 * time.Millisecond,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
	}
}

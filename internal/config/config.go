package config

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Content  ContentConfig  `mapstructure:"content"`
	Review   ReviewConfig   `mapstructure:"review"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

// ContentConfig points at the content service that owns flashcards, decks and
// questions. The review core only reads from it.
type ContentConfig struct {
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,http_url"`
	APIKey           string `mapstructure:"api_key"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds" validate:"gte=1"`
	MaxRetryAttempts int    `mapstructure:"max_retry_attempts" validate:"gte=0,lte=10"`
	// BatchLookupLimit is the maximum number of ids the content service
	// accepts in one multi-key lookup. Hydration requests are chunked to
	// this width.
	BatchLookupLimit int `mapstructure:"batch_lookup_limit" validate:"gte=1,lte=100"`
}

// ReviewConfig tunes the due-queue and upcoming-review queries.
type ReviewConfig struct {
	DuePageLimit    int `mapstructure:"due_page_limit" validate:"gte=1,lte=500"`
	UpcomingDays    int `mapstructure:"upcoming_days" validate:"gte=1,lte=90"`
	MaxBatchReviews int `mapstructure:"max_batch_reviews" validate:"gte=1,lte=366"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studykit")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "studykit")
	v.SetDefault("database.username", "user")
	v.SetDefault("content.timeout_seconds", 10)
	v.SetDefault("content.max_retry_attempts", 2)
	v.SetDefault("content.batch_lookup_limit", 10)
	v.SetDefault("review.due_page_limit", 50)
	v.SetDefault("review.upcoming_days", 7)
	v.SetDefault("review.max_batch_reviews", 92)

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("content.base_url", "CONTENT_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind CONTENT_BASE_URL environment variable: %w", err)
	}
	if err := v.BindEnv("content.api_key", "CONTENT_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind CONTENT_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

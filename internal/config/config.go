package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds runtime configuration values.
type Config struct {
	Port           string
	PublicBaseURL  string
	Env            string
	OutputDir      string
	MaxUploadBytes int64
	DatabaseURL    string

	Vision     VisionConfig
	Generation GenerationConfig
	Media      MediaConfig
}

// VisionConfig selects and configures the image analysis provider.
type VisionConfig struct {
	Provider    string
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// GenerationConfig selects and configures the image-to-image provider.
type GenerationConfig struct {
	Provider       string
	ReplicateToken string
	ReplicateModel string
	Imagen         ImagenConfig
}

// ImagenConfig describes how to reach Vertex AI Imagen.
type ImagenConfig struct {
	ProjectID          string
	Location           string
	Model              string
	APIKey             string
	ServiceAccountJSON string
}

// MediaConfig describes optional S3 storage for generated artifacts.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// Load reads configuration from environment variables and applies defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("PORT", "8787")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("OUTPUT_DIR", "generated")
	v.SetDefault("MAX_UPLOAD_BYTES", 25*1024*1024) // 25MB
	v.SetDefault("VISION_PROVIDER", "openai")
	v.SetDefault("OPENAI_VISION_MODEL", "gpt-4o-mini")
	v.SetDefault("GEMINI_VISION_MODEL", "gemini-1.5-flash-001")
	v.SetDefault("GENERATION_PROVIDER", "replicate")
	v.SetDefault("REPLICATE_MODEL", "black-forest-labs/flux-dev")
	v.SetDefault("IMAGEN_LOCATION", "us-central1")
	v.SetDefault("IMAGEN_MODEL", "imagegeneration@006")
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetString("PORT"),
		PublicBaseURL:  strings.TrimSuffix(v.GetString("PUBLIC_BASE_URL"), "/"),
		Env:            v.GetString("APP_ENV"),
		OutputDir:      v.GetString("OUTPUT_DIR"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		Vision: VisionConfig{
			Provider:    v.GetString("VISION_PROVIDER"),
			OpenAIKey:   v.GetString("OPENAI_API_KEY"),
			OpenAIModel: v.GetString("OPENAI_VISION_MODEL"),
			GeminiKey:   v.GetString("GEMINI_API_KEY"),
			GeminiModel: v.GetString("GEMINI_VISION_MODEL"),
		},
		Generation: GenerationConfig{
			Provider:       v.GetString("GENERATION_PROVIDER"),
			ReplicateToken: v.GetString("REPLICATE_API_TOKEN"),
			ReplicateModel: v.GetString("REPLICATE_MODEL"),
			Imagen: ImagenConfig{
				ProjectID:          v.GetString("IMAGEN_PROJECT_ID"),
				Location:           v.GetString("IMAGEN_LOCATION"),
				Model:              v.GetString("IMAGEN_MODEL"),
				APIKey:             v.GetString("IMAGEN_API_KEY"),
				ServiceAccountJSON: v.GetString("IMAGEN_SERVICE_ACCOUNT_JSON"),
			},
		},
		Media: MediaConfig{
			Bucket:         v.GetString("S3_BUCKET"),
			Region:         v.GetString("S3_REGION"),
			Endpoint:       v.GetString("S3_ENDPOINT"),
			PublicURL:      v.GetString("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(v.GetString("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: v.GetBool("S3_FORCE_PATH_STYLE"),
		},
	}

	if cfg.Port == "" {
		return nil, fmt.Errorf("PORT cannot be empty")
	}
	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = "http://localhost:" + cfg.Port
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

// Production reports whether error responses should omit diagnostic detail.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

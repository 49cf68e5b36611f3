package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string
	DatabaseURL   string

	// Uploads
	UploadDir      string
	MaxUploadBytes int64
	ImageBucket    string

	// Classifier
	ModelDir          string
	ModelPath         string
	DefaultInputSize  int
	InferenceURL      string
	InferenceTimeout  time.Duration
	RiskThreshold     float64
	ConcernLabels     []string
	ResultCacheTTL    time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	ResultCacheEnable bool

	// Hospital booking API
	HospitalAPIURL  string
	HospitalTimeout time.Duration

	// Twilio messaging
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	TwilioWhatsAppFrom string

	// Speech synthesis
	TTSEndpoint string
	TTSTimeout  time.Duration
	TTSDir      string

	// Auth + verification email
	AuthJWTSecret     string
	VerifyTokenSecret string
	VerifyTokenTTL    time.Duration
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	// AWS (image artifact storage)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 12<<20)),
		ImageBucket:    getEnv("IMAGE_BUCKET", ""),

		ModelDir:          getEnv("MODEL_DIR", "models"),
		ModelPath:         getEnv("MODEL_PATH", ""),
		DefaultInputSize:  getEnvAsInt("DEFAULT_INPUT_SIZE", 224),
		InferenceURL:      getEnv("INFERENCE_URL", ""),
		InferenceTimeout:  getEnvAsDuration("INFERENCE_TIMEOUT", 30*time.Second),
		RiskThreshold:     getEnvAsFloat("RISK_THRESHOLD", 0.5),
		ConcernLabels:     getEnvAsList("CONCERN_LABELS", []string{"cancerous", "malignant", "positive"}),
		ResultCacheTTL:    getEnvAsDuration("RESULT_CACHE_TTL", 24*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		ResultCacheEnable: getEnvAsBool("RESULT_CACHE_ENABLE", true),

		HospitalAPIURL:  getEnv("HOSPITAL_API_URL", ""),
		HospitalTimeout: getEnvAsDuration("HOSPITAL_TIMEOUT", 10*time.Second),

		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber:   getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioWhatsAppFrom: getEnv("TWILIO_WHATSAPP_FROM", ""),

		TTSEndpoint: getEnv("TTS_ENDPOINT", ""),
		TTSTimeout:  getEnvAsDuration("TTS_TIMEOUT", 15*time.Second),
		TTSDir:      getEnv("TTS_DIR", ""),

		AuthJWTSecret:     getEnv("AUTH_JWT_SECRET", ""),
		VerifyTokenSecret: getEnv("VERIFY_TOKEN_SECRET", ""),
		VerifyTokenTTL:    getEnvAsDuration("VERIFY_TOKEN_TTL", 24*time.Hour),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "DermAssist"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

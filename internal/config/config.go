package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Twilio    TwilioConfig
	JWT       JWTConfig
	OTP       OTPConfig
	Predictor PredictorConfig
	KeepAlive KeepAliveConfig
}

type ServerConfig struct {
	Port string
}

type TwilioConfig struct {
	AccountSID  string
	AuthToken   string
	PhoneNumber string
}

type JWTConfig struct {
	SecretKey    string
	AccessExpiry time.Duration
}

type OTPConfig struct {
	Expiry          time.Duration
	MaxAttempts     int
	CleanupInterval time.Duration
}

type PredictorConfig struct {
	ModelPath            string
	ScalerPath           string
	PairwiseFeaturesPath string
	EmbeddingURL         string
}

type KeepAliveConfig struct {
	URL      string
	Interval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Twilio: TwilioConfig{
			AccountSID:  getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:   getEnv("TWILIO_AUTH_TOKEN", ""),
			PhoneNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", getEnv("SECRET_KEY", "")),
			// Mobile clients stay signed in for a month by default
			AccessExpiry: time.Duration(getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 43200)) * time.Minute,
		},
		OTP: OTPConfig{
			Expiry:          getEnvAsDuration("OTP_EXPIRY", 10*time.Minute),
			MaxAttempts:     getEnvAsInt("OTP_MAX_ATTEMPTS", 3),
			CleanupInterval: getEnvAsDuration("OTP_CLEANUP_INTERVAL", 1*time.Hour),
		},
		Predictor: PredictorConfig{
			ModelPath:            getEnv("MODEL_PATH", "rl_jewelry_model.json"),
			ScalerPath:           getEnv("SCALER_PATH", "scaler.json"),
			PairwiseFeaturesPath: getEnv("PAIRWISE_FEATURES_PATH", "pairwise_features.json"),
			EmbeddingURL:         getEnv("EMBEDDING_URL", ""),
		},
		KeepAlive: KeepAliveConfig{
			URL:      getEnv("KEEP_ALIVE_URL", ""),
			Interval: getEnvAsDuration("KEEP_ALIVE_INTERVAL", 14*time.Minute),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	FrontendURL string

	Midtrans MidtransConfig
	Shipping ShippingConfig
	SMTP     SMTPConfig

	// RedisAddr enables the duplicate-checkout guard when set.
	RedisAddr string
	// KafkaBrokers enables order event publishing when set (CSV).
	KafkaBrokers string
}

type MidtransConfig struct {
	ServerKey  string
	ClientKey  string
	Production bool
}

type ShippingConfig struct {
	BaseURL  string
	APIKey   string
	OriginID int
}

type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Pass      string
	FromName  string
	FromEmail string
}

func Load() Config {
	return Config{
		Addr:        getenv("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getenv("APP_FRONTEND_URL", "http://localhost:3000"),
		Midtrans: MidtransConfig{
			ServerKey:  os.Getenv("MIDTRANS_SERVER_KEY"),
			ClientKey:  os.Getenv("MIDTRANS_CLIENT_KEY"),
			Production: os.Getenv("MIDTRANS_IS_PRODUCTION") == "true",
		},
		Shipping: ShippingConfig{
			BaseURL:  getenv("RAJAONGKIR_BASE_URL", "https://rajaongkir.komerce.id/api/v1"),
			APIKey:   os.Getenv("RAJAONGKIR_API_KEY"),
			OriginID: getint("RAJAONGKIR_ORIGIN_ID", 0),
		},
		SMTP: SMTPConfig{
			Host:      os.Getenv("SMTP_HOST"),
			Port:      getint("SMTP_PORT", 587),
			User:      os.Getenv("SMTP_USER"),
			Pass:      os.Getenv("SMTP_PASS"),
			FromName:  os.Getenv("SMTP_FROM_NAME"),
			FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

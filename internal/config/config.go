// Package config reads process configuration from the environment exactly once
// at startup. Components receive the resulting struct by value; nothing in the
// business logic reads the environment directly.
package config

import (
	"os"
	"strconv"
	"time"
)

type MySQL struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

type Config struct {
	Port string

	MySQL MySQL

	RedisAddr   string
	RabbitMQURL string
	Exchange    string

	CarrierBaseURL string
	CarrierAPIKey  string
	CarrierTimeout time.Duration

	// OriginPostalCode is the warehouse postal code sent with every domestic
	// rate request. DomesticCountryCode routes quotes between the carrier
	// aggregator and the zone table.
	OriginPostalCode    string
	OriginContactName   string
	OriginContactPhone  string
	DomesticCountryCode string

	Currency string
	TaxRate  float64

	PaymentTimeout   time.Duration
	AutoCompleteBase time.Duration
	ExpiryInterval   time.Duration
	CompleteInterval time.Duration
	SweepConcurrency int64
	SweepBatchSize   int
}

func FromEnv() Config {
	return Config{
		Port: envOr("PORT", "8080"),
		MySQL: MySQL{
			User:     os.Getenv("MYSQL_USER"),
			Password: os.Getenv("MYSQL_PASSWORD"),
			Host:     os.Getenv("MYSQL_HOST"),
			Port:     envOr("MYSQL_PORT", "3306"),
			Database: os.Getenv("MYSQL_DATABASE"),
		},
		RedisAddr:   envOr("REDIS_HOST", "localhost") + ":6379",
		RabbitMQURL: os.Getenv("RABBITMQ_URL"),
		Exchange:    envOr("ORDER_EXCHANGE", "order.exchange"),

		CarrierBaseURL: os.Getenv("CARRIER_API_URL"),
		CarrierAPIKey:  os.Getenv("CARRIER_API_KEY"),
		CarrierTimeout: envDuration("CARRIER_TIMEOUT", 30*time.Second),

		OriginPostalCode:    envOr("ORIGIN_POSTAL_CODE", "40111"),
		OriginContactName:   envOr("ORIGIN_CONTACT_NAME", "Warehouse"),
		OriginContactPhone:  os.Getenv("ORIGIN_CONTACT_PHONE"),
		DomesticCountryCode: envOr("DOMESTIC_COUNTRY", "ID"),

		Currency: envOr("CURRENCY", "IDR"),
		TaxRate:  envFloat("TAX_RATE", 0.11),

		PaymentTimeout:   envDuration("PAYMENT_TIMEOUT", 24*time.Hour),
		AutoCompleteBase: envDuration("AUTO_COMPLETE_AFTER", 7*24*time.Hour),
		ExpiryInterval:   envDuration("EXPIRY_SWEEP_INTERVAL", time.Hour),
		CompleteInterval: envDuration("COMPLETION_SWEEP_INTERVAL", 24*time.Hour),
		SweepConcurrency: envInt("SWEEP_CONCURRENCY", 8),
		SweepBatchSize:   int(envInt("SWEEP_BATCH_SIZE", 500)),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

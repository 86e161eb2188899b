package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Port   string
	Env    string
	DBName string

	MongoURI    string
	MongoClient *mongo.Client

	JWTSecret string

	CinetPayAPIKey  string
	CinetPaySiteID  string
	CinetPayBaseURL string

	BackendURL  string
	FrontendURL string
	ClientURL   string

	ZeptoAPIURL       string
	ZeptoAPIKey       string
	EmailFrom         string
	EmailFromName     string
	OrganizationEmail string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	RedisURL     string
	KafkaBrokers string
	KafkaTopic   string

	EventName          string
	ConfirmationPrefix string
	TransactionPrefix  string

	AdminUsername string
	AdminPassword string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("APP_ENV", getEnv("GIN_MODE", "development")),
		DBName: getEnv("DB_NAME", "event_registration"),

		MongoURI:  os.Getenv("MONGO_URI"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		CinetPayAPIKey:  os.Getenv("CINETPAY_API_KEY"),
		CinetPaySiteID:  os.Getenv("CINETPAY_SITE_ID"),
		CinetPayBaseURL: getEnv("CINETPAY_BASE_URL", "https://api-checkout.cinetpay.com/v2"),

		BackendURL:  strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		FrontendURL: strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),
		ClientURL:   os.Getenv("CLIENT_URL"),

		ZeptoAPIURL:       os.Getenv("ZEPTO_API_URL"),
		ZeptoAPIKey:       os.Getenv("ZEPTO_API_KEY"),
		EmailFrom:         os.Getenv("EMAIL_FROM"),
		EmailFromName:     os.Getenv("EMAIL_FROM_NAME"),
		OrganizationEmail: os.Getenv("ORGANIZATION_EMAIL"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "registration.payments"),

		EventName:          getEnv("EVENT_NAME", "SIFIA 2025"),
		ConfirmationPrefix: getEnv("CONFIRMATION_PREFIX", "SIFIA-2025"),
		TransactionPrefix:  getEnv("TRANSACTION_PREFIX", "SIFIA"),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
	if cfg.EmailFromName == "" {
		cfg.EmailFromName = cfg.EventName
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	for key, val := range map[string]string{
		"MONGO_URI":        c.MongoURI,
		"JWT_SECRET":       c.JWTSecret,
		"CINETPAY_API_KEY": c.CinetPayAPIKey,
		"CINETPAY_SITE_ID": c.CinetPaySiteID,
		"BACKEND_URL":      c.BackendURL,
		"FRONTEND_URL":     c.FrontendURL,
	} {
		if val == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// IsProduction reports whether internal error detail must be hidden.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "release"
}

// NotifyURL is the webhook address handed to the payment gateway.
func (c *Config) NotifyURL() string {
	return c.BackendURL + "/api/payment/notify"
}

func (c *Config) Database() *mongo.Database {
	return c.MongoClient.Database(c.DBName)
}

// ConnectMongo dials MONGO_URI and stores the client on the config.
func (c *Config) ConnectMongo(ctx context.Context, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping mongo: %w", err)
	}
	c.MongoClient = client
	logger.Info("mongo connected", "db", c.DBName)
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

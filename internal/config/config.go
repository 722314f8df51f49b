package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigins []string
	FrontendURL string

	Redis   RedisConfig
	Scylla  ScyllaConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	SMTP    SMTPConfig
	Bank    BankConfig

	StripeSecretKey string
	StripeCurrency  string

	AdminEmail    string
	AdminPassword string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ScyllaConfig struct {
	Hosts      []string
	Keyspace   string
	Username   string
	Password   string
	CACertPath string
	Timeout    time.Duration
	NumConns   int
}

type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// PublicURL est la base des URLs d'images renvoyées au front.
func (m MinIOConfig) PublicURL() string {
	if m.UseSSL {
		return "https://" + m.Endpoint
	}
	return "http://" + m.Endpoint
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// BankConfig alimente le QR code de virement (format EPC).
type BankConfig struct {
	IBAN string
	BIC  string
	Name string
}

// Load charge le fichier .env s'il existe puis lit l'environnement.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		slog.Info("✅ Fichier .env chargé avec succès")
	}

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", "super_secret"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Scylla: ScyllaConfig{
			Hosts:      getEnvList("SCYLLA_HOSTS", []string{"127.0.0.1"}),
			Keyspace:   getEnv("SCYLLA_KEYSPACE", "phoneshop"),
			Username:   os.Getenv("SCYLLA_USERNAME"),
			Password:   os.Getenv("SCYLLA_PASSWORD"),
			CACertPath: os.Getenv("SCYLLA_SSL_CA_PATH"),
			Timeout:    getEnvDuration("SCYLLA_TIMEOUT", 5*time.Second),
			NumConns:   getEnvInt("SCYLLA_NUM_CONNS", 20),
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ELASTIC_URL"),
			Username: os.Getenv("ELASTIC_USER"),
			Password: os.Getenv("ELASTIC_PASSWORD"),
			Index:    getEnv("ELASTIC_INDEX", "products"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "phoneshop-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@phoneshop.local"),
		},
		Bank: BankConfig{
			IBAN: os.Getenv("BANK_IBAN"),
			BIC:  os.Getenv("BANK_BIC"),
			Name: getEnv("BANK_NAME", "PhoneShop"),
		},

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:  getEnv("STRIPE_CURRENCY", "eur"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

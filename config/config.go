package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Payment gateway (Edviron collect API)
	GatewayBaseURL string
	PGKey          string // secret used to sign collect requests
	PGAPIKey       string // bearer token for gateway calls
	SchoolID       string

	JWTSecret string

	SMTPHost  string
	SMTPPort  string
	SMTPUser  string
	SMTPPass  string
	EmailFrom string

	KafkaBrokers string
	KafkaTopic   string

	// Enables the /dev simulation routes
	DevMode bool
}

var AppConfig Config

func LoadConfig() {
	// Try loading .env from different locations
	envLocations := []string{
		".env",
		"config/.env",
		"../config/.env",
	}

	envLoaded := false
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = Config{
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: getEnvWithDefault("DB_PASSWORD", "postgres"),
		DBName:     getEnvWithDefault("DB_NAME", "payments"),

		GatewayBaseURL: getEnvWithDefault("PG_BASE_URL", "https://dev-vanilla.edviron.com/erp"),
		PGKey:          os.Getenv("PG_KEY"),
		PGAPIKey:       os.Getenv("PG_API_KEY"),
		SchoolID:       os.Getenv("SCHOOL_ID"),

		JWTSecret: getEnvWithDefault("JWT_SECRET", "dev-secret-change-me"),

		SMTPHost:  getEnvWithDefault("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:  getEnvWithDefault("SMTP_PORT", "587"),
		SMTPUser:  os.Getenv("SMTP_USER"),
		SMTPPass:  os.Getenv("SMTP_PASS"),
		EmailFrom: os.Getenv("EMAIL_FROM"),

		KafkaBrokers: getEnvWithDefault("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnvWithDefault("KAFKA_TOPIC", "school.payments"),

		DevMode: os.Getenv("DEV_MODE") == "true",
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDBConnString() string {
	return "host=" + AppConfig.DBHost +
		" port=" + AppConfig.DBPort +
		" user=" + AppConfig.DBUser +
		" password=" + AppConfig.DBPassword +
		" dbname=" + AppConfig.DBName +
		" sslmode=disable"
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type OAuthClient struct {
	ID     string
	Secret string
	Tenant string
}

// Enabled reports whether both client credentials are present.
func (o OAuthClient) Enabled() bool {
	return o.ID != "" && o.Secret != ""
}

type Config struct {
	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string
	BaseURL    string

	JWTSecret           string
	JWTExpiry           time.Duration
	SessionRefreshAfter time.Duration
	CookieSecure        bool

	RedisURL       string
	ExposeTaskDump bool

	LogLevel  string
	LogFormat string

	GitHub  OAuthClient
	Google  OAuthClient
	AzureAD OAuthClient
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	port := getEnv("SERVER_PORT", "8080")
	return &Config{
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "planboard"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5431"),
		DBUser:     getEnv("DB_USER", "planboard_user"),
		DBPassword: getEnv("DB_PASSWORD", "planboard_pass"),
		DBName:     getEnv("DB_NAME", "planboard_db"),

		ServerPort: port,
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:"+port), "/"),

		JWTSecret:           getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:           getDuration("JWT_EXPIRY", 30*24*time.Hour),
		SessionRefreshAfter: getDuration("SESSION_REFRESH_AFTER", time.Hour),
		CookieSecure:        getBool("COOKIE_SECURE", false),

		RedisURL:       getEnv("REDIS_URL", ""),
		ExposeTaskDump: getBool("EXPOSE_TASK_DUMP", false),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		GitHub: OAuthClient{
			ID:     getEnv("AUTH_GITHUB_ID", ""),
			Secret: getEnv("AUTH_GITHUB_SECRET", ""),
		},
		Google: OAuthClient{
			ID:     getEnv("AUTH_GOOGLE_ID", ""),
			Secret: getEnv("AUTH_GOOGLE_SECRET", ""),
		},
		AzureAD: OAuthClient{
			ID:     getEnv("AUTH_AZURE_AD_ID", ""),
			Secret: getEnv("AUTH_AZURE_AD_SECRET", ""),
			Tenant: getEnv("AUTH_AZURE_AD_TENANT", "common"),
		},
	}
}

// ConfigureLogging applies LOG_LEVEL and LOG_FORMAT to the standard logger.
func (c *Config) ConfigureLogging() {
	if lvl, err := log.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		log.SetLevel(log.InfoLevel)
	}
	if strings.EqualFold(c.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.WithField("key", key).Warnf("invalid duration %q, using %s", raw, defaultVal)
		return defaultVal
	}
	return d
}

func getBool(key string, defaultVal bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		log.WithField("key", key).Warnf("invalid boolean %q, using %t", raw, defaultVal)
		return defaultVal
	}
	return b
}

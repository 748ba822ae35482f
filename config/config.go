package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"employee-management/pkg/paseto"
)

type AppConfig struct {
	Env          string
	Port         string
	LogLevel     string
	DatabaseURL  string
	DatabaseName string
	PasetoKey    []byte
	TokenTTL     time.Duration
	CORSOrigins  []string
	UploadDir    string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPUseTLS   bool
	EmailFrom    string

	RunSeed           bool
	SeedAdminEmail    string
	SeedAdminPassword string
}

func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

// LoadConfig reads the .env file when present, then the environment. Every
// missing or malformed required variable is reported in one error.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found, using system environment")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(lookup func(string) (string, bool)) (*AppConfig, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	var problems []string
	cfg := &AppConfig{
		Env:               get("APP_ENV", "development"),
		LogLevel:          get("LOG_LEVEL", "info"),
		DatabaseName:      get("DATABASE_NAME", "employee-management"),
		UploadDir:         get("UPLOAD_DIR", "uploads"),
		SMTPHost:          get("SMTP_HOST", ""),
		SMTPUser:          get("SMTP_USER", ""),
		SMTPPassword:      get("SMTP_PASSWORD", ""),
		EmailFrom:         get("EMAIL_FROM", "noreply@employeemanagement.com"),
		SeedAdminEmail:    get("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword: get("SEED_ADMIN_PASSWORD", ""),
	}

	cfg.DatabaseURL = get("DATABASE_URL", get("MONGOSTRING", ""))
	switch {
	case cfg.DatabaseURL == "":
		problems = append(problems, "DATABASE_URL is required")
	case !strings.HasPrefix(cfg.DatabaseURL, "mongodb://") && !strings.HasPrefix(cfg.DatabaseURL, "mongodb+srv://"):
		problems = append(problems, "DATABASE_URL must be a mongodb:// or mongodb+srv:// connection string")
	}

	if secret := get("PASETO_SECRET", ""); secret == "" {
		problems = append(problems, "PASETO_SECRET is required")
	} else if key, err := paseto.DecodeKey(secret); err != nil {
		problems = append(problems, fmt.Sprintf("PASETO_SECRET: %v", err))
	} else {
		cfg.PasetoKey = key
	}

	if raw := get("TOKEN_EXPIRES_IN", ""); raw == "" {
		problems = append(problems, "TOKEN_EXPIRES_IN is required")
	} else if ttl, err := time.ParseDuration(raw); err != nil || ttl <= 0 {
		problems = append(problems, "TOKEN_EXPIRES_IN must be a positive duration such as 24h")
	} else {
		cfg.TokenTTL = ttl
	}

	if raw := get("CORS_ORIGIN", ""); raw == "" {
		problems = append(problems, "CORS_ORIGIN is required")
	} else {
		for _, o := range strings.Split(raw, ",") {
			o = strings.TrimSpace(o)
			switch {
			case o == "":
			case o == "*" || strings.HasPrefix(o, "http://") || strings.HasPrefix(o, "https://"):
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			default:
				problems = append(problems, fmt.Sprintf("CORS_ORIGIN entry %q must start with http:// or https://", o))
			}
		}
		if len(cfg.CORSOrigins) == 0 {
			problems = append(problems, "CORS_ORIGIN lists no origins")
		}
		if len(cfg.CORSOrigins) > 1 {
			for _, o := range cfg.CORSOrigins {
				if o == "*" {
					problems = append(problems, "CORS_ORIGIN cannot mix * with explicit origins")
					break
				}
			}
		}
	}

	if raw := get("PORT", ""); raw == "" {
		problems = append(problems, "PORT is required")
	} else if p, err := strconv.Atoi(raw); err != nil || p < 1 || p > 65535 {
		problems = append(problems, "PORT must be a number between 1 and 65535")
	} else {
		cfg.Port = raw
	}

	cfg.SMTPPort = 587
	if raw := get("SMTP_PORT", ""); raw != "" {
		if p, err := strconv.Atoi(raw); err != nil || p < 1 || p > 65535 {
			problems = append(problems, "SMTP_PORT must be a number between 1 and 65535")
		} else {
			cfg.SMTPPort = p
		}
	}

	if raw := get("SMTP_USE_TLS", "false"); raw != "" {
		useTLS, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, "SMTP_USE_TLS must be true or false")
		}
		cfg.SMTPUseTLS = useTLS
	}

	if raw := get("RUN_SEED", "false"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, "RUN_SEED must be true or false")
		}
		cfg.RunSeed = seed
	}

	if len(problems) > 0 {
		return nil, errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return cfg, nil
}

// SetupLogger configures the global logrus logger.
func SetupLogger(cfg *AppConfig) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Store    StoreConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Path     string // sqlite3 only
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

type LoggerConfig struct {
	FileEnable bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// StoreConfig describes the shop as printed on receipts
type StoreConfig struct {
	Name       string
	Contact    string
	NoticeTTL  time.Duration
	ReceiptDir string
}

// DSN builds the driver-specific data source name
func (c DatabaseConfig) DSN() string {
	if c.Driver == DriverPostgres {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
			Path:     "/" + c.Database,
			RawQuery: "sslmode=" + c.SSLMode,
		}
		return u.String()
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", c.Path)
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_DRIVER", DriverSQLite)
	viper.SetDefault("DB_PATH", "database/graca_presentes.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_FILE_ENABLE", false)
	viper.SetDefault("LOG_FILE", "erros.log")
	viper.SetDefault("LOG_MAX_SIZE_MB", 64)
	viper.SetDefault("LOG_MAX_BACKUPS", 7)
	viper.SetDefault("LOG_MAX_AGE_DAYS", 7)
	viper.SetDefault("STORE_NAME", "Graça Presentes")
	viper.SetDefault("STORE_CONTACT", "WhatsApp: (11) 99999-9999")
	viper.SetDefault("NOTICE_TTL", "5s")
	viper.SetDefault("RECEIPT_DIR", ".")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Path:     viper.GetString("DB_PATH"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Logger: LoggerConfig{
			FileEnable: viper.GetBool("LOG_FILE_ENABLE"),
			Filename:   viper.GetString("LOG_FILE"),
			MaxSizeMB:  viper.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: viper.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: viper.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Store: StoreConfig{
			Name:       viper.GetString("STORE_NAME"),
			Contact:    viper.GetString("STORE_CONTACT"),
			NoticeTTL:  viper.GetDuration("NOTICE_TTL"),
			ReceiptDir: viper.GetString("RECEIPT_DIR"),
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	OrderStoreSQL   = "sql"
	OrderStoreMongo = "mongo"
)

type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	OrderStore    string
	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTTTL    time.Duration

	EventLogDir    string
	ReplayLimit    int
	AMQPURL        string
	AMQPExchange   string
	QRBaseURL      string
	QRSize         int
	PrinterAddr    string
	PrinterTimeout time.Duration

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	LogLevel  string
	LogFormat string

	AdminEmail     string
	AdminPassword  string
	RestaurantName string
	Currency       string

	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:            v.GetString("port"),
		GinMode:         v.GetString("gin_mode"),
		DBDriver:        strings.ToLower(v.GetString("db_driver")),
		DBDSN:           v.GetString("db_dsn"),
		OrderStore:      strings.ToLower(v.GetString("order_store")),
		MongoURI:        v.GetString("mongo_uri"),
		MongoDatabase:   v.GetString("mongo_database"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTTTL:          v.GetDuration("jwt_ttl"),
		EventLogDir:     v.GetString("event_log_dir"),
		ReplayLimit:     v.GetInt("replay_limit"),
		AMQPURL:         v.GetString("amqp_url"),
		AMQPExchange:    v.GetString("amqp_exchange"),
		QRBaseURL:       strings.TrimRight(v.GetString("qr_base_url"), "/"),
		QRSize:          v.GetInt("qr_size"),
		PrinterAddr:     v.GetString("printer_addr"),
		PrinterTimeout:  v.GetDuration("printer_timeout"),
		CORSOrigins:     splitList(v.GetString("cors_origins")),
		RateLimitRPS:    v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:  v.GetInt("rate_limit_burst"),
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		AdminEmail:      v.GetString("admin_email"),
		AdminPassword:   v.GetString("admin_password"),
		RestaurantName:  v.GetString("restaurant_name"),
		Currency:        v.GetString("currency"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "dineflow.db")
	v.SetDefault("order_store", OrderStoreSQL)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "dineflow")
	v.SetDefault("jwt_ttl", "24h")
	v.SetDefault("replay_limit", 500)
	v.SetDefault("amqp_exchange", "kitchen_events")
	v.SetDefault("qr_base_url", "http://localhost:5173")
	v.SetDefault("qr_size", 256)
	v.SetDefault("printer_timeout", "5s")
	v.SetDefault("cors_origins", "http://localhost:5173")
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("restaurant_name", "DineFlow")
	v.SetDefault("currency", "Rp")
	v.SetDefault("shutdown_timeout", "10s")
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	switch c.OrderStore {
	case OrderStoreSQL, OrderStoreMongo:
	default:
		return errors.New("ORDER_STORE must be sql or mongo")
	}
	if c.OrderStore == OrderStoreMongo && c.MongoURI == "" {
		return errors.New("MONGO_URI is required when ORDER_STORE=mongo")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

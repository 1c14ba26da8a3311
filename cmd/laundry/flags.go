package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Address  string `env:"RUN_ADDRESS" envDefault:"localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	StoreDriver        string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseConnection string `env:"DATABASE_URI"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"laundry.db"`
	MongoDatabase      string `env:"MONGO_DATABASE" envDefault:"laundry"`
	RedisAddr          string `env:"REDIS_ADDR"`

	TimeZone          string `env:"TIME_ZONE" envDefault:"UTC"`
	CodeStrategy      string `env:"CODE_STRATEGY" envDefault:"random"`
	CodeAttempts      int    `env:"CODE_ATTEMPTS" envDefault:"3"`
	StrictTransitions bool   `env:"STRICT_TRANSITIONS" envDefault:"false"`
	WeightRates       string `env:"WEIGHT_RATES"`
	UnitRates         string `env:"UNIT_RATES"`

	NotifyURL       string        `env:"NOTIFY_URL"`
	NotifyToken     string        `env:"NOTIFY_TOKEN"`
	AdminPhone      string        `env:"ADMIN_PHONE"`
	QueueURL        string        `env:"QUEUE_URL"`
	NotifyStatuses  string        `env:"NOTIFY_STATUSES" envDefault:"READY_FOR_PICKUP,COMPLETED"`
	NotifyWorkers   int           `env:"NOTIFY_WORKERS" envDefault:"4"`
	NotifyQueueSize int           `env:"NOTIFY_QUEUE_SIZE" envDefault:"100"`
	NotifyTimeout   time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"10s"`
	NotifyAttempts  int           `env:"NOTIFY_ATTEMPTS" envDefault:"1"`

	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"laundry.orders"`

	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dontexposethis"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	AdminLogin    string        `env:"ADMIN_LOGIN" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	AdminAuth     bool          `env:"ADMIN_AUTH" envDefault:"true"`
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("ENV JWT_SECRET must be set")
	}

	address := flag.String("a", cfg.Address, "{Host:port} for server")
	loglevel := flag.String("l", cfg.LogLevel, "Log level for server")
	driver := flag.String("s", cfg.StoreDriver, "Store driver: postgres, sqlite or mongo")
	databaseConnection := flag.String("d", cfg.DatabaseConnection, "Database connection string")
	sqlitePath := flag.String("f", cfg.SQLitePath, "SQLite database file")
	timeZone := flag.String("z", cfg.TimeZone, "Reference time zone (e.g. Asia/Jakarta)")
	codeStrategy := flag.String("c", cfg.CodeStrategy, "Order code strategy: random or sequential")
	notifyURL := flag.String("n", cfg.NotifyURL, "Messaging gateway URL")
	notifyWorkers := flag.Int("w", cfg.NotifyWorkers, "Size of notification worker pool")
	jwtTTL := flag.Duration("t", cfg.JWTTTL, "TTL for JWT token(e.g. 24h; 30m )")

	flag.Parse()

	cfg.Address = *address
	cfg.LogLevel = *loglevel
	cfg.StoreDriver = *driver
	cfg.DatabaseConnection = *databaseConnection
	cfg.SQLitePath = *sqlitePath
	cfg.TimeZone = *timeZone
	cfg.CodeStrategy = *codeStrategy
	cfg.NotifyURL = *notifyURL
	cfg.NotifyWorkers = *notifyWorkers
	cfg.JWTTTL = *jwtTTL

	switch cfg.StoreDriver {
	case "postgres", "mongo":
		if cfg.DatabaseConnection == "" {
			return nil, fmt.Errorf("DATABASE_URI must be set for store driver %q", cfg.StoreDriver)
		}
	case "sqlite":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	return cfg, nil
}

package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Configuration holds everything the server needs to boot.
type Configuration struct {
	Address     string `env:"ADDRESS" envDefault:":8002"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	AppTimezone string `env:"APP_TIMEZONE" envDefault:"Asia/Kolkata"`
	CorsOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"host=localhost port=5432 user=postgres password=postgres dbname=canteen sslmode=disable"`

	JwtSecret        string        `env:"JWT_SECRET,required"`
	CustomerTokenTTL time.Duration `env:"CUSTOMER_TOKEN_TTL" envDefault:"24h"`
	AdminTokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
	AdminMasterKey   string        `env:"ADMIN_MASTER_KEY"`
	LoginRateLimit   int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`

	RedisAddr string `env:"REDIS_ADDR"`

	CashfreeBaseURL    string        `env:"CASHFREE_BASE_URL" envDefault:"https://sandbox.cashfree.com/pg"`
	CashfreeAppID      string        `env:"CASHFREE_APP_ID"`
	CashfreeSecretKey  string        `env:"CASHFREE_SECRET_KEY"`
	CashfreeAPIVersion string        `env:"CASHFREE_API_VERSION" envDefault:"2022-09-01"`
	CashfreeReturnURL  string        `env:"CASHFREE_RETURN_URL" envDefault:"http://localhost:5173?order_id={order_id}"`
	CashfreeEnv        string        `env:"CASHFREE_ENV" envDefault:"sandbox"`
	CustomerPhone      string        `env:"CASHFREE_CUSTOMER_PHONE" envDefault:"9999999999"`
	PaymentGateway     string        `env:"PAYMENT_GATEWAY" envDefault:"cashfree"`
	GatewayTimeout     time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"Canteen <no-reply@canteen.local>"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	LogPath       string `env:"LOG_PATH" envDefault:"./logs"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"`
}

var (
	current *Configuration
	mu      sync.RWMutex
)

// Load reads .env (if present) and the process environment.
func Load(files ...string) (*Configuration, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("config: load %s: %w", f, err)
			}
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.DBDriver = strings.ToLower(cfg.DBDriver)

	Set(&cfg)
	return &cfg, nil
}

// Set replaces the active configuration. Tests use it to inject values.
func Set(cfg *Configuration) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
}

// Get returns the active configuration. It panics if nothing was loaded.
func Get() *Configuration {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		panic("config: configuration not loaded")
	}
	return current
}

// Location is the timezone used to decide what "today" means.
func (c *Configuration) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Configuration) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func (c *Configuration) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Configuration) Origins() string {
	return strings.ReplaceAll(c.CorsOrigins, " ", "")
}

// WithGatewayTimeout bounds a payment gateway round trip.
func WithGatewayTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	timeout := 10 * time.Second
	mu.RLock()
	if current != nil && current.GatewayTimeout > 0 {
		timeout = current.GatewayTimeout
	}
	mu.RUnlock()
	return context.WithTimeout(parent, timeout)
}

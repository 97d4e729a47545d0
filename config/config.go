package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Operator OperatorConfig
	Booking  BookingConfig
	Payment  PaymentConfig
	Rates    RatesConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// OperatorConfig identifies the single operator account allowed to call the
// operational endpoints (manual expiry sweep).
type OperatorConfig struct {
	Username     string
	PasswordHash string // bcrypt
}

type BookingConfig struct {
	TimeZone        string
	OpenHour        int
	CloseHour       int
	OpenWeekdays    []string // e.g. ["Tuesday", ..., "Sunday"]
	SlotMinutes     int
	StrideMinutes   int
	MinLeadTime     time.Duration
	MaxSlotsPerDay  int
	ProviderID      string // single-provider domain
	ServiceDefault  string
}

type PaymentConfig struct {
	PriceCents      int64 // fixed CAD price per appointment
	Window          time.Duration
	SweepInterval   time.Duration // cadence of the expiry sweep
	ProviderBaseURL string
	CallbackBaseURL string // webhook target advertised to the provider
	RequestTimeout  time.Duration
}

type RatesConfig struct {
	BaseURL      string
	TTL          time.Duration
	FetchRetries int
	Timeout      time.Duration
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8099")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")

	viper.SetDefault("DATABASE_DSN", "slotpay:slotpay@tcp(localhost:3306)/slotpay?charset=utf8mb4&parseTime=True&loc=UTC")
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 100)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")

	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("JWT_EXPIRY", "12h")
	viper.SetDefault("JWT_ISSUER", "slotpay")

	viper.SetDefault("OPERATOR_USERNAME", "operator")
	viper.SetDefault("OPERATOR_PASSWORD_HASH", "")

	viper.SetDefault("BOOKING_TIMEZONE", "America/Toronto")
	viper.SetDefault("BOOKING_OPEN_HOUR", 11)
	viper.SetDefault("BOOKING_CLOSE_HOUR", 20)
	viper.SetDefault("BOOKING_OPEN_WEEKDAYS", []string{"Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"})
	viper.SetDefault("BOOKING_SLOT_MINUTES", 90)
	viper.SetDefault("BOOKING_STRIDE_MINUTES", 30)
	viper.SetDefault("BOOKING_MIN_LEAD_TIME", "3h")
	viper.SetDefault("BOOKING_MAX_SLOTS_PER_DAY", 5)
	viper.SetDefault("BOOKING_PROVIDER_ID", "default")
	viper.SetDefault("BOOKING_SERVICE_DEFAULT", "standard")

	viper.SetDefault("PAYMENT_PRICE_CENTS", 25000)
	viper.SetDefault("PAYMENT_WINDOW", "30m")
	viper.SetDefault("PAYMENT_SWEEP_INTERVAL", "5m")
	viper.SetDefault("PAYMENT_PROVIDER_BASE_URL", "http://localhost:5000")
	viper.SetDefault("PAYMENT_CALLBACK_BASE_URL", "")
	viper.SetDefault("PAYMENT_REQUEST_TIMEOUT", "15s")

	viper.SetDefault("RATES_BASE_URL", "https://api.coingecko.com")
	viper.SetDefault("RATES_TTL", "5m")
	viper.SetDefault("RATES_FETCH_RETRIES", 2)
	viper.SetDefault("RATES_TIMEOUT", "10s")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("no config file found, using environment variables only")
	}

	return &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Env:          viper.GetString("ENV"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN:             viper.GetString("DATABASE_DSN"),
			MaxIdleConns:    viper.GetInt("DATABASE_MAX_IDLE_CONNS"),
			MaxOpenConns:    viper.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnMaxLifetime: viper.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Expiry: viper.GetDuration("JWT_EXPIRY"),
			Issuer: viper.GetString("JWT_ISSUER"),
		},
		Operator: OperatorConfig{
			Username:     viper.GetString("OPERATOR_USERNAME"),
			PasswordHash: viper.GetString("OPERATOR_PASSWORD_HASH"),
		},
		Booking: BookingConfig{
			TimeZone:       viper.GetString("BOOKING_TIMEZONE"),
			OpenHour:       viper.GetInt("BOOKING_OPEN_HOUR"),
			CloseHour:      viper.GetInt("BOOKING_CLOSE_HOUR"),
			OpenWeekdays:   viper.GetStringSlice("BOOKING_OPEN_WEEKDAYS"),
			SlotMinutes:    viper.GetInt("BOOKING_SLOT_MINUTES"),
			StrideMinutes:  viper.GetInt("BOOKING_STRIDE_MINUTES"),
			MinLeadTime:    viper.GetDuration("BOOKING_MIN_LEAD_TIME"),
			MaxSlotsPerDay: viper.GetInt("BOOKING_MAX_SLOTS_PER_DAY"),
			ProviderID:     viper.GetString("BOOKING_PROVIDER_ID"),
			ServiceDefault: viper.GetString("BOOKING_SERVICE_DEFAULT"),
		},
		Payment: PaymentConfig{
			PriceCents:      viper.GetInt64("PAYMENT_PRICE_CENTS"),
			Window:          viper.GetDuration("PAYMENT_WINDOW"),
			SweepInterval:   viper.GetDuration("PAYMENT_SWEEP_INTERVAL"),
			ProviderBaseURL: viper.GetString("PAYMENT_PROVIDER_BASE_URL"),
			CallbackBaseURL: viper.GetString("PAYMENT_CALLBACK_BASE_URL"),
			RequestTimeout:  viper.GetDuration("PAYMENT_REQUEST_TIMEOUT"),
		},
		Rates: RatesConfig{
			BaseURL:      viper.GetString("RATES_BASE_URL"),
			TTL:          viper.GetDuration("RATES_TTL"),
			FetchRetries: viper.GetInt("RATES_FETCH_RETRIES"),
			Timeout:      viper.GetDuration("RATES_TIMEOUT"),
		},
	}
}

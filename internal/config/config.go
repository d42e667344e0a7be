package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"ecshop/internal/domain/model"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DATABASE_URLがあればそれを優先
	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"postgres"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"ecshop"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`

	GoEnv    string `env:"GO_ENV" envDefault:"dev"`                   // dev/prod
	FEURL    string `env:"FE_URL" envDefault:"http://localhost:3000"` // CORS
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"static"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	StockPolicy model.StockPolicy `env:"STOCK_POLICY" envDefault:"allow_negative"`

	// 登録時にADMINにするメールアドレス
	AdminEmails []string `env:"ADMIN_EMAILS" envSeparator:","`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Loadは.env（あれば）と環境変数から設定を読む
func Load() (Config, error) {
	// .envが無いのは問題なし
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parseは環境変数だけから設定を組み立てる
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if _, err := model.ParseStockPolicy(string(cfg.StockPolicy)); err != nil {
		return Config{}, err
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("BCRYPT_COST out of range")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	if cfg.GoEnv == "prod" && cfg.DatabaseURL == "" && cfg.PostgresPassword == "postgres" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required in prod")
	}

	for i, e := range cfg.AdminEmails {
		cfg.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}

	return cfg, nil
}

// DSNはgormに渡す接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode,
	)
}

func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, e := range c.AdminEmails {
		if e != "" && e == email {
			return true
		}
	}
	return false
}

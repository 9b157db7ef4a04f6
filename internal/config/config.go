// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Hasher   HasherConfig   `yaml:"hasher"`
	DB       DBConfig       `yaml:"db"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	RemoveBG RemoveBGConfig `yaml:"removebg"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
//
// Секреты access и refresh независимы: компрометация одного не позволяет
// подделать токены другого типа. Оба обязательны — безопасных дефолтов нет.
type AuthConfig struct {
	AccessSecret    string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET" env-required:"true"`
	RefreshSecret   string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"REFRESH_TOKEN_TTL" env-default:"168h"`
	Issuer          string        `yaml:"issuer" env:"ISSUER" env-default:"canvas-ai-backend"`
}

// HasherConfig — параметры хэширования паролей.
// MaxParallel ограничивает число одновременных bcrypt-операций,
// чтобы CPU-нагрузка не блокировала обслуживание остальных запросов;
// 0 — использовать runtime.GOMAXPROCS(0).
type HasherConfig struct {
	Cost        int `yaml:"cost" env:"HASHER_COST" env-default:"12"`
	MaxParallel int `yaml:"max_parallel" env:"HASHER_MAX_PARALLEL" env-default:"0"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL" env-required:"true"`
}

// OpenAIConfig — доступ к OpenAI API (генерация текста/изображений/озвучки).
type OpenAIConfig struct {
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
}

// RemoveBGConfig — доступ к remove.bg API (удаление фона).
type RemoveBGConfig struct {
	APIKey string `yaml:"api_key" env:"REMOVEBG_API_KEY" env-default:""`
}

// TimeoutConfig — таймауты сервиса.
// Service — общий дедлайн HTTP-запроса; Store — дедлайн одного обращения к БД.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"30s"`
	Store   time.Duration `yaml:"store" env:"STORE_TIMEOUT" env-default:"3s"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, validate(&cfg)
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, validate(&cfg)
}

// validate проверяет инварианты конфигурации, которые cleanenv не выражает.
func validate(cfg *Config) error {
	if cfg.Auth.AccessSecret == cfg.Auth.RefreshSecret {
		return fmt.Errorf("auth: access and refresh secrets must differ")
	}

	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 {
		return fmt.Errorf("auth: token TTLs must be positive")
	}

	return nil
}

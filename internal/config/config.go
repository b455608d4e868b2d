package config

import (
	"flag"
	"io/fs"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type DBType string

const (
	DBTypePostgres DBType = "postgres"
	DBTypeSQLite   DBType = "sqlite"
	DBTypeInMemory DBType = "inMemory"
)

// maxCodeLength совпадает с размером колонки short_code.
const maxCodeLength = 64

type Config struct {
	// Адрес на котором запустится сервер
	ServerAddress string `env:"SERVER_ADDRESS"`
	// Базовый адрес результирующего сокращенного URL
	BaseURL *url.URL `env:"BASE_URL"`
	// Тип хранилища. Если задан DatabaseDSN, по умолчанию postgres.
	DBType DBType `env:"DB"`
	// Путь к файлу sqlite
	SQLitePath string `env:"SQLITE_PATH"`
	// Строка подключения к postgres
	DatabaseDSN string `env:"DATABASE_DSN"`
	// Длина короткого кода. Через флаги не настраивается, как и остальные параметры ниже.
	CodeLength int `env:"CODE_LENGTH" envDefault:"7"`
	// Максимальное число попыток подобрать свободный код
	MaxAllocAttempts int `env:"MAX_ALLOC_ATTEMPTS" envDefault:"10"`
	// Секрет для подписи токенов администратора. Пустой секрет отключает админские маршруты.
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`
	// Уровень логирования (debug, info, warn, error)
	LogLevel string `env:"LOG_LEVEL"`

	Logger *logrus.Logger
}

// LoadConfig собирает конфигурацию из .env файла, переменных окружения и флагов командной строки.
// Переменные окружения имеют приоритет над флагами.
//
// Параметры:
//   - args: аргументы командной строки без имени программы
//
// Возвращает:
//   - *Config: итоговая конфигурация
//   - error: ошибка разбора или проверки
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env file")
	}

	var flagsConfig, envConfig Config

	if err := env.Parse(&envConfig); err != nil {
		return nil, errors.Wrapf(err, "parse ENV config error")
	}

	if err := loadFlags(&flagsConfig, args); err != nil {
		return nil, err
	}

	conf := mergeConfig(&envConfig, &flagsConfig)
	if err := conf.validate(); err != nil {
		return nil, err
	}

	logger, err := initLogger(conf.LogLevel)
	if err != nil {
		return nil, err
	}
	conf.Logger = logger
	return conf, nil
}

// MustLoadConfig вызывает LoadConfig с аргументами процесса и паникует при ошибке.
func MustLoadConfig(args []string) *Config {
	conf, err := LoadConfig(args)
	if err != nil {
		panic(err)
	}
	return conf
}

// loadFlags парсит флаги командной строки.
func loadFlags(flagsConfig *Config, args []string) error {
	flags := flag.NewFlagSet("shortener", flag.ContinueOnError)

	flags.StringVar(&flagsConfig.ServerAddress, "a", "localhost:8080", "Адрес сервера")
	flags.StringVar(&flagsConfig.SQLitePath, "f", "./shortlinks.sqlite", "Путь к файлу sqlite")
	flags.StringVar(&flagsConfig.DatabaseDSN, "d", "", "Строка подключения к postgres")

	bDesc := "Базовый адрес результирующего сокращенного URL (по умолчанию Scheme://Host запущенного сервера)"
	flags.Func("b", bDesc, func(rawURL string) error {
		parsedURL, err := url.ParseRequestURI(rawURL)
		if err != nil {
			return errors.Wrap(err, "failed to parse base url")
		}

		// создаем новый инстанс, отсекая тем самым Path и Query если они заданы в базовом урле.
		flagsConfig.BaseURL = &url.URL{
			Scheme: parsedURL.Scheme,
			Host:   parsedURL.Host,
		}
		return nil
	})

	if err := flags.Parse(args); err != nil {
		return errors.Wrap(err, "parse flags")
	}
	return nil
}

// mergeConfig сливает структуры для env и флагов.
func mergeConfig(envConfig, flagsConfig *Config) *Config {
	conf := &Config{
		ServerAddress:    defaultIfBlank[string](envConfig.ServerAddress, flagsConfig.ServerAddress),
		BaseURL:          defaultIfBlank[*url.URL](envConfig.BaseURL, flagsConfig.BaseURL),
		DBType:           envConfig.DBType,
		SQLitePath:       defaultIfBlank[string](envConfig.SQLitePath, flagsConfig.SQLitePath),
		DatabaseDSN:      defaultIfBlank[string](envConfig.DatabaseDSN, flagsConfig.DatabaseDSN),
		CodeLength:       envConfig.CodeLength,
		MaxAllocAttempts: envConfig.MaxAllocAttempts,
		AdminJWTSecret:   envConfig.AdminJWTSecret,
		LogLevel:         envConfig.LogLevel,
	}

	if conf.DBType == "" {
		conf.DBType = DBTypeInMemory
		if conf.DatabaseDSN != "" {
			conf.DBType = DBTypePostgres
		}
	}
	return conf
}

func (c *Config) validate() error {
	switch c.DBType {
	case DBTypeInMemory, DBTypeSQLite:
	case DBTypePostgres:
		if c.DatabaseDSN == "" {
			return errors.New("DATABASE_DSN is required for postgres storage")
		}
	default:
		return errors.Errorf("unknown storage type `%s`", c.DBType)
	}

	if c.CodeLength < 1 || c.CodeLength > maxCodeLength {
		return errors.Errorf("code length must be in range 1..%d, got %d", maxCodeLength, c.CodeLength)
	}
	if c.MaxAllocAttempts < 1 {
		return errors.Errorf("max allocation attempts must be positive, got %d", c.MaxAllocAttempts)
	}
	return nil
}

func defaultIfBlank[T any](value T, defaultValue T) T {
	if v, ok := any(value).(string); ok && v == "" {
		return defaultValue
	}
	if v, ok := any(value).(*url.URL); ok && v == nil {
		return defaultValue
	}
	return value
}

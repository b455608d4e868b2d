package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type StorageType string

const (
	StorageTypePostgres StorageType = "postgres"
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType StorageType
	PostgresDSN string
	SQLitePath  string
	Logger      *logrus.Logger
}

// Conn подключение к хранилищу. Заполнено ровно одно из полей: SQL (sqlite, postgres) или Memory.
type Conn struct {
	SQL     *gorm.DB
	Memory  *MemoryStorage
	closers []func() error
}

// Close закрывает все ресурсы подключения в обратном порядке.
func (c *Conn) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, c.closers[i]())
	}
	return err
}

func NewConnectionFactory(ctx context.Context, config FactoryConfig) (*Conn, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		pool, err := NewPostgresConnection(ctx, config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		gormDB, gormErr := NewPostgres(pool, config.Logger)
		if gormErr != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to init postgres: %w", gormErr)
		}
		conn := &Conn{SQL: gormDB}
		conn.closers = append(conn.closers,
			func() error { pool.Close(); return nil },
			sqlCloser(gormDB),
		)
		return conn, nil
	case StorageTypeSQLite:
		if config.SQLitePath == "" {
			return nil, errors.New("sqlite path is empty")
		}
		gormDB, err := NewSQLite(config.SQLitePath, config.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return &Conn{SQL: gormDB, closers: []func() error{sqlCloser(gormDB)}}, nil
	case StorageTypeInMemory:
		return &Conn{Memory: NewMemStorage()}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

func sqlCloser(gormDB *gorm.DB) func() error {
	return func() error {
		sqlDB, err := gormDB.DB()
		if err != nil {
			return fmt.Errorf("get sql.DB: %w", err)
		}
		return sqlDB.Close() //nolint:wrapcheck
	}
}

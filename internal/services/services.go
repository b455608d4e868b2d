package services

import (
	"errors"

	"github.com/fsdevblog/shortlink/internal/db"
	"github.com/fsdevblog/shortlink/internal/repositories/memstore"
	"github.com/fsdevblog/shortlink/internal/repositories/sql"

	"github.com/sirupsen/logrus"
)

type repository interface {
	ShortLinkRepository
	Pinger
}

type Services struct {
	ShortLinkService *ShortLinkService
	PingService      *PingService
}

// Factory собирает сервисы поверх открытого подключения к хранилищу.
//
// Параметры:
//   - conn: подключение, созданное db.NewConnectionFactory
//   - opts: настройки генератора кодов
//   - logger: логгер
//
// Возвращает:
//   - *Services: набор сервисов
//   - error: ошибка, если подключение пустое
func Factory(conn *db.Conn, opts AllocatorOptions, logger *logrus.Logger) (*Services, error) {
	var repo repository
	switch {
	case conn == nil:
		return nil, errors.New("connection is nil")
	case conn.SQL != nil:
		repo = sql.NewShortLinkRepo(conn.SQL, logger)
	case conn.Memory != nil:
		repo = memstore.NewShortLinkRepo(conn.Memory)
	default:
		return nil, errors.New("connection has no storage")
	}

	return &Services{
		ShortLinkService: NewShortLinkService(repo, opts, logger),
		PingService:      NewPingService(repo),
	}, nil
}

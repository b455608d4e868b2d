package sql

import (
	"fmt"
	"strings"

	"github.com/fsdevblog/shortlink/internal/repositories"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ConvertErrorType конвертирует ошибки gorm в ошибки уровня репозитория, сохраняя исходный текст.
func ConvertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case errors.Is(err, repositories.ErrDeactivated):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		nativeErr = repositories.ErrDuplicateKey
	case errors.Is(err, gorm.ErrRecordNotFound):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}
	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}

// isUniqueViolation запасная проверка на случай, если драйвер не перевел ошибку.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

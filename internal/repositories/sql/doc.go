// Package sql предоставляет реализацию репозитория коротких ссылок поверх gorm (SQLite и PostgreSQL).
//
// Все методы репозитория преобразуют ошибки gorm в общие ошибки уровня репозитория
// с помощью ConvertErrorType:
//   - gorm.ErrDuplicatedKey (нарушение уникального индекса short_code) -> repositories.ErrDuplicateKey
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
//
// Счетчик переходов увеличивается одним UPDATE ... SET clicks = clicks + 1 с проверкой активности
// в том же выражении, поэтому конкурентные переходы не теряются.
package sql

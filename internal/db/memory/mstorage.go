package memory

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MStorage потокобезопасное хранилище ключ/значение в памяти.
// Значения хранятся сериализованными в json, поэтому наружу всегда отдаются копии.
// Порядок вставки ключей сохраняется.
type MStorage struct {
	data  map[string][]byte
	order []string
	seq   uint
	m     sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

func (m *MStorage) IsExist(key string) bool {
	m.m.RLock()
	defer m.m.RUnlock()

	_, ok := m.data[key]
	return ok
}

// Ping хранилище в памяти всегда доступно, пока жив контекст.
func (m *MStorage) Ping(ctx context.Context) error {
	return ctx.Err() //nolint:wrapcheck
}

func Get[T any](ctx context.Context, key string, m *MStorage) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.RLock()
	defer m.m.RUnlock()

	val, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Insert сохраняет новую запись по уникальному ключу. Проверка ключа и вставка выполняются под одной
// блокировкой, поэтому из двух конкурентных вставок одного ключа успешна только одна, вторая получит
// ErrDuplicateKey. Функция build получает очередной порядковый номер записи (начиная с 1).
func Insert[T any](ctx context.Context, key string, m *MStorage, build func(seq uint) *T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.Lock()
	defer m.m.Unlock()

	if _, ok := m.data[key]; ok {
		return nil, ErrDuplicateKey
	}

	val := build(m.seq + 1)
	bytes, err := json.Marshal(val)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.seq++
	m.data[key] = bytes
	m.order = append(m.order, key)
	return val, nil
}

// Update атомарно изменяет запись: чтение, вызов fn и запись выполняются под блокировкой на запись.
// Если fn вернула ошибку, запись не меняется и ошибка возвращается как есть.
func Update[T any](ctx context.Context, key string, m *MStorage, fn func(*T) error) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.Lock()
	defer m.m.Unlock()

	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	if err := fn(&val); err != nil {
		return nil, err
	}
	bytes, err := json.Marshal(&val)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}
	m.data[key] = bytes
	return &val, nil
}

// Slice возвращает записи в порядке вставки, пропуская offset первых и не больше limit штук.
func Slice[T any](ctx context.Context, m *MStorage, offset, limit int) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}
	m.m.RLock()
	defer m.m.RUnlock()

	offset = max(offset, 0)
	if offset >= len(m.order) || limit <= 0 {
		return []T{}, nil
	}
	end := len(m.order)
	if limit < end-offset {
		end = offset + limit
	}

	var result = make([]T, 0, end-offset)
	for _, key := range m.order[offset:end] {
		var val T
		if err := json.Unmarshal(m.data[key], &val); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
		}
		result = append(result, val)
	}
	return result, nil
}

package controllers

import "errors"

// Ошибки.
var (
	ErrRecordNotFound = errors.New("record not found")       // Запись не найдена
	ErrGone           = errors.New("link was deactivated")   // Ссылка выключена
	ErrBadPaging      = errors.New("invalid skip or limit")  // Некорректные параметры постраничного вывода
	ErrBodyTooLarge   = errors.New("request body too large") // Тело запроса превышает MaxBodySize
	ErrInternal       = errors.New("internal error")         // Прочая ошибка
)

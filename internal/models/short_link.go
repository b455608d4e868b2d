package models

import "time"

// DefaultShortCodeLength длина короткого кода по умолчанию.
const DefaultShortCodeLength = 7

// ShortLink структура модели хранения короткой ссылки.
//
// Уникальность ShortCode обеспечивается индексом хранилища, а не только генератором кодов.
// После создания меняются только IsActive и Clicks.
type ShortLink struct {
	ID          uint      `gorm:"primaryKey"                  json:"id"`
	OriginalURL string    `gorm:"index;not null"              json:"originalUrl"`
	ShortCode   string    `gorm:"uniqueIndex;size:64;not null" json:"shortCode"`
	CreatedAt   time.Time `                                   json:"createdAt"`
	IsActive    bool      `gorm:"not null;default:true"       json:"isActive"`
	Clicks      int64     `gorm:"not null;default:0"          json:"clicks"`
}

// TableName имя таблицы для gorm.
func (ShortLink) TableName() string {
	return "short_links"
}

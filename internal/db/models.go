package db

import (
	"time"

	"gorm.io/datatypes"
)

// WordLibrary is one answer word for battle or ojama.
type WordLibrary struct {
	ID        uint      `gorm:"primaryKey"`
	Mode      string    `gorm:"size:16;not null;uniqueIndex:idx_word_library_mode_text"`
	Tier      int       `gorm:"not null;default:1"`
	Text      string    `gorm:"size:64;not null;uniqueIndex:idx_word_library_mode_text"`
	CreatedAt time.Time `gorm:"not null"`
}

func (WordLibrary) TableName() string {
	return "word_library"
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	Mode      string         `gorm:"size:16;index;not null"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User được đồng bộ từ nhà cung cấp định danh bên ngoài, lớp này chỉ đọc.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"_id"`
	ClerkID   string    `gorm:"size:191;not null;uniqueIndex" json:"clerkId"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Username  string    `gorm:"size:100;uniqueIndex" json:"username"`
	Picture   string    `gorm:"type:text" json:"picture"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

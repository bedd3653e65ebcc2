package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Các tên tag được phép tạo mới
var AllowedTagNames = []string{
	"Civil Engineering",
	"Mechanical Engineering",
	"Electrical Engineering",
	"Chemical Engineering",
	"Computer Engineering",
	"Aerospace Engineering",
}

type Tag struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"_id"`
	Name           string     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug           string     `gorm:"size:120;uniqueIndex" json:"slug"`
	Description    string     `gorm:"type:text" json:"description"`
	DevelopedBy    string     `gorm:"size:150" json:"developedBy"`
	CompanyWebsite string     `gorm:"size:255" json:"companyWebsite"`
	Questions      []Question `gorm:"many2many:question_tags" json:"questions,omitempty"`
	QuestionCount  int64      `gorm:"->;-:migration" json:"questionCount"` // chỉ đọc, tính khi truy vấn
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"createdOn"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsAllowedTagName so khớp chính xác (phân biệt hoa thường) với danh sách cho phép.
func IsAllowedTagName(name string) bool {
	for _, allowed := range AllowedTagNames {
		if name == allowed {
			return true
		}
	}
	return false
}

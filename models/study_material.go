package models

import "time"

// StudyMaterial is shared course material metadata. Students only see
// approved entries; admins toggle approval.
type StudyMaterial struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UploaderID  uint      `gorm:"not null;index" json:"uploader_id"`
	Uploader    User      `gorm:"foreignKey:UploaderID" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	CourseCode  string    `gorm:"type:varchar(50)" json:"course_code"`
	Description string    `gorm:"type:text" json:"description"`
	FileURL     string    `gorm:"type:varchar(500)" json:"file_url"`
	Approved    bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

package models

import "time"

// File represents an uploaded file. The physical bytes live on disk under
// the per-user upload directory; StoredName is randomized per upload so
// concurrent requests never collide.
type File struct {
	ID            uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID        uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	OriginalName  string    `gorm:"column:original_name;size:255;not null" json:"original_name"`
	StoredName    string    `gorm:"column:stored_name;size:255;not null" json:"stored_name"`
	Path          string    `gorm:"column:path;size:500;not null" json:"-"`
	Size          int64     `gorm:"column:size;not null" json:"size"`
	MimeType      string    `gorm:"column:mime_type;size:100" json:"mime_type"`
	IsPublic      bool      `gorm:"column:is_public;default:false" json:"is_public"`
	DownloadCount int64     `gorm:"column:download_count;default:0" json:"download_count"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (File) TableName() string {
	return "files"
}

// Website represents a hosted site owned by a user
type Website struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Subdomain string    `gorm:"column:subdomain;uniqueIndex;size:100;not null" json:"subdomain"`
	DomainID  *uint     `gorm:"column:domain_id;index" json:"domain_id"`
	Status    string    `gorm:"column:status;size:20;default:active" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Website) TableName() string {
	return "websites"
}

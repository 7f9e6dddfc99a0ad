package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PlanTier represents the subscription tier of an account
type PlanTier int

const (
	PlanFree       PlanTier = 1
	PlanPro        PlanTier = 2
	PlanEnterprise PlanTier = 3
)

// Per-tier ceilings. Storage is in bytes, domains is a row count.
const (
	FreeStorageQuota       = 1 * 1024 * 1024 * 1024
	ProStorageQuota        = 10 * 1024 * 1024 * 1024
	EnterpriseStorageQuota = 100 * 1024 * 1024 * 1024

	FreeDomainQuota       = 2
	ProDomainQuota        = 10
	EnterpriseDomainQuota = 100
)

// StorageQuota returns the storage ceiling in bytes for the tier
func (p PlanTier) StorageQuota() int64 {
	switch p {
	case PlanPro:
		return ProStorageQuota
	case PlanEnterprise:
		return EnterpriseStorageQuota
	default:
		return FreeStorageQuota
	}
}

// DomainQuota returns the domain-count ceiling for the tier
func (p PlanTier) DomainQuota() int {
	switch p {
	case PlanPro:
		return ProDomainQuota
	case PlanEnterprise:
		return EnterpriseDomainQuota
	default:
		return FreeDomainQuota
	}
}

// MarshalJSON converts PlanTier to string for JSON
func (p PlanTier) MarshalJSON() ([]byte, error) {
	var s string
	switch p {
	case PlanFree:
		s = "free"
	case PlanPro:
		s = "pro"
	case PlanEnterprise:
		s = "enterprise"
	default:
		s = "unknown"
	}
	return json.Marshal(s)
}

// UnmarshalJSON converts string back to PlanTier for JSON parsing
func (p *PlanTier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*p = PlanTier(i)
		return nil
	}
	switch s {
	case "pro":
		*p = PlanPro
	case "enterprise":
		*p = PlanEnterprise
	default:
		*p = PlanFree
	}
	return nil
}

// User represents a hosting account
type User struct {
	ID           uint     `gorm:"column:id;primaryKey" json:"id"`
	Email        string   `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	Password     string   `gorm:"column:password;size:255;not null" json:"-"`
	FullName     string   `gorm:"column:full_name;size:255" json:"full_name"`
	Plan         PlanTier `gorm:"column:plan;default:1" json:"plan"`
	StorageQuota int64    `gorm:"column:storage_quota;not null" json:"storage_quota"`
	DomainQuota  int      `gorm:"column:domain_quota;not null" json:"domain_quota"`
	IsActive     bool     `gorm:"column:is_active;default:true" json:"is_active"`

	// 2FA fields
	TwoFactorEnabled bool   `gorm:"column:two_factor_enabled;default:false" json:"two_factor_enabled"`
	TwoFactorSecret  string `gorm:"column:two_factor_secret;size:255" json:"-"`

	LastLogin *time.Time     `gorm:"column:last_login" json:"last_login"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// APIKey grants programmatic access equivalent to a bearer token
type APIKey struct {
	ID         uint       `gorm:"column:id;primaryKey" json:"id"`
	UserID     uint       `gorm:"column:user_id;index;not null" json:"user_id"`
	Name       string     `gorm:"column:name;size:100;not null" json:"name"`
	Key        string     `gorm:"column:key;uniqueIndex;size:100;not null" json:"key"`
	LastUsedAt *time.Time `gorm:"column:last_used_at" json:"last_used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

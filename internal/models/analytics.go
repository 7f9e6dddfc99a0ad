package models

import (
	"encoding/json"
	"time"
)

// Common event types. EventType is free-form; these are the ones the
// rollup endpoint buckets specially.
const (
	EventPageView = "page_view"
	EventDownload = "download"
	EventError    = "error"
)

// AnalyticsEvent is a write-only usage event. Rows are never updated,
// only inserted and read back through aggregation.
type AnalyticsEvent struct {
	ID        uint            `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint            `gorm:"column:user_id;index:idx_events_user_time;not null" json:"user_id"`
	WebsiteID *uint           `gorm:"column:website_id;index" json:"website_id"`
	DomainID  *uint           `gorm:"column:domain_id;index" json:"domain_id"`
	EventType string          `gorm:"column:event_type;size:50;not null" json:"event_type"`
	EventData json.RawMessage `gorm:"column:event_data;type:jsonb" json:"event_data"`
	IPAddress string          `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string          `gorm:"column:user_agent;size:500" json:"user_agent"`
	Referrer  string          `gorm:"column:referrer;size:500" json:"referrer"`
	CreatedAt time.Time       `gorm:"column:created_at;index:idx_events_user_time" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_events"
}

// AuditAction classifies an audit log entry
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// AuditLog records a successful modifying API request
type AuditLog struct {
	ID        uint        `gorm:"column:id;primaryKey" json:"id"`
	UserID    uint        `gorm:"column:user_id;index;not null" json:"user_id"`
	Email     string      `gorm:"column:email;size:255" json:"email"`
	Action    AuditAction `gorm:"column:action;size:20;not null" json:"action"`
	Path      string      `gorm:"column:path;size:255;not null" json:"path"`
	Entity    string      `gorm:"column:entity;size:100" json:"entity"`
	IPAddress string      `gorm:"column:ip_address;size:45" json:"ip_address"`
	UserAgent string      `gorm:"column:user_agent;size:500" json:"user_agent"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

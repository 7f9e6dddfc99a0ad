package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DomainStatus is the verification state of a custom domain
type DomainStatus string

const (
	DomainStatusPending DomainStatus = "pending"
	DomainStatusActive  DomainStatus = "active"
	DomainStatusError   DomainStatus = "error"
	DomainStatusExpired DomainStatus = "expired"
)

// SSLStatus is the certificate state of a custom domain
type SSLStatus string

const (
	SSLStatusPending SSLStatus = "pending"
	SSLStatusActive  SSLStatus = "active"
	SSLStatusError   SSLStatus = "error"
)

// DNSRecord is one CNAME the customer must create
type DNSRecord struct {
	Type   string `json:"type"`
	Host   string `json:"host"`
	Target string `json:"target"`
	TTL    int    `json:"ttl"`
}

// DNSRecords is the descriptor stored on the domain row: the main CNAME
// pointing at the panel edge plus the ACME challenge CNAME.
type DNSRecords struct {
	CNAME string      `json:"cname_target"`
	Items []DNSRecord `json:"records"`
}

// BuildDNSRecords computes the CNAME descriptor for a registered domain.
// externalHost is the panel's public edge hostname; token is the domain's
// verification token.
func BuildDNSRecords(name, externalHost, token string) DNSRecords {
	return DNSRecords{
		CNAME: externalHost,
		Items: []DNSRecord{
			{Type: "CNAME", Host: name, Target: externalHost, TTL: 3600},
			{Type: "CNAME", Host: "_acme-challenge." + name, Target: fmt.Sprintf("%s.verify.%s", token, externalHost), TTL: 3600},
		},
	}
}

// Domain represents a customer-registered custom domain
type Domain struct {
	ID                uint            `gorm:"column:id;primaryKey" json:"id"`
	UserID            uint            `gorm:"column:user_id;index;not null" json:"user_id"`
	Name              string          `gorm:"column:name;uniqueIndex;size:255;not null" json:"name"`
	Status            DomainStatus    `gorm:"column:status;size:20;default:pending" json:"status"`
	SSLStatus         SSLStatus       `gorm:"column:ssl_status;size:20;default:pending" json:"ssl_status"`
	VerificationToken string          `gorm:"column:verification_token;size:64;not null" json:"-"`
	DNSRecords        json.RawMessage `gorm:"column:dns_records;type:jsonb" json:"dns_records"`
	AutoRenew         bool            `gorm:"column:auto_renew;default:true" json:"auto_renew"`
	LastVerified      *time.Time      `gorm:"column:last_verified" json:"last_verified"`
	CreatedAt         time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Domain) TableName() string {
	return "domains"
}

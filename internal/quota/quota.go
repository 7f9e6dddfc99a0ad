// Package quota computes and enforces per-user storage and domain
// ceilings. Usage is never cached: every check aggregates live rows, so
// the numbers cannot drift from the store.
package quota

import (
	"errors"
	"math"

	"github.com/hostpanel/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrStorageExceeded is returned when an upload would push a user past
	// their storage ceiling
	ErrStorageExceeded = errors.New("storage quota exceeded")
	// ErrDomainExceeded is returned when a registration would push a user
	// past their domain ceiling
	ErrDomainExceeded = errors.New("domain quota exceeded")
)

// Usage is the report shape for a single ceiling. Available goes negative
// when usage already exceeds the quota.
type Usage struct {
	Quota      int64 `json:"quota"`
	Used       int64 `json:"used"`
	Available  int64 `json:"available"`
	Percentage int   `json:"percentage"`
}

// Report builds a usage report from a ceiling and a live usage figure
func Report(quota, used int64) Usage {
	u := Usage{
		Quota:     quota,
		Used:      used,
		Available: quota - used,
	}
	if quota > 0 {
		u.Percentage = int(math.Round(float64(used) / float64(quota) * 100))
	}
	return u
}

// Exceeds reports whether adding incoming on top of used breaks the ceiling
func Exceeds(quota, used, incoming int64) bool {
	return used+incoming > quota
}

// StorageUsed sums file sizes for a user from live rows. A query failure
// is an error, never zero usage: callers must not admit writes on it.
func StorageUsed(db *gorm.DB, userID uint) (int64, error) {
	var used int64
	err := db.Model(&models.File{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(size), 0)").Scan(&used).Error
	return used, err
}

// DomainCount counts a user's registered domains from live rows
func DomainCount(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Domain{}).Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ReserveStorage runs the storage check and the file-row insert inside one
// transaction, locking the owning user row so two concurrent uploads from
// the same user cannot both pass the check.
func ReserveStorage(db *gorm.DB, userID uint, file *models.File) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}

		used, err := StorageUsed(tx, userID)
		if err != nil {
			return err
		}
		if Exceeds(user.StorageQuota, used, file.Size) {
			return ErrStorageExceeded
		}

		return tx.Create(file).Error
	})
}

// ReserveDomain runs the domain-count check and the domain insert inside
// one transaction with the same user-row lock
func ReserveDomain(db *gorm.DB, userID uint, domain *models.Domain) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, userID).Error; err != nil {
			return err
		}

		count, err := DomainCount(tx, userID)
		if err != nil {
			return err
		}
		if count >= int64(user.DomainQuota) {
			return ErrDomainExceeded
		}

		return tx.Create(domain).Error
	})
}

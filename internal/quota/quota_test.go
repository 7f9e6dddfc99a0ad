package quota

import (
	"testing"

	"github.com/hostpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const gigabyte = 1024 * 1024 * 1024

func TestReport(t *testing.T) {
	t.Parallel()

	t.Run("empty account", func(t *testing.T) {
		u := Report(gigabyte, 0)
		assert.Equal(t, int64(gigabyte), u.Quota)
		assert.Equal(t, int64(0), u.Used)
		assert.Equal(t, int64(gigabyte), u.Available)
		assert.Equal(t, 0, u.Percentage)
	})

	t.Run("half used", func(t *testing.T) {
		u := Report(gigabyte, gigabyte/2)
		assert.Equal(t, int64(gigabyte/2), u.Available)
		assert.Equal(t, 50, u.Percentage)
	})

	t.Run("percentage rounds", func(t *testing.T) {
		u := Report(1000, 333)
		assert.Equal(t, 33, u.Percentage)

		u = Report(1000, 335)
		assert.Equal(t, 34, u.Percentage)
	})

	t.Run("over quota goes negative", func(t *testing.T) {
		u := Report(1000, 1500)
		assert.Equal(t, int64(-500), u.Available)
		assert.Equal(t, 150, u.Percentage)
	})

	t.Run("zero quota never divides", func(t *testing.T) {
		u := Report(0, 100)
		assert.Equal(t, 0, u.Percentage)
	})
}

func TestExceeds(t *testing.T) {
	t.Parallel()

	// 1GB quota, empty account, 2GB incoming file is rejected
	assert.True(t, Exceeds(gigabyte, 0, 2*gigabyte))

	// exact fit is allowed
	assert.False(t, Exceeds(gigabyte, 0, gigabyte))

	// one byte over is not
	assert.True(t, Exceeds(gigabyte, 1, gigabyte))

	assert.False(t, Exceeds(gigabyte, gigabyte/2, gigabyte/4))
}

// unreachableDB opens a pool whose connections can never be established,
// so every query fails at dial time. gorm defers dialing until first use.
func unreachableDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "host=127.0.0.1 port=1 user=none dbname=none sslmode=disable connect_timeout=1"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestUsageReadsSurfaceStoreErrors(t *testing.T) {
	t.Parallel()

	db := unreachableDB(t)

	_, err := StorageUsed(db, 1)
	assert.Error(t, err)

	_, err = DomainCount(db, 1)
	assert.Error(t, err)
}

func TestReservationsFailClosedOnStoreError(t *testing.T) {
	t.Parallel()

	db := unreachableDB(t)

	// A failing store must reject the write outright, never read as zero
	// usage and admit it
	err := ReserveStorage(db, 1, &models.File{UserID: 1, Size: 1})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStorageExceeded)

	err = ReserveDomain(db, 1, &models.Domain{UserID: 1, Name: "example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDomainExceeded)
}

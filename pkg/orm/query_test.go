package orm_test

import (
	"testing"
	"time"

	"github.com/shashiranjanraj/dukaan/pkg/apperr"
	"github.com/shashiranjanraj/dukaan/pkg/database"
	"github.com/shashiranjanraj/dukaan/pkg/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

type note struct {
	ID    uint `gorm:"primarykey"`
	Title string
}

func setupDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&note{}))
	database.DB = db
}

func TestQueryRoundTrip(t *testing.T) {
	setupDB(t)

	n := note{Title: "restock rice"}
	require.NoError(t, orm.DB().Create(&n))
	require.NotZero(t, n.ID)

	var got note
	require.NoError(t, orm.DB().Model(&note{}).Where("id = ?", n.ID).First(&got))
	assert.Equal(t, "restock rice", got.Title)

	got.Title = "restock atta"
	require.NoError(t, orm.DB().Save(&got))

	var again note
	require.NoError(t, orm.DB().Model(&note{}).Where("id = ?", n.ID).First(&again))
	assert.Equal(t, "restock atta", again.Title)
}

func TestQueryFirstTranslatesNotFound(t *testing.T) {
	setupDB(t)

	var got note
	err := orm.DB().Model(&note{}).Where("id = ?", 999).First(&got)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestQueryCache(t *testing.T) {
	setupDB(t)

	n := note{Title: "order sugar"}
	require.NoError(t, orm.DB().Create(&n))

	// Without Redis the cache degrades to a no-op, so this exercises the
	// miss path: the row comes from the database.
	var got note
	require.NoError(t, orm.DB().Model(&note{}).Where("id = ?", n.ID).Cache("notes:1", time.Minute, &got))
	assert.Equal(t, "order sugar", got.Title)

	var missing note
	err := orm.DB().Model(&note{}).Where("id = ?", 999).Cache("notes:999", time.Minute, &missing)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

package utils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rstferramentas/affiliatehub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLoginCodeDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LoginCode{}))
	return db
}

func TestVerifyLoginCodeConsumesOnSuccess(t *testing.T) {
	db := newLoginCodeDB(t)
	require.NoError(t, StoreLoginCode(db, "a@example.com", "123456"))

	ok, err := VerifyLoginCode(db, "a@example.com", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	// The code is single-use
	ok, err = VerifyLoginCode(db, "a@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyLoginCodeWrongCode(t *testing.T) {
	db := newLoginCodeDB(t)
	require.NoError(t, StoreLoginCode(db, "a@example.com", "123456"))

	ok, err := VerifyLoginCode(db, "a@example.com", "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyLoginCode(db, "other@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok, "codes are bound to the email they were issued for")
}

func TestVerifyLoginCodeExpired(t *testing.T) {
	db := newLoginCodeDB(t)

	hash, err := HashLoginCode("123456")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.LoginCode{
		Email:     "a@example.com",
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	ok, err := VerifyLoginCode(db, "a@example.com", "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPurgeExpiredLoginCodes(t *testing.T) {
	db := newLoginCodeDB(t)

	hash, err := HashLoginCode("123456")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.LoginCode{
		Email:     "old@example.com",
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)
	require.NoError(t, StoreLoginCode(db, "fresh@example.com", "654321"))

	require.NoError(t, PurgeExpiredLoginCodes(db))

	var remaining []models.LoginCode
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh@example.com", remaining[0].Email)
}

func TestGenerateLoginCodeFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		code := GenerateLoginCode()
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestHashAndCheckLoginCode(t *testing.T) {
	hash, err := HashLoginCode("123456")
	require.NoError(t, err)
	assert.NotEqual(t, "123456", hash)
	assert.True(t, CheckLoginCode("123456", hash))
	assert.False(t, CheckLoginCode("123457", hash))
}

package utils

import (
	"time"

	"github.com/rstferramentas/affiliatehub/models"
	"gorm.io/gorm"
)

// LoginCodeTTL is how long a one-time login code stays valid
const LoginCodeTTL = 10 * time.Minute

// StoreLoginCode hashes and persists a one-time login code for the email
func StoreLoginCode(db *gorm.DB, email, code string) error {
	hash, err := HashLoginCode(code)
	if err != nil {
		return err
	}
	record := models.LoginCode{
		Email:     email,
		CodeHash:  hash,
		ExpiresAt: time.Now().Add(LoginCodeTTL),
	}
	return db.Create(&record).Error
}

// VerifyLoginCode checks a code against the unexpired codes stored for the
// email and consumes the matching record. Returns false for unknown, wrong
// or expired codes.
func VerifyLoginCode(db *gorm.DB, email, code string) (bool, error) {
	var records []models.LoginCode
	err := db.Where("email = ? AND expires_at > ?", email, time.Now()).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return false, err
	}

	for _, record := range records {
		if CheckLoginCode(code, record.CodeHash) {
			if err := db.Delete(&models.LoginCode{}, record.ID).Error; err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// PurgeExpiredLoginCodes removes codes past their expiry
func PurgeExpiredLoginCodes(db *gorm.DB) error {
	return db.Where("expires_at <= ?", time.Now()).Delete(&models.LoginCode{}).Error
}

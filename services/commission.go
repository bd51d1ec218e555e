package services

import (
	"errors"
	"time"

	"github.com/rstferramentas/affiliatehub/models"
	"gorm.io/gorm"
)

// CommissionTotals aggregates earned commission by payout status
type CommissionTotals struct {
	TotalPending float64 `json:"total_pending"`
	TotalPaid    float64 `json:"total_paid"`
}

// GetTotalsForAdmin returns pending and paid commission totals across all influencers
func GetTotalsForAdmin(db *gorm.DB) (*CommissionTotals, error) {
	return sumTotals(db.Model(&models.Commission{}))
}

// GetTotalsForInfluencer returns pending and paid totals for one influencer
func GetTotalsForInfluencer(db *gorm.DB, influencerID uint) (*CommissionTotals, error) {
	return sumTotals(db.Model(&models.Commission{}).Where("influencer_id = ?", influencerID))
}

func sumTotals(query *gorm.DB) (*CommissionTotals, error) {
	totals := &CommissionTotals{}

	session := query.Session(&gorm.Session{})
	err := session.Where("status = ?", models.CommissionStatusPending).
		Select("COALESCE(SUM(commission_earned), 0)").
		Scan(&totals.TotalPending).Error
	if err != nil {
		return nil, err
	}

	err = session.Where("status = ?", models.CommissionStatusPaid).
		Select("COALESCE(SUM(commission_earned), 0)").
		Scan(&totals.TotalPaid).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}

// GetPendingPayouts lists all pending commissions with their influencer,
// grouped for the payout screen
func GetPendingPayouts(db *gorm.DB) ([]models.Commission, error) {
	var commissions []models.Commission
	err := db.Preload("Influencer").
		Joins("JOIN users ON users.id = commissions.influencer_id").
		Where("commissions.status = ?", models.CommissionStatusPending).
		Order("users.name, commissions.order_created_at DESC").
		Find(&commissions).Error
	return commissions, err
}

// MarkCommissionsPaid flips the given commissions from pending to paid and
// stamps the payout time. Rows already paid are left untouched. Returns the
// number of rows updated.
func MarkCommissionsPaid(db *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	now := time.Now()
	result := db.Model(&models.Commission{}).
		Where("id IN ? AND status = ?", ids, models.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":  models.CommissionStatusPaid,
			"paid_at": &now,
		})
	return result.RowsAffected, result.Error
}

// ListCommissionsByInfluencer returns an influencer's commissions, newest order first
func ListCommissionsByInfluencer(db *gorm.DB, influencerID uint) ([]models.Commission, error) {
	var commissions []models.Commission
	err := db.Where("influencer_id = ?", influencerID).
		Order("order_created_at DESC").
		Find(&commissions).Error
	return commissions, err
}

// UpsertBrand creates or renames the brand keyed by the store's manufacturer id
func UpsertBrand(db *gorm.DB, prestashopBrandID uint, name string) error {
	var brand models.Brand
	err := db.Where("prestashop_brand_id = ?", prestashopBrandID).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		brand = models.Brand{PrestashopBrandID: prestashopBrandID, Name: name}
		return db.Create(&brand).Error
	}
	if err != nil {
		return err
	}
	if brand.Name != name {
		brand.Name = name
		return db.Save(&brand).Error
	}
	return nil
}

// UpsertRule creates or updates the single rule for the (influencer, brand)
// pair. A nil brandID targets the influencer's default rule.
func UpsertRule(db *gorm.DB, userID uint, brandID *uint, first, subsequent float64) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	query := db.Where("user_id = ?", userID)
	if brandID != nil {
		query = query.Where("brand_id = ?", *brandID)
	} else {
		query = query.Where("brand_id IS NULL")
	}

	err := query.First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		rule = models.CommissionRule{
			UserID:               userID,
			BrandID:              brandID,
			CommissionFirst:      first,
			CommissionSubsequent: subsequent,
		}
		if err := db.Create(&rule).Error; err != nil {
			return nil, err
		}
		return &rule, nil
	}
	if err != nil {
		return nil, err
	}

	rule.CommissionFirst = first
	rule.CommissionSubsequent = subsequent
	if err := db.Save(&rule).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

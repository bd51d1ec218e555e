package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values for User.Role
const (
	RoleAdmin      = "admin"
	RoleInfluencer = "influencer"
)

// Commission status values
const (
	CommissionStatusPending = "pending"
	CommissionStatusPaid    = "paid"
)

// User represents an account in the dashboard, either an administrator or an
// influencer earning commission on attributed orders
type User struct {
	gorm.Model
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Role  string `gorm:"not null;default:'influencer'" json:"role"`

	DiscountCodes   []DiscountCode   `json:"discount_codes,omitempty" gorm:"foreignKey:UserID"`
	CommissionRules []CommissionRule `json:"commission_rules,omitempty" gorm:"foreignKey:UserID"`
}

// DiscountCode maps a store voucher code to the influencer who owns it.
// The code is the attribution key during order sync.
type DiscountCode struct {
	gorm.Model
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Code   string `gorm:"uniqueIndex;not null" json:"code"`
}

// Brand mirrors a manufacturer from the store, keyed by its external id
type Brand struct {
	gorm.Model
	PrestashopBrandID uint   `gorm:"uniqueIndex;not null" json:"prestashop_brand_id"`
	Name              string `json:"name"`
}

// CommissionRule holds the commission percentages for an influencer, either
// for one brand or as the influencer-wide default when BrandID is null
type CommissionRule struct {
	gorm.Model
	UserID               uint    `gorm:"not null;uniqueIndex:idx_rules_user_brand" json:"user_id"`
	BrandID              *uint   `gorm:"uniqueIndex:idx_rules_user_brand" json:"brand_id"`
	CommissionFirst      float64 `gorm:"not null" json:"commission_first"`
	CommissionSubsequent float64 `gorm:"not null" json:"commission_subsequent"`

	User  User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Brand *Brand `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

// Customer tracks a store customer and the influencer currently credited with
// their purchases. The pointer is rewritten on every attributed order, so the
// model is last-attribution-wins rather than sticky-first-attribution.
type Customer struct {
	gorm.Model
	PrestashopCustomerID uint   `gorm:"uniqueIndex;not null" json:"prestashop_customer_id"`
	Email                string `json:"email"`
	CurrentInfluencerID  uint   `gorm:"index" json:"current_influencer_id"`
}

// Commission is one payable row per attributed store order
type Commission struct {
	gorm.Model
	PrestashopOrderID uint       `gorm:"index;not null" json:"prestashop_order_id"`
	CustomerID        uint       `gorm:"index;not null" json:"customer_id"`
	InfluencerID      uint       `gorm:"index;not null" json:"influencer_id"`
	OrderTotalWithVat float64    `json:"order_total_with_vat"`
	CommissionEarned  float64    `json:"commission_earned"`
	IsFirstPurchase   bool       `json:"is_first_purchase"`
	Status            string     `gorm:"not null;default:'pending'" json:"status"`
	OrderCreatedAt    time.Time  `json:"order_created_at"`
	PaidAt            *time.Time `json:"paid_at"`

	Influencer User     `json:"influencer,omitempty" gorm:"foreignKey:InfluencerID"`
	Customer   Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
}

// LoginCode represents a one-time login code sent by email. Only the bcrypt
// hash of the code is stored.
type LoginCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index;not null"`
	CodeHash  string    `json:"-" gorm:"not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

package services

import (
	"errors"
	"testing"
	"time"

	"github.com/rstferramentas/affiliatehub/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createInfluencer(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Role: models.RoleInfluencer}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createDiscountCode(t *testing.T, db *gorm.DB, userID uint, code string) {
	t.Helper()
	require.NoError(t, db.Create(&models.DiscountCode{UserID: userID, Code: code}).Error)
}

func createBrand(t *testing.T, db *gorm.DB, prestashopID uint, name string) *models.Brand {
	t.Helper()
	brand := models.Brand{PrestashopBrandID: prestashopID, Name: name}
	require.NoError(t, db.Create(&brand).Error)
	return &brand
}

func createRule(t *testing.T, db *gorm.DB, userID uint, brandID *uint, first, subsequent float64) {
	t.Helper()
	rule := models.CommissionRule{
		UserID:               userID,
		BrandID:              brandID,
		CommissionFirst:      first,
		CommissionSubsequent: subsequent,
	}
	require.NoError(t, db.Create(&rule).Error)
}

func TestSyncOrdersNoAttributionWritesNothing(t *testing.T) {
	db := newTestDB(t)
	source := newFakeOrderSource()
	source.orders = []Order{{ID: 1, CustomerID: 77, CustomerEmail: "x@example.com", CreatedAt: time.Now()}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	var commissionCount, customerCount int64
	db.Model(&models.Commission{}).Count(&commissionCount)
	db.Model(&models.Customer{}).Count(&customerCount)
	assert.Zero(t, commissionCount)
	assert.Zero(t, customerCount, "an unattributed order must leave no trace")
}

func TestSyncOrdersDiscountCodeBeatsExistingCustomer(t *testing.T) {
	db := newTestDB(t)
	influencerA := createInfluencer(t, db, "Alice", "alice@example.com")
	influencerB := createInfluencer(t, db, "Bob", "bob@example.com")
	createDiscountCode(t, db, influencerA.ID, "SAVE10")
	createRule(t, db, influencerA.ID, nil, 10, 5)

	// Customer was previously credited to B
	require.NoError(t, db.Create(&models.Customer{
		PrestashopCustomerID: 42,
		Email:                "c@example.com",
		CurrentInfluencerID:  influencerB.ID,
	}).Error)

	source := newFakeOrderSource()
	source.orders = []Order{{ID: 100, CustomerID: 42, CustomerEmail: "c@example.com", CreatedAt: time.Now()}}
	source.cartRules[100] = []CartRuleRef{{CartRuleID: 9}}
	source.codes[9] = "SAVE10"
	source.lines[100] = []OrderLine{{ManufacturerID: 0, TotalPriceTaxIncl: 200}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	var commission models.Commission
	require.NoError(t, db.First(&commission).Error)
	assert.Equal(t, influencerA.ID, commission.InfluencerID)

	var customer models.Customer
	require.NoError(t, db.Where("prestashop_customer_id = ?", 42).First(&customer).Error)
	assert.Equal(t, influencerA.ID, customer.CurrentInfluencerID, "attribution must repoint the customer")
}

func TestSyncOrdersFallsBackToExistingCustomer(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createRule(t, db, influencer.ID, nil, 10, 5)

	require.NoError(t, db.Create(&models.Customer{
		PrestashopCustomerID: 42,
		Email:                "c@example.com",
		CurrentInfluencerID:  influencer.ID,
	}).Error)

	source := newFakeOrderSource()
	source.orders = []Order{{ID: 100, CustomerID: 42, CreatedAt: time.Now()}}
	source.lines[100] = []OrderLine{{TotalPriceTaxIncl: 80}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	var commission models.Commission
	require.NoError(t, db.First(&commission).Error)
	assert.Equal(t, influencer.ID, commission.InfluencerID)
	assert.InDelta(t, 8.0, commission.CommissionEarned, 1e-9)
}

func TestSyncOrdersBrandRulePrecedence(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createDiscountCode(t, db, influencer.ID, "SAVE10")
	brandB := createBrand(t, db, 7, "Brand B")
	createRule(t, db, influencer.ID, nil, 10, 5)
	createRule(t, db, influencer.ID, &brandB.ID, 20, 8)

	source := newFakeOrderSource()
	source.orders = []Order{{ID: 100, CustomerID: 42, CreatedAt: time.Now()}}
	source.cartRules[100] = []CartRuleRef{{CartRuleID: 9}}
	source.codes[9] = "SAVE10"
	source.lines[100] = []OrderLine{
		{ManufacturerID: 7, TotalPriceTaxIncl: 100}, // brand rule 20% applies
		{ManufacturerID: 99, TotalPriceTaxIncl: 50}, // unknown brand, default 10% applies
	}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	var commission models.Commission
	require.NoError(t, db.First(&commission).Error)
	assert.InDelta(t, 25.0, commission.CommissionEarned, 1e-9)
	assert.InDelta(t, 150.0, commission.OrderTotalWithVat, 1e-9)
	assert.True(t, commission.IsFirstPurchase)
}

func TestSyncOrdersFirstThenSubsequentRates(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createDiscountCode(t, db, influencer.ID, "SAVE10")
	createRule(t, db, influencer.ID, nil, 10, 5)

	source := newFakeOrderSource()
	source.orders = []Order{{ID: 100, CustomerID: 42, CreatedAt: time.Now()}}
	source.cartRules[100] = []CartRuleRef{{CartRuleID: 9}}
	source.codes[9] = "SAVE10"
	source.lines[100] = []OrderLine{{TotalPriceTaxIncl: 100}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	// Second order from the same customer, no voucher this time
	source.orders = append(source.orders, Order{ID: 101, CustomerID: 42, CreatedAt: time.Now()})
	source.lines[101] = []OrderLine{{TotalPriceTaxIncl: 100}}

	imported, err = service.SyncOrders()
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var commissions []models.Commission
	require.NoError(t, db.Order("prestashop_order_id").Find(&commissions).Error)
	require.Len(t, commissions, 2)

	assert.True(t, commissions[0].IsFirstPurchase)
	assert.InDelta(t, 10.0, commissions[0].CommissionEarned, 1e-9)
	assert.False(t, commissions[1].IsFirstPurchase)
	assert.InDelta(t, 5.0, commissions[1].CommissionEarned, 1e-9)
}

func TestSyncOrdersZeroCommissionWritesNoRow(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createDiscountCode(t, db, influencer.ID, "SAVE10")
	// No rules at all: attribution succeeds but nothing is earned

	source := newFakeOrderSource()
	source.orders = []Order{{ID: 100, CustomerID: 42, CustomerEmail: "c@example.com", CreatedAt: time.Now()}}
	source.cartRules[100] = []CartRuleRef{{CartRuleID: 9}}
	source.codes[9] = "SAVE10"
	source.lines[100] = []OrderLine{{TotalPriceTaxIncl: 100}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	var commissionCount int64
	db.Model(&models.Commission{}).Count(&commissionCount)
	assert.Zero(t, commissionCount)

	// The customer record is still written: attribution happened
	var customer models.Customer
	require.NoError(t, db.Where("prestashop_customer_id = ?", 42).First(&customer).Error)
	assert.Equal(t, influencer.ID, customer.CurrentInfluencerID)
}

func TestSyncOrdersWatermarkSkipsProcessedOrders(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createDiscountCode(t, db, influencer.ID, "SAVE10")
	createRule(t, db, influencer.ID, nil, 10, 5)

	customer := models.Customer{PrestashopCustomerID: 42, CurrentInfluencerID: influencer.ID}
	require.NoError(t, db.Create(&customer).Error)
	require.NoError(t, db.Create(&models.Commission{
		PrestashopOrderID: 10,
		CustomerID:        customer.ID,
		InfluencerID:      influencer.ID,
		CommissionEarned:  5,
		Status:            models.CommissionStatusPending,
	}).Error)

	source := newFakeOrderSource()
	source.orders = []Order{
		{ID: 5, CustomerID: 42, CreatedAt: time.Now()},  // below the watermark
		{ID: 12, CustomerID: 42, CreatedAt: time.Now()}, // new
	}
	source.lines[5] = []OrderLine{{TotalPriceTaxIncl: 100}}
	source.lines[12] = []OrderLine{{TotalPriceTaxIncl: 100}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, []uint{10}, source.sinceCalls, "watermark must be the max persisted order id")

	var count int64
	db.Model(&models.Commission{}).Where("prestashop_order_id = ?", 5).Count(&count)
	assert.Zero(t, count, "orders at or below the watermark must not be reprocessed")
}

func TestSyncOrdersConfigMissing(t *testing.T) {
	db := newTestDB(t)
	service := NewOrderSyncService(db, nil)

	_, err := service.SyncOrders()
	assert.ErrorIs(t, err, ErrSyncConfigMissing)

	_, err = service.SyncBrands()
	assert.ErrorIs(t, err, ErrSyncConfigMissing)
}

func TestSyncOrdersOverlapGuard(t *testing.T) {
	db := newTestDB(t)
	source := newFakeOrderSource()
	source.fetchGate = make(chan struct{})

	service := NewOrderSyncService(db, source)

	done := make(chan error, 1)
	go func() {
		_, err := service.SyncOrders()
		done <- err
	}()

	// Wait for the first run to reach the order fetch
	require.Eventually(t, func() bool {
		return source.sinceCallCount() == 1
	}, time.Second, time.Millisecond)

	_, err := service.SyncOrders()
	assert.ErrorIs(t, err, ErrSyncAlreadyRunning)

	close(source.fetchGate)
	require.NoError(t, <-done)

	// Guard releases once the run finishes
	_, err = service.SyncOrders()
	require.NoError(t, err)
}

func TestSyncOrdersPerOrderFailureSkipsOnlyThatOrder(t *testing.T) {
	db := newTestDB(t)
	influencer := createInfluencer(t, db, "Alice", "alice@example.com")
	createDiscountCode(t, db, influencer.ID, "SAVE10")
	createRule(t, db, influencer.ID, nil, 10, 5)

	source := newFakeOrderSource()
	source.orders = []Order{
		{ID: 1, CustomerID: 41, CreatedAt: time.Now()},
		{ID: 2, CustomerID: 42, CreatedAt: time.Now()},
	}
	source.cartRuleErrs[1] = errors.New("store timeout")
	source.cartRules[2] = []CartRuleRef{{CartRuleID: 9}}
	source.codes[9] = "SAVE10"
	source.lines[2] = []OrderLine{{TotalPriceTaxIncl: 100}}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncOrders()
	require.NoError(t, err, "one bad order must not fail the batch")
	assert.Equal(t, 1, imported)

	var commissions []models.Commission
	require.NoError(t, db.Find(&commissions).Error)
	require.Len(t, commissions, 1)
	assert.Equal(t, uint(2), commissions[0].PrestashopOrderID)
}

func TestSyncBrandsUpserts(t *testing.T) {
	db := newTestDB(t)
	createBrand(t, db, 1, "Old Name")

	source := newFakeOrderSource()
	source.brands = []Manufacturer{
		{ID: 1, Name: "New Name"},
		{ID: 2, Name: "Fresh Brand"},
	}

	service := NewOrderSyncService(db, source)
	imported, err := service.SyncBrands()
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	var brands []models.Brand
	require.NoError(t, db.Order("prestashop_brand_id").Find(&brands).Error)
	require.Len(t, brands, 2)
	assert.Equal(t, "New Name", brands[0].Name)
	assert.Equal(t, "Fresh Brand", brands[1].Name)
}

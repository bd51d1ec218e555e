package services

import (
	"errors"
	"sync/atomic"

	"github.com/rstferramentas/affiliatehub/config"
	"github.com/rstferramentas/affiliatehub/models"
	"github.com/rstferramentas/affiliatehub/utils"
	"gorm.io/gorm"
)

var (
	// ErrSyncConfigMissing indicates the store API credentials are not set.
	// The whole run aborts; nothing is persisted.
	ErrSyncConfigMissing = errors.New("store API is not configured, set PRESTASHOP_API_URL and PRESTASHOP_API_KEY")
	// ErrSyncAlreadyRunning indicates another sync run holds the guard
	ErrSyncAlreadyRunning = errors.New("an order sync is already running")
)

// OrderSync is the process-wide sync service, set up in main
var OrderSync *OrderSyncService

// InitOrderSync builds the shared sync service from configuration
func InitOrderSync(db *gorm.DB, cfg *config.Config) {
	OrderSync = NewOrderSyncServiceFromConfig(db, cfg)
	if OrderSync.source == nil {
		utils.LogInfo("Order sync: store API credentials not set, sync disabled until configured")
	}
}

// OrderSyncService pulls new orders from the store, attributes each one to an
// influencer and records the earned commission. Runs are strictly sequential:
// attribution for an order can depend on customer state written by the order
// before it, so there is no fan-out.
type OrderSyncService struct {
	db      *gorm.DB
	source  OrderSource
	running atomic.Bool
}

// NewOrderSyncService wires the pipeline against a database and an order source.
// A nil source marks the service as unconfigured; SyncOrders will refuse to run.
func NewOrderSyncService(db *gorm.DB, source OrderSource) *OrderSyncService {
	return &OrderSyncService{db: db, source: source}
}

// NewOrderSyncServiceFromConfig builds the service with a live PrestaShop
// client when credentials are present
func NewOrderSyncServiceFromConfig(db *gorm.DB, cfg *config.Config) *OrderSyncService {
	var source OrderSource
	if cfg.PrestashopAPIURL != "" && cfg.PrestashopAPIKey != "" {
		source = NewPrestashopClient(cfg.PrestashopAPIURL, cfg.PrestashopAPIKey)
	}
	return NewOrderSyncService(db, source)
}

// SyncOrders runs one incremental pass and returns the number of orders for
// which a commission row was written. Only one run may be in flight at a time;
// a second caller gets ErrSyncAlreadyRunning.
func (s *OrderSyncService) SyncOrders() (int, error) {
	if s.source == nil {
		return 0, ErrSyncConfigMissing
	}

	if !s.running.CompareAndSwap(false, true) {
		return 0, ErrSyncAlreadyRunning
	}
	defer s.running.Store(false)

	// The watermark is the highest order id already persisted. Read once here
	// and held for the whole run.
	lastOrderID, err := s.lastSyncedOrderID()
	if err != nil {
		return 0, err
	}

	orders, err := s.source.FetchOrdersSince(lastOrderID)
	if err != nil {
		return 0, err
	}
	utils.LogInfo("Order sync: %d orders since id %d", len(orders), lastOrderID)

	imported := 0
	for _, order := range orders {
		wrote, err := s.processOrder(order)
		if err != nil {
			// A failure while enriching one order must not sink the batch.
			// The order stays above the watermark and is retried next run.
			utils.LogError("Order sync: skipping order %d: %v", order.ID, err)
			continue
		}
		if wrote {
			imported++
		}
	}

	return imported, nil
}

func (s *OrderSyncService) lastSyncedOrderID() (uint, error) {
	var lastOrderID uint
	err := s.db.Model(&models.Commission{}).
		Select("COALESCE(MAX(prestashop_order_id), 0)").
		Scan(&lastOrderID).Error
	return lastOrderID, err
}

// processOrder runs attribution and calculation for one order. It reports
// whether a commission row was written.
func (s *OrderSyncService) processOrder(order Order) (bool, error) {
	cartRules, err := s.source.FetchOrderCartRules(order.ID)
	if err != nil {
		return false, err
	}

	influencerID, err := s.determineInfluencer(order, cartRules)
	if err != nil {
		return false, err
	}
	if influencerID == 0 {
		// Nobody gets credit for this order; not an error
		utils.LogDebug("Order sync: order %d has no attribution", order.ID)
		return false, nil
	}

	customer, err := s.upsertCustomer(order, influencerID)
	if err != nil {
		return false, err
	}

	var previousCount int64
	if err := s.db.Model(&models.Commission{}).
		Where("customer_id = ?", customer.ID).
		Count(&previousCount).Error; err != nil {
		return false, err
	}
	isFirst := previousCount == 0

	lines, err := s.source.FetchOrderLines(order.ID)
	if err != nil {
		return false, err
	}

	commissionTotal, orderTotal, err := s.calculateCommission(lines, influencerID, isFirst)
	if err != nil {
		return false, err
	}
	if commissionTotal == 0 {
		// No rule matched any line; nothing to record
		utils.LogDebug("Order sync: order %d earned no commission", order.ID)
		return false, nil
	}

	commission := models.Commission{
		PrestashopOrderID: order.ID,
		CustomerID:        customer.ID,
		InfluencerID:      influencerID,
		OrderTotalWithVat: orderTotal,
		CommissionEarned:  commissionTotal,
		IsFirstPurchase:   isFirst,
		Status:            models.CommissionStatusPending,
		OrderCreatedAt:    order.CreatedAt,
	}
	if err := s.db.Create(&commission).Error; err != nil {
		return false, err
	}
	return true, nil
}

// determineInfluencer decides who gets credit for an order. Discount codes
// win; the first cart rule whose code matches a known discount code picks its
// owner. Otherwise the customer's current influencer applies, if the customer
// is already known. Zero means no attribution.
func (s *OrderSyncService) determineInfluencer(order Order, cartRules []CartRuleRef) (uint, error) {
	for _, ref := range cartRules {
		// The association only carries the rule id, the code needs its own fetch
		code, err := s.source.FetchCartRuleCode(ref.CartRuleID)
		if err != nil {
			return 0, err
		}
		if code == "" {
			continue
		}

		var discountCode models.DiscountCode
		err = s.db.Where("code = ?", code).First(&discountCode).Error
		if err == nil {
			return discountCode.UserID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
	}

	var customer models.Customer
	err := s.db.Where("prestashop_customer_id = ?", order.CustomerID).First(&customer).Error
	if err == nil {
		return customer.CurrentInfluencerID, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return 0, err
}

// upsertCustomer creates the customer record or repoints it at the influencer
// credited with this order
func (s *OrderSyncService) upsertCustomer(order Order, influencerID uint) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Where("prestashop_customer_id = ?", order.CustomerID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		customer = models.Customer{
			PrestashopCustomerID: order.CustomerID,
			Email:                order.CustomerEmail,
			CurrentInfluencerID:  influencerID,
		}
		if err := s.db.Create(&customer).Error; err != nil {
			return nil, err
		}
		return &customer, nil
	}
	if err != nil {
		return nil, err
	}

	customer.CurrentInfluencerID = influencerID
	if order.CustomerEmail != "" {
		customer.Email = order.CustomerEmail
	}
	if err := s.db.Save(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// calculateCommission applies the influencer's rules to the order lines.
// Every line counts toward the order total; only lines with a resolvable
// brand and rule contribute commission.
func (s *OrderSyncService) calculateCommission(lines []OrderLine, influencerID uint, isFirst bool) (float64, float64, error) {
	var commissionTotal, orderTotal float64

	for _, line := range lines {
		orderTotal += line.TotalPriceTaxIncl

		brand, err := s.findBrandByPrestashopID(line.ManufacturerID)
		if err != nil {
			return 0, 0, err
		}

		var rule *models.CommissionRule
		if brand != nil {
			rule, err = s.findRule(influencerID, &brand.ID)
			if err != nil {
				return 0, 0, err
			}
		}
		if rule == nil {
			rule, err = s.findRule(influencerID, nil)
			if err != nil {
				return 0, 0, err
			}
		}
		if rule == nil {
			continue
		}

		percentage := rule.CommissionSubsequent
		if isFirst {
			percentage = rule.CommissionFirst
		}
		commissionTotal += line.TotalPriceTaxIncl * percentage / 100
	}

	return commissionTotal, orderTotal, nil
}

func (s *OrderSyncService) findBrandByPrestashopID(prestashopBrandID uint) (*models.Brand, error) {
	if prestashopBrandID == 0 {
		return nil, nil
	}
	var brand models.Brand
	err := s.db.Where("prestashop_brand_id = ?", prestashopBrandID).First(&brand).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

// findRule resolves the most specific rule for the influencer: the exact
// (influencer, brand) match when brandID is set, the influencer-wide default
// when it is nil. Nil result means no rule.
func (s *OrderSyncService) findRule(influencerID uint, brandID *uint) (*models.CommissionRule, error) {
	var rule models.CommissionRule
	query := s.db.Where("user_id = ?", influencerID)
	if brandID != nil {
		query = query.Where("brand_id = ?", *brandID)
	} else {
		query = query.Where("brand_id IS NULL")
	}
	err := query.First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// SyncBrands pulls the manufacturer list from the store and upserts it by
// external id. Returns the number of brands touched.
func (s *OrderSyncService) SyncBrands() (int, error) {
	if s.source == nil {
		return 0, ErrSyncConfigMissing
	}

	manufacturers, err := s.source.FetchBrands()
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, m := range manufacturers {
		if m.ID == 0 {
			continue
		}
		if err := UpsertBrand(s.db, m.ID, m.Name); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

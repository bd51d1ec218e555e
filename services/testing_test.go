package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rstferramentas/affiliatehub/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database migrated to the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, config.MigrateDB(db))
	return db
}

// fakeOrderSource is an in-memory stand-in for the store API
type fakeOrderSource struct {
	orders    []Order
	cartRules map[uint][]CartRuleRef
	codes     map[uint]string
	lines     map[uint][]OrderLine
	brands    []Manufacturer

	cartRuleErrs map[uint]error
	ordersErr    error

	mu         sync.Mutex
	sinceCalls []uint
	fetchGate  chan struct{}
}

func newFakeOrderSource() *fakeOrderSource {
	return &fakeOrderSource{
		cartRules:    map[uint][]CartRuleRef{},
		codes:        map[uint]string{},
		lines:        map[uint][]OrderLine{},
		cartRuleErrs: map[uint]error{},
	}
}

func (f *fakeOrderSource) sinceCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sinceCalls)
}

func (f *fakeOrderSource) FetchOrdersSince(lastOrderID uint) ([]Order, error) {
	f.mu.Lock()
	f.sinceCalls = append(f.sinceCalls, lastOrderID)
	f.mu.Unlock()
	if f.fetchGate != nil {
		<-f.fetchGate
	}
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	var out []Order
	for _, o := range f.orders {
		if o.ID > lastOrderID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderSource) FetchOrderCartRules(orderID uint) ([]CartRuleRef, error) {
	if err, ok := f.cartRuleErrs[orderID]; ok {
		return nil, err
	}
	return f.cartRules[orderID], nil
}

func (f *fakeOrderSource) FetchCartRuleCode(cartRuleID uint) (string, error) {
	return f.codes[cartRuleID], nil
}

func (f *fakeOrderSource) FetchOrderLines(orderID uint) ([]OrderLine, error) {
	return f.lines[orderID], nil
}

func (f *fakeOrderSource) FetchBrands() ([]Manufacturer, error) {
	return f.brands, nil
}

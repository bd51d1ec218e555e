package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubStore spins up a webservice endpoint that records the last request
// and answers with a canned body
func newStubStore(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	captured := &http.Request{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func TestFetchOrdersSinceRequestShape(t *testing.T) {
	server, captured := newStubStore(t, http.StatusOK, `{"orders": []}`)
	client := NewPrestashopClient(server.URL+"/", "KEY123")

	orders, err := client.FetchOrdersSince(10)
	require.NoError(t, err)
	assert.Empty(t, orders)

	assert.Equal(t, "/orders", captured.URL.Path)
	query := captured.URL.Query()
	assert.Equal(t, "full", query.Get("display"))
	assert.Equal(t, "[id_ASC]", query.Get("sort"))
	assert.Equal(t, "[2|4|5]", query.Get("filter[current_state]"))
	assert.Equal(t, "[11,]", query.Get("filter[id]"))
	assert.Equal(t, "JSON", query.Get("output_format"))

	user, pass, ok := captured.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "KEY123", user)
	assert.Empty(t, pass)
}

func TestFetchOrdersSinceZeroOmitsIDFilter(t *testing.T) {
	server, captured := newStubStore(t, http.StatusOK, `{"orders": []}`)
	client := NewPrestashopClient(server.URL, "KEY123")

	_, err := client.FetchOrdersSince(0)
	require.NoError(t, err)
	assert.False(t, captured.URL.Query().Has("filter[id]"))
}

func TestFetchOrdersDecodesStringEncodedFields(t *testing.T) {
	body := `{"orders": [
		{"id": "15", "id_customer": "42", "email": "", "customer_email": "c@example.com", "date_add": "2024-03-01 10:30:00"},
		{"id": 16, "id_customer": 43, "email": "d@example.com", "date_add": "0000-00-00 00:00:00"}
	]}`
	server, _ := newStubStore(t, http.StatusOK, body)
	client := NewPrestashopClient(server.URL, "KEY123")

	orders, err := client.FetchOrdersSince(0)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, uint(15), orders[0].ID)
	assert.Equal(t, uint(42), orders[0].CustomerID)
	assert.Equal(t, "c@example.com", orders[0].CustomerEmail, "customer_email fills in when email is blank")
	assert.Equal(t, time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), orders[0].CreatedAt)

	assert.Equal(t, uint(16), orders[1].ID)
	assert.Equal(t, "d@example.com", orders[1].CustomerEmail)
	assert.True(t, orders[1].CreatedAt.IsZero(), "the zero date placeholder decodes as a zero time")
}

func TestFetchOrderCartRulesWrappedPayload(t *testing.T) {
	body := `{"order_cart_rules": {"order_cart_rule": [{"id_cart_rule": "9"}]}}`
	server, captured := newStubStore(t, http.StatusOK, body)
	client := NewPrestashopClient(server.URL, "KEY123")

	refs, err := client.FetchOrderCartRules(100)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, uint(9), refs[0].CartRuleID)
	assert.Equal(t, "100", captured.URL.Query().Get("filter[id_order]"))
}

func TestFetchOrdersSinceBareArrayBody(t *testing.T) {
	server, _ := newStubStore(t, http.StatusOK, `[]`)
	client := NewPrestashopClient(server.URL, "KEY123")

	orders, err := client.FetchOrdersSince(10)
	require.NoError(t, err)
	assert.Empty(t, orders, "a bare empty array means no new orders")
}

func TestFetchOrderCartRulesEmptyStringPayload(t *testing.T) {
	server, _ := newStubStore(t, http.StatusOK, `{"order_cart_rules": ""}`)
	client := NewPrestashopClient(server.URL, "KEY123")

	refs, err := client.FetchOrderCartRules(100)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestFetchCartRuleCode(t *testing.T) {
	server, captured := newStubStore(t, http.StatusOK, `{"cart_rule": {"code": "SAVE10"}}`)
	client := NewPrestashopClient(server.URL, "KEY123")

	code, err := client.FetchCartRuleCode(9)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", code)
	assert.Equal(t, "/cart_rules/9", captured.URL.Path)
}

func TestFetchOrderLinesStringPrices(t *testing.T) {
	body := `{"order_details": [
		{"id_manufacturer": "7", "total_price_tax_incl": "99.90"},
		{"id_manufacturer": 0, "total_price_tax_incl": 10.5}
	]}`
	server, _ := newStubStore(t, http.StatusOK, body)
	client := NewPrestashopClient(server.URL, "KEY123")

	lines, err := client.FetchOrderLines(100)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint(7), lines[0].ManufacturerID)
	assert.InDelta(t, 99.90, lines[0].TotalPriceTaxIncl, 1e-9)
	assert.Zero(t, lines[1].ManufacturerID)
	assert.InDelta(t, 10.5, lines[1].TotalPriceTaxIncl, 1e-9)
}

func TestFetchBrands(t *testing.T) {
	body := `{"manufacturers": [{"id": "1", "name": "Brand A"}, {"id": 2, "name": "Brand B"}]}`
	server, _ := newStubStore(t, http.StatusOK, body)
	client := NewPrestashopClient(server.URL, "KEY123")

	brands, err := client.FetchBrands()
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, Manufacturer{ID: 1, Name: "Brand A"}, brands[0])
}

func TestGetRejectsNon2xx(t *testing.T) {
	server, _ := newStubStore(t, http.StatusUnauthorized, `{}`)
	client := NewPrestashopClient(server.URL, "WRONGKEY")

	_, err := client.FetchBrands()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// OrderSource is the read-only view of the store the sync pipeline consumes.
// Implemented by PrestashopClient; faked in tests.
type OrderSource interface {
	FetchOrdersSince(lastOrderID uint) ([]Order, error)
	FetchOrderCartRules(orderID uint) ([]CartRuleRef, error)
	FetchCartRuleCode(cartRuleID uint) (string, error)
	FetchOrderLines(orderID uint) ([]OrderLine, error)
	FetchBrands() ([]Manufacturer, error)
}

// Order is one store order as seen by the pipeline
type Order struct {
	ID            uint
	CustomerID    uint
	CustomerEmail string
	CreatedAt     time.Time
}

// CartRuleRef is a cart rule applied to an order. The association only
// carries the rule id; the code needs a second fetch.
type CartRuleRef struct {
	CartRuleID uint
}

// OrderLine is one line item of an order
type OrderLine struct {
	ManufacturerID    uint
	TotalPriceTaxIncl float64
}

// Manufacturer is a brand record from the store
type Manufacturer struct {
	ID   uint
	Name string
}

// PrestashopClient talks to the PrestaShop webservice API. The API key is
// passed as the basic-auth username with an empty password.
type PrestashopClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewPrestashopClient creates a client for the given webservice root
func NewPrestashopClient(baseURL, apiKey string) *PrestashopClient {
	return &PrestashopClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Valid order states counted for commission: payment accepted, shipped, delivered
const orderStateFilter = "[2|4|5]"

// FetchOrdersSince returns paid orders with an id strictly above lastOrderID,
// in ascending id order. lastOrderID of zero returns everything.
func (pc *PrestashopClient) FetchOrdersSince(lastOrderID uint) ([]Order, error) {
	params := url.Values{}
	params.Set("display", "full")
	params.Set("sort", "[id_ASC]")
	params.Set("filter[current_state]", orderStateFilter)
	if lastOrderID > 0 {
		params.Set("filter[id]", fmt.Sprintf("[%d,]", lastOrderID+1))
	}

	body, err := pc.get("orders", params)
	if err != nil {
		return nil, err
	}

	var raw []rawOrder
	if err := decodeCollection(body, "orders", "order", &raw); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(raw))
	for _, r := range raw {
		email := string(r.Email)
		if email == "" {
			email = string(r.CustomerEmail)
		}
		orders = append(orders, Order{
			ID:            uint(r.ID),
			CustomerID:    uint(r.IDCustomer),
			CustomerEmail: email,
			CreatedAt:     r.DateAdd.Time,
		})
	}
	return orders, nil
}

// FetchOrderCartRules returns the cart rules applied to an order
func (pc *PrestashopClient) FetchOrderCartRules(orderID uint) ([]CartRuleRef, error) {
	params := url.Values{}
	params.Set("display", "full")
	params.Set("filter[id_order]", strconv.FormatUint(uint64(orderID), 10))

	body, err := pc.get("order_cart_rules", params)
	if err != nil {
		return nil, err
	}

	var raw []rawOrderCartRule
	if err := decodeCollection(body, "order_cart_rules", "order_cart_rule", &raw); err != nil {
		return nil, err
	}

	refs := make([]CartRuleRef, 0, len(raw))
	for _, r := range raw {
		refs = append(refs, CartRuleRef{CartRuleID: uint(r.IDCartRule)})
	}
	return refs, nil
}

// FetchCartRuleCode resolves the voucher code behind a cart rule id
func (pc *PrestashopClient) FetchCartRuleCode(cartRuleID uint) (string, error) {
	body, err := pc.get(fmt.Sprintf("cart_rules/%d", cartRuleID), url.Values{})
	if err != nil {
		return "", err
	}

	var wrapper struct {
		CartRule rawCartRule `json:"cart_rule"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return "", fmt.Errorf("failed to decode cart rule %d: %v", cartRuleID, err)
	}
	return string(wrapper.CartRule.Code), nil
}

// FetchOrderLines returns the line items of an order
func (pc *PrestashopClient) FetchOrderLines(orderID uint) ([]OrderLine, error) {
	params := url.Values{}
	params.Set("display", "full")
	params.Set("filter[id_order]", strconv.FormatUint(uint64(orderID), 10))

	body, err := pc.get("order_details", params)
	if err != nil {
		return nil, err
	}

	var raw []rawOrderDetail
	if err := decodeCollection(body, "order_details", "order_detail", &raw); err != nil {
		return nil, err
	}

	lines := make([]OrderLine, 0, len(raw))
	for _, r := range raw {
		lines = append(lines, OrderLine{
			ManufacturerID:    uint(r.IDManufacturer),
			TotalPriceTaxIncl: float64(r.TotalPriceTaxIncl),
		})
	}
	return lines, nil
}

// FetchBrands returns all manufacturers known to the store
func (pc *PrestashopClient) FetchBrands() ([]Manufacturer, error) {
	params := url.Values{}
	params.Set("display", "full")

	body, err := pc.get("manufacturers", params)
	if err != nil {
		return nil, err
	}

	var raw []rawManufacturer
	if err := decodeCollection(body, "manufacturers", "manufacturer", &raw); err != nil {
		return nil, err
	}

	brands := make([]Manufacturer, 0, len(raw))
	for _, r := range raw {
		brands = append(brands, Manufacturer{ID: uint(r.ID), Name: string(r.Name)})
	}
	return brands, nil
}

func (pc *PrestashopClient) get(resource string, params url.Values) ([]byte, error) {
	params.Set("output_format", "JSON")

	reqURL := fmt.Sprintf("%s/%s?%s", pc.baseURL, resource, params.Encode())
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(pc.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prestashop request for %s failed: %v", resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read prestashop response for %s: %v", resource, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("prestashop returned %d for %s", resp.StatusCode, resource)
	}
	return body, nil
}

// decodeCollection normalizes the shapes the webservice uses for lists. The
// payload under the plural key may be a plain array, an object wrapping the
// array under a singular key, or an empty string when there are no rows. An
// empty collection can also come back as a bare top-level array with no
// envelope at all.
func decodeCollection(body []byte, plural, singular string, out interface{}) error {
	trimmedBody := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmedBody, "[") {
		if trimmedBody == "[]" {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode %s list: %v", plural, err)
		}
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %v", plural, err)
	}

	raw, ok := envelope[plural]
	if !ok {
		return nil
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == `""` || trimmed == "[]" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s list: %v", plural, err)
		}
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return fmt.Errorf("failed to decode %s wrapper: %v", plural, err)
	}
	inner, ok := wrapper[singular]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return fmt.Errorf("failed to decode %s list: %v", plural, err)
	}
	return nil
}

// The webservice encodes ids and prices as JSON strings as often as numbers,
// so the raw types below accept both.

type flexUint uint

func (f *flexUint) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexUint(v)
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.Trim(string(data), `"`))
	return nil
}

type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" || s == "0000-00-00 00:00:00" {
		f.Time = time.Time{}
		return nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return err
	}
	f.Time = t
	return nil
}

type rawOrder struct {
	ID            flexUint   `json:"id"`
	IDCustomer    flexUint   `json:"id_customer"`
	Email         flexString `json:"email"`
	CustomerEmail flexString `json:"customer_email"`
	DateAdd       flexTime   `json:"date_add"`
}

type rawOrderCartRule struct {
	IDCartRule flexUint `json:"id_cart_rule"`
}

type rawCartRule struct {
	Code flexString `json:"code"`
}

type rawOrderDetail struct {
	IDManufacturer    flexUint  `json:"id_manufacturer"`
	TotalPriceTaxIncl flexFloat `json:"total_price_tax_incl"`
}

type rawManufacturer struct {
	ID   flexUint   `json:"id"`
	Name flexString `json:"name"`
}

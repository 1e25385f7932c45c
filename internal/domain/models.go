// internal/domain/models.go
package domain

import (
	"strings"
	"time"
)

// SourceCountry is the shipment origin market. It is excluded from every
// per-market aggregation and can never receive remittances.
const SourceCountry = "china"

// NormalizeCountry lower-cases and trims a country name so lookups and
// uniqueness checks are case-insensitive.
func NormalizeCountry(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Platform is an advertising platform
type Platform string

const (
	PlatformFacebook Platform = "facebook"
	PlatformTikTok   Platform = "tiktok"
	PlatformGoogle   Platform = "google"
)

// ValidPlatform reports whether p is one of the known ad platforms.
func ValidPlatform(p Platform) bool {
	switch p {
	case PlatformFacebook, PlatformTikTok, PlatformGoogle:
		return true
	}
	return false
}

// Product represents a tracked product
type Product struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	SKU              string    `json:"sku"`
	CostChina        float64   `json:"cost_china"`
	ShippingToMarket float64   `json:"shipping_to_market"`
	ProfitTarget     float64   `json:"profit_target"`
	AdBudget         float64   `json:"ad_budget"`
	Paused           bool      `json:"paused"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Country represents a sales market. Names are unique and case-normalized.
type Country struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AdSpend represents daily ad spend for one product on one platform in one
// country. At most one record exists per (date, country, platform, product).
type AdSpend struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Country   string    `json:"country"`
	Platform  Platform  `json:"platform"`
	ProductID string    `json:"product_id"`
	Amount    float64   `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remittance represents a delivered/remitted sales report for a product in a
// country over a date range.
type Remittance struct {
	ID              string    `json:"id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	Country         string    `json:"country"`
	ProductID       string    `json:"product_id"`
	Orders          int       `json:"orders"`
	DeliveredOrders int       `json:"delivered_orders"`
	DeliveredPieces int       `json:"delivered_pieces"`
	RefundedOrders  int       `json:"refunded_orders"`
	RefundedAmount  float64   `json:"refunded_amount"`
	Revenue         float64   `json:"revenue"`
	BoxleoFees      float64   `json:"boxleo_fees"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// InfluencerSpend represents a payment to an influencer for one product in
// one country.
type InfluencerSpend struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Country   string  `json:"country"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

// Shipment statuses. Status is derived from the arrival date, never stored.
const (
	ShipmentInTransit = "in_transit"
	ShipmentArrived   = "arrived"
)

// Shipment represents product quantity moving between countries.
type Shipment struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	FromCountry  string  `json:"from_country"`
	ToCountry    string  `json:"to_country"`
	Quantity     int     `json:"quantity"`
	ShippingCost float64 `json:"shipping_cost"`
	DepartedAt   string  `json:"departed_at"`
	ArrivedAt    string  `json:"arrived_at,omitempty"`
}

// Status returns in_transit until an arrival date is set.
func (s *Shipment) Status() string {
	if s.ArrivedAt == "" {
		return ShipmentInTransit
	}
	return ShipmentArrived
}

// FinanceEntry types
const (
	FinanceCredit = "credit"
	FinanceDebit  = "debit"
)

// FinanceEntry represents a credit or debit in the company ledger.
type FinanceEntry struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
	Period string  `json:"period,omitempty"`
}

// Signed returns the amount with its type-derived sign.
func (e *FinanceEntry) Signed() float64 {
	if e.Type == FinanceDebit {
		return -e.Amount
	}
	return e.Amount
}

// StockLevel is the derived per (product, country) stock quantity. It is
// always recomputed from shipment and remittance history, never persisted.
type StockLevel struct {
	ProductID string `json:"product_id"`
	Country   string `json:"country"`
	Quantity  int    `json:"quantity"`
}

// SnapshotKind tags the origin of a snapshot.
type SnapshotKind string

const (
	SnapshotManual     SnapshotKind = "manual"
	SnapshotAuto       SnapshotKind = "auto"
	SnapshotPreRestore SnapshotKind = "pre-restore"
)

// Snapshot is the metadata of one immutable point-in-time datastore copy.
type Snapshot struct {
	ID        string       `json:"id"`
	Label     string       `json:"label,omitempty"`
	Kind      SnapshotKind `json:"kind"`
	File      string       `json:"file"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"created_at"`
}

// internal/domain/analytics.go
package domain

// Sentinel bounds used when a window side is unset, so that filter logic is a
// single uniform range comparison. ISO dates compare lexicographically.
const (
	DateMin = "0000-01-01"
	DateMax = "9999-12-31"
)

// AnalyticsFilter represents filters for profit analytics queries
type AnalyticsFilter struct {
	StartDate     string  `json:"start"`
	EndDate       string  `json:"end"`
	Country       string  `json:"country"`
	ProductID     string  `json:"product_id"`
	SortBy        string  `json:"sort_by"`
	SortOrder     string  `json:"sort_order"`
	GroupBy       string  `json:"group_by"`
	ExtraPerPiece float64 `json:"extra_per_piece"`
}

// Grouping modes. The default is one row per (product, country) pair; the
// country mode collapses to one row per country.
const (
	GroupByProductCountry = "product_country"
	GroupByCountry        = "country"
)

// Window returns the effective inclusive date window, substituting the wide
// sentinel range for unset bounds.
func (f AnalyticsFilter) Window() (string, string) {
	start, end := f.StartDate, f.EndDate
	if start == "" {
		start = DateMin
	}
	if end == "" {
		end = DateMax
	}
	return start, end
}

// AnalyticsRow is one per-(product, country) financial summary row.
type AnalyticsRow struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Country     string `json:"country"`

	TotalOrders           int     `json:"totalOrders"`
	TotalDeliveredOrders  int     `json:"totalDeliveredOrders"`
	TotalRefundedOrders   int     `json:"totalRefundedOrders"`
	TotalDeliveredPieces  int     `json:"totalDeliveredPieces"`
	TotalRevenue          float64 `json:"totalRevenue"`
	TotalRefundedAmount   float64 `json:"totalRefundedAmount"`
	TotalAdSpend          float64 `json:"totalAdSpend"`
	TotalInfluencerSpend  float64 `json:"totalInfluencerSpend"`
	TotalBoxleoFees       float64 `json:"totalBoxleoFees"`
	TotalProductChinaCost float64 `json:"totalProductChinaCost"`
	TotalShippingCost     float64 `json:"totalShippingCost"`

	LandedCostPerPiece float64 `json:"landedCostPerPiece"`
	Profit             float64 `json:"profit"`

	ProfitPerOrder          float64 `json:"profitPerOrder"`
	ProfitPerPiece          float64 `json:"profitPerPiece"`
	BoxleoPerDeliveredOrder float64 `json:"boxleoPerDeliveredOrder"`
	BoxleoPerDeliveredPiece float64 `json:"boxleoPerDeliveredPiece"`
	AdCostPerDeliveredOrder float64 `json:"adCostPerDeliveredOrder"`
	AdCostPerDeliveredPiece float64 `json:"adCostPerDeliveredPiece"`
	DeliveryRate            float64 `json:"deliveryRate"`
	AverageOrderValue       float64 `json:"averageOrderValue"`
}

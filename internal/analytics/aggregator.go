// internal/analytics/aggregator.go
package analytics

import (
	"sort"
	"strings"

	"github.com/EAS-COD-System/eas-tracker/internal/domain"
)

// Input carries the record sets one aggregation runs over. The aggregator
// never mutates them.
type Input struct {
	Products    []*domain.Product
	Remittances []*domain.Remittance
	AdSpend     []*domain.AdSpend
	Influencers []*domain.InfluencerSpend
	Shipments   []*domain.Shipment
}

// accumulator collects the running sums for one output row.
type accumulator struct {
	product *domain.Product
	country string

	orders          int
	deliveredOrders int
	refundedOrders  int
	deliveredPieces int
	revenue         float64
	refundedAmount  float64
	adSpend         float64
	influencerSpend float64
	boxleoFees      float64
	chinaCost       float64
	staticLandedSum float64
	shippingCost    float64
}

// Aggregate computes the per-(product, country) financial summary rows for
// the filtered record sets. When filter.GroupBy is "country" the rows
// collapse to one per country. Records for the source market are never
// aggregated. Returns ErrInvalidRange when the window end precedes its
// start; an empty result is a valid outcome, not an error.
func Aggregate(filter domain.AnalyticsFilter, in Input) ([]domain.AnalyticsRow, error) {
	if filter.StartDate != "" && filter.EndDate != "" && filter.EndDate < filter.StartDate {
		return nil, domain.ErrInvalidRange
	}

	byCountry := filter.GroupBy == domain.GroupByCountry && filter.ProductID == ""

	products := make(map[string]*domain.Product, len(in.Products))
	for _, p := range in.Products {
		products[p.ID] = p
	}

	groups := make(map[string]*accumulator)
	var order []string

	group := func(productID, country string) *accumulator {
		key := productID + "|" + country
		if byCountry {
			key = country
		}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{country: country}
			if !byCountry {
				acc.product = products[productID]
			}
			groups[key] = acc
			order = append(order, key)
		}
		return acc
	}

	for _, r := range in.Remittances {
		if r.Country == domain.SourceCountry {
			continue
		}
		acc := group(r.ProductID, r.Country)
		acc.orders += r.Orders
		acc.deliveredOrders += r.DeliveredOrders
		acc.refundedOrders += r.RefundedOrders
		acc.deliveredPieces += r.DeliveredPieces
		acc.revenue += r.Revenue
		acc.refundedAmount += r.RefundedAmount
		acc.boxleoFees += r.BoxleoFees
		if p, ok := products[r.ProductID]; ok {
			acc.chinaCost += p.CostChina * float64(r.DeliveredPieces)
			acc.staticLandedSum += (p.CostChina + p.ShippingToMarket) * float64(r.DeliveredPieces)
		}
	}

	for _, a := range in.AdSpend {
		if a.Country == domain.SourceCountry {
			continue
		}
		acc := group(a.ProductID, a.Country)
		acc.adSpend += a.Amount
	}

	for _, spend := range in.Influencers {
		if spend.Country == domain.SourceCountry {
			continue
		}
		acc := group(spend.ProductID, spend.Country)
		acc.influencerSpend += spend.Amount
	}

	start, end := filter.Window()
	for _, sh := range in.Shipments {
		if sh.ArrivedAt == "" || sh.ToCountry == domain.SourceCountry {
			continue
		}
		if sh.ArrivedAt < start || sh.ArrivedAt > end {
			continue
		}
		key := sh.ProductID + "|" + sh.ToCountry
		if byCountry {
			key = sh.ToCountry
		}
		// Shipping cost attaches only to groups the sales records created;
		// a shipment alone does not open a summary row.
		if acc, ok := groups[key]; ok {
			acc.shippingCost += sh.ShippingCost
		}
	}

	rows := make([]domain.AnalyticsRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, buildRow(groups[key], filter.ExtraPerPiece))
	}

	sortRows(rows, filter.SortBy, filter.SortOrder)
	return rows, nil
}

func buildRow(acc *accumulator, extraPerPiece float64) domain.AnalyticsRow {
	row := domain.AnalyticsRow{
		Country:               acc.country,
		TotalOrders:           acc.orders,
		TotalDeliveredOrders:  acc.deliveredOrders,
		TotalRefundedOrders:   acc.refundedOrders,
		TotalDeliveredPieces:  acc.deliveredPieces,
		TotalRevenue:          acc.revenue,
		TotalRefundedAmount:   acc.refundedAmount,
		TotalAdSpend:          acc.adSpend,
		TotalInfluencerSpend:  acc.influencerSpend,
		TotalBoxleoFees:       acc.boxleoFees,
		TotalProductChinaCost: acc.chinaCost,
		TotalShippingCost:     acc.shippingCost,
	}
	if acc.product != nil {
		row.ProductID = acc.product.ID
		row.ProductName = acc.product.Name
	}

	pieces := float64(acc.deliveredPieces)

	if acc.product != nil {
		// Static per-piece cost comes from the product entity; the shipment
		// share is prorated over delivered pieces, 0 when none delivered.
		row.LandedCostPerPiece = acc.product.CostChina + acc.product.ShippingToMarket + safeDiv(acc.shippingCost, pieces)
	} else {
		row.LandedCostPerPiece = safeDiv(acc.staticLandedSum+acc.shippingCost, pieces)
	}

	row.Profit = row.TotalRevenue -
		row.TotalAdSpend -
		row.TotalInfluencerSpend -
		row.TotalBoxleoFees -
		row.LandedCostPerPiece*pieces -
		extraPerPiece*pieces

	orders := float64(acc.orders)
	delivered := float64(acc.deliveredOrders)

	row.ProfitPerOrder = safeDiv(row.Profit, delivered)
	row.ProfitPerPiece = safeDiv(row.Profit, pieces)
	row.BoxleoPerDeliveredOrder = safeDiv(row.TotalBoxleoFees, delivered)
	row.BoxleoPerDeliveredPiece = safeDiv(row.TotalBoxleoFees, pieces)
	row.AdCostPerDeliveredOrder = safeDiv(row.TotalAdSpend, delivered)
	row.AdCostPerDeliveredPiece = safeDiv(row.TotalAdSpend, pieces)
	row.DeliveryRate = safeDiv(delivered, orders) * 100
	row.AverageOrderValue = safeDiv(row.TotalRevenue, orders)

	return row
}

// safeDiv divides with a zero-denominator guard; 0/0 is 0 by contract.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func sortRows(rows []domain.AnalyticsRow, sortBy, sortOrder string) {
	ascending := strings.EqualFold(sortOrder, "asc")

	key := func(r domain.AnalyticsRow) float64 {
		return sortValue(r, sortBy)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if ascending {
			return key(rows[i]) < key(rows[j])
		}
		return key(rows[i]) > key(rows[j])
	})
}

func sortValue(r domain.AnalyticsRow, field string) float64 {
	switch field {
	case "totalOrders":
		return float64(r.TotalOrders)
	case "totalDeliveredOrders":
		return float64(r.TotalDeliveredOrders)
	case "totalRefundedOrders":
		return float64(r.TotalRefundedOrders)
	case "totalRevenue":
		return r.TotalRevenue
	case "totalRefundedAmount":
		return r.TotalRefundedAmount
	case "totalAdSpend":
		return r.TotalAdSpend
	case "totalInfluencerSpend":
		return r.TotalInfluencerSpend
	case "totalBoxleoFees":
		return r.TotalBoxleoFees
	case "totalProductChinaCost":
		return r.TotalProductChinaCost
	case "totalShippingCost":
		return r.TotalShippingCost
	case "landedCostPerPiece":
		return r.LandedCostPerPiece
	case "profit":
		return r.Profit
	case "profitPerOrder":
		return r.ProfitPerOrder
	case "profitPerPiece":
		return r.ProfitPerPiece
	case "boxleoPerDeliveredOrder":
		return r.BoxleoPerDeliveredOrder
	case "boxleoPerDeliveredPiece":
		return r.BoxleoPerDeliveredPiece
	case "adCostPerDeliveredOrder":
		return r.AdCostPerDeliveredOrder
	case "adCostPerDeliveredPiece":
		return r.AdCostPerDeliveredPiece
	case "deliveryRate":
		return r.DeliveryRate
	case "averageOrderValue":
		return r.AverageOrderValue
	default:
		// Default sort key: delivered pieces.
		return float64(r.TotalDeliveredPieces)
	}
}

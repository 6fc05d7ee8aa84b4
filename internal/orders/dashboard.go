package orders

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
)

const topProductsLimit = 5

type ProductSales struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Stats summarises fulfilled orders for the back-office dashboard.
type Stats struct {
	DailyRevenue   decimal.Decimal `json:"dailyRevenue"`
	DailyOrders    int             `json:"dailyOrders"`
	MonthlyRevenue decimal.Decimal `json:"monthlyRevenue"`
	MonthlyOrders  int             `json:"monthlyOrders"`
	TopProducts    []ProductSales  `json:"topProducts"`
}

type FulfilledLister interface {
	ListFulfilledSince(ctx context.Context, since time.Time) ([]models.Order, error)
}

type Dashboard struct {
	orders FulfilledLister
	now    func() time.Time
}

func NewDashboard(orders FulfilledLister) *Dashboard {
	return &Dashboard{orders: orders, now: time.Now}
}

func (d *Dashboard) Stats(ctx context.Context) (Stats, error) {
	now := d.now()
	list, err := d.orders.ListFulfilledSince(ctx, startOfMonth(now))
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(list, now), nil
}

// ComputeStats expects fulfilled orders created since the start of now's month.
func ComputeStats(list []models.Order, now time.Time) Stats {
	stats := Stats{
		DailyRevenue:   decimal.Zero,
		MonthlyRevenue: decimal.Zero,
		TopProducts:    []ProductSales{},
	}
	dayStart := startOfDay(now)

	byProduct := make(map[string]*ProductSales)
	var seen []string
	for _, o := range list {
		stats.MonthlyOrders++
		stats.MonthlyRevenue = stats.MonthlyRevenue.Add(o.Total)
		if !o.CreatedAt.Before(dayStart) {
			stats.DailyOrders++
			stats.DailyRevenue = stats.DailyRevenue.Add(o.Total)
		}
		for _, line := range o.Items {
			ps, ok := byProduct[line.Product.ID]
			if !ok {
				ps = &ProductSales{ProductID: line.Product.ID, Name: line.Product.Name, Revenue: decimal.Zero}
				byProduct[line.Product.ID] = ps
				seen = append(seen, line.Product.ID)
			}
			ps.Quantity += line.Quantity
			ps.Revenue = ps.Revenue.Add(line.Subtotal())
		}
	}

	for _, id := range seen {
		stats.TopProducts = append(stats.TopProducts, *byProduct[id])
	}
	sort.SliceStable(stats.TopProducts, func(i, j int) bool {
		return stats.TopProducts[i].Quantity > stats.TopProducts[j].Quantity
	})
	if len(stats.TopProducts) > topProductsLimit {
		stats.TopProducts = stats.TopProducts[:topProductsLimit]
	}
	return stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"shoppulse/pkg/contracts/domain"
)

// AnalyticsConfig holds result-sizing options for the aggregation engine.
type AnalyticsConfig struct {
	TopRankings int // prefix length for product/customer rankings
	DailyWindow int // prefix length for the daily revenue series
}

// DefaultAnalyticsConfig returns sizing for typical dashboard use.
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{TopRankings: 5, DailyWindow: 30}
}

// AnalyticsEngine computes overview metrics and ranked/time-series views
// over the current record store contents. All aggregates are computed from
// scratch on each query; there is no incremental maintenance.
type AnalyticsEngine struct {
	logger      *slog.Logger
	topRankings int
	dailyWindow int
	loc         *time.Location
}

// NewAnalyticsEngine creates an aggregation engine. Dates in the daily
// revenue series are calendar dates in the given canonical timezone.
func NewAnalyticsEngine(logger *slog.Logger, cfg AnalyticsConfig, loc *time.Location) *AnalyticsEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopRankings <= 0 {
		cfg.TopRankings = DefaultAnalyticsConfig().TopRankings
	}
	if cfg.DailyWindow <= 0 {
		cfg.DailyWindow = DefaultAnalyticsConfig().DailyWindow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsEngine{
		logger:      logger,
		topRankings: cfg.TopRankings,
		dailyWindow: cfg.DailyWindow,
		loc:         loc,
	}
}

type productAccumulator struct {
	name     string
	revenue  decimal.Decimal
	quantity int64
	orders   map[string]struct{}
}

type customerAccumulator struct {
	spent  decimal.Decimal
	orders map[string]struct{}
}

type dayAccumulator struct {
	revenue decimal.Decimal
	orders  map[string]struct{}
}

// Overview computes the analytics snapshot over the given records. An
// empty input yields a snapshot with zero counts and empty collections,
// not an error.
func (e *AnalyticsEngine) Overview(ctx context.Context, records []domain.TransactionRecord) domain.AnalyticsSnapshot {
	snapshot := domain.AnalyticsSnapshot{
		TotalRecords: len(records),
		TotalRevenue: decimal.Zero,
		TopProducts:  []domain.ProductRanking{},
		TopCustomers: []domain.CustomerRanking{},
		DailyRevenue: []domain.DailyRevenue{},
	}
	if len(records) == 0 {
		return snapshot
	}

	customers := make(map[string]*customerAccumulator)
	products := make(map[string]*productAccumulator)
	days := make(map[string]*dayAccumulator)
	var minDate, maxDate time.Time

	for i, rec := range records {
		snapshot.TotalRevenue = snapshot.TotalRevenue.Add(rec.LineRevenue)

		prod := products[rec.ProductID]
		if prod == nil {
			prod = &productAccumulator{revenue: decimal.Zero, orders: map[string]struct{}{}}
			products[rec.ProductID] = prod
		}
		if prod.name == "" {
			prod.name = rec.ProductName
		}
		prod.revenue = prod.revenue.Add(rec.LineRevenue)
		prod.quantity += rec.Quantity
		prod.orders[rec.OrderID] = struct{}{}

		cust := customers[rec.CustomerID]
		if cust == nil {
			cust = &customerAccumulator{spent: decimal.Zero, orders: map[string]struct{}{}}
			customers[rec.CustomerID] = cust
		}
		cust.spent = cust.spent.Add(rec.LineRevenue)
		cust.orders[rec.OrderID] = struct{}{}

		dateKey := rec.OccurredAt.In(e.loc).Format("2006-01-02")
		day := days[dateKey]
		if day == nil {
			day = &dayAccumulator{revenue: decimal.Zero, orders: map[string]struct{}{}}
			days[dateKey] = day
		}
		day.revenue = day.revenue.Add(rec.LineRevenue)
		day.orders[rec.OrderID] = struct{}{}

		if i == 0 || rec.OccurredAt.Before(minDate) {
			minDate = rec.OccurredAt
		}
		if i == 0 || rec.OccurredAt.After(maxDate) {
			maxDate = rec.OccurredAt
		}
	}

	snapshot.UniqueCustomers = len(customers)
	snapshot.UniqueProducts = len(products)
	snapshot.DateRange = &domain.DateRange{Start: minDate, End: maxDate}
	snapshot.TopProducts = e.rankProducts(products)
	snapshot.TopCustomers = e.rankCustomers(customers)
	snapshot.DailyRevenue = e.dailySeries(days)

	e.logger.DebugContext(ctx, "computed analytics snapshot",
		slog.Int("total_records", snapshot.TotalRecords),
		slog.Int("unique_customers", snapshot.UniqueCustomers),
		slog.Int("unique_products", snapshot.UniqueProducts))

	return snapshot
}

// rankProducts sorts product groups descending by total revenue, ties
// broken by product ID ascending, and takes the configured prefix.
func (e *AnalyticsEngine) rankProducts(products map[string]*productAccumulator) []domain.ProductRanking {
	rankings := make([]domain.ProductRanking, 0, len(products))
	for id, acc := range products {
		rankings = append(rankings, domain.ProductRanking{
			ProductID:     id,
			ProductName:   acc.name,
			TotalRevenue:  acc.revenue,
			TotalQuantity: acc.quantity,
			OrderCount:    len(acc.orders),
		})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if cmp := rankings[i].TotalRevenue.Cmp(rankings[j].TotalRevenue); cmp != 0 {
			return cmp > 0
		}
		return rankings[i].ProductID < rankings[j].ProductID
	})
	if len(rankings) > e.topRankings {
		rankings = rankings[:e.topRankings]
	}
	return rankings
}

// rankCustomers sorts customer groups descending by total spent, ties
// broken by customer ID ascending, and takes the configured prefix.
func (e *AnalyticsEngine) rankCustomers(customers map[string]*customerAccumulator) []domain.CustomerRanking {
	rankings := make([]domain.CustomerRanking, 0, len(customers))
	for id, acc := range customers {
		rankings = append(rankings, domain.CustomerRanking{
			CustomerID: id,
			TotalSpent: acc.spent,
			OrderCount: len(acc.orders),
		})
	}
	sort.Slice(rankings, func(i, j int) bool {
		if cmp := rankings[i].TotalSpent.Cmp(rankings[j].TotalSpent); cmp != 0 {
			return cmp > 0
		}
		return rankings[i].CustomerID < rankings[j].CustomerID
	})
	if len(rankings) > e.topRankings {
		rankings = rankings[:e.topRankings]
	}
	return rankings
}

// dailySeries sorts day groups ascending by calendar date and keeps the
// most recent window.
func (e *AnalyticsEngine) dailySeries(days map[string]*dayAccumulator) []domain.DailyRevenue {
	series := make([]domain.DailyRevenue, 0, len(days))
	for date, acc := range days {
		series = append(series, domain.DailyRevenue{
			Date:    date,
			Revenue: acc.revenue,
			Orders:  len(acc.orders),
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	if len(series) > e.dailyWindow {
		series = series[len(series)-e.dailyWindow:]
	}
	return series
}

// CustomerInsights computes detailed per-customer purchase metrics,
// sorted descending by total spent with customer ID as tie-break.
func (e *AnalyticsEngine) CustomerInsights(ctx context.Context, records []domain.TransactionRecord) []domain.CustomerInsight {
	type acc struct {
		spent       decimal.Decimal
		orders      map[string]struct{}
		first, last time.Time
	}
	byCustomer := make(map[string]*acc)

	for _, rec := range records {
		a := byCustomer[rec.CustomerID]
		if a == nil {
			a = &acc{spent: decimal.Zero, orders: map[string]struct{}{}, first: rec.OccurredAt, last: rec.OccurredAt}
			byCustomer[rec.CustomerID] = a
		}
		a.spent = a.spent.Add(rec.LineRevenue)
		a.orders[rec.OrderID] = struct{}{}
		if rec.OccurredAt.Before(a.first) {
			a.first = rec.OccurredAt
		}
		if rec.OccurredAt.After(a.last) {
			a.last = rec.OccurredAt
		}
	}

	insights := make([]domain.CustomerInsight, 0, len(byCustomer))
	for id, a := range byCustomer {
		orderCount := len(a.orders)
		insights = append(insights, domain.CustomerInsight{
			CustomerID:    id,
			TotalOrders:   orderCount,
			TotalSpent:    a.spent,
			AvgOrderValue: a.spent.Div(decimal.NewFromInt(int64(orderCount))).RoundBank(pricePrecision),
			FirstPurchase: a.first,
			LastPurchase:  a.last,
		})
	}
	sort.Slice(insights, func(i, j int) bool {
		if cmp := insights[i].TotalSpent.Cmp(insights[j].TotalSpent); cmp != 0 {
			return cmp > 0
		}
		return insights[i].CustomerID < insights[j].CustomerID
	})
	return insights
}

// ProductInsights computes detailed per-product sales metrics, sorted
// descending by total revenue with product ID as tie-break.
func (e *AnalyticsEngine) ProductInsights(ctx context.Context, records []domain.TransactionRecord) []domain.ProductInsight {
	type acc struct {
		name     string
		revenue  decimal.Decimal
		priceSum decimal.Decimal
		quantity int64
		lines    int64
		orders   map[string]struct{}
	}
	byProduct := make(map[string]*acc)

	for _, rec := range records {
		a := byProduct[rec.ProductID]
		if a == nil {
			a = &acc{revenue: decimal.Zero, priceSum: decimal.Zero, orders: map[string]struct{}{}}
			byProduct[rec.ProductID] = a
		}
		if a.name == "" {
			a.name = rec.ProductName
		}
		a.revenue = a.revenue.Add(rec.LineRevenue)
		a.priceSum = a.priceSum.Add(rec.UnitPrice)
		a.quantity += rec.Quantity
		a.lines++
		a.orders[rec.OrderID] = struct{}{}
	}

	insights := make([]domain.ProductInsight, 0, len(byProduct))
	for id, a := range byProduct {
		insights = append(insights, domain.ProductInsight{
			ProductID:     id,
			ProductName:   a.name,
			TotalQuantity: a.quantity,
			TotalRevenue:  a.revenue,
			AvgPrice:      a.priceSum.Div(decimal.NewFromInt(a.lines)).RoundBank(pricePrecision),
			OrderCount:    len(a.orders),
		})
	}
	sort.Slice(insights, func(i, j int) bool {
		if cmp := insights[i].TotalRevenue.Cmp(insights[j].TotalRevenue); cmp != 0 {
			return cmp > 0
		}
		return insights[i].ProductID < insights[j].ProductID
	})
	return insights
}

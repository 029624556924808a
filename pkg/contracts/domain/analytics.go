package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsSnapshot represents the computed, non-persisted result of an
// aggregation query over the current record store contents. Snapshots are
// recomputed from scratch on every query; two queries separated by a
// concurrent ingestion may observe different snapshots.
type AnalyticsSnapshot struct {
	TotalRecords    int               `json:"total_records"`
	TotalRevenue    decimal.Decimal   `json:"total_revenue"`
	UniqueCustomers int               `json:"unique_customers"`
	UniqueProducts  int               `json:"unique_products"`
	DateRange       *DateRange        `json:"date_range,omitempty"`
	TopProducts     []ProductRanking  `json:"top_products"`
	TopCustomers    []CustomerRanking `json:"top_customers"`
	DailyRevenue    []DailyRevenue    `json:"daily_revenue"`
}

// DateRange represents the min/max occurred_at across all stored records.
// Absent from the snapshot when the store is empty.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProductRanking represents one product's aggregate position in the
// revenue ranking. Sorted descending by total revenue, ties broken by
// product ID ascending.
type ProductRanking struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity int64           `json:"total_quantity"`
	OrderCount    int             `json:"order_count"`
}

// CustomerRanking represents one customer's aggregate position in the
// spend ranking. Sorted descending by total spent, ties broken by
// customer ID ascending.
type CustomerRanking struct {
	CustomerID string          `json:"customer_id"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	OrderCount int             `json:"order_count"`
}

// DailyRevenue represents revenue aggregated over one calendar date in the
// canonical storage timezone.
type DailyRevenue struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// CustomerInsight represents detailed per-customer purchase metrics.
type CustomerInsight struct {
	CustomerID    string          `json:"customer_id"`
	TotalOrders   int             `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	FirstPurchase time.Time       `json:"first_purchase"`
	LastPurchase  time.Time       `json:"last_purchase"`
}

// ProductInsight represents detailed per-product sales metrics.
type ProductInsight struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name,omitempty"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	OrderCount    int             `json:"order_count"`
}

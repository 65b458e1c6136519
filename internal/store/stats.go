package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
)

type DashboardStats struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	PendingOrders int             `json:"pendingOrders"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"` // delivered orders only
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalProducts, err = s.CountProducts(ctx); err != nil {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, s.q(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM orders
	`), string(models.OrderPending)).Scan(&stats.TotalOrders, &stats.PendingOrders)
	if err != nil {
		return nil, err
	}

	if stats.TotalRevenue, err = s.deliveredRevenue(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

// deliveredRevenue adds up delivered totals in decimal. Summing in SQL
// would go through floats on SQLite, where amounts are stored as text.
func (s *Store) deliveredRevenue(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.DB.QueryContext(ctx, s.q(`SELECT total_amount FROM orders WHERE status = ?`), string(models.OrderDelivered))
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

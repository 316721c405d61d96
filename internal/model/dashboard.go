package model

// DashboardSummary aggregates a user's breaking sessions into profit/loss figures.
// It is derived on read and never stored.
type DashboardSummary struct {
	TotalSessions      int                  `json:"total_sessions"`
	ProfitableSessions int                  `json:"profitable_sessions"`
	TotalCost          float64              `json:"total_cost"`
	TotalSales         float64              `json:"total_sales"`
	NetProfit          float64              `json:"net_profit"`
	TotalHours         float64              `json:"total_hours"`
	ProfitPerHour      float64              `json:"profit_per_hour"`
	Last30DaysSales    float64              `json:"last_30_days_sales"`
	Last30DaysProfit   float64              `json:"last_30_days_profit"`
	ByPaymentMethod    []PaymentMethodTotal `json:"by_payment_method"`
	Recent             []SessionProfit      `json:"recent"`
}

// PaymentMethodTotal is the per-payment-method breakdown on the dashboard.
type PaymentMethodTotal struct {
	PaymentMethod string  `json:"payment_method"`
	Sessions      int     `json:"sessions"`
	Sales         float64 `json:"sales"`
	Profit        float64 `json:"profit"`
}

// SessionProfit pairs a session with its computed profit for display.
type SessionProfit struct {
	Session *BreakingSession `json:"session"`
	Profit  float64          `json:"profit"`
}

package model

import (
	"math"
	"time"
)

// BreakingSession is one logged card-pack-opening event.
type BreakingSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PackageCost   float64   `json:"package_cost"`
	TimeSpent     float64   `json:"time_spent"` // hours
	SalesPrice    float64   `json:"sales_price"`
	Buyer         string    `json:"buyer"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// Profit returns sales price minus package cost, rounded to cents.
func (s *BreakingSession) Profit() float64 {
	return RoundCents(s.SalesPrice - s.PackageCost)
}

// BreakingSessionPatch holds the fields that can be changed on an existing session.
// Nil fields are left untouched.
type BreakingSessionPatch struct {
	PackageCost   *float64 `json:"package_cost,omitempty"`
	TimeSpent     *float64 `json:"time_spent,omitempty"`
	SalesPrice    *float64 `json:"sales_price,omitempty"`
	Buyer         *string  `json:"buyer,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BreakingSessionPatch) IsEmpty() bool {
	return p.PackageCost == nil && p.TimeSpent == nil && p.SalesPrice == nil &&
		p.Buyer == nil && p.PaymentMethod == nil
}

// Apply copies the non-nil patch fields onto s.
func (p BreakingSessionPatch) Apply(s *BreakingSession) {
	if p.PackageCost != nil {
		s.PackageCost = *p.PackageCost
	}
	if p.TimeSpent != nil {
		s.TimeSpent = *p.TimeSpent
	}
	if p.SalesPrice != nil {
		s.SalesPrice = *p.SalesPrice
	}
	if p.Buyer != nil {
		s.Buyer = *p.Buyer
	}
	if p.PaymentMethod != nil {
		s.PaymentMethod = *p.PaymentMethod
	}
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

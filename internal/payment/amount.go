package payment

import "fmt"

const DefaultTaxRate = 0.08

type TaxBreakdown struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	TaxRate  float64 `json:"taxRate"`
}

// CalculateTax returns a tax breakdown for display purposes. Order totals are
// computed elsewhere and never include this tax figure.
func CalculateTax(subtotal, taxRate float64) TaxBreakdown {
	tax := subtotal * taxRate
	return TaxBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
		TaxRate:  taxRate,
	}
}

// AmountsMatch compares two dollar amounts in minor units so that float
// representation noise cannot cause a mismatch.
func AmountsMatch(a, b float64) bool {
	return MinorUnits(a) == MinorUnits(b)
}

// Description builds the charge description that shows up on the provider
// dashboard and customer statements.
func Description(orderID uint, itemCount int, orderType string) string {
	return fmt.Sprintf("Order #%d - %d items - %s", orderID, itemCount, orderType)
}

// Package pricing holds the MRP-to-points conversions used by the
// verification credit, the purchase debit and the admin dashboard, so
// the three can never disagree.
package pricing

import "math"

const (
	// Percentages of a book's MRP.
	DonationRewardPercent = 40
	PurchasePricePercent  = 60
)

// DonorCredit is what the donor earns when their book is verified.
func DonorCredit(mrp int) int {
	return int(math.Round(float64(mrp) * DonationRewardPercent / 100))
}

// BuyerCost is what a buyer pays in points for a verified book.
func BuyerCost(mrp int) int {
	return int(math.Round(float64(mrp) * PurchasePricePercent / 100))
}

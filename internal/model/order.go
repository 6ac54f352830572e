package model

import "strings"

// Order statuses the service itself assigns or inspects.  Any other
// string is accepted as a status as well.
const (
	OrderStatusCancelled = "cancelled"
	OrderStatusDelivered = "delivered"
)

// scentSep joins scent labels into the single `orders.scent` column.
const scentSep = ","

// Order mirrors the `orders` table.  Scent is kept as an ordered list in
// memory and flattened to a comma separated string when stored.
type Order struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	Status       string   `json:"status"`
	DriverID     *string  `json:"driver_id"`
	Scent        []string `json:"scent"`
	CancelReason *string  `json:"cancel_reason"`
}

// JoinScent flattens scent labels for storage.  An empty list is stored as
// NULL, reported here as ok=false.
func JoinScent(labels []string) (string, bool) {
	if len(labels) == 0 {
		return "", false
	}
	return strings.Join(labels, scentSep), true
}

// SplitScent restores the ordered label list from its stored form.
func SplitScent(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, scentSep)
}

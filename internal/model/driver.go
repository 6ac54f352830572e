package model

// Driver mirrors the `drivers` table.  Lat and Lng stay nil until the
// driver reports a location.
type Driver struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Status string   `json:"status"`
	Lat    *float64 `json:"lat"`
	Lng    *float64 `json:"lng"`
}

package models

import (
	"time"

	"github.com/DeveloperForam/test-house-design/internal/money"
)

type HouseStatus string

const (
	HouseStatusAvailable HouseStatus = "available"
	HouseStatusBooked    HouseStatus = "booked"
	HouseStatusSold      HouseStatus = "sold"
)

// ParseHouseStatus validates an admin-supplied status.
func ParseHouseStatus(s string) (HouseStatus, bool) {
	switch HouseStatus(s) {
	case HouseStatusAvailable, HouseStatusBooked, HouseStatusSold:
		return HouseStatus(s), true
	}
	return "", false
}

// House is a single unit within a project. Status is derived from its booking
// ledger unless StatusOverride is set.
type House struct {
	ProjectID      string       `json:"projectId" db:"project_id"`
	ProjectName    string       `json:"projectName" db:"project_name"`
	ProjectType    ProjectType  `json:"projectType" db:"project_type"`
	HouseNumber    string       `json:"houseNumber" db:"house_number"`
	SquareFeet     int          `json:"squareFeet" db:"square_feet"`
	Price          money.Money  `json:"price" db:"price"`
	PricePerSqFeet money.Money  `json:"pricePerSqFeet,omitempty" db:"price_per_sq_feet"`
	StatusOverride *HouseStatus `json:"statusOverride,omitempty" db:"status_override"`
	Status         HouseStatus  `json:"status" db:"-"`
	BookingID      string       `json:"bookingId,omitempty" db:"-"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
}

// EffectivePrice is the fixed price if set, otherwise area times rate.
func (h *House) EffectivePrice() money.Money {
	if h.Price > 0 {
		return h.Price
	}
	return money.Money(int64(h.SquareFeet) * h.PricePerSqFeet.Paise())
}

// HouseStatusCount backs the dashboard.
type HouseStatusCount struct {
	Available int `json:"available"`
	Booked    int `json:"booked"`
	Sold      int `json:"sold"`
}

// Add counts one house.
func (c *HouseStatusCount) Add(status HouseStatus) {
	switch status {
	case HouseStatusAvailable:
		c.Available++
	case HouseStatusBooked:
		c.Booked++
	case HouseStatusSold:
		c.Sold++
	}
}

// HouseStatusRequest patches the admin override; "auto" clears it.
type HouseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available booked sold auto"`
}

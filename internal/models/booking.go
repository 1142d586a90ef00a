package models

import (
	"time"

	"github.com/DeveloperForam/test-house-design/internal/money"
)

type PaymentType string

const (
	PaymentTypeCash PaymentType = "cash"
	PaymentTypeBank PaymentType = "bank"
)

// Booking reserves one house for a customer. PendingAmount and State are
// recomputed from the payment log on every read and never persisted.
type Booking struct {
	ID             string      `json:"id" db:"id"`
	BookingCode    string      `json:"bookingId" db:"booking_code"`
	ProjectID      string      `json:"projectId" db:"project_id"`
	ProjectName    string      `json:"projectName" db:"project_name"`
	HouseNumber    string      `json:"houseNumber" db:"house_number"`
	CustomerName   string      `json:"customerName" db:"customer_name"`
	MobileNo       string      `json:"mobileNo" db:"mobile_no"`
	PaymentType    PaymentType `json:"paymentType" db:"payment_type"`
	TotalAmount    money.Money `json:"totalAmount" db:"total_amount"`
	AdvancePayment money.Money `json:"advancePayment" db:"advance_payment"`
	BookingDate    Date        `json:"bookingDate" db:"booking_date"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`

	PaidAmount    money.Money `json:"paidAmount" db:"-"`
	PendingAmount money.Money `json:"pendingAmount" db:"-"`
	State         string      `json:"state,omitempty" db:"-"`
}

// CreateBookingRequest is the booking form.
type CreateBookingRequest struct {
	ProjectID      string      `json:"projectId" binding:"required"`
	HouseNumber    string      `json:"houseNumber" binding:"required"`
	CustomerName   string      `json:"customerName" binding:"required"`
	MobileNo       string      `json:"mobileNo" binding:"required"`
	PaymentType    string      `json:"paymentType" binding:"required,oneof=cash bank"`
	AdvancePayment interface{} `json:"advancePayment" binding:"required"`
	BookingDate    string      `json:"bookingDate"`
}

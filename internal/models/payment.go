package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DeveloperForam/test-house-design/internal/money"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodCard   PaymentMethod = "card"
)

var (
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrInvalidPaymentDetails = errors.New("invalid payment details")
)

// PaymentDetails is the method-specific payload of a payment. The concrete
// type always matches Method().
type PaymentDetails interface {
	Method() PaymentMethod
	Validate() error
}

type CashDetails struct{}

type UPIDetails struct {
	TxnID string `json:"upiTxnId"`
}

type BankDetails struct {
	BankName  string `json:"bankName"`
	AccountNo string `json:"accountNo"`
}

type ChequeDetails struct {
	ChequeNo string `json:"chequeNo"`
}

type CardDetails struct {
	Last4 string `json:"last4Digits"`
}

func (CashDetails) Method() PaymentMethod   { return PaymentMethodCash }
func (UPIDetails) Method() PaymentMethod    { return PaymentMethodUPI }
func (BankDetails) Method() PaymentMethod   { return PaymentMethodBank }
func (ChequeDetails) Method() PaymentMethod { return PaymentMethodCheque }
func (CardDetails) Method() PaymentMethod   { return PaymentMethodCard }

func (CashDetails) Validate() error { return nil }

func (d UPIDetails) Validate() error {
	if n := len(d.TxnID); n < 12 || n > 18 {
		return fmt.Errorf("%w: UPI transaction id must be 12 to 18 characters", ErrInvalidPaymentDetails)
	}
	return nil
}

func (d BankDetails) Validate() error {
	if d.BankName == "" {
		return fmt.Errorf("%w: bank name is required", ErrInvalidPaymentDetails)
	}
	if n := len(d.AccountNo); n < 14 || n > 18 || !IsDigits(d.AccountNo) {
		return fmt.Errorf("%w: account number must be 14 to 18 digits", ErrInvalidPaymentDetails)
	}
	return nil
}

func (d ChequeDetails) Validate() error {
	if d.ChequeNo == "" {
		return fmt.Errorf("%w: cheque number is required", ErrInvalidPaymentDetails)
	}
	return nil
}

func (d CardDetails) Validate() error {
	if len(d.Last4) != 4 || !IsDigits(d.Last4) {
		return fmt.Errorf("%w: card last 4 digits must be exactly 4 digits", ErrInvalidPaymentDetails)
	}
	return nil
}

// DecodePaymentDetails decodes raw JSON into the variant selected by method.
// Empty input decodes to the zero value of the variant.
func DecodePaymentDetails(method PaymentMethod, raw []byte) (PaymentDetails, error) {
	empty := len(raw) == 0 || string(raw) == "null"
	decode := func(v interface{}) error {
		if empty {
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPaymentDetails, err)
		}
		return nil
	}

	switch method {
	case PaymentMethodCash:
		return CashDetails{}, nil
	case PaymentMethodUPI:
		var d UPIDetails
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case PaymentMethodBank:
		var d BankDetails
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case PaymentMethodCheque:
		var d ChequeDetails
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	case PaymentMethodCard:
		var d CardDetails
		if err := decode(&d); err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, method)
}

// Payment is one immutable ledger entry against a booking.
type Payment struct {
	ID                  string         `json:"id" db:"id"`
	BookingID           string         `json:"bookingId" db:"booking_id"`
	AmountReceived      money.Money    `json:"amountReceived" db:"amount_received"`
	PaymentMethod       PaymentMethod  `json:"paymentMethod" db:"payment_method"`
	PaymentDetails      PaymentDetails `json:"paymentDetails" db:"payment_details"`
	PaymentReceivedDate Date           `json:"paymentReceivedDate" db:"payment_received_date"`
	CreatedAt           time.Time      `json:"createdAt" db:"created_at"`
}

// UnmarshalJSON resolves PaymentDetails through PaymentMethod.
func (p *Payment) UnmarshalJSON(data []byte) error {
	type alias Payment
	var raw struct {
		alias
		PaymentDetails json.RawMessage `json:"paymentDetails"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	details, err := DecodePaymentDetails(raw.PaymentMethod, raw.PaymentDetails)
	if err != nil {
		return err
	}
	*p = Payment(raw.alias)
	p.PaymentDetails = details
	return nil
}

// PaymentRow is a payment together with the balance left after it.
type PaymentRow struct {
	Payment
	PendingAfter money.Money `json:"pendingAfter"`
	Sold         bool        `json:"sold"`
}

// UnmarshalJSON decodes the embedded payment and the running balance. Without
// it the promoted Payment.UnmarshalJSON would drop pendingAfter and sold.
func (r *PaymentRow) UnmarshalJSON(data []byte) error {
	var p Payment
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var balance struct {
		PendingAfter money.Money `json:"pendingAfter"`
		Sold         bool        `json:"sold"`
	}
	if err := json.Unmarshal(data, &balance); err != nil {
		return err
	}
	*r = PaymentRow{Payment: p, PendingAfter: balance.PendingAfter, Sold: balance.Sold}
	return nil
}

// AddPaymentRequest is the add-payment form.
type AddPaymentRequest struct {
	BookingID           string          `json:"bookingId" binding:"required"`
	AmountReceived      interface{}     `json:"amountReceived" binding:"required"`
	PaymentMethod       string          `json:"paymentMethod" binding:"required,oneof=cash upi bank cheque card"`
	PaymentDetails      json.RawMessage `json:"paymentDetails"`
	PaymentReceivedDate string          `json:"paymentReceivedDate" binding:"required"`
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

// detailFlags collects the method-specific fields of a payment.
type detailFlags struct {
	method    string
	upiTxnID  string
	bankName  string
	accountNo string
	chequeNo  string
	last4     string
}

func (f detailFlags) details() (models.PaymentDetails, error) {
	switch models.PaymentMethod(f.method) {
	case models.PaymentMethodCash:
		return models.CashDetails{}, nil
	case models.PaymentMethodUPI:
		return models.UPIDetails{TxnID: f.upiTxnID}, nil
	case models.PaymentMethodBank:
		return models.BankDetails{BankName: f.bankName, AccountNo: f.accountNo}, nil
	case models.PaymentMethodCheque:
		return models.ChequeDetails{ChequeNo: f.chequeNo}, nil
	case models.PaymentMethodCard:
		return models.CardDetails{Last4: f.last4}, nil
	}
	return nil, fmt.Errorf("%w: %q", models.ErrUnknownPaymentMethod, f.method)
}

func paymentCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record payments against a booking",
	}
	cmd.AddCommand(paymentAddCmd(opts))
	return cmd
}

func paymentAddCmd(opts *options) *cobra.Command {
	var (
		df     detailFlags
		amount string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "add <booking id or code>",
		Short: "Record a payment; refused when it exceeds the pending amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := money.Parse(amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			details, err := df.details()
			if err != nil {
				return err
			}
			received := models.NewDate(time.Now())
			if date != "" {
				if received, err = models.ParseDate(date); err != nil {
					return fmt.Errorf("date: %w", err)
				}
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			in := booking.AddPaymentInput{
				BookingID:    args[0],
				Amount:       amt,
				Details:      details,
				ReceivedDate: received,
			}
			if _, err := svc.AddPayment(cmd.Context(), in); err != nil {
				return err
			}

			history, err := svc.LoadBookingWithHistory(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("payment recorded, but reloading the booking failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s by %s\n", opts.amount(amt), details.Method())
			printHistory(cmd.OutOrStdout(), opts, history)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&amount, "amount", "", "amount received in rupees")
	f.StringVar(&df.method, "method", string(models.PaymentMethodCash), "cash, upi, bank, cheque or card")
	f.StringVar(&df.upiTxnID, "upi-txn", "", "UPI transaction id")
	f.StringVar(&df.bankName, "bank-name", "", "bank name")
	f.StringVar(&df.accountNo, "account-no", "", "bank account number")
	f.StringVar(&df.chequeNo, "cheque-no", "", "cheque number")
	f.StringVar(&df.last4, "last4", "", "last 4 digits of the card")
	f.StringVar(&date, "date", "", "date received (YYYY-MM-DD, defaults to today)")
	cmd.MarkFlagRequired("amount")
	return cmd
}

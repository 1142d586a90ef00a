package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/DeveloperForam/test-house-design/internal/booking"
	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/internal/money"
)

func bookingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "List, create and inspect bookings",
	}
	cmd.AddCommand(bookingListCmd(opts), bookingCreateCmd(opts), bookingShowCmd(opts))
	return cmd
}

func bookingListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			bookings, err := svc.ListBookings(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bookings) == 0 {
				fmt.Fprintln(out, "No bookings yet.")
				return nil
			}
			fmt.Fprintf(out, "%-20s  %-24s  %-8s  %-20s  %14s  %14s  %-5s\n",
				"Booking", "Project", "House", "Customer", "Total", "Pending", "State")
			for _, b := range bookings {
				fmt.Fprintf(out, "%-20s  %-24s  %-8s  %-20s  %14s  %14s  %-5s\n",
					b.BookingCode, b.ProjectName, b.HouseNumber, b.CustomerName,
					opts.amount(b.TotalAmount), opts.amount(b.PendingAmount), b.State)
			}
			return nil
		},
	}
}

func bookingCreateCmd(opts *options) *cobra.Command {
	var (
		in      booking.CreateBookingInput
		payType string
		advance string
		date    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book an available house",
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(advance)
			if err != nil {
				return fmt.Errorf("advance: %w", err)
			}
			in.Advance = amount
			in.PaymentType = models.PaymentType(payType)
			if date != "" {
				if in.BookingDate, err = models.ParseDate(date); err != nil {
					return fmt.Errorf("date: %w", err)
				}
			}

			svc, err := opts.service()
			if err != nil {
				return err
			}
			created, err := svc.CreateBooking(cmd.Context(), in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s / %s as %s (id %s)\n",
				created.ProjectName, created.HouseNumber, created.BookingCode, created.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Total %s, advance %s, pending %s\n",
				opts.amount(created.TotalAmount), opts.amount(created.AdvancePayment), opts.amount(created.PendingAmount))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.ProjectID, "project", "", "project id")
	f.StringVar(&in.HouseNumber, "house", "", "house number, e.g. A-101")
	f.StringVar(&in.CustomerName, "customer", "", "customer name")
	f.StringVar(&in.MobileNo, "mobile", "", "10 digit mobile number")
	f.StringVar(&payType, "payment-type", string(models.PaymentTypeCash), "cash or bank")
	f.StringVar(&advance, "advance", "", "advance payment in rupees")
	f.StringVar(&date, "date", "", "booking date (YYYY-MM-DD, defaults to today)")
	for _, name := range []string{"project", "house", "customer", "mobile", "advance"} {
		cmd.MarkFlagRequired(name)
	}
	return cmd
}

func bookingShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <booking id or code>",
		Short: "Show a booking with its payments and running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			history, err := svc.LoadBookingWithHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), opts, history)
			return nil
		},
	}
}

func printHistory(out io.Writer, opts *options, h *booking.History) {
	b := h.Booking
	fmt.Fprintf(out, "Booking   %s (%s)\n", b.BookingCode, b.ID)
	fmt.Fprintf(out, "House     %s / %s\n", b.ProjectName, b.HouseNumber)
	fmt.Fprintf(out, "Customer  %s, %s\n", b.CustomerName, b.MobileNo)
	fmt.Fprintf(out, "Booked    %s, paid by %s\n", b.BookingDate, b.PaymentType)
	fmt.Fprintf(out, "Total     %s\n", opts.amount(b.TotalAmount))
	fmt.Fprintf(out, "Advance   %s\n", opts.amount(b.AdvancePayment))
	fmt.Fprintln(out)

	if len(h.Rows) == 0 {
		fmt.Fprintln(out, "No payments recorded.")
	} else {
		fmt.Fprintf(out, "%-10s  %-7s  %14s  %14s\n", "Date", "Method", "Amount", "Pending after")
		for _, r := range h.Rows {
			fmt.Fprintf(out, "%-10s  %-7s  %14s  %14s\n",
				r.Payment.PaymentReceivedDate, r.Payment.PaymentMethod,
				opts.amount(r.Payment.AmountReceived), opts.amount(r.PendingAfter))
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Pending   %s  [%s]\n", opts.amount(h.Pending), h.State)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

func (s *Shell) generateBill(ctx context.Context) error {
	s.println("\n=== GENERATE BILL ===")
	if n, err := s.printStock(ctx); err != nil || n == 0 {
		return err
	}

	var customer domain.Customer
	var err error
	if customer.Name, err = s.prompt("Customer name (blank to cancel): "); err != nil {
		return err
	}
	if customer.Name == "" {
		s.println("Cancelled.")
		return nil
	}
	if customer.Phone, err = s.prompt("Customer Phone No. (optional): "); err != nil {
		return err
	}
	if customer.Address, err = s.prompt("Customer Address (optional): "); err != nil {
		return err
	}

	raw, err := s.prompt("Enter item ID('s) to add to bill (blank to cancel): ")
	if err != nil {
		return err
	}
	if raw == "" {
		s.println("Cancelled.")
		return nil
	}
	ids, err := parseIDs(raw)
	if err != nil {
		s.printf("%s\n", err)
		return nil
	}

	draft := s.svc.Billing.NewDraft(s.account)
	shown := 0
	showSkips := func() {
		for _, skip := range draft.Skipped()[shown:] {
			s.printf("Item %d skipped: %s\n", skip.ID, skip.Reason)
		}
		shown = len(draft.Skipped())
	}

	err = s.svc.Billing.SelectItems(ctx, draft, ids)
	showSkips()
	if errors.Is(err, service.ErrNothingSelected) {
		s.println("No valid items selected.")
		return nil
	}
	if err != nil {
		return err
	}

	quantities := make(map[int64]int, len(draft.Candidates()))
	for _, item := range draft.Candidates() {
		s.printf("Selected: %s, Available: %d, Price: %s, GST%%: %s\n",
			item.Name, item.Quantity, money(item.Price), item.GSTPercent)
		raw, err := s.prompt(fmt.Sprintf("Enter quantity for %s: ", item.Name))
		if err != nil {
			return err
		}
		qty, convErr := strconv.Atoi(raw)
		if convErr != nil {
			continue
		}
		quantities[item.ID] = qty
	}

	err = s.svc.Billing.SetQuantities(draft, quantities)
	showSkips()
	if errors.Is(err, service.ErrNothingToBill) {
		s.println("Nothing to bill.")
		return nil
	}
	if err != nil {
		return err
	}
	s.printf("Total Price : %s\n", money(draft.Subtotal()))

	for {
		raw, err := s.prompt("Enter Discount% if any (0-100): ")
		if err != nil {
			return err
		}
		pct := decimal.Zero
		if raw != "" {
			if pct, err = decimal.NewFromString(raw); err != nil {
				s.println("Enter a valid number for discount.")
				continue
			}
		}
		err = s.svc.Billing.ApplyDiscount(draft, pct)
		if errors.Is(err, domain.ErrValidation) {
			s.println("Discount must be between 0 and 100.")
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	s.printBillPreview(draft)
	ok, err := s.confirm("Save this bill")
	if err != nil {
		return err
	}
	if !ok {
		s.println("Bill discarded.")
		return nil
	}

	res, err := s.svc.Billing.Commit(ctx, draft, customer)
	switch {
	case errors.Is(err, domain.ErrConcurrentStockChange):
		s.printf("Stock changed while billing, nothing was saved: %s\n", err)
		return nil
	case errors.Is(err, domain.ErrValidation):
		s.printf("%s\n", err)
		return nil
	case err != nil:
		return err
	}

	s.printf("Bill %s saved.\n", res.Bill.ID)
	for _, p := range res.ReceiptPaths {
		s.printf("Receipt: %s\n", p)
	}
	s.println("Bill saved to history CSV.")
	return nil
}

func (s *Shell) printBillPreview(d *service.Draft) {
	s.println()
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Item\tQty\tPrice\tBase\tDiscounted\tGST%\tGST\tFinal\t")
	for _, l := range d.Lines() {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			l.Name, l.Quantity, money(l.Price), money(l.Base), money(l.DiscountedBase),
			l.GSTPercent, money(l.GSTAmount), money(l.Final))
	}
	w.Flush()

	t := d.Totals()
	s.printf("Total Price      : %s\n", money(t.TotalBase))
	s.printf("Discount%%        : %s\n", d.DiscountPercent())
	s.printf("Discounted Price : %s\n", money(t.TotalDiscounted))
	s.printf("GST Amount       : %s\n", money(t.TotalGST))
	s.printf("Final Price      : %s\n", money(t.FinalTotal))
}

func (s *Shell) searchBills(context.Context) error {
	s.println("\n=== SEARCH CUSTOMER BILLS ===")
	names, err := s.svc.Receipts.List(s.account.Username)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		s.println("No bills found.")
		return nil
	}

	s.println("\nAvailable Bills:")
	for i, name := range names {
		s.printf("%d. %s\n", i+1, name)
	}
	raw, err := s.prompt("\nSelect bill number (blank to cancel): ")
	if err != nil || raw == "" {
		return err
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil || n < 1 || n > len(names) {
		s.println("Invalid selection.")
		return nil
	}

	content, err := s.svc.Receipts.Read(s.account.Username, names[n-1])
	if err != nil {
		return err
	}
	s.println("\n" + strings.Repeat("=", 90))
	s.printf("%s", content)
	return nil
}

func (s *Shell) salesHistory(ctx context.Context) error {
	s.println("\n=== SALES HISTORY ===")
	report, err := s.svc.History.Report(ctx, s.account)
	if err != nil {
		return err
	}
	if report.BillCount == 0 {
		s.println("No sales history yet.")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "S No.\tDate\tCustomer\tSupplier Cost\tFinal Price\tDiscount%\tProfit/Loss")
	for i, bill := range report.Bills {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, bill.BillDate, bill.CustomerName, money(bill.SupplierCost), money(bill.FinalPrice),
			money(bill.DiscountPercent), signed(bill.Profit))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s.println("\n" + strings.Repeat("-", 120))
	s.printf("Total Sales : Rs %s\n", money(report.TotalSales))
	s.printf("Total Cost  : Rs %s\n", money(report.TotalCost))
	s.printf("Total GST   : Rs %s\n", money(report.TotalGST))
	switch report.NetOutcome {
	case domain.OutcomeProfit:
		s.printf("Profit/Loss : Net Profit of Rs %s\n", money(report.NetTotal))
	case domain.OutcomeLoss:
		s.printf("Profit/Loss : Loss of Rs %s\n", money(report.NetTotal.Abs()))
	default:
		s.println("Profit/Loss : No Profit or Loss")
	}
	return nil
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + money(d)
	}
	return money(d)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

func (s *Shell) addSupplier(ctx context.Context) error {
	s.println("\n=== ADD SUPPLIER ===")
	name, err := s.prompt("Supplier Name (blank to cancel): ")
	if err != nil {
		return err
	}
	if name == "" {
		s.println("Cancelled.")
		return nil
	}

	var phone string
	for {
		raw, err := s.prompt("Supplier Phone No.: ")
		if err != nil {
			return err
		}
		if phone, err = domain.NormalizePhone(raw); err == nil {
			break
		}
		s.println("Phone number must contain at least 10 digits. Try again.")
	}
	address, err := s.prompt("Supplier Address: ")
	if err != nil {
		return err
	}

	supplier, err := s.svc.Suppliers.AddSupplier(ctx, s.account.ID, service.SupplierInput{Name: name, Phone: phone, Address: address})
	switch {
	case err == nil:
		s.printf("Supplier added with ID %d.\n", supplier.ID)
	case errors.Is(err, domain.ErrDuplicate):
		s.printf("A supplier named %q already exists.\n", name)
	case errors.Is(err, domain.ErrValidation):
		s.printf("%s\n", err)
	default:
		return err
	}
	return nil
}

func (s *Shell) addStock(ctx context.Context) error {
	s.println("\n=== ADD STOCK ===")
	suppliers, err := s.svc.Suppliers.ListSuppliers(ctx, s.account.ID)
	if err != nil {
		return err
	}
	if len(suppliers) == 0 {
		s.println("No suppliers found. Please add a supplier first.")
		return nil
	}

	raw, err := s.prompt("How many different items to add? ")
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		s.println("Enter a positive number.")
		return nil
	}

	for i := range count {
		s.printf("\n--- Item %d/%d ---\n", i+1, count)
		input, ok, err := s.readStockInput(suppliers)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		item, created, err := s.svc.Stock.AddOrMergeStock(ctx, s.account.ID, input)
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
			s.printf("Skipped: %s\n", err)
			continue
		}
		if err != nil {
			return err
		}
		verb := "updated"
		if created {
			verb = "added"
		}
		s.printf("Item %s: %s x%d @ Rs.%s (ID %d, now %d in stock)\n",
			verb, item.Name, input.Quantity, money(item.Price), item.ID, item.Quantity)
	}
	return nil
}

// readStockInput collects one item. ok is false when the item is skipped.
func (s *Shell) readStockInput(suppliers []domain.Supplier) (input service.StockInput, ok bool, err error) {
	skip := func(msg string) (service.StockInput, bool, error) {
		s.println(msg)
		return service.StockInput{}, false, nil
	}

	name, err := s.prompt("Item name (blank to skip): ")
	if err != nil {
		return input, false, err
	}
	if domain.CleanItemName(name) == "" {
		return skip("Skipped.")
	}
	qtyRaw, err := s.prompt("Quantity: ")
	if err != nil {
		return input, false, err
	}
	qty, convErr := strconv.Atoi(qtyRaw)
	if convErr != nil || qty <= 0 {
		return skip("Quantity must be a positive whole number. Skipping.")
	}
	priceRaw, err := s.prompt("Price Rs.: ")
	if err != nil {
		return input, false, err
	}
	price, convErr := parseAmount("price", priceRaw)
	if convErr != nil || price.IsNegative() {
		return skip("Price must be a non-negative number. Skipping.")
	}
	gstRaw, err := s.prompt(fmt.Sprintf("Choose GST %% [%s]: ", domain.GSTSlabList()))
	if err != nil {
		return input, false, err
	}
	gst, convErr := domain.ParseGST(gstRaw)
	if convErr != nil {
		return skip("Invalid GST %. Skipping.")
	}

	s.println("\nSelect Supplier (mandatory):")
	for _, sup := range suppliers {
		s.printf("%d. %s\n", sup.ID, sup.Name)
	}
	supplierRaw, err := s.prompt("Supplier ID: ")
	if err != nil {
		return input, false, err
	}
	supplierID, convErr := strconv.ParseInt(supplierRaw, 10, 64)
	if convErr != nil {
		return skip("Skipped. A valid supplier is mandatory.")
	}
	supplierPriceRaw, err := s.prompt("Supplier Price Rs. (mandatory): ")
	if err != nil {
		return input, false, err
	}
	supplierPrice, convErr := parseAmount("supplier price", supplierPriceRaw)
	if convErr != nil || supplierPrice.IsNegative() {
		return skip("Skipped. Supplier price must be a non-negative number.")
	}

	return service.StockInput{
		SupplierID:    supplierID,
		Name:          name,
		Quantity:      qty,
		Price:         price,
		GSTPercent:    gst,
		SupplierPrice: supplierPrice,
	}, true, nil
}

func (s *Shell) viewStock(ctx context.Context) error {
	s.println("\n=== VIEW STOCK ===")
	_, err := s.printStock(ctx)
	return err
}

// printStock renders the owner's stock and reports how many rows it printed.
func (s *Shell) printStock(ctx context.Context) (int, error) {
	items, err := s.svc.Stock.ListStock(ctx, s.account.ID)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		s.println("No items in inventory.")
		return 0, nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "ID\tName\tQty\tPrice Rs.\tGST%\tSupplier\tSupplier Price Rs.\t")
	for _, item := range items {
		supplier := item.SupplierName
		if supplier == "" {
			supplier = "N/A"
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\t%s\t\n",
			item.ID, item.Name, item.Quantity, money(item.Price), money(item.GSTPercent), supplier, money(item.SupplierPrice))
	}
	return len(items), w.Flush()
}

func (s *Shell) viewSuppliers(ctx context.Context) error {
	s.println("\n=== SUPPLIERS ===")
	suppliers, err := s.svc.Suppliers.ListSuppliers(ctx, s.account.ID)
	if err != nil {
		return err
	}
	if len(suppliers) == 0 {
		s.println("No suppliers yet.")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tName\tPhone No.\tAddress")
	for _, sup := range suppliers {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", sup.ID, sup.Name, sup.Phone, sup.Address)
	}
	return w.Flush()
}

func (s *Shell) editItems(ctx context.Context) error {
	s.println("\n=== EDIT ITEMS ===")
	if n, err := s.printStock(ctx); err != nil || n == 0 {
		return err
	}

	raw, err := s.prompt("\nEnter ID('s) to edit (comma separated, blank to cancel): ")
	if err != nil || raw == "" {
		return err
	}
	ids, err := parseIDs(raw)
	if err != nil {
		s.println("Invalid input. Please enter numeric IDs separated by commas.")
		return nil
	}

	var edits []service.StockEdit
	for _, id := range ids {
		item, err := s.svc.Stock.GetStock(ctx, s.account.ID, id)
		if errors.Is(err, domain.ErrNotFound) {
			s.printf("ID %d not found. Skipping...\n", id)
			continue
		}
		if err != nil {
			return err
		}

		s.printf("\nEditing: %s (ID: %d)\n", item.Name, item.ID)
		s.printf("Current Qty: %d, Price: Rs.%s, GST%%: %s, Supplier Price: Rs.%s\n",
			item.Quantity, money(item.Price), item.GSTPercent, money(item.SupplierPrice))
		edit, ok, err := s.readEdit(id)
		if err != nil {
			return err
		}
		if ok {
			edits = append(edits, edit)
		}
	}

	plan, err := s.svc.Stock.PlanEdits(ctx, s.account.ID, edits)
	if err != nil {
		return err
	}
	for _, skip := range plan.Skipped {
		s.printf("ID %d skipped: %s\n", skip.ID, skip.Reason)
	}
	if len(plan.Changes) == 0 {
		s.println("No changes to apply.")
		return nil
	}

	s.println("\nSummary of changes:")
	for _, c := range plan.Changes {
		a := c.After
		s.printf("ID %d: %s -> Qty: %d, Price: Rs.%s, GST%%: %s, Supplier Price: Rs.%s\n",
			a.ID, a.Name, a.Quantity, money(a.Price), a.GSTPercent, money(a.SupplierPrice))
	}
	ok, err := s.confirm("\nConfirm update all items")
	if err != nil {
		return err
	}
	if !ok {
		s.println("Update cancelled for all items.")
		return nil
	}

	err = s.svc.Stock.ApplyEdits(ctx, plan)
	if errors.Is(err, domain.ErrConcurrentStockChange) {
		s.printf("Nothing was updated: %s\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	s.println("All changes applied successfully!")
	return nil
}

// readEdit reads the replacement values for one item. Blank keeps a value.
func (s *Shell) readEdit(id int64) (service.StockEdit, bool, error) {
	edit := service.StockEdit{ItemID: id}
	fields := []struct {
		label string
		set   func(raw string) error
	}{
		{"New Quantity (>=0, blank to keep): ", func(raw string) error {
			qty, err := strconv.Atoi(raw)
			if err != nil {
				return domain.Invalid("quantity must be a whole number")
			}
			edit.Quantity = &qty
			return nil
		}},
		{"New Price (>=0, blank to keep): ", func(raw string) error {
			return setDecimal(&edit.Price, "price", raw)
		}},
		{fmt.Sprintf("New GST%% [%s] (blank to keep): ", domain.GSTSlabList()), func(raw string) error {
			return setDecimal(&edit.GSTPercent, "gst", raw)
		}},
		{"New Supplier Price (>=0, blank to keep): ", func(raw string) error {
			return setDecimal(&edit.SupplierPrice, "supplier price", raw)
		}},
	}

	valid := true
	for _, f := range fields {
		raw, err := s.prompt(f.label)
		if err != nil {
			return edit, false, err
		}
		if raw == "" || !valid {
			continue
		}
		if err := f.set(raw); err != nil {
			s.printf("%s. Skipping this item.\n", err)
			valid = false
		}
	}
	return edit, valid, nil
}

func setDecimal(dst **decimal.Decimal, field, raw string) error {
	d, err := parseAmount(field, raw)
	if err != nil {
		return err
	}
	*dst = &d
	return nil
}

func (s *Shell) deleteItem(ctx context.Context) error {
	s.println("\n=== DELETE ITEM ===")
	if n, err := s.printStock(ctx); err != nil || n == 0 {
		return err
	}

	raw, err := s.prompt("\nEnter ID to delete (blank to cancel): ")
	if err != nil || raw == "" {
		return err
	}
	id, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil {
		s.println("Invalid ID.")
		return nil
	}
	item, err := s.svc.Stock.GetStock(ctx, s.account.ID, id)
	if errors.Is(err, domain.ErrNotFound) {
		s.printf("ID %d not found.\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	ok, err := s.confirm(fmt.Sprintf("Delete '%s'", item.Name))
	if err != nil {
		return err
	}
	if !ok {
		s.println("Cancelled.")
		return nil
	}
	if err := s.svc.Stock.DeleteStock(ctx, s.account.ID, id); err != nil {
		return err
	}
	s.println("Item deleted!")
	return nil
}

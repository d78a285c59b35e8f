package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/billid"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/ledger"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/receipt"
)

type recordingStorage struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (r *recordingStorage) UploadObject(_ context.Context, key string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return r.err
}

type failingReceipts struct{}

func (failingReceipts) Save(context.Context, string, *domain.BillRecord) ([]string, func() error, error) {
	return nil, nil, errors.New("disk full")
}

type billingFixture struct {
	*fixture
	dir     string
	book    *ledger.Book
	billing *BillingService
	archive *recordingStorage
}

func newBillingFixture(t *testing.T) *billingFixture {
	f := newFixture(t)
	dir := t.TempDir()
	book := ledger.NewBook(dir)
	archive := &recordingStorage{}
	return &billingFixture{
		fixture: f,
		dir:     dir,
		book:    book,
		archive: archive,
		billing: NewBillingService(f.store, book, receipt.NewStore(dir, nil), archive, billid.NewGenerator(fixedClock())),
	}
}

func (b *billingFixture) draft(t *testing.T, ids []int64, qty map[int64]int, discount string) *Draft {
	t.Helper()
	d := b.billing.NewDraft(b.owner)
	require.NoError(t, b.billing.SelectItems(context.Background(), d, ids))
	require.NoError(t, b.billing.SetQuantities(d, qty))
	require.NoError(t, b.billing.ApplyDiscount(d, dec(discount)))
	return d
}

func TestBillScenario(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	item := b.addItem(t, "Rice", 10, "100.00", "18", "70")

	d := b.draft(t, []int64{item.ID}, map[int64]int{item.ID: 2}, "10")
	assert.Equal(t, domain.BillComputing, d.State())
	assert.True(t, d.Subtotal().Equal(dec("200")))

	line := d.Lines()[0]
	assert.True(t, line.Base.Equal(dec("200.00")))
	assert.True(t, line.DiscountedBase.Equal(dec("180.00")))
	assert.True(t, line.GSTAmount.Equal(dec("32.40")))
	assert.True(t, line.Final.Equal(dec("212.40")))

	res, err := b.billing.Commit(ctx, d, domain.Customer{Name: " Meera Shah ", Phone: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, domain.BillCommitted, d.State())
	assert.Equal(t, "20240501103000000000", res.Bill.ID)
	assert.Equal(t, "Meera Shah", res.Bill.Customer.Name)
	assert.True(t, res.Bill.Totals.FinalTotal.Equal(dec("212.40")))

	got, err := b.stock.GetStock(ctx, b.owner.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	rows, err := b.book.ReadAll(ctx, b.owner.Username)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].FinalPrice.Equal(dec("212.40")))

	require.Len(t, res.ReceiptPaths, 1)
	assert.Equal(t, "Meera_20240501103000000000.txt", filepath.Base(res.ReceiptPaths[0]))
	assert.FileExists(t, res.ReceiptPaths[0])

	assert.ElementsMatch(t, []string{
		"asha/bill_history.csv",
		"asha/receipts/Meera_20240501103000000000.txt",
	}, b.archive.keys)
}

func TestBillTotalsReconcile(t *testing.T) {
	b := newBillingFixture(t)
	a := b.addItem(t, "Ghee", 10, "550.55", "12", "400")
	c := b.addItem(t, "Saffron", 10, "333.33", "0.25", "250")
	e := b.addItem(t, "Tea", 10, "19.99", "28", "12")

	d := b.draft(t, []int64{a.ID, c.ID, e.ID}, map[int64]int{a.ID: 1, c.ID: 3, e.ID: 7}, "12.5")

	sum := dec("0")
	for _, l := range d.Lines() {
		sum = sum.Add(l.Final)
		assert.True(t, l.Final.Equal(l.DiscountedBase.Add(l.GSTAmount)))
		assert.True(t, l.DiscountPercent.Equal(dec("12.5")))
	}
	assert.True(t, sum.Equal(d.Totals().FinalTotal))
}

func TestSelectItemsSkips(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")
	empty := b.addItem(t, "Oil", 1, "100", "5", "80")
	require.NoError(t, b.stock.DecrementStock(ctx, b.owner.ID, empty.ID, 1))

	d := b.billing.NewDraft(b.owner)
	require.NoError(t, b.billing.SelectItems(ctx, d, []int64{rice.ID, 404, rice.ID, empty.ID}))

	require.Len(t, d.Candidates(), 1)
	assert.Equal(t, []domain.Skip{
		{ID: 404, Reason: SkipNotFound},
		{ID: rice.ID, Reason: SkipDuplicate},
		{ID: empty.ID, Reason: SkipOutOfStock},
	}, d.Skipped())

	empty2 := b.billing.NewDraft(b.owner)
	err := b.billing.SelectItems(ctx, empty2, []int64{404, 405})
	require.ErrorIs(t, err, ErrNothingSelected)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, domain.BillSelectingItems, empty2.State())
}

func TestSetQuantitiesSkips(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")
	oil := b.addItem(t, "Oil", 3, "150", "5", "120")
	tea := b.addItem(t, "Tea", 5, "40", "5", "30")
	salt := b.addItem(t, "Salt", 5, "20", "0", "15")

	d := b.billing.NewDraft(b.owner)
	require.NoError(t, b.billing.SelectItems(ctx, d, []int64{rice.ID, oil.ID, tea.ID, salt.ID}))
	require.NoError(t, b.billing.SetQuantities(d, map[int64]int{rice.ID: 10, oil.ID: 4, tea.ID: 0}))

	assert.Equal(t, domain.BillDiscountInput, d.State())
	assert.True(t, d.Subtotal().Equal(dec("1000")))
	require.Len(t, d.Skipped(), 3)
	assert.Equal(t, oil.ID, d.Skipped()[0].ID)
	assert.Equal(t, "only 3 in stock", d.Skipped()[0].Reason)
	assert.Equal(t, salt.ID, d.Skipped()[2].ID)
	assert.Equal(t, SkipMissingQuantity, d.Skipped()[2].Reason)

	d2 := b.billing.NewDraft(b.owner)
	require.NoError(t, b.billing.SelectItems(ctx, d2, []int64{oil.ID}))
	assert.ErrorIs(t, b.billing.SetQuantities(d2, map[int64]int{oil.ID: 99}), ErrNothingToBill)
}

func TestApplyDiscountValidation(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")

	d := b.billing.NewDraft(b.owner)
	require.NoError(t, b.billing.SelectItems(ctx, d, []int64{rice.ID}))
	require.NoError(t, b.billing.SetQuantities(d, map[int64]int{rice.ID: 1}))

	assert.ErrorIs(t, b.billing.ApplyDiscount(d, dec("101")), domain.ErrValidation)
	assert.Equal(t, domain.BillDiscountInput, d.State())

	require.NoError(t, b.billing.ApplyDiscount(d, dec("100")))
	assert.True(t, d.Totals().FinalTotal.IsZero())
}

func TestStepsOutOfOrder(t *testing.T) {
	b := newBillingFixture(t)
	d := b.billing.NewDraft(b.owner)

	assert.ErrorIs(t, b.billing.SetQuantities(d, nil), ErrDraftState)
	assert.ErrorIs(t, b.billing.ApplyDiscount(d, dec("0")), ErrDraftState)
	_, err := b.billing.Commit(context.Background(), d, domain.Customer{Name: "x"})
	assert.ErrorIs(t, err, ErrDraftState)
}

func TestCommitConcurrentStockChange(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")
	oil := b.addItem(t, "Oil", 3, "150", "5", "120")

	d := b.draft(t, []int64{rice.ID, oil.ID}, map[int64]int{rice.ID: 2, oil.ID: 3}, "0")

	require.NoError(t, b.stock.DecrementStock(ctx, b.owner.ID, oil.ID, 1))

	_, err := b.billing.Commit(ctx, d, domain.Customer{Name: "Meera"})
	require.ErrorIs(t, err, domain.ErrConcurrentStockChange)
	assert.Equal(t, domain.BillComputing, d.State())

	got, err := b.stock.GetStock(ctx, b.owner.ID, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	rows, err := b.book.ReadAll(ctx, b.owner.Username)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, b.archive.keys)
}

func TestCommitRollsBackWhenReceiptFails(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")
	b.billing = NewBillingService(b.store, b.book, failingReceipts{}, nil, nil)

	_, err := b.book.Append(ctx, b.owner.Username, &domain.BillRecord{ID: "earlier", Lines: []domain.BillLine{{Name: "x", Quantity: 1}}})
	require.NoError(t, err)
	before, err := os.ReadFile(b.book.Path(b.owner.Username))
	require.NoError(t, err)

	d := b.draft(t, []int64{rice.ID}, map[int64]int{rice.ID: 2}, "0")
	_, err = b.billing.Commit(ctx, d, domain.Customer{Name: "Meera"})
	require.Error(t, err)

	got, err := b.stock.GetStock(ctx, b.owner.ID, rice.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	after, err := os.ReadFile(b.book.Path(b.owner.Username))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCommitRequiresCustomerName(t *testing.T) {
	b := newBillingFixture(t)
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")
	d := b.draft(t, []int64{rice.ID}, map[int64]int{rice.ID: 1}, "0")

	_, err := b.billing.Commit(context.Background(), d, domain.Customer{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBillIDsIncrease(t *testing.T) {
	b := newBillingFixture(t)
	ctx := context.Background()
	rice := b.addItem(t, "Rice", 10, "100", "5", "80")

	var ids []string
	for range 3 {
		d := b.draft(t, []int64{rice.ID}, map[int64]int{rice.ID: 1}, "0")
		res, err := b.billing.Commit(ctx, d, domain.Customer{Name: "Meera"})
		require.NoError(t, err)
		ids = append(ids, res.Bill.ID)
	}
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	names, err := receipt.NewStore(b.dir, nil).List(b.owner.Username)
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

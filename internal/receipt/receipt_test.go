package receipt

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func bill(id, customer string) *domain.BillRecord {
	return &domain.BillRecord{
		ID:              id,
		Date:            time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Customer:        domain.Customer{Name: customer, Phone: "9876543210"},
		DiscountPercent: dec("10"),
		Lines: []domain.BillLine{{
			ItemID: 1, Name: "Rice", Quantity: 2, Price: dec("100"), Base: dec("200"),
			DiscountedBase: dec("180"), GSTPercent: dec("18"), GSTAmount: dec("32.40"), Final: dec("212.40"),
		}},
		Totals: domain.BillTotals{
			TotalBase: dec("200"), TotalDiscounted: dec("180"), TotalGST: dec("32.40"), FinalTotal: dec("212.40"),
		},
	}
}

func TestSafeFirstName(t *testing.T) {
	assert.Equal(t, "Meera", SafeFirstName("  Meera Shah "))
	assert.Equal(t, "OBrien", SafeFirstName("O'Brien"))
	assert.Equal(t, "customer", SafeFirstName("../.."))
	assert.Equal(t, "customer", SafeFirstName(""))
	assert.Equal(t, "Мира", SafeFirstName("Мира Шах"))
	assert.Equal(t, "JoséLuis", SafeFirstName("José-Luis García"))
}

func TestSaveKeepsUnicodeFirstName(t *testing.T) {
	store := NewStore(t.TempDir(), nil)

	paths, _, err := store.Save(context.Background(), "asha", bill("20240501103000000002", "Мира Шах"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "Мира_20240501103000000002.txt", filepath.Base(paths[0]))

	names, err := store.List("asha")
	require.NoError(t, err)
	assert.Equal(t, []string{"Мира_20240501103000000002.txt"}, names)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, bill("20240501103000000001", "Meera Shah")))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "INVENTORY BILL\n"+strings.Repeat("=", 90)+"\n"))
	assert.Contains(t, out, "Bill ID   : 20240501103000000001")
	assert.Contains(t, out, "Rice x 2 @ Rs. 100.00 = Rs. 200.00 (After discount: 180.00, GST 18%: 32.40)")
	assert.Contains(t, out, "Discount% : 10%")
	assert.Contains(t, out, "Final Price (with GST) : Rs. 212.40")
}

func TestSaveListReadAndUndo(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()

	paths, _, err := store.Save(ctx, "asha", bill("20240501103000000001", "Meera Shah"))
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "Meera_20240501103000000001.txt", filepath.Base(paths[0]))

	_, undo, err := store.Save(ctx, "asha", bill("20240501103000000002", "Arjun"))
	require.NoError(t, err)

	names, err := store.List("asha")
	require.NoError(t, err)
	assert.Equal(t, []string{"Arjun_20240501103000000002.txt", "Meera_20240501103000000001.txt"}, names)

	content, err := store.Read("asha", "../asha/"+names[1])
	require.NoError(t, err)
	assert.Contains(t, content, "Customer Name : Meera Shah")

	require.NoError(t, undo())
	names, err = store.List("asha")
	require.NoError(t, err)
	assert.Len(t, names, 1)

	_, err = store.Read("asha", "Arjun_20240501103000000002.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.Read("asha", "bill_history.csv")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSaveRefusesOverwrite(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()
	b := bill("20240501103000000001", "Meera")

	_, _, err := store.Save(ctx, "asha", b)
	require.NoError(t, err)
	_, _, err = store.Save(ctx, "asha", b)
	require.Error(t, err)
}

func TestSavePDF(t *testing.T) {
	formats, err := ParseFormats([]string{"txt", "PDF"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatText, FormatPDF}, formats)

	store := NewStore(t.TempDir(), formats)
	paths, _, err := store.Save(context.Background(), "asha", bill("20240501103000000001", "Meera"))
	require.NoError(t, err)
	require.Len(t, paths, 2)

	raw, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))

	_, err = ParseFormats([]string{"docx"})
	assert.Error(t, err)
}

func TestListMissingDir(t *testing.T) {
	names, err := NewStore(t.TempDir(), nil).List("nobody")
	require.NoError(t, err)
	assert.Empty(t, names)
}

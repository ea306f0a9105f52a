package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/cart"
	"retailpos/internal/dto"
	"retailpos/internal/model"
	"retailpos/internal/service"
)

type fixture struct {
	products  *stubProductRepo
	customers *stubCustomerRepo
	batches   *stubBatchRepo
	invoices  *stubInvoiceRepo

	sessions  service.SessionService
	carts     service.CartService
	checkout  service.CheckoutService
	sessionID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		products:  newStubProductRepo(),
		customers: newStubCustomerRepo(),
		batches:   newStubBatchRepo(),
		invoices:  newStubInvoiceRepo(),
	}
	f.sessions = service.NewSessionService(nil, time.Hour, decimal.Zero)
	f.carts = service.NewCartService(f.sessions, f.products, f.customers, f.batches)
	f.checkout = service.NewCheckoutService(f.sessions, f.invoices, f.products, f.batches, nil)
	f.sessionID = f.sessions.Open()
	return f
}

func strPtr(s string) *string { return &s }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) seedProduct(t *testing.T, name string, price string) *model.Product {
	t.Helper()
	return f.products.add(&model.Product{
		Barcode:   "bar-" + name,
		Name:      name,
		Price:     dec(price),
		UnitLabel: "pcs",
		UnitType:  "unit",
	})
}

func (f *fixture) addToCart(t *testing.T, productID uuid.UUID, qty string) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), f.sessionID, dto.AddItemRequest{
		ProductID: strPtr(productID.String()),
		Quantity:  qty,
	})
	require.NoError(t, err)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("100")})
	require.ErrorIs(t, err, service.ErrEmptyCart)
}

func TestCheckoutFullPayment(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Rice", "100")
	f.addToCart(t, p.ID, "2")

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("200")})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.InvoiceNumber)
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, "cash", resp.PaymentMethod)
	assert.Equal(t, "200", resp.AmountPaid.String())
	assert.Equal(t, "0", resp.AmountDue.String())
	assert.Equal(t, "200", resp.Total.String())

	// Sale is recorded with its line and payment
	invID, err := uuid.Parse(resp.InvoiceID)
	require.NoError(t, err)
	inv, err := f.invoices.FindByID(context.Background(), invID)
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Rice", inv.Items[0].Name)
	require.Len(t, inv.Payments, 1)
	assert.Equal(t, "cash", inv.Payments[0].Method)

	// Cart is cleared after checkout
	snap, err := f.carts.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
}

func TestCheckoutPartialPayment(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Sugar", "50")
	f.addToCart(t, p.ID, "4")

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{UPI: dec("120")})
	require.NoError(t, err)

	assert.Equal(t, "partial", resp.Status)
	assert.Equal(t, "upi", resp.PaymentMethod)
	assert.Equal(t, "120", resp.AmountPaid.String())
	assert.Equal(t, "80", resp.AmountDue.String())
}

func TestCheckoutOverpaymentRejected(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Salt", "20")
	f.addToCart(t, p.ID, "1")

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{
		Cash: dec("20"), Card: dec("10"),
	})
	require.ErrorIs(t, err, cart.ErrOverpayment)

	// The cart must survive a rejected settlement untouched.
	snap, err := f.carts.Get(context.Background(), f.sessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Items, 1)
}

func TestCheckoutSplitTender(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Oil", "150")
	f.addToCart(t, p.ID, "2")

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{
		Cash: dec("100"), UPI: dec("150"), Card: dec("50"),
	})
	require.NoError(t, err)
	assert.Equal(t, "split", resp.PaymentMethod)
	assert.Equal(t, "paid", resp.Status)

	invID, _ := uuid.Parse(resp.InvoiceID)
	inv, err := f.invoices.FindByID(context.Background(), invID)
	require.NoError(t, err)
	assert.Len(t, inv.Payments, 3)
}

func TestCheckoutToleranceAbsorbsPenny(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Tea", "99.99")
	f.addToCart(t, p.ID, "1")

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("100")})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.Equal(t, "0", resp.AmountDue.String())
}

func TestCheckoutDecrementsUnitStock(t *testing.T) {
	f := newFixture(t)
	stock := int64(10)
	p := f.products.add(&model.Product{
		Barcode: "b1", Name: "Soap", Price: dec("30"),
		Stock: &stock, UnitLabel: "pcs", UnitType: "unit",
	})
	f.addToCart(t, p.ID, "3")

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("90")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.products.unitDecrements[p.ID])
}

func TestCheckoutDecrementsWeightStock(t *testing.T) {
	f := newFixture(t)
	bulk := dec("25")
	perKg := dec("180")
	p := f.products.add(&model.Product{
		Barcode: "b2", Name: "Loose Rice", Price: dec("180"),
		PricePerUnit: &perKg, StockByWeight: &bulk,
		UnitLabel: "kg", UnitType: "weight",
	})
	f.addToCart(t, p.ID, "2.5")

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("450")})
	require.NoError(t, err)
	assert.Equal(t, "2.5", f.products.weightDecrements[p.ID].String())
	assert.True(t, f.products.unitDecrements[p.ID] == 0)
}

func TestCheckoutDecrementsLengthStock(t *testing.T) {
	f := newFixture(t)
	stock := int64(10)
	p := f.products.add(&model.Product{
		Barcode: "b3", Name: "Nylon Rope", Price: dec("30"),
		Stock:     &stock,
		UnitLabel: "m", UnitType: "length",
	})

	// Limit check and consumption use the same discrete figure
	_, err := f.carts.AddItem(context.Background(), f.sessionID, dto.AddItemRequest{
		ProductID: strPtr(p.ID.String()),
		Quantity:  "12",
	})
	var stockErr *cart.StockLimitError
	require.ErrorAs(t, err, &stockErr)

	f.addToCart(t, p.ID, "2")
	_, err = f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("60")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.products.unitDecrements[p.ID])
	assert.True(t, f.products.weightDecrements[p.ID].IsZero())
}

func TestCheckoutRoundsFractionalLengthUp(t *testing.T) {
	f := newFixture(t)
	stock := int64(10)
	p := f.products.add(&model.Product{
		Barcode: "b4", Name: "Ribbon", Price: dec("20"),
		Stock:     &stock,
		UnitLabel: "m", UnitType: "length",
	})
	f.addToCart(t, p.ID, "2.5")

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("50")})
	require.NoError(t, err)
	assert.EqualValues(t, 3, f.products.unitDecrements[p.ID])
}

func TestCheckoutConsumesPinnedBatch(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Flour", "60")
	older := f.batches.add(&model.StockBatch{ProductID: p.ID, Quantity: dec("50"), CreatedAt: time.Now().Add(-48 * time.Hour)})
	newer := f.batches.add(&model.StockBatch{ProductID: p.ID, Quantity: dec("50"), CreatedAt: time.Now()})

	_, err := f.carts.AddItem(context.Background(), f.sessionID, dto.AddItemRequest{
		ProductID: strPtr(p.ID.String()),
		BatchID:   strPtr(newer.ID.String()),
		Quantity:  "5",
	})
	require.NoError(t, err)

	_, err = f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("300")})
	require.NoError(t, err)

	assert.Equal(t, "5", f.batches.consumed[newer.ID].String())
	assert.True(t, f.batches.consumed[older.ID].IsZero())
}

func TestCheckoutConsumesOldestBatchWhenUnpinned(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Dal", "90")
	older := f.batches.add(&model.StockBatch{ProductID: p.ID, Quantity: dec("20"), CreatedAt: time.Now().Add(-72 * time.Hour)})
	f.batches.add(&model.StockBatch{ProductID: p.ID, Quantity: dec("20"), CreatedAt: time.Now()})
	f.addToCart(t, p.ID, "4")

	_, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("360")})
	require.NoError(t, err)
	assert.Equal(t, "4", f.batches.consumed[older.ID].String())
}

func TestCheckoutRecordsCustomer(t *testing.T) {
	f := newFixture(t)
	customer := f.customers.add(&model.Customer{Name: "Asha", Phone: "9990001111"})
	p := f.seedProduct(t, "Ghee", "500")
	f.addToCart(t, p.ID, "1")

	_, err := f.carts.SetCustomer(context.Background(), f.sessionID, dto.SetCustomerRequest{
		CustomerID: strPtr(customer.ID.String()),
	})
	require.NoError(t, err)

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("500")})
	require.NoError(t, err)

	invID, _ := uuid.Parse(resp.InvoiceID)
	inv, err := f.invoices.FindByID(context.Background(), invID)
	require.NoError(t, err)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, customer.ID, *inv.CustomerID)
	assert.Equal(t, "Asha", inv.CustomerName)
}

func TestCheckoutCarriesDiscountAndTax(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Biscuits", "100")
	f.addToCart(t, p.ID, "10")

	ctx := context.Background()
	_, err := f.carts.SetDiscount(ctx, f.sessionID, dto.SetDiscountRequest{Value: dec("10"), Type: "percentage"})
	require.NoError(t, err)
	_, err = f.carts.SetTaxRate(ctx, f.sessionID, dto.SetTaxRateRequest{Rate: dec("5")})
	require.NoError(t, err)

	// 1000 → 900 after 10% discount → 45 tax → 945 total
	resp, err := f.checkout.Checkout(ctx, f.sessionID, dto.CheckoutRequest{Card: dec("945")})
	require.NoError(t, err)
	assert.Equal(t, "945", resp.Total.String())

	invID, _ := uuid.Parse(resp.InvoiceID)
	inv, _ := f.invoices.FindByID(ctx, invID)
	assert.Equal(t, "1000", inv.Subtotal.String())
	assert.Equal(t, "900", inv.DiscountedSubtotal.String())
	assert.Equal(t, "45", inv.TaxTotal.String())
	assert.Equal(t, "paid", inv.Status)
}

func TestCheckoutSequentialInvoiceNumbers(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "Bread", "40")

	for want := 1; want <= 3; want++ {
		f.addToCart(t, p.ID, "1")
		resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("40")})
		require.NoError(t, err)
		assert.Equal(t, want, resp.InvoiceNumber)
	}
}

func TestCheckoutManualLineTouchesNoStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.carts.AddItem(context.Background(), f.sessionID, dto.AddItemRequest{
		Manual:   &dto.ManualItemRequest{Name: "Loose candy", Price: dec("15")},
		Quantity: "2",
	})
	require.NoError(t, err)

	resp, err := f.checkout.Checkout(context.Background(), f.sessionID, dto.CheckoutRequest{Cash: dec("30")})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	assert.Empty(t, f.products.unitDecrements)
	assert.Empty(t, f.batches.consumed)

	invID, _ := uuid.Parse(resp.InvoiceID)
	inv, _ := f.invoices.FindByID(context.Background(), invID)
	require.Len(t, inv.Items, 1)
	assert.Nil(t, inv.Items[0].ProductID)
}

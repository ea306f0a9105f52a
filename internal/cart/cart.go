// Package cart implements the POS cart pricing and unit-reconciliation
// engine: line-item mutations, unit conversion anchored to the original
// unit, cart-level discount/tax, and derived totals.
//
// The cart is the single source of truth for derived totals — every surface
// (cart panel, payment dialog, receipt) reads Totals()/Snapshot() rather than
// recomputing the discount/tax formula.
//
// All operations are synchronous and total: invalid numeric input is handled
// by clamping or falling back, never by panicking. The only distinguishable
// failure is the stock-limit check on AddItem, reported as *StockLimitError.
package cart

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType selects how the cart-level discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

// ProductInfo is the resolved catalog record callers pass into AddItem.
// The engine never fetches products itself.
type ProductInfo struct {
	ID   uuid.UUID
	Name string
	// Price is the flat unit price in the base unit.
	Price decimal.Decimal
	// PricePerUnit, when set, overrides Price for weight/volume products
	// (price per kg / per L).
	PricePerUnit *decimal.Decimal
	// Stock is the discrete stock count; nil = unlimited.
	Stock *int64
	// StockByWeight is the bulk stock figure for weight/volume products;
	// nil or zero = unlimited.
	StockByWeight *decimal.Decimal
	UnitLabel     string
	UnitType      UnitType
}

// VariantInfo is a selected product variant. A variant price overrides the
// product price.
type VariantInfo struct {
	ID    uuid.UUID
	Name  string
	Price *decimal.Decimal
}

// ManualEntry is a fully manual ("forgotten item") line carrying its own
// name, price, and unit inline.
type ManualEntry struct {
	Name      string
	Price     decimal.Decimal
	UnitLabel string
}

// CustomerRef is the customer selected on the cart; absence means walk-in.
type CustomerRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone,omitempty"`
}

// LineItem is one row in the cart. Quantity and Price are always denominated
// in the base unit (the unit the price is defined in); ConvertedQuantity /
// ConvertedUnitLabel hold what the user last edited and what the UI shows.
type LineItem struct {
	Source      Source     `json:"source"`
	BatchID     *uuid.UUID `json:"batch_id,omitempty"` // nil = auto (oldest batch)
	VariantName string     `json:"variant_name,omitempty"`

	Quantity decimal.Decimal `json:"quantity"` // base unit, always > 0
	Price    decimal.Decimal `json:"price"`    // per base unit, override-able
	// OriginalPrice is the resolved price at add time; invalid price edits
	// fall back to it.
	OriginalPrice decimal.Decimal `json:"original_price"`

	UnitLabel string   `json:"unit_label"`
	UnitType  UnitType `json:"unit_type"`

	// Conversion anchor: the quantity/unit the line was first added with.
	// Every unit conversion is computed fresh from this pair so repeated
	// conversions cannot accumulate rounding drift.
	OriginalQuantity  decimal.Decimal `json:"original_quantity"`
	OriginalUnitLabel string          `json:"original_unit_label"`

	ConvertedQuantity  decimal.Decimal `json:"converted_quantity"`
	ConvertedUnitLabel string          `json:"converted_unit_label"`

	// Display caches, recomputed by the cart after every mutation.
	TotalPrice decimal.Decimal `json:"total_price"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
}

// DisplayName is the line's user-facing name, including the variant.
func (li *LineItem) DisplayName() string {
	if li.VariantName != "" {
		return li.Source.Name + " (" + li.VariantName + ")"
	}
	return li.Source.Name
}

// StockLimitError reports an AddItem rejected by the stock-limit check.
// It is recoverable: the cart is left unchanged and the caller renders the
// message with the offending available figure.
type StockLimitError struct {
	Name      string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *StockLimitError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s, available %s",
		e.Name, e.Requested.String(), e.Available.String())
}

// Totals are the derived monetary figures, recomputed from current state on
// every call — never cached, so they cannot drift from the line items.
type Totals struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	DiscountedSubtotal decimal.Decimal `json:"discounted_subtotal"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	Total              decimal.Decimal `json:"total"`
}

// Cart is the in-memory aggregate owning all line items plus the cart-level
// customer, discount, and tax rate. It is constructed per POS session and
// mutated by exactly one actor; it performs no I/O and never blocks.
type Cart struct {
	items         []*LineItem
	customer      *CustomerRef
	discountValue decimal.Decimal
	discountType  DiscountType
	taxRate       decimal.Decimal
}

// New returns an empty cart with a percentage discount of zero.
func New() *Cart {
	return &Cart{discountType: DiscountPercentage}
}

// ── Read side ────────────────────────────────────────────────────────────────

// Len returns the number of line items.
func (c *Cart) Len() int { return len(c.items) }

// Items returns copies of the line items in display (insertion) order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	for i, li := range c.items {
		out[i] = *li
	}
	return out
}

// Item returns a copy of the line at index, or false when out of range.
func (c *Cart) Item(index int) (LineItem, bool) {
	if index < 0 || index >= len(c.items) {
		return LineItem{}, false
	}
	return *c.items[index], true
}

// Customer returns the selected customer, nil for walk-in.
func (c *Cart) Customer() *CustomerRef { return c.customer }

// Discount returns the cart-level discount value and type.
func (c *Cart) Discount() (decimal.Decimal, DiscountType) {
	return c.discountValue, c.discountType
}

// TaxRate returns the cart-level tax percentage.
func (c *Cart) TaxRate() decimal.Decimal { return c.taxRate }

// Totals recomputes all derived figures from the current items, discount,
// and tax rate. Clamping to zero at both stages keeps over-large discounts
// from producing negative totals.
func (c *Cart) Totals() Totals {
	subtotal := decimal.Zero
	for _, li := range c.items {
		subtotal = subtotal.Add(li.Price.Mul(li.Quantity))
	}

	discountAmount := c.discountValue
	if c.discountType == DiscountPercentage {
		discountAmount = subtotal.Mul(c.discountValue).Div(hundred)
	}

	discounted := subtotal.Sub(discountAmount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	taxTotal := discounted.Mul(c.taxRate).Div(hundred)

	total := discounted.Add(taxTotal)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		DiscountedSubtotal: discounted,
		TaxTotal:           taxTotal,
		Total:              total,
	}
}

// ── AddItem ──────────────────────────────────────────────────────────────────

// AddItemInput carries either a resolved catalog product (plus optional
// variant and batch) or a manual entry, and the requested base-unit quantity.
type AddItemInput struct {
	Product  *ProductInfo
	Variant  *VariantInfo
	Manual   *ManualEntry
	Quantity decimal.Decimal
	BatchID  *uuid.UUID
}

// AddItem adds a catalog product or a manual entry to the cart.
//
// Catalog items merge into an existing line on same product+variant; manual
// items always create a new line. The stock-limit check is all-or-nothing:
// when the merged quantity would exceed available stock the whole operation
// is rejected with *StockLimitError and the cart is left unchanged.
func (c *Cart) AddItem(in AddItemInput) (*LineItem, error) {
	if !in.Quantity.IsPositive() {
		return nil, errors.New("quantity must be positive")
	}

	if in.Manual != nil {
		return c.addManual(*in.Manual, in.Quantity), nil
	}
	if in.Product == nil {
		return nil, errors.New("add item: product or manual entry required")
	}
	return c.addCatalog(in)
}

func (c *Cart) addManual(m ManualEntry, qty decimal.Decimal) *LineItem {
	unitLabel := m.UnitLabel
	if unitLabel == "" {
		unitLabel = "pcs"
	}
	li := &LineItem{
		Source:             ManualSource(m.Name),
		Quantity:           qty,
		Price:              m.Price,
		OriginalPrice:      m.Price,
		UnitLabel:          unitLabel,
		UnitType:           TypeOfUnit(unitLabel),
		OriginalQuantity:   qty,
		OriginalUnitLabel:  unitLabel,
		ConvertedQuantity:  qty,
		ConvertedUnitLabel: unitLabel,
	}
	c.items = append(c.items, li)
	c.refresh()
	return li
}

func (c *Cart) addCatalog(in AddItemInput) (*LineItem, error) {
	p := in.Product
	price := c.resolvePrice(p, in.Variant)

	var variantID *uuid.UUID
	variantName := ""
	if in.Variant != nil {
		id := in.Variant.ID
		variantID = &id
		variantName = in.Variant.Name
	}
	source := CatalogSource(p.ID, variantID, p.Name)

	existing := c.findMergeTarget(source)

	inCart := decimal.Zero
	if existing != nil {
		inCart = existing.Quantity
	}
	requestedTotal := inCart.Add(in.Quantity)

	if available, limited := availableStock(p); limited && requestedTotal.GreaterThan(available) {
		return nil, &StockLimitError{Name: p.Name, Requested: requestedTotal, Available: available}
	}

	if existing != nil {
		existing.Quantity = requestedTotal
		// Keep the displayed pair in step with the new base quantity.
		if conv, err := ConvertUnit(requestedTotal, existing.OriginalUnitLabel, existing.ConvertedUnitLabel); err == nil {
			existing.ConvertedQuantity = conv
		} else {
			existing.ConvertedQuantity = requestedTotal
			existing.ConvertedUnitLabel = existing.UnitLabel
		}
		c.refresh()
		return existing, nil
	}

	li := &LineItem{
		Source:             source,
		BatchID:            in.BatchID,
		VariantName:        variantName,
		Quantity:           in.Quantity,
		Price:              price,
		OriginalPrice:      price,
		UnitLabel:          p.UnitLabel,
		UnitType:           p.UnitType,
		OriginalQuantity:   in.Quantity,
		OriginalUnitLabel:  p.UnitLabel,
		ConvertedQuantity:  in.Quantity,
		ConvertedUnitLabel: p.UnitLabel,
	}
	c.items = append(c.items, li)
	c.refresh()
	return li, nil
}

// resolvePrice picks the effective unit price: variant price wins, then the
// configured price-per-base-unit for weight/volume products, then the flat
// product price.
func (c *Cart) resolvePrice(p *ProductInfo, v *VariantInfo) decimal.Decimal {
	if v != nil && v.Price != nil && v.Price.IsPositive() {
		return *v.Price
	}
	if p.UnitType.Convertible() && p.PricePerUnit != nil && p.PricePerUnit.IsPositive() {
		return *p.PricePerUnit
	}
	return p.Price
}

// availableStock returns the stock figure the limit check compares against
// and whether the product is limited at all. Weight/volume products use the
// bulk figure (nil or zero = unlimited); everything else uses the discrete
// count (nil = unlimited).
func availableStock(p *ProductInfo) (decimal.Decimal, bool) {
	if p.UnitType == UnitTypeWeight || p.UnitType == UnitTypeVolume {
		if p.StockByWeight == nil || p.StockByWeight.IsZero() {
			return decimal.Zero, false
		}
		return *p.StockByWeight, true
	}
	if p.Stock == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(*p.Stock), true
}

func (c *Cart) findMergeTarget(source Source) *LineItem {
	for _, li := range c.items {
		if li.Source.MergesWith(source) {
			return li
		}
	}
	return nil
}

// ── Line mutations ───────────────────────────────────────────────────────────

// RemoveItem removes the line at index; out-of-range indices are a no-op.
func (c *Cart) RemoveItem(index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	c.refresh()
}

// UpdateQuantity sets the base-unit quantity of the line at index. A value
// of zero or less removes the line. Stock is not re-validated here — the
// limit is enforced at AddItem time only.
func (c *Cart) UpdateQuantity(index int, qty decimal.Decimal) {
	if index < 0 || index >= len(c.items) {
		return
	}
	if !qty.IsPositive() {
		c.RemoveItem(index)
		return
	}
	li := c.items[index]
	li.Quantity = qty
	li.ConvertedQuantity = qty
	li.ConvertedUnitLabel = li.UnitLabel
	c.refresh()
}

// UpdateQuantityWithUnit re-expresses the line's quantity from a displayed
// unit (e.g. the customer asked for 250 g of an item priced per kg). The
// base quantity is always recomputed from the line's original anchor unit so
// chained conversions never drift. Lines whose unit type has no conversions
// degrade to a plain UpdateQuantity.
func (c *Cart) UpdateQuantityWithUnit(index int, displayedQty decimal.Decimal, displayedUnit string) error {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	li := c.items[index]

	if !li.UnitType.Convertible() {
		c.UpdateQuantity(index, displayedQty)
		return nil
	}

	anchorUnit := li.OriginalUnitLabel
	if anchorUnit == "" {
		anchorUnit = li.UnitLabel
	}
	if anchorUnit == "" {
		anchorUnit = "kg"
	}

	baseQty, err := ConvertUnit(displayedQty, displayedUnit, anchorUnit)
	if err != nil {
		return err
	}
	if !baseQty.IsPositive() {
		c.RemoveItem(index)
		return nil
	}

	li.Quantity = baseQty
	li.ConvertedQuantity = displayedQty
	li.ConvertedUnitLabel = displayedUnit
	c.refresh()
	return nil
}

// UpdatePrice overrides the line's unit price. A non-positive price falls
// back to the original product price — never to zero or a negative.
func (c *Cart) UpdatePrice(index int, price decimal.Decimal) {
	if index < 0 || index >= len(c.items) {
		return
	}
	li := c.items[index]
	if price.IsPositive() {
		li.Price = price
	} else {
		li.Price = li.OriginalPrice
	}
	c.refresh()
}

// UpdateBatchID selects the stock batch used for FIFO costing of the line;
// nil means auto (oldest batch with remaining quantity). Pure selection —
// no stock moves, no price change.
func (c *Cart) UpdateBatchID(index int, batchID *uuid.UUID) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items[index].BatchID = batchID
}

// ── Cart-level setters ───────────────────────────────────────────────────────

// SetDiscount sets the cart-level discount applied to the subtotal.
func (c *Cart) SetDiscount(value decimal.Decimal, dtype DiscountType) {
	c.discountValue = value
	c.discountType = dtype
}

// SetTaxRate sets the cart-level tax percentage applied uniformly to the
// discounted subtotal.
func (c *Cart) SetTaxRate(rate decimal.Decimal) {
	c.taxRate = rate
	c.refresh()
}

// SetCustomer selects the cart's customer; nil means walk-in.
func (c *Cart) SetCustomer(customer *CustomerRef) {
	c.customer = customer
}

// Clear resets the cart after checkout: items, customer, and discount go
// back to zero values. The tax rate is preserved — it is a store-level
// setting, not a per-sale one.
func (c *Cart) Clear() {
	c.items = nil
	c.customer = nil
	c.discountValue = decimal.Zero
	c.discountType = DiscountPercentage
}

// refresh recomputes the per-line display caches after a mutation. The
// authoritative totals come from Totals(); these caches only exist so each
// row can render its own total and tax share.
func (c *Cart) refresh() {
	for _, li := range c.items {
		li.TotalPrice = li.Price.Mul(li.Quantity)
		li.TaxAmount = li.TotalPrice.Mul(c.taxRate).Div(hundred)
	}
}

// ── Snapshot ─────────────────────────────────────────────────────────────────

// Snapshot is the read-only view handed to the checkout/invoice writer at
// finalization time. It shares no mutable state with the cart.
type Snapshot struct {
	Items         []LineItem      `json:"items"`
	Customer      *CustomerRef    `json:"customer,omitempty"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	DiscountType  DiscountType    `json:"discount_type"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Totals        Totals          `json:"totals"`
}

// Snapshot copies the current cart state and derived totals.
func (c *Cart) Snapshot() Snapshot {
	var customer *CustomerRef
	if c.customer != nil {
		cp := *c.customer
		customer = &cp
	}
	return Snapshot{
		Items:         c.Items(),
		Customer:      customer,
		DiscountValue: c.discountValue,
		DiscountType:  c.discountType,
		TaxRate:       c.taxRate,
		Totals:        c.Totals(),
	}
}

// Restore replaces the cart's entire state from a snapshot (resume of a held
// cart). The snapshot's cached figures are discarded and recomputed.
func (c *Cart) Restore(s Snapshot) {
	c.items = make([]*LineItem, len(s.Items))
	for i := range s.Items {
		li := s.Items[i]
		c.items[i] = &li
	}
	c.customer = s.Customer
	c.discountValue = s.DiscountValue
	c.discountType = s.DiscountType
	c.taxRate = s.TaxRate
	c.refresh()
}

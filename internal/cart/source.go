package cart

import "github.com/google/uuid"

// SourceKind tags where a line item came from.
type SourceKind string

const (
	// SourceCatalog lines reference a catalog product (and optionally a
	// variant). They merge with other lines of the same product+variant.
	SourceCatalog SourceKind = "catalog"
	// SourceManual lines carry their own name/price/unit inline ("forgotten
	// item" entries). They never merge, even when name and price match.
	SourceManual SourceKind = "manual"
)

// Source identifies the origin of a line item. Merge eligibility and display
// logic dispatch on Kind rather than sniffing synthetic id prefixes.
type Source struct {
	Kind      SourceKind `json:"kind"`
	ProductID uuid.UUID  `json:"product_id,omitempty"` // catalog only
	VariantID *uuid.UUID `json:"variant_id,omitempty"` // catalog only
	Name      string     `json:"name"`                 // manual display name; catalog product name
}

// CatalogSource builds the source for a catalog line.
func CatalogSource(productID uuid.UUID, variantID *uuid.UUID, name string) Source {
	return Source{Kind: SourceCatalog, ProductID: productID, VariantID: variantID, Name: name}
}

// ManualSource builds the source for a manually entered line.
func ManualSource(name string) Source {
	return Source{Kind: SourceManual, Name: name}
}

// MergesWith reports whether two sources address the same cart line.
// Manual lines never merge; catalog lines merge on same product and same
// variant (both absent counts as same).
func (s Source) MergesWith(other Source) bool {
	if s.Kind == SourceManual || other.Kind == SourceManual {
		return false
	}
	if s.ProductID != other.ProductID {
		return false
	}
	return uuidPtrEqual(s.VariantID, other.VariantID)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

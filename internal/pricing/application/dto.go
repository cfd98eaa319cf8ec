package application

// PriceQuoteDTO the unit price the storefront should charge.
type PriceQuoteDTO struct {
	ProductID  uint   `json:"product_id"`
	SKU        string `json:"sku"`
	MatchedSKU string `json:"matched_sku,omitempty"`
	Currency   string `json:"currency"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	// catalog or native
	Source string `json:"source"`
}

const (
	SourceCatalog = "catalog"
	SourceNative  = "native"
)

// LabeledPriceDTO a price shown next to a configurable label.
type LabeledPriceDTO struct {
	Label string `json:"label"`
	Price string `json:"price"`
}

// PriceRangeDTO low/high asks across variations.
type PriceRangeDTO struct {
	Low    string `json:"low"`
	High   string `json:"high"`
	Single bool   `json:"single"`
}

// TierRowDTO one line of the volume discount table.
type TierRowDTO struct {
	Quantity string `json:"quantity"`
	Check    string `json:"check"`
	Card     string `json:"card,omitempty"`
}

// TierTableDTO the volume discount table with its column labels.
type TierTableDTO struct {
	CheckLabel string       `json:"check_label"`
	CardLabel  string       `json:"card_label,omitempty"`
	Rows       []TierRowDTO `json:"rows"`
}

// RecordDetailsDTO catalog details for one matched SKU.
type RecordDetailsDTO struct {
	SKU      string           `json:"sku"`
	BuyPrice *LabeledPriceDTO `json:"buy_price,omitempty"`
	Tiers    *TierTableDTO    `json:"tiers,omitempty"`
}

// ProductDetailsDTO everything the product page shows from the catalog.
type ProductDetailsDTO struct {
	ProductID uint               `json:"product_id"`
	Currency  string             `json:"currency"`
	Source    string             `json:"source"`
	LowPrice  *LabeledPriceDTO   `json:"low_price,omitempty"`
	Range     *PriceRangeDTO     `json:"range,omitempty"`
	Records   []RecordDetailsDTO `json:"records,omitempty"`
}

// FeeDTO the checkout surcharge line.
type FeeDTO struct {
	Label           string `json:"label"`
	Amount          string `json:"amount"`
	Applied         bool   `json:"applied"`
	MatchedSubtotal string `json:"matched_subtotal"`
}

// ReindexResult counts from one reindex pass.
type ReindexResult struct {
	Scanned int `json:"scanned"`
	Matched int `json:"matched"`
	Updated int `json:"updated"`
}

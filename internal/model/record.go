package model

import "time"

// Record statuses. Transitions are one-directional:
// pendiente -> confirmado -> devuelto.
const (
	StatusPending   = "pendiente"
	StatusConfirmed = "confirmado"
	StatusReturned  = "devuelto"
)

// Attributes holds the structured product information extracted from
// captions and confirmation replies. JSON field names match the on-disk
// index format.
type Attributes struct {
	Sizes       []string `json:"tallas"`
	Color       string   `json:"color"`
	Brand       string   `json:"marca"`
	ProductType string   `json:"tipo"`
}

// Empty reports whether no attribute field is set.
func (a Attributes) Empty() bool {
	return len(a.Sizes) == 0 && a.Color == "" && a.Brand == "" && a.ProductType == ""
}

// Merge combines confirmation-derived attributes with the existing
// caption-derived ones. A field present on one side and absent on the
// other is kept; where both sides provide a value the fresher (argument)
// value wins.
func (a Attributes) Merge(fresh Attributes) Attributes {
	out := a
	if len(fresh.Sizes) > 0 {
		out.Sizes = fresh.Sizes
	}
	if fresh.Color != "" {
		out.Color = fresh.Color
	}
	if fresh.Brand != "" {
		out.Brand = fresh.Brand
	}
	if fresh.ProductType != "" {
		out.ProductType = fresh.ProductType
	}
	return out
}

// ReturnedItem is one line of an itemized (partial) return.
type ReturnedItem struct {
	Label    string `json:"producto"`
	Quantity int    `json:"cantidad"`
}

// Record is one tracked photo submission. Identified by (ChatID, MessageID),
// assigned at creation and never mutated. Confirmation and return stamps are
// each set exactly once, at their respective transitions.
type Record struct {
	ChatID    int64  `json:"-"`
	MessageID int    `json:"-"`

	File        string     `json:"archivo"`
	SubmittedBy string     `json:"usuario"`
	Group       string     `json:"grupo"`
	Date        string     `json:"fecha"`
	SubmittedAt time.Time  `json:"enviado_en"`
	Caption     string     `json:"descripcion,omitempty"`
	Status      string     `json:"estado"`
	Attributes  Attributes `json:"info"`

	ConfirmedBy      string     `json:"confirmado_por,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmado_en,omitempty"`
	ConfirmationText string     `json:"texto_confirmacion,omitempty"`

	ReturnedBy    string         `json:"devuelto_por,omitempty"`
	ReturnedAt    *time.Time     `json:"devuelto_en,omitempty"`
	ReturnedItems []ReturnedItem `json:"productos_devueltos,omitempty"`
}

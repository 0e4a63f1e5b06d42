package domain

import "github.com/rai/bot-order-bridge/modules/shared/types"

// Attribute is a value written to a numbered CRM custom-attribute slot.
type Attribute struct {
	ID    int64
	Value string
}

// DealDraft is a deal ready to submit.
type DealDraft struct {
	PipelineID int64
	StageID    int64
	Title      string
	Price      types.Money
	ContactIDs []string
	Attributes []Attribute
}

// Deal is a created CRM deal. Its identity never changes after creation.
type Deal struct {
	ID         string
	Title      string
	PipelineID int64
	StageID    int64
}

// DealLine is one priced order line as the deal sees it.
type DealLine struct {
	CRMProductID string
	Name         string
	Quantity     int64
	UnitPrice    types.Money
	Total        types.Money
}

// DealProduct is the payload attaching one line to a deal.
type DealProduct struct {
	CRMProductID string
	Quantity     int64
	UnitPrice    types.Money
}

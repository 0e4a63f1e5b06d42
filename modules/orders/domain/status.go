package domain

// Stage is the furthest saga state a run reached.
type Stage string

const (
	StageStarted               Stage = "started"
	StageItemsEnriched         Stage = "items_enriched"
	StageContactResolved       Stage = "contact_resolved"
	StageDealCreated           Stage = "deal_created"
	StageEcommerceOrderCreated Stage = "ecommerce_order_created"
	StageCrossLinked           Stage = "cross_linked"
	StageSideEffectsDispatched Stage = "side_effects_dispatched"
	StageCompleted             Stage = "completed"
)

func (s Stage) String() string { return string(s) }

// Status is the caller-facing outcome of a run.
type Status string

const (
	StatusSuccess Status = "success"
	// StatusPartial means the CRM deal exists but the store mirror or the cross-link is incomplete.
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

func (s Status) String() string { return string(s) }

// Gap names the step a partial run is missing.
type Gap string

const (
	GapNone           Gap = ""
	GapEcommerceOrder Gap = "ecommerce_order"
	GapCrossLink      Gap = "cross_link"
)

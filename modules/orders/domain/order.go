// Package domain contains the order saga's tracking record and its vocabulary.
package domain

import (
	"time"

	shareddomain "github.com/rai/bot-order-bridge/modules/shared/domain"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// Order is the tracking record of one saga run. It correlates the bot order with
// the CRM contact and deal and with the ecommerce order.
type Order struct {
	shareddomain.AggregateRoot

	id                types.TrackingID
	botOrderID        types.BotOrderID
	platform          string
	externalContactID string
	stage             Stage
	status            Status
	gap               Gap
	contactID         string
	dealID            string
	ecommerceOrderID  string
	total             types.Money
	createdAt         time.Time
	updatedAt         time.Time
}

// NewOrder starts the tracking record for a run.
func NewOrder(botOrderID types.BotOrderID, platform, externalContactID string, total types.Money, now time.Time) *Order {
	now = now.UTC()
	return &Order{
		id:                types.NewTrackingID(),
		botOrderID:        botOrderID,
		platform:          platform,
		externalContactID: externalContactID,
		stage:             StageItemsEnriched,
		status:            StatusSuccess,
		total:             total,
		createdAt:         now,
		updatedAt:         now,
	}
}

// Reconstitute rebuilds an order from persistence.
func Reconstitute(
	id types.TrackingID,
	botOrderID types.BotOrderID,
	platform, externalContactID string,
	stage Stage,
	status Status,
	gap Gap,
	contactID, dealID, ecommerceOrderID string,
	total types.Money,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:                id,
		botOrderID:        botOrderID,
		platform:          platform,
		externalContactID: externalContactID,
		stage:             stage,
		status:            status,
		gap:               gap,
		contactID:         contactID,
		dealID:            dealID,
		ecommerceOrderID:  ecommerceOrderID,
		total:             total,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (o *Order) ID() types.TrackingID         { return o.id }
func (o *Order) BotOrderID() types.BotOrderID { return o.botOrderID }
func (o *Order) Platform() string             { return o.platform }
func (o *Order) ExternalContactID() string    { return o.externalContactID }
func (o *Order) Stage() Stage                 { return o.stage }
func (o *Order) Status() Status               { return o.status }
func (o *Order) Gap() Gap                     { return o.gap }
func (o *Order) ContactID() string            { return o.contactID }
func (o *Order) DealID() string               { return o.dealID }
func (o *Order) EcommerceOrderID() string     { return o.ecommerceOrderID }
func (o *Order) Total() types.Money           { return o.total }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }

func (o *Order) ContactResolved(contactID string, now time.Time) {
	o.contactID = contactID
	o.advance(StageContactResolved, now)
}

func (o *Order) DealCreated(dealID string, now time.Time) {
	o.dealID = dealID
	o.advance(StageDealCreated, now)
}

func (o *Order) EcommerceOrderCreated(orderID string, now time.Time) {
	o.ecommerceOrderID = orderID
	o.advance(StageEcommerceOrderCreated, now)
}

func (o *Order) CrossLinked(now time.Time) {
	o.advance(StageCrossLinked, now)
}

// MarkPartial records that the run stopped short of a full sync. The stage stays
// where it was.
func (o *Order) MarkPartial(gap Gap, now time.Time) {
	o.status = StatusPartial
	o.gap = gap
	o.updatedAt = now.UTC()
}

// CrossLinkFailed reverts a tentative CrossLinked when the tracking record could
// not be written.
func (o *Order) CrossLinkFailed(now time.Time) {
	o.stage = StageEcommerceOrderCreated
	o.MarkPartial(GapCrossLink, now)
}

// Dispatched marks side effects as handed off and raises OrderSynced for them.
func (o *Order) Dispatched(now time.Time) {
	if o.status == StatusSuccess {
		o.advance(StageSideEffectsDispatched, now)
	}
	o.AddDomainEvent(NewOrderSyncedEvent(o))
}

// Complete is the terminal stage of a fully synced run. Partial runs keep their stage.
func (o *Order) Complete(now time.Time) {
	if o.status == StatusSuccess {
		o.advance(StageCompleted, now)
	}
}

func (o *Order) advance(stage Stage, now time.Time) {
	o.stage = stage
	o.updatedAt = now.UTC()
}

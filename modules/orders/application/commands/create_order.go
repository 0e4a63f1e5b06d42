// Package commands contains write use cases for the orders module.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	catalogapp "github.com/rai/bot-order-bridge/modules/catalog/application"
	catalogdomain "github.com/rai/bot-order-bridge/modules/catalog/domain"
	crmapp "github.com/rai/bot-order-bridge/modules/crm/application"
	crmdomain "github.com/rai/bot-order-bridge/modules/crm/domain"
	ecomapp "github.com/rai/bot-order-bridge/modules/ecommerce/application"
	ecomdomain "github.com/rai/bot-order-bridge/modules/ecommerce/domain"
	ledgerapp "github.com/rai/bot-order-bridge/modules/ledger/application"
	ledgerdomain "github.com/rai/bot-order-bridge/modules/ledger/domain"
	"github.com/rai/bot-order-bridge/modules/orders/domain"
	"github.com/rai/bot-order-bridge/modules/shared/events"
	"github.com/rai/bot-order-bridge/modules/shared/types"
)

// Observer receives saga timings and outcomes. *telemetry.Metrics implements it.
type Observer interface {
	ObserveStep(step string, d time.Duration)
	ObserveOutcome(status, stage string)
}

type noopObserver struct{}

func (noopObserver) ObserveStep(string, time.Duration) {}
func (noopObserver) ObserveOutcome(string, string)     {}

// CreateOrderCommand runs the order saga for one bot order.
type CreateOrderCommand struct {
	Request domain.OrderRequest
}

// Result is returned on success and on partial success.
type Result struct {
	TrackingID    string
	BotOrderID    string
	OrderID       string
	DealID        string
	ContactID     string
	TotalAmount   types.Money
	Status        domain.Status
	Stage         domain.Stage
	Gap           domain.Gap
	AttachedItems int
	FailedItems   int
	Degraded      bool
	Warnings      []string
}

// CreateOrderConfig wires the saga's collaborators.
type CreateOrderConfig struct {
	Catalog  *catalogapp.Resolver
	Contacts *crmapp.ContactResolver
	Deals    *crmapp.DealBuilder
	CRM      crmdomain.Capabilities
	Store    *ecomapp.OrderService
	Ledger   *ledgerapp.Recorder
	Repo     domain.OrderRepository
	// Publisher receives OrderSynced; it must not block on handlers.
	Publisher events.Publisher
	Observer  Observer
	// AttachConcurrency bounds concurrent product attachments.
	AttachConcurrency int
	Logger            *slog.Logger
}

// CreateOrderHandler is the order saga orchestrator.
//
// Primary steps run strictly in order: enrich items, resolve contact, create deal,
// attach products, create the store order, cross-link. Nothing is written remotely
// until every item is priced and mapped. Once the deal exists no later failure
// undoes it; those failures turn the result partial instead.
type CreateOrderHandler struct {
	catalog     *catalogapp.Resolver
	contacts    *crmapp.ContactResolver
	deals       *crmapp.DealBuilder
	crm         crmdomain.Capabilities
	store       *ecomapp.OrderService
	ledger      *ledgerapp.Recorder
	repo        domain.OrderRepository
	publisher   events.Publisher
	observer    Observer
	concurrency int
	tracer      trace.Tracer
	now         func() time.Time
	logger      *slog.Logger
}

func NewCreateOrderHandler(cfg CreateOrderConfig) *CreateOrderHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = noopObserver{}
	}
	concurrency := cfg.AttachConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &CreateOrderHandler{
		catalog:     cfg.Catalog,
		contacts:    cfg.Contacts,
		deals:       cfg.Deals,
		crm:         cfg.CRM,
		store:       cfg.Store,
		ledger:      cfg.Ledger,
		repo:        cfg.Repo,
		publisher:   cfg.Publisher,
		observer:    observer,
		concurrency: concurrency,
		tracer:      otel.Tracer("github.com/rai/bot-order-bridge/modules/orders"),
		now:         time.Now,
		logger:      logger,
	}
}

// run is the per-request saga state.
type run struct {
	req        domain.OrderRequest
	log        *ledgerapp.Scoped
	logger     *slog.Logger
	enrichment *catalogapp.Enrichment
	contact    *crmdomain.Contact
	deal       *crmdomain.Deal
	order      *domain.Order
	result     *Result
}

// Handle runs the saga. A hard failure returns *domain.SagaError; a partial success
// returns a Result with Status partial and a nil error.
func (h *CreateOrderHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*Result, error) {
	req := cmd.Request
	if req.BotOrderID.IsZero() {
		return nil, &domain.SagaError{Stage: domain.StageStarted, Err: domain.ErrInvalidRequest}
	}

	ctx, span := h.tracer.Start(ctx, "orders.saga",
		trace.WithAttributes(
			attribute.String("bot_order_id", req.BotOrderID.String()),
			attribute.String("platform", req.Identity.Platform),
		),
	)
	defer span.End()

	r := &run{
		req:    req,
		log:    h.ledger.For(req.BotOrderID.String()),
		logger: h.logger.With(slog.String("bot_order_id", req.BotOrderID.String())),
	}

	result, err := h.execute(ctx, r)
	if err != nil {
		var sagaErr *domain.SagaError
		stage := domain.StageStarted
		if errors.As(err, &sagaErr) {
			stage = sagaErr.Stage
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "saga failed")
		h.observer.ObserveOutcome(domain.StatusFailed.String(), stage.String())
		r.logger.Error("order saga failed", slog.String("stage", stage.String()), slog.Any("error", err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("status", result.Status.String()),
		attribute.String("deal_id", result.DealID),
	)
	h.observer.ObserveOutcome(result.Status.String(), result.Stage.String())
	r.logger.Info("order saga finished",
		slog.String("status", result.Status.String()),
		slog.String("stage", result.Stage.String()),
		slog.String("gap", string(result.Gap)),
		slog.String("deal_id", result.DealID),
		slog.String("order_id", result.OrderID),
	)
	return result, nil
}

func (h *CreateOrderHandler) execute(ctx context.Context, r *run) (*Result, error) {
	if err := h.step(ctx, "enrich", func(ctx context.Context) error { return h.enrich(ctx, r) }); err != nil {
		return nil, &domain.SagaError{Stage: domain.StageStarted, Err: err}
	}
	if err := h.step(ctx, "contact", func(ctx context.Context) error { return h.resolveContact(ctx, r) }); err != nil {
		return nil, &domain.SagaError{Stage: domain.StageItemsEnriched, Err: err}
	}
	if err := h.step(ctx, "deal", func(ctx context.Context) error { return h.createDeal(ctx, r) }); err != nil {
		return nil, &domain.SagaError{Stage: domain.StageContactResolved, Err: err}
	}

	// From here on the deal exists and every failure is absorbed into the result.
	_ = h.step(ctx, "attach", func(ctx context.Context) error { return h.attachProducts(ctx, r) })

	if err := h.step(ctx, "ecommerce_order", func(ctx context.Context) error { return h.createStoreOrder(ctx, r) }); err == nil {
		_ = h.step(ctx, "cross_link", func(ctx context.Context) error { return h.crossLink(ctx, r) })
	}

	_ = h.step(ctx, "side_effects", func(ctx context.Context) error { return h.dispatchSideEffects(ctx, r) })

	r.result.Stage = r.order.Stage()
	r.result.Status = r.order.Status()
	r.result.Gap = r.order.Gap()
	return r.result, nil
}

// step wraps fn in a span and a timing observation.
func (h *CreateOrderHandler) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := h.tracer.Start(ctx, "orders.saga."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	h.observer.ObserveStep(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name+" failed")
	}
	return err
}

func (h *CreateOrderHandler) enrich(ctx context.Context, r *run) error {
	items := make([]catalogapp.ItemRequest, len(r.req.Items))
	for i, it := range r.req.Items {
		items[i] = catalogapp.ItemRequest{CatalogProductID: it.CatalogProductID, Quantity: string(it.Quantity)}
	}

	enrichment, err := h.catalog.Enrich(ctx, catalogapp.EnrichRequest{
		Items:         items,
		DeclaredTotal: r.req.Attr(domain.AttrOrderTotal),
		CartSummary:   r.req.Attr(domain.AttrCartSummary),
	})
	if err != nil {
		r.log.Failure(ctx, ledgerdomain.OpEnrichItems, "", err)
		return err
	}

	r.enrichment = enrichment
	r.order = domain.NewOrder(r.req.BotOrderID, r.req.Identity.Platform, r.req.Identity.ExternalContactID, enrichment.Total, h.now())
	r.result = &Result{
		TrackingID:  r.order.ID().String(),
		BotOrderID:  r.req.BotOrderID.String(),
		TotalAmount: enrichment.Total,
		Degraded:    enrichment.Degraded,
		Warnings:    append([]string(nil), enrichment.Warnings...),
	}
	return nil
}

func (h *CreateOrderHandler) resolveContact(ctx context.Context, r *run) error {
	id := r.req.Identity
	res, err := h.contacts.Resolve(ctx, crmdomain.Identity{
		Platform:          id.Platform,
		ExternalContactID: id.ExternalContactID,
		ChatID:            id.ChatID,
		Phone:             id.Phone,
		Email:             id.Email,
		FirstName:         id.FirstName,
		LastName:          id.LastName,
		Username:          id.Username,
	})
	if err != nil {
		r.log.Failure(ctx, ledgerdomain.OpResolveContact, "", err)
		return err
	}

	r.contact = res.Contact
	r.order.ContactResolved(res.Contact.ID, h.now())
	r.result.ContactID = res.Contact.ID
	r.log.Success(ctx, ledgerdomain.OpResolveContact, res.Contact.ID, "resolved by "+res.Strategy)
	return nil
}

func (h *CreateOrderHandler) createDeal(ctx context.Context, r *run) error {
	draft := h.deals.Build(crmapp.DealInput{
		BotOrderID:       r.req.BotOrderID.String(),
		ContactID:        r.contact.ID,
		Lines:            dealLines(r.enrichment.Items),
		Total:            r.enrichment.Total,
		DeclaredTotal:    r.req.Attr(domain.AttrOrderTotal),
		OrderDescription: r.req.Attr(domain.AttrOrderDescription),
		CustomerName:     r.req.CustomerName(),
		Language:         r.req.Language(),
		PaymentMethod:    r.req.PaymentMethod,
		City:             r.req.Delivery.City,
		Station:          r.req.Delivery.Station,
		Canton:           r.req.Delivery.Canton,
	})

	deal, err := h.crm.CreateDeal(ctx, draft)
	if err == nil && (deal == nil || deal.ID == "") {
		err = errors.New("response has no id")
	}
	if err != nil {
		if !errors.Is(err, crmdomain.ErrDealCreationFailed) {
			err = fmt.Errorf("%w: %w", crmdomain.ErrDealCreationFailed, err)
		}
		r.log.Failure(ctx, ledgerdomain.OpCreateDeal, "", err)
		return err
	}

	r.deal = deal
	r.order.DealCreated(deal.ID, h.now())
	r.result.DealID = deal.ID
	r.log.Success(ctx, ledgerdomain.OpCreateDeal, deal.ID, fmt.Sprintf("deal %q created for %s", draft.Title, draft.Price))
	return nil
}

// attachProducts attaches each line independently. Failures are logged and skipped.
func (h *CreateOrderHandler) attachProducts(ctx context.Context, r *run) error {
	var (
		mu       sync.Mutex
		attached int
		failed   []error
	)

	g := new(errgroup.Group)
	g.SetLimit(h.concurrency)
	for _, item := range r.enrichment.Items {
		g.Go(func() error {
			err := h.crm.AttachProduct(ctx, r.deal.ID, crmdomain.DealProduct{
				CRMProductID: item.CRMProductID,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
			})

			if err != nil {
				err = fmt.Errorf("%w: product %s: %w", crmdomain.ErrProductAttachFailed, item.CRMProductID, err)
				r.logger.Warn("product attach failed",
					slog.String("deal_id", r.deal.ID),
					slog.String("crm_product_id", item.CRMProductID),
					slog.Any("error", err),
				)
				r.log.Failure(ctx, ledgerdomain.OpAttachProduct, r.deal.ID, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
			} else {
				attached++
			}
			return nil
		})
	}
	_ = g.Wait()

	r.result.AttachedItems = attached
	r.result.FailedItems = len(failed)
	if len(failed) > 0 {
		r.result.Warnings = append(r.result.Warnings, fmt.Sprintf("%d of %d products not attached to deal", len(failed), len(r.enrichment.Items)))
		return errors.Join(failed...)
	}
	return nil
}

func (h *CreateOrderHandler) createStoreOrder(ctx context.Context, r *run) error {
	id := r.req.Identity
	name := crmdomain.NewName(id.FirstName, id.LastName, id.Username)

	created, err := h.store.Create(ctx, ecomapp.OrderInput{
		BotOrderID: r.req.BotOrderID.String(),
		Guest: ecomdomain.Guest{
			FirstName: name.FirstName(),
			LastName:  name.LastName(),
			Phone:     crmdomain.NewPhone(id.Phone).String(),
			Email:     crmdomain.NewEmail(id.Email).String(),
		},
		Delivery: ecomapp.DeliveryRequest{
			City:    r.req.Delivery.City,
			Station: r.req.Delivery.Station,
			Canton:  r.req.Delivery.Canton,
			Address: r.req.Delivery.Address,
		},
		PaymentMethod: r.req.PaymentMethod,
		Notes:         r.req.Notes,
		Lines:         orderLines(r.enrichment.Items),
		Currency:      r.enrichment.Total.Currency(),
	})
	if err != nil {
		r.order.MarkPartial(domain.GapEcommerceOrder, h.now())
		r.log.Failure(ctx, ledgerdomain.OpCreateOrder, "", err)
		r.result.Warnings = append(r.result.Warnings, "ecommerce order not created; deal "+r.deal.ID+" has no store mirror")
		r.logger.Warn("ecommerce order creation failed after deal", slog.String("deal_id", r.deal.ID), slog.Any("error", err))
		h.saveBestEffort(ctx, r)
		return err
	}

	r.order.EcommerceOrderCreated(created.ID, h.now())
	r.result.OrderID = created.ID
	r.result.TotalAmount = created.TotalAmount
	if created.AdminNote != "" {
		r.result.Warnings = append(r.result.Warnings, created.AdminNote)
	}
	r.log.Success(ctx, ledgerdomain.OpCreateOrder, created.ID, "ecommerce order created")
	return nil
}

// crossLink writes the CRM ids into the store order and records the store order id
// on the tracking record. Failure leaves the run partial at EcommerceOrderCreated.
func (h *CreateOrderHandler) crossLink(ctx context.Context, r *run) error {
	linkErr := h.store.Link(ctx, r.order.EcommerceOrderID(), r.deal.ID, r.contact.ID)
	if linkErr == nil {
		r.order.CrossLinked(h.now())
	} else {
		r.order.MarkPartial(domain.GapCrossLink, h.now())
	}

	saveErr := h.repo.Save(ctx, r.order)
	if saveErr != nil && linkErr == nil {
		r.order.CrossLinkFailed(h.now())
	}

	if err := errors.Join(linkErr, saveErr); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrCrossLinkFailed, err)
		r.log.Failure(ctx, ledgerdomain.OpCrossLink, r.order.EcommerceOrderID(), err)
		r.result.Warnings = append(r.result.Warnings, "cross-link incomplete")
		r.logger.Warn("cross-link failed",
			slog.String("deal_id", r.deal.ID),
			slog.String("order_id", r.order.EcommerceOrderID()),
			slog.Any("error", err),
		)
		return err
	}

	r.log.Success(ctx, ledgerdomain.OpCrossLink, r.order.EcommerceOrderID(), "deal "+r.deal.ID+" linked")
	return nil
}

// dispatchSideEffects hands OrderSynced to the async bus. Nothing here changes the result.
func (h *CreateOrderHandler) dispatchSideEffects(ctx context.Context, r *run) error {
	r.order.Dispatched(h.now())
	if err := h.publisher.Publish(ctx, r.order.PopDomainEvents()...); err != nil {
		r.logger.Warn("side effects not dispatched", slog.Any("error", fmt.Errorf("%w: %w", domain.ErrSideEffectFailed, err)))
	}

	r.order.Complete(h.now())
	if r.order.Status() == domain.StatusSuccess {
		h.saveBestEffort(ctx, r)
	}
	r.log.Success(ctx, ledgerdomain.OpSagaCompleted, r.deal.ID, "status "+r.order.Status().String())
	return nil
}

func (h *CreateOrderHandler) saveBestEffort(ctx context.Context, r *run) {
	if err := h.repo.Save(ctx, r.order); err != nil {
		r.logger.Warn("tracking record not saved", slog.Any("error", err))
	}
}

func dealLines(items []catalogdomain.ResolvedLineItem) []crmdomain.DealLine {
	out := make([]crmdomain.DealLine, len(items))
	for i, it := range items {
		out[i] = crmdomain.DealLine{
			CRMProductID: it.CRMProductID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Total:        it.Total,
		}
	}
	return out
}

func orderLines(items []catalogdomain.ResolvedLineItem) []ecomdomain.OrderLine {
	out := make([]ecomdomain.OrderLine, len(items))
	for i, it := range items {
		out[i] = ecomdomain.OrderLine{
			ProductID: it.CatalogProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
		}
	}
	return out
}

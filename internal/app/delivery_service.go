package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	coredelivery "github.com/example/routeslip/internal/core/delivery"
	"github.com/example/routeslip/internal/core/extract"
	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/logger"
	"github.com/example/routeslip/internal/ports/primary"
	"github.com/example/routeslip/internal/ports/secondary"
)

// DeliveryServiceImpl implements the DeliveryService interface.
// All writes, including reorders, are serialized by mu.
type DeliveryServiceImpl struct {
	mu        sync.Mutex
	repo      secondary.DeliveryRepository
	images    secondary.ImageResolver // optional
	logWriter secondary.LogWriter     // optional
	log       logger.Logger
	metrics   *Metrics
	hub       *snapshotHub
	now       func() time.Time
	newID     func() string
}

// NewDeliveryService creates a new DeliveryService with injected dependencies.
// images and logWriter may be nil.
func NewDeliveryService(
	repo secondary.DeliveryRepository,
	images secondary.ImageResolver,
	logWriter secondary.LogWriter,
	log logger.Logger,
	metrics *Metrics,
) *DeliveryServiceImpl {
	if log == nil {
		log = logger.Nop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &DeliveryServiceImpl{
		repo:      repo,
		images:    images,
		logWriter: logWriter,
		log:       log,
		metrics:   metrics,
		hub:       newSnapshotHub(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// CreateDelivery persists a new open delivery at the end of the worklist.
func (s *DeliveryServiceImpl) CreateDelivery(ctx context.Context, req primary.CreateDeliveryRequest) (*primary.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked(ctx, req)
}

func (s *DeliveryServiceImpl) createLocked(ctx context.Context, req primary.CreateDeliveryRequest) (*primary.Delivery, error) {
	if err := s.checkImage(ctx, req.InvoiceImageRef); err != nil {
		return nil, err
	}

	items, err := encodeItems(req.Items)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	now := s.now()

	record := &secondary.DeliveryRecord{
		ID:              id,
		InvoiceNumber:   strings.TrimSpace(req.InvoiceNumber),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerAddress: strings.TrimSpace(req.CustomerAddress),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		Items:           items,
		Status:          string(coredelivery.InitialStatus()),
		InvoiceImageRef: req.InvoiceImageRef,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	record.InvoiceOutcome = outcomeOrDefault(req.Outcomes.InvoiceNumber, record.InvoiceNumber)
	record.NameOutcome = outcomeOrDefault(req.Outcomes.CustomerName, record.CustomerName)
	record.AddressOutcome = outcomeOrDefault(req.Outcomes.CustomerAddress, record.CustomerAddress)
	record.PhoneOutcome = outcomeOrDefault(req.Outcomes.CustomerPhone, record.CustomerPhone)

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	s.metrics.StoreMutations.WithLabelValues("create").Inc()
	s.audit(ctx, func() error { return s.logWriter.LogCreate(ctx, record.ID) })
	s.log.Infof(ctx, "created delivery %s at position %d", record.ID, record.SequencePosition)
	s.publishLocked(ctx)

	return recordToDelivery(record), nil
}

// GetDelivery retrieves a delivery by ID.
func (s *DeliveryServiceImpl) GetDelivery(ctx context.Context, id string) (*primary.Delivery, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return recordToDelivery(record), nil
}

// ListDeliveries lists deliveries in ascending worklist order.
func (s *DeliveryServiceImpl) ListDeliveries(ctx context.Context, filters primary.DeliveryFilters) ([]*primary.Delivery, error) {
	records, err := s.repo.List(ctx, secondary.DeliveryFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	return recordsToDeliveries(records), nil
}

// ListCreatedBetween returns deliveries created in [start, end) in worklist order.
// With confirmedOnly, records whose invoice number is missing or ambiguous are skipped.
func (s *DeliveryServiceImpl) ListCreatedBetween(ctx context.Context, start, end time.Time, confirmedOnly bool) ([]*primary.Delivery, error) {
	if !end.After(start) {
		return []*primary.Delivery{}, nil
	}

	records, err := s.repo.List(ctx, secondary.DeliveryFilters{
		CreatedFrom:   start,
		CreatedBefore: end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries for export: %w", err)
	}

	deliveries := make([]*primary.Delivery, 0, len(records))
	for _, r := range records {
		d := recordToDelivery(r)
		if confirmedOnly && !d.Confirmed {
			continue
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// UpdateDelivery replaces a delivery's content, last write wins.
func (s *DeliveryServiceImpl) UpdateDelivery(ctx context.Context, delivery *primary.Delivery) (*primary.Delivery, error) {
	if delivery == nil {
		return nil, fmt.Errorf("update delivery: nil delivery")
	}
	return s.mutate(ctx, delivery.ID, func(cur *primary.Delivery) error {
		id, position, createdAt := cur.ID, cur.Position, cur.CreatedAt
		*cur = *delivery
		cur.ID, cur.Position, cur.CreatedAt = id, position, createdAt
		if cur.Status == "" {
			cur.Status = string(coredelivery.StatusOpen)
		}
		return nil
	})
}

// MarkDelivered moves an open delivery to delivered.
func (s *DeliveryServiceImpl) MarkDelivered(ctx context.Context, id string) (*primary.Delivery, error) {
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		cur.Status = string(coredelivery.StatusDelivered)
		return nil
	})
}

// CancelDelivery moves an open delivery to cancelled.
func (s *DeliveryServiceImpl) CancelDelivery(ctx context.Context, id string) (*primary.Delivery, error) {
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		cur.Status = string(coredelivery.StatusCancelled)
		return nil
	})
}

// SignDelivery records a signature image; an open delivery becomes delivered.
func (s *DeliveryServiceImpl) SignDelivery(ctx context.Context, id, signatureRef string) (*primary.Delivery, error) {
	if strings.TrimSpace(signatureRef) == "" {
		return nil, fmt.Errorf("%w: empty signature reference", errorx.ErrInvalidImage)
	}
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		cur.SignatureImageRef = signatureRef
		return nil
	})
}

// AttachProof records a proof-of-delivery photo.
func (s *DeliveryServiceImpl) AttachProof(ctx context.Context, id, proofRef string) (*primary.Delivery, error) {
	if strings.TrimSpace(proofRef) == "" {
		return nil, fmt.Errorf("%w: empty proof reference", errorx.ErrInvalidImage)
	}
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		cur.ProofImageRef = proofRef
		return nil
	})
}

// AnnotateDelivery replaces the delivery notes.
func (s *DeliveryServiceImpl) AnnotateDelivery(ctx context.Context, id, notes string) (*primary.Delivery, error) {
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		cur.Notes = notes
		return nil
	})
}

// EditFields corrects extracted fields by hand; edited fields become overridden.
func (s *DeliveryServiceImpl) EditFields(ctx context.Context, id string, edits primary.FieldEdits) (*primary.Delivery, error) {
	return s.mutate(ctx, id, func(cur *primary.Delivery) error {
		applyEdits(cur, edits)
		return nil
	})
}

// DeleteDelivery removes a delivery. Other positions are not renumbered.
func (s *DeliveryServiceImpl) DeleteDelivery(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
	}

	s.metrics.StoreMutations.WithLabelValues("delete").Inc()
	s.audit(ctx, func() error { return s.logWriter.LogDelete(ctx, id) })
	s.log.Infof(ctx, "deleted delivery %s", id)
	s.publishLocked(ctx)
	return nil
}

// Watch streams the full worklist after every durable change until ctx ends.
// The current worklist is delivered first. Snapshots are shared between
// watchers and must not be modified.
func (s *DeliveryServiceImpl) Watch(ctx context.Context) (<-chan []*primary.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ch, ok := s.hub.subscribe()
	if !ok {
		return nil, fmt.Errorf("delivery store is closed")
	}

	records, err := s.repo.List(ctx, secondary.DeliveryFilters{})
	if err != nil {
		s.hub.unsubscribe(id)
		return nil, fmt.Errorf("failed to load worklist: %w", err)
	}
	ch <- recordsToDeliveries(records)

	go func() {
		select {
		case <-ctx.Done():
			s.hub.unsubscribe(id)
		case <-s.hub.done:
		}
	}()

	return ch, nil
}

// Close ends every Watch subscription.
func (s *DeliveryServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hub.close()
}

// mutate loads a delivery, applies fn and writes the result under the store lock.
func (s *DeliveryServiceImpl) mutate(ctx context.Context, id string, fn func(cur *primary.Delivery) error) (*primary.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := recordToDelivery(current)
	if err := fn(next); err != nil {
		return nil, err
	}

	return s.writeLocked(ctx, current, next)
}

// writeLocked applies the status rules and persists next over current.
func (s *DeliveryServiceImpl) writeLocked(ctx context.Context, current *secondary.DeliveryRecord, next *primary.Delivery) (*primary.Delivery, error) {
	result, check := coredelivery.ApplyUpdate(coredelivery.UpdateContext{
		RecordID:        current.ID,
		CurrentStatus:   coredelivery.Status(current.Status),
		RequestedStatus: coredelivery.Status(next.Status),
		Signature:       next.SignatureImageRef,
	})
	if !check.Allowed {
		s.metrics.RejectedUpdates.Inc()
		s.log.Warnf(ctx, "rejected update of %s: %s", current.ID, check.Reason)
		return nil, fmt.Errorf("%w: %s", errorx.ErrInvalidTransition, check.Reason)
	}

	for _, ref := range []struct{ old, new string }{
		{current.ProofImageRef, next.ProofImageRef},
		{current.SignatureImageRef, next.SignatureImageRef},
		{current.InvoiceImageRef, next.InvoiceImageRef},
	} {
		if ref.new != ref.old {
			if err := s.checkImage(ctx, ref.new); err != nil {
				return nil, err
			}
		}
	}

	record, err := deliveryToRecord(next)
	if err != nil {
		return nil, err
	}
	record.ID = current.ID
	record.SequencePosition = current.SequencePosition
	record.CreatedAt = current.CreatedAt
	record.Status = string(result.NewStatus)
	record.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update delivery: %w", err)
	}

	s.metrics.StoreMutations.WithLabelValues("update").Inc()
	for _, c := range changedFields(current, record) {
		s.audit(ctx, func() error { return s.logWriter.LogUpdate(ctx, record.ID, c.field, c.old, c.new) })
	}
	if result.Promoted {
		s.log.Infof(ctx, "signature promoted delivery %s to delivered", record.ID)
	}
	s.publishLocked(ctx)

	return recordToDelivery(record), nil
}

// publishLocked sends the current worklist to watchers. Must hold s.mu.
func (s *DeliveryServiceImpl) publishLocked(ctx context.Context) {
	if s.hub.count() == 0 {
		return
	}
	records, err := s.repo.List(ctx, secondary.DeliveryFilters{})
	if err != nil {
		s.log.Warnf(ctx, "failed to load snapshot for watchers: %v", err)
		return
	}
	s.hub.publish(recordsToDeliveries(records))
}

// checkImage resolves a non-empty image reference.
func (s *DeliveryServiceImpl) checkImage(ctx context.Context, ref string) error {
	if ref == "" || s.images == nil {
		return nil
	}
	if _, err := s.images.Resolve(ctx, ref); err != nil {
		if errors.Is(err, errorx.ErrInvalidImage) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", errorx.ErrInvalidImage, ref, err)
	}
	return nil
}

// audit writes an audit entry; failures are logged and never fail the mutation.
func (s *DeliveryServiceImpl) audit(ctx context.Context, write func() error) {
	if s.logWriter == nil {
		return
	}
	if err := write(); err != nil {
		s.log.Warnf(ctx, "failed to write audit entry: %v", err)
	}
}

// Helper functions

type fieldChange struct {
	field, old, new string
}

func changedFields(old, new *secondary.DeliveryRecord) []fieldChange {
	pairs := []fieldChange{
		{"invoice_number", old.InvoiceNumber, new.InvoiceNumber},
		{"customer_name", old.CustomerName, new.CustomerName},
		{"customer_address", old.CustomerAddress, new.CustomerAddress},
		{"customer_phone", old.CustomerPhone, new.CustomerPhone},
		{"items", old.Items, new.Items},
		{"status", old.Status, new.Status},
		{"proof_image_ref", old.ProofImageRef, new.ProofImageRef},
		{"signature_image_ref", old.SignatureImageRef, new.SignatureImageRef},
		{"invoice_image_ref", old.InvoiceImageRef, new.InvoiceImageRef},
		{"notes", old.Notes, new.Notes},
	}
	var changes []fieldChange
	for _, p := range pairs {
		if p.old != p.new {
			changes = append(changes, p)
		}
	}
	return changes
}

func applyEdits(d *primary.Delivery, edits primary.FieldEdits) {
	overridden := string(extract.OutcomeOverridden)
	if edits.InvoiceNumber != nil {
		d.InvoiceNumber = strings.TrimSpace(*edits.InvoiceNumber)
		d.Outcomes.InvoiceNumber = overridden
	}
	if edits.CustomerName != nil {
		d.CustomerName = strings.TrimSpace(*edits.CustomerName)
		d.Outcomes.CustomerName = overridden
	}
	if edits.CustomerAddress != nil {
		d.CustomerAddress = strings.TrimSpace(*edits.CustomerAddress)
		d.Outcomes.CustomerAddress = overridden
	}
	if edits.CustomerPhone != nil {
		d.CustomerPhone = strings.TrimSpace(*edits.CustomerPhone)
		d.Outcomes.CustomerPhone = overridden
	}
	if edits.Items != nil {
		d.Items = edits.Items
	}
}

// outcomeOrDefault keeps a valid outcome; otherwise a value present without
// an extraction outcome counts as entered by hand.
func outcomeOrDefault(outcome, value string) string {
	if extract.Outcome(outcome).Valid() {
		return outcome
	}
	if value != "" {
		return string(extract.OutcomeOverridden)
	}
	return string(extract.OutcomeNotFound)
}

func encodeItems(items []primary.LineItem) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode items: %w", err)
	}
	return string(data), nil
}

func decodeItems(payload string) []primary.LineItem {
	var items []primary.LineItem
	if payload == "" {
		return items
	}
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil
	}
	return items
}

func deliveryToRecord(d *primary.Delivery) (*secondary.DeliveryRecord, error) {
	items, err := encodeItems(d.Items)
	if err != nil {
		return nil, err
	}
	return &secondary.DeliveryRecord{
		ID:                d.ID,
		InvoiceNumber:     d.InvoiceNumber,
		CustomerName:      d.CustomerName,
		CustomerAddress:   d.CustomerAddress,
		CustomerPhone:     d.CustomerPhone,
		Items:             items,
		Status:            d.Status,
		ProofImageRef:     d.ProofImageRef,
		SignatureImageRef: d.SignatureImageRef,
		InvoiceImageRef:   d.InvoiceImageRef,
		Notes:             d.Notes,
		SequencePosition:  d.Position,
		InvoiceOutcome:    outcomeOrDefault(d.Outcomes.InvoiceNumber, d.InvoiceNumber),
		NameOutcome:       outcomeOrDefault(d.Outcomes.CustomerName, d.CustomerName),
		AddressOutcome:    outcomeOrDefault(d.Outcomes.CustomerAddress, d.CustomerAddress),
		PhoneOutcome:      outcomeOrDefault(d.Outcomes.CustomerPhone, d.CustomerPhone),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}, nil
}

func recordToDelivery(r *secondary.DeliveryRecord) *primary.Delivery {
	return &primary.Delivery{
		ID:                r.ID,
		InvoiceNumber:     r.InvoiceNumber,
		CustomerName:      r.CustomerName,
		CustomerAddress:   r.CustomerAddress,
		CustomerPhone:     r.CustomerPhone,
		Items:             decodeItems(r.Items),
		Status:            r.Status,
		ProofImageRef:     r.ProofImageRef,
		SignatureImageRef: r.SignatureImageRef,
		InvoiceImageRef:   r.InvoiceImageRef,
		Notes:             r.Notes,
		Position:          r.SequencePosition,
		Outcomes: primary.FieldOutcomes{
			InvoiceNumber:   r.InvoiceOutcome,
			CustomerName:    r.NameOutcome,
			CustomerAddress: r.AddressOutcome,
			CustomerPhone:   r.PhoneOutcome,
		},
		Confirmed: coredelivery.IsConfirmed(coredelivery.ConfirmationContext{
			InvoiceNumber:  r.InvoiceNumber,
			InvoiceOutcome: r.InvoiceOutcome,
		}),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func recordsToDeliveries(records []*secondary.DeliveryRecord) []*primary.Delivery {
	deliveries := make([]*primary.Delivery, len(records))
	for i, r := range records {
		deliveries[i] = recordToDelivery(r)
	}
	return deliveries
}

// Ensure DeliveryServiceImpl implements the interface
var _ primary.DeliveryService = (*DeliveryServiceImpl)(nil)

package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/routeslip/internal/core/extract"
	"github.com/example/routeslip/internal/ctxutil"
	"github.com/example/routeslip/internal/errorx"
	"github.com/example/routeslip/internal/logger"
	"github.com/example/routeslip/internal/ports/primary"
	"github.com/example/routeslip/internal/ports/secondary"
)

// CaptureServiceImpl implements the CaptureService interface.
// Candidates live in memory only; a candidate reaches the store through Confirm.
type CaptureServiceImpl struct {
	mu         sync.Mutex
	store      primary.DeliveryService
	extractor  *extract.Extractor
	recognizer secondary.TextRecognizer // optional
	frames     secondary.FrameSource    // optional
	workers    int
	log        logger.Logger
	metrics    *Metrics

	pending  map[string]*primary.Candidate
	order    []string
	newToken func() string
}

// CaptureOptions holds the collaborators of a CaptureService.
type CaptureOptions struct {
	Extractor  *extract.Extractor // nil selects the default rules
	Recognizer secondary.TextRecognizer
	Frames     secondary.FrameSource
	Workers    int
	Logger     logger.Logger
	Metrics    *Metrics
}

// NewCaptureService creates a new CaptureService that confirms into store.
func NewCaptureService(store primary.DeliveryService, opts CaptureOptions) *CaptureServiceImpl {
	if opts.Extractor == nil {
		opts.Extractor = extract.New(extract.Options{})
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(nil)
	}
	return &CaptureServiceImpl{
		store:      store,
		extractor:  opts.Extractor,
		recognizer: opts.Recognizer,
		frames:     opts.Frames,
		workers:    opts.Workers,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		pending:    make(map[string]*primary.Candidate),
		newToken:   uuid.NewString,
	}
}

// Process extracts fields from input and holds the result as a pending candidate.
func (s *CaptureServiceImpl) Process(ctx context.Context, input primary.RecognizedText) (*primary.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidate := s.extract(input)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdLocked(ctx, candidate)

	return copyCandidate(candidate), nil
}

// ProcessBatch extracts every input concurrently. Candidates are held only
// when the whole batch succeeds, in input order.
func (s *CaptureServiceImpl) ProcessBatch(ctx context.Context, inputs []primary.RecognizedText) ([]*primary.Candidate, error) {
	results := make([]*primary.Candidate, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.extract(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch aborted: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*primary.Candidate, len(results))
	for i, c := range results {
		s.holdLocked(ctx, c)
		out[i] = copyCandidate(c)
	}
	return out, nil
}

// Capture pulls the next frame, recognizes it and processes the text.
func (s *CaptureServiceImpl) Capture(ctx context.Context) (*primary.Candidate, error) {
	if s.frames == nil || s.recognizer == nil {
		return nil, errors.New("capture requires a frame source and a text recognizer")
	}

	ref, err := s.frames.NextFrame(ctx)
	if err != nil {
		return nil, err
	}

	text, err := s.recognizer.Recognize(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize %s: %w", ref, err)
	}

	candidate, err := s.Process(ctx, primary.RecognizedText{Text: text, ImageRef: ref})
	if err != nil {
		return nil, err
	}

	archived, err := s.frames.MarkProcessed(ctx, ref)
	if err != nil {
		s.log.Warnf(ctx, "failed to mark frame %s processed: %v", ref, err)
		return candidate, nil
	}
	if archived != ref {
		s.mu.Lock()
		if held, ok := s.pending[candidate.Token]; ok {
			held.ImageRef = archived
		}
		s.mu.Unlock()
		candidate.ImageRef = archived
	}
	return candidate, nil
}

// Confirm persists a pending candidate with edits applied. The candidate stays
// pending if the store rejects it.
func (s *CaptureServiceImpl) Confirm(ctx context.Context, token string, edits primary.FieldEdits) (*primary.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate, ok := s.pending[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errorx.ErrUnknownCandidate, token)
	}
	ctx = ctxutil.WithCandidateToken(ctx, token)

	merged := copyCandidate(candidate)
	mergeEdits(merged, edits)

	delivery, err := s.store.CreateDelivery(ctx, primary.CreateDeliveryRequest{
		InvoiceNumber:   merged.InvoiceNumber,
		CustomerName:    merged.CustomerName,
		CustomerAddress: merged.CustomerAddress,
		CustomerPhone:   merged.CustomerPhone,
		Items:           merged.Items,
		InvoiceImageRef: merged.ImageRef,
		Outcomes:        merged.Outcomes,
	})
	if err != nil {
		return nil, err
	}

	s.releaseLocked(token)
	s.metrics.Candidates.WithLabelValues("confirmed").Inc()
	s.log.Infof(ctx, "confirmed candidate as delivery %s", delivery.ID)
	return delivery, nil
}

// Discard drops a pending candidate.
func (s *CaptureServiceImpl) Discard(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[token]; !ok {
		return fmt.Errorf("%w: %s", errorx.ErrUnknownCandidate, token)
	}
	s.releaseLocked(token)
	s.metrics.Candidates.WithLabelValues("discarded").Inc()
	s.log.Infof(ctxutil.WithCandidateToken(ctx, token), "discarded candidate")
	return nil
}

// Pending lists candidates awaiting confirmation, oldest first.
func (s *CaptureServiceImpl) Pending(ctx context.Context) ([]*primary.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*primary.Candidate, len(s.order))
	for i, token := range s.order {
		out[i] = copyCandidate(s.pending[token])
	}
	return out, nil
}

func (s *CaptureServiceImpl) extract(input primary.RecognizedText) *primary.Candidate {
	c := s.extractor.Extract(input.Text)

	s.metrics.ExtractionOutcomes.WithLabelValues("invoice_number", string(c.Outcomes.InvoiceNumber)).Inc()
	s.metrics.ExtractionOutcomes.WithLabelValues("customer_name", string(c.Outcomes.CustomerName)).Inc()
	s.metrics.ExtractionOutcomes.WithLabelValues("customer_address", string(c.Outcomes.CustomerAddress)).Inc()
	s.metrics.ExtractionOutcomes.WithLabelValues("customer_phone", string(c.Outcomes.CustomerPhone)).Inc()

	items := make([]primary.LineItem, len(c.Items))
	for i, it := range c.Items {
		items[i] = primary.LineItem{Description: it.Description, Quantity: it.Quantity}
	}

	return &primary.Candidate{
		InvoiceNumber:   c.InvoiceNumber,
		CustomerName:    c.CustomerName,
		CustomerAddress: c.CustomerAddress,
		CustomerPhone:   c.CustomerPhone,
		Items:           items,
		Outcomes: primary.FieldOutcomes{
			InvoiceNumber:   string(c.Outcomes.InvoiceNumber),
			CustomerName:    string(c.Outcomes.CustomerName),
			CustomerAddress: string(c.Outcomes.CustomerAddress),
			CustomerPhone:   string(c.Outcomes.CustomerPhone),
		},
		ImageRef: input.ImageRef,
		RawText:  input.Text,
	}
}

// holdLocked assigns a token and registers c as pending. Must hold s.mu.
func (s *CaptureServiceImpl) holdLocked(ctx context.Context, c *primary.Candidate) {
	c.Token = s.newToken()
	s.pending[c.Token] = c
	s.order = append(s.order, c.Token)
	s.metrics.Candidates.WithLabelValues("processed").Inc()
	s.metrics.PendingCandidates.Set(float64(len(s.pending)))
	s.log.Debugf(ctxutil.WithCandidateToken(ctx, c.Token), "candidate invoice=%q outcome=%s",
		c.InvoiceNumber, c.Outcomes.InvoiceNumber)
}

// releaseLocked removes a pending candidate. Must hold s.mu.
func (s *CaptureServiceImpl) releaseLocked(token string) {
	delete(s.pending, token)
	for i, t := range s.order {
		if t == token {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.metrics.PendingCandidates.Set(float64(len(s.pending)))
}

func mergeEdits(c *primary.Candidate, edits primary.FieldEdits) {
	overridden := string(extract.OutcomeOverridden)
	if edits.InvoiceNumber != nil {
		c.InvoiceNumber = *edits.InvoiceNumber
		c.Outcomes.InvoiceNumber = overridden
	}
	if edits.CustomerName != nil {
		c.CustomerName = *edits.CustomerName
		c.Outcomes.CustomerName = overridden
	}
	if edits.CustomerAddress != nil {
		c.CustomerAddress = *edits.CustomerAddress
		c.Outcomes.CustomerAddress = overridden
	}
	if edits.CustomerPhone != nil {
		c.CustomerPhone = *edits.CustomerPhone
		c.Outcomes.CustomerPhone = overridden
	}
	if edits.Items != nil {
		c.Items = edits.Items
	}
}

func copyCandidate(c *primary.Candidate) *primary.Candidate {
	cp := *c
	if c.Items != nil {
		cp.Items = append([]primary.LineItem(nil), c.Items...)
	}
	return &cp
}

// Ensure CaptureServiceImpl implements the interface
var _ primary.CaptureService = (*CaptureServiceImpl)(nil)

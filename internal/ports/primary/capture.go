package primary

import "context"

// CaptureService defines the primary port for turning invoice photos into deliveries.
type CaptureService interface {
	// Process extracts fields from recognized text and holds the result as a
	// pending candidate. Nothing is persisted.
	Process(ctx context.Context, input RecognizedText) (*Candidate, error)

	// ProcessBatch processes many texts concurrently; results follow input order.
	ProcessBatch(ctx context.Context, inputs []RecognizedText) ([]*Candidate, error)

	// Capture pulls the next frame, recognizes its text and processes it.
	Capture(ctx context.Context) (*Candidate, error)

	// Confirm persists a pending candidate, with edits winning per field.
	Confirm(ctx context.Context, token string, edits FieldEdits) (*Delivery, error)

	// Discard drops a pending candidate without persisting anything.
	Discard(ctx context.Context, token string) error

	// Pending lists candidates awaiting confirmation, oldest first.
	Pending(ctx context.Context) ([]*Candidate, error)
}

// RecognizedText is the output of text recognition for one image.
type RecognizedText struct {
	Text     string
	ImageRef string // Optional
}

// Candidate is an extraction result awaiting confirmation.
type Candidate struct {
	Token           string
	InvoiceNumber   string
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Items           []LineItem
	Outcomes        FieldOutcomes
	ImageRef        string
	RawText         string
}

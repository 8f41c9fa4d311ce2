// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the operator id.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// CandidateKey is the context key for the capture token being processed.
type CandidateKey struct{}

// WithActorID returns a context with the operator id embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorKey{}, actorID)
}

// ActorFromContext returns the operator id from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ActorKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCandidateToken returns a context carrying a capture token.
func WithCandidateToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CandidateKey{}, token)
}

// CandidateTokenFromContext returns the capture token from context, or empty string.
func CandidateTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CandidateKey{}).(string); ok {
		return v
	}
	return ""
}

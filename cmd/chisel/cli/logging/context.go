package logging

import (
	"context"
)

// Context keys for logging values.
// Using a private type to avoid key collisions.
type contextKey int

const (
	componentKey contextKey = iota
	commitKey
)

// WithComponent adds a component name to the context.
// Component names identify the subsystem generating logs
// (e.g., "strategy", "scratch", "gitexec").
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithCommit adds the short hash of the commit being operated on to the
// context, so every log line of a rewrite can be correlated.
func WithCommit(ctx context.Context, shortHash string) context.Context {
	return context.WithValue(ctx, commitKey, shortHash)
}

// ComponentFromContext extracts the component name from the context.
// Returns empty string if not set.
func ComponentFromContext(ctx context.Context) string {
	if v := ctx.Value(componentKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CommitFromContext extracts the commit short hash from the context.
// Returns empty string if not set.
func CommitFromContext(ctx context.Context) string {
	if v := ctx.Value(commitKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

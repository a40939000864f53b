package services

import (
	"context"
	"errors"
	"log"
)

// Attempt makes one call against one model.
type Attempt[T any] func(ctx context.Context, model string) (T, error)

// FirstSuccess tries models in order, one call each, and returns the first
// result whose attempt succeeds. Individual failures are logged. When every
// model fails the returned provider error wraps the last failure.
func FirstSuccess[T any](ctx context.Context, op string, models []string, attempt Attempt[T]) (T, error) {
	var zero T
	if len(models) == 0 {
		return zero, &Error{Kind: KindProvider, Op: op, Message: "no models configured"}
	}

	var lastErr error
	for _, model := range models {
		if err := ctx.Err(); err != nil {
			lastErr = classify(op, model, err)
			break
		}

		log.Printf("🤖 %s: trying model %s\n", op, model)
		result, err := attempt(ctx, model)
		if err == nil {
			log.Printf("✅ %s: model %s succeeded\n", op, model)
			return result, nil
		}

		lastErr = classify(op, model, err)
		log.Printf("⚠️  %s: model %s failed: %v\n", op, model, lastErr)
	}

	return zero, &Error{
		Kind:    KindProvider,
		Op:      op,
		Message: "all models failed. Last error",
		Err:     lastErr,
	}
}

// LastFailure returns the final per-model failure wrapped by a chain
// exhaustion error, or nil.
func LastFailure(err error) *Error {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindProvider || e.Err == nil {
		return nil
	}
	var last *Error
	if errors.As(e.Err, &last) {
		return last
	}
	return nil
}

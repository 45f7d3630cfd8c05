// Package requestid carries a per-call correlation id through a context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header the id travels in.
const Header = "X-Request-Id"

type ctxKey struct{}

// New returns a child context carrying a fresh id.
func New(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return With(ctx, id), id
}

func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKey struct{}

// RequestData carries per-request authentication state. Credentials travel
// with the request context, never on a shared client object, so concurrent
// requests from different sessions cannot race.
type RequestData struct {
	TokenString string
	TokenID     string
	UserID      uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey{})
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

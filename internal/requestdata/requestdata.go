package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestDataKey = contextKey{}

// RequestData carries the authenticated principal for one request. Components
// never read an ambient user; handlers pull this out and pass explicit ids.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	IsAdmin     bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

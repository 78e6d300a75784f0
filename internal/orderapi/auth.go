package orderapi

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"
)

const (
	authorizationKey = "authorization"
	bearerPrefix     = "Bearer "
)

// WithToken attaches the session token as outgoing bearer metadata.
func WithToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, authorizationKey, bearerPrefix+token)
}

// TokenFromContext reads the bearer token of an incoming call.
func TokenFromContext(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}

	for _, v := range md.Get(authorizationKey) {
		if token, found := strings.CutPrefix(v, bearerPrefix); found && token != "" {
			return token, true
		}
	}

	return "", false
}

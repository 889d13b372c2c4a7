package web

import (
	"context"
	"net"
	"net/http"

	"github.com/JonMunkholm/holidaycal/internal/core"
)

// WithRequestMetadata marks ctx as an API-triggered run requested by the
// client of r.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithTrigger(ctx, core.TriggerAPI)
	return core.ContextWithIPAddress(ctx, clientIP(r))
}

// clientIP returns the host part of RemoteAddr, which TrustedRealIP has
// already resolved.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

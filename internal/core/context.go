package core

import "context"

type contextKey string

const (
	ctxKeyIPAddress contextKey = "run_ip"
	ctxKeyTrigger   contextKey = "run_trigger"
)

// Run triggers recorded on reports.
const (
	TriggerCLI       = "cli"
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
)

// ContextWithIPAddress records the client address that requested a run.
func ContextWithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyIPAddress, ip)
}

// ContextWithTrigger records what started a run.
func ContextWithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, ctxKeyTrigger, trigger)
}

// GetIPAddressFromContext extracts the client address from context.
func GetIPAddressFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyIPAddress).(string); ok {
		return v
	}
	return ""
}

// TriggerFromContext extracts the trigger, defaulting to the CLI.
func TriggerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTrigger).(string); ok {
		return v
	}
	return TriggerCLI
}

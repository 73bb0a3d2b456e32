package logging

import "context"

type fieldsKey struct{}

// WithFields returns a context whose log records carry the given key/value
// pairs in addition to the call-site arguments. Fields accumulate across
// calls.
func WithFields(ctx context.Context, args ...any) context.Context {
	if len(args) == 0 {
		return ctx
	}
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// Fields returns the key/value pairs attached with WithFields.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}

// withContextFields prepends the context fields to args.
func withContextFields(ctx context.Context, args []any) []any {
	f := Fields(ctx)
	if len(f) == 0 {
		return args
	}
	out := make([]any, 0, len(f)+len(args))
	out = append(out, f...)
	return append(out, args...)
}

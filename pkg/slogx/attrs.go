// Package slogx carries small log/slog attribute helpers shared across the
// module.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr for err under the conventional "error" key.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer returns a slog.Attr holding the string form of value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Recovered returns a slog.Attr for a value obtained from recover(). Errors
// keep the "error" key so log pipelines treat them uniformly.
func Recovered(v any) slog.Attr {
	if err, ok := v.(error); ok {
		return Error(err)
	}
	return slog.Any("panic", v)
}

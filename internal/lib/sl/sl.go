// Package sl holds small helpers for the slog logger, mainly uniform
// structured error attributes.
package sl

import "log/slog"

// Err returns a slog.Attr with the "error" key and the error text, so that
// failures are logged in one consistent shape across the service.
//
// Example:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

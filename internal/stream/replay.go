package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"allure-reporter/internal/collector"
	"allure-reporter/internal/config"
	"allure-reporter/pkg/logging"
)

const subsystem = "Stream"

// Replay feeds every notification read from r to h and returns how many were
// handled. Notifications the handler rejects are logged and skipped. It stops
// at the end of the stream, on the first decode error, when the report
// directory is unusable, or when ctx is cancelled.
func Replay(ctx context.Context, r io.Reader, h Handler) (int, error) {
	dec := NewDecoder(r)
	handled := 0
	for {
		if err := ctx.Err(); err != nil {
			return handled, err
		}
		n, err := dec.Next()
		if errors.Is(err, io.EOF) {
			logging.Debug(subsystem, "Replayed %d notification(s)", handled)
			return handled, nil
		}
		if err != nil {
			return handled, err
		}
		ok, err := dispatch(h, n, dec.Line())
		if err != nil {
			return handled, err
		}
		if ok {
			handled++
		}
	}
}

// dispatch hands n to h and reports whether it was accepted. Only a
// configuration error, such as an unusable report directory, is returned.
func dispatch(h Handler, n collector.Notification, line int) (bool, error) {
	err := h.Handle(n)
	if err == nil {
		return true, nil
	}
	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) {
		return false, fmt.Errorf("line %d: handling %s: %w", line, n.Kind, err)
	}
	logging.Warn(subsystem, "Skipping %s notification on line %d: %s", n.Kind, line, err)
	return false, nil
}

func isRunEnd(n collector.Notification) bool {
	return n.Kind == collector.KindRunEnd
}

// Package utils holds small helpers shared by the AI rescoring path.
package utils

import (
	"context"
	"strings"
	"time"
)

// Pause blocks for d or until ctx is done. Non-positive durations return
// immediately.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Preview flattens prompts and model responses onto one line and cuts them to
// limit runes so they fit in a structured log field.
func Preview(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

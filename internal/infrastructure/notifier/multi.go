// Package notifier fans notifications out to several chat sinks.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"
)

var _ output.Notifier = Multi(nil)

// Multi delivers to every notifier and succeeds only when all of them do.
type Multi []output.Notifier

func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, n := range m {
		names = append(names, n.Name())
	}
	return strings.Join(names, "+")
}

func (m Multi) Notify(ctx context.Context, n entity.Notification) error {
	var errs []error
	for _, target := range m {
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", target.Name(), err))
		}
	}
	return errors.Join(errs...)
}

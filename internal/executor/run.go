package executor

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/shipwright/internal/node"
)

// evaluateGuard checks each condition in declaration order and returns the
// description of the first one that does not hold.
func evaluateGuard(t *node.Target) (desc string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	for _, c := range t.Conditions {
		if c.Check == nil {
			continue
		}
		if !c.Check() {
			return c.Description, false, nil
		}
	}
	return "", true, nil
}

// invoke runs the action on its own goroutine so a cancelled context fails
// the target even when the action ignores cancellation.
func invoke(ctx context.Context, t *node.Target) error {
	if t.Action == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &PanicError{Value: r}
			}
		}()
		done <- t.Action(ctx)
	}()

	select {
	case err := <-done:
		if err != nil && ctx.Err() != nil {
			return &CancellationError{Cause: fmt.Errorf("%w: %w", context.Cause(ctx), err)}
		}
		return err
	case <-ctx.Done():
		return &CancellationError{Cause: context.Cause(ctx)}
	}
}

// verifyProduces checks that every declared output pattern matches a file.
func verifyProduces(t *node.Target) error {
	for _, pattern := range t.Produces {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid output pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return &ArtifactMissingError{Target: t.Name, Pattern: pattern}
		}
	}
	return nil
}

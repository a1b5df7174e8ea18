package storage

import (
	"context"
	"errors"
	"fmt"
)

// Backend names a Deleter for error reporting.
type Backend struct {
	Name    string
	Deleter Deleter
}

// DeleteFirst tries each backend in order and stops at the first one that deletes key.
// It reports whether any backend succeeded; the joined errors of the failed attempts are
// returned only when none did.
func DeleteFirst(ctx context.Context, key string, backends ...Backend) (bool, error) {
	var errs []error
	for _, b := range backends {
		if b.Deleter == nil {
			continue
		}
		if err := b.Deleter.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
			continue
		}
		return true, nil
	}
	return false, errors.Join(errs...)
}

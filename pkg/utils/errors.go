package utils

import (
	"errors"
	"fmt"
)

// Wraps err with a formatted details message, keeping err reachable through errors.Is
func MakeError(err error, detailsBody string, args ...any) error {
	return fmt.Errorf("%w: "+detailsBody, append([]any{err}, args...)...)
}

// Returns true if err wraps any of the given targets
func IsAnyOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

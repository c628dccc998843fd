package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"firelist/internal/service"
)

var (
	// ErrPositionRequired indicates no position argument was provided.
	ErrPositionRequired = errors.New("position required")

	// ErrOutOfRange indicates a position past the end of the current snapshot.
	ErrOutOfRange = errors.New("position out of range")
)

// ParsePosition parses a 1-based position from the first argument and
// returns the arguments that follow it.
func ParsePosition(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrPositionRequired
	}

	first := args[0]
	if !isAllDigits(first) {
		return 0, nil, fmt.Errorf("invalid position: %s", first)
	}
	n, err := strconv.Atoi(first)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid position: %s", first)
	}
	if n < 1 {
		return 0, nil, fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	return n, args[1:], nil
}

// isAllDigits returns true if s consists only of digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// itemAt returns the item at a 1-based position in the current snapshot.
// Positions are the numbers printed by list and products.
func itemAt[T any](ctx context.Context, watch func(context.Context) service.Snapshots[T], n int) (T, error) {
	var zero T

	items, err := service.First(ctx, watch)
	if err != nil {
		return zero, err
	}
	if n < 1 || n > len(items) {
		return zero, fmt.Errorf("%w: %d", ErrOutOfRange, n)
	}
	return items[n-1], nil
}

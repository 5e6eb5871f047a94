package tracknum

import (
	"context"
	"regexp"
	"testing"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var trackingNumberRe = regexp.MustCompile(`^[0123456789ABCDEFGHJKLMNPQRSTUVWXYZ]{12}$`)

func TestAllocator_Generate_Format(t *testing.T) {
	a := New()
	for i := 0; i < 100; i++ {
		n, err := a.Generate()
		require.NoError(t, err)
		require.Regexp(t, trackingNumberRe, n)
	}
}

func TestAllocator_Generate_NoCollisionsInSession(t *testing.T) {
	a := New()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n, err := a.Generate()
		require.NoError(t, err)
		_, dup := seen[n]
		require.False(t, dup, "duplicate tracking number %s", n)
		seen[n] = struct{}{}
	}
}

func TestAllocator_Allocate_RetriesOnCollision(t *testing.T) {
	a := New()
	calls := 0
	exists := func(ctx context.Context, tn string) (bool, error) {
		calls++
		// первые две попытки "заняты"
		return calls <= 2, nil
	}

	n, err := a.Allocate(context.Background(), exists)
	require.NoError(t, err)
	require.Regexp(t, trackingNumberRe, n)
	require.Equal(t, 3, calls)
}

func TestAllocator_Allocate_Exhausted(t *testing.T) {
	a := New()
	calls := 0
	exists := func(ctx context.Context, tn string) (bool, error) {
		calls++
		return true, nil
	}

	_, err := a.Allocate(context.Background(), exists)
	require.ErrorIs(t, err, apperr.ErrAllocationExhausted)
	require.Equal(t, DefaultMaxAttempts, calls)
}

func TestAllocator_Allocate_ExistsError(t *testing.T) {
	a := New()
	want := errors.New("db down")
	_, err := a.Allocate(context.Background(), func(ctx context.Context, tn string) (bool, error) {
		return false, want
	})
	require.ErrorIs(t, err, want)
}

func TestNewWithConfig_Defaults(t *testing.T) {
	a := NewWithConfig("", 0, 0)
	require.Equal(t, DefaultLength, a.Length())
	require.Equal(t, DefaultMaxAttempts, a.MaxAttempts())

	b := NewWithConfig("AB", 4, 2)
	n, err := b.Generate()
	require.NoError(t, err)
	require.Len(t, n, 4)
	require.Regexp(t, `^[AB]{4}$`, n)
}

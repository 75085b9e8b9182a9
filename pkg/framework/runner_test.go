package framework

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerWait(t *testing.T) {
	errA, errB := errors.New("a"), errors.New("b")
	testCases := []struct {
		name   string
		errs   []error
		expect func(*testing.T, error)
	}{
		{
			name:   "all canceled",
			errs:   []error{context.Canceled, context.Canceled},
			expect: func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			name:   "single error",
			errs:   []error{context.Canceled, errA},
			expect: func(t *testing.T, err error) { require.Equal(t, errA, err) },
		},
		{
			name: "aggregated",
			errs: []error{errA, nil, errB},
			expect: func(t *testing.T, err error) {
				require.IsType(t, &AggregatedError{}, err)
				require.ErrorIs(t, err, errA)
				require.ErrorIs(t, err, errB)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRunner()
			for n, err := range tc.errs {
				err := err
				r.Go(NamedRun(tc.name+string(rune('0'+n)), RunFunc(func(context.Context) error { return err })))
			}
			tc.expect(t, r.Wait())
		})
	}
}

func TestRunWithContextCloser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	unblock := make(chan struct{})
	var closes int
	closer := closerFunc(func() error {
		closes++
		close(unblock)
		return nil
	})
	cancel()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("read on closed port")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closes)

	closes = 0
	err = RunWithContextCloser(context.Background(), closerFunc(func() error { closes++; return nil }), func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closes)
}

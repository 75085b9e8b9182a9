package aldl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbolQueue(t *testing.T) {
	q := NewSymbolQueue(3)
	require.Equal(t, 4, q.Cap())

	_, ok := q.Pop()
	require.False(t, ok)

	for _, s := range []Symbol{One, Zero, Ambiguous, One} {
		require.True(t, q.Push(s))
	}
	require.False(t, q.Push(Zero))
	require.Equal(t, uint64(1), q.Overruns())
	require.Equal(t, 4, q.Len())

	for _, expect := range []Symbol{One, Zero} {
		s, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, expect, s)
	}
	require.True(t, q.Push(Zero))
	require.Equal(t, 3, q.Drain())
	require.Equal(t, 0, q.Len())
	_, ok = q.Pop()
	require.False(t, ok)
}

func TestSymbolQueueConcurrent(t *testing.T) {
	const total = 10000
	q := NewSymbolQueue(16)
	go func() {
		for i := 0; i < total; {
			if q.Push(Symbol(i % 3)) {
				i++
			}
		}
	}()
	for i := 0; i < total; {
		s, ok := q.Pop()
		if !ok {
			<-q.Ready()
			continue
		}
		require.Equal(t, Symbol(i%3), s)
		i++
	}
}

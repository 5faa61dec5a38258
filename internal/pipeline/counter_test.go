package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductionCounterSequential(t *testing.T) {
	c := NewProductionCounter()

	for want := 1; want <= 3; want++ {
		got, err := c.TryClaimNext(3)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := c.TryClaimNext(3)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 3, c.Claimed())
}

func TestProductionCounterZeroMax(t *testing.T) {
	c := NewProductionCounter()
	_, err := c.TryClaimNext(0)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 0, c.Claimed())
}

func TestProductionCounterConcurrentClaims(t *testing.T) {
	for _, producers := range []int{1, 2, 7, 32} {
		const max = 1000
		c := NewProductionCounter()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			claims = make(map[int]int)
		)
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					index, err := c.TryClaimNext(max)
					if err != nil {
						require.ErrorIs(t, err, ErrExhausted)
						return
					}
					mu.Lock()
					claims[index]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Len(t, claims, max, "producers=%d", producers)
		for index, n := range claims {
			require.Equal(t, 1, n, "index %d claimed %d times", index, n)
			require.True(t, index >= 1 && index <= max)
		}
		require.Equal(t, max, c.Claimed())
	}
}

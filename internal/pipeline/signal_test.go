package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompletionSignal(t *testing.T) {
	s := NewCompletionSignal()
	require.False(t, s.IsSet())

	select {
	case <-s.Done():
		t.Fatal("signal closed before Set")
	default:
	}

	s.Set()
	require.True(t, s.IsSet())
	<-s.Done()

	require.PanicsWithError(t, "invariant violation: completion signal set twice", s.Set)
	require.True(t, s.IsSet())
}

func TestItemLabel(t *testing.T) {
	require.Equal(t, "Item-1", NewItem(1).Label())
	require.Equal(t, "Item-15", NewItem(15).String())
}

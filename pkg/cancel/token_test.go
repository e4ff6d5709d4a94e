package cancel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_CancelIsIdempotent(t *testing.T) {
	tok := New()
	assert.False(t, tok.IsCancelled())

	tok.Cancel()
	tok.Cancel()
	tok.Cancel()

	assert.True(t, tok.IsCancelled())
	select {
	case <-tok.Cancelled():
	default:
		t.Fatal("expected Cancelled() channel to be closed")
	}
}

func TestToken_ChildCancelledWithParent(t *testing.T) {
	parent := New()
	child := parent.Child()
	grandchild := child.Child()

	require.False(t, child.IsCancelled())
	require.False(t, grandchild.IsCancelled())

	parent.Cancel()

	waitCancelled(t, child)
	waitCancelled(t, grandchild)
}

func TestToken_ChildCanCancelIndependently(t *testing.T) {
	parent := New()
	childA := parent.Child()
	childB := parent.Child()

	childA.Cancel()

	assert.True(t, childA.IsCancelled())
	assert.False(t, childB.IsCancelled())
	assert.False(t, parent.IsCancelled())
}

func TestToken_ChildOfCancelledParentStartsCancelled(t *testing.T) {
	parent := New()
	parent.Cancel()

	child := parent.Child()
	assert.True(t, child.IsCancelled())
}

func waitCancelled(t *testing.T, tok Token) {
	t.Helper()
	select {
	case <-tok.Cancelled():
	case <-time.After(time.Second):
		t.Fatal("token was not cancelled within the bounded wait")
	}
}

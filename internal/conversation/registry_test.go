package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	clientmock "gitlab.com/timkado/api/lead-console/internal/apiclient/mock"
)

func TestRegistry_Get(t *testing.T) {
	reg := NewRegistry(2, 0, clientmock.NewClientMock())

	a1 := reg.Get("L1")
	assert.Same(t, a1, reg.Get("L1"))
	assert.NotSame(t, a1, reg.Get("L2"))
	assert.Equal(t, 2, reg.Len())

	// L2 was used last, so adding L3 evicts L1.
	reg.Get("L3")
	_, ok := reg.Peek("L1")
	assert.False(t, ok)
	_, ok = reg.Peek("L2")
	assert.True(t, ok)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Expiry(t *testing.T) {
	reg := NewRegistry(4, 20*time.Millisecond, clientmock.NewClientMock())
	first := reg.Get("L1")

	assert.Eventually(t, func() bool {
		_, ok := reg.Peek("L1")
		return !ok
	}, time.Second, 10*time.Millisecond)
	assert.NotSame(t, first, reg.Get("L1"))
}

func TestRegistry_MinimumSize(t *testing.T) {
	reg := NewRegistry(0, 0, clientmock.NewClientMock())
	reg.Get("L1")
	assert.Equal(t, 1, reg.Len())
}

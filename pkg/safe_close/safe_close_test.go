package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeClose_WaitsForAttached(t *testing.T) {
	sc := NewSafeClose()
	var stopped atomic.Int32

	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			stopped.Add(1)
		})
	}

	cause := errors.New("shutdown")
	sc.SendCloseSignal(cause)
	sc.SendCloseSignal(errors.New("ignored"))

	assert.Equal(t, cause, sc.WaitClosed())
	assert.Equal(t, int32(3), stopped.Load())
}

func TestSafeClose_NilCause(t *testing.T) {
	sc := NewSafeClose()
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())

	select {
	case <-sc.CloseSignal():
	default:
		t.Fatal("close signal not delivered")
	}
}

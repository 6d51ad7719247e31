package runloop

import (
	"errors"
	"testing"
)

func TestPanicError_UnwrapsToRecoveredError(t *testing.T) {
	boom := errors.New("boom")
	pe := &PanicError{Value: boom}
	if !errors.Is(pe, boom) {
		t.Fatal("expected errors.Is to see through to the recovered error")
	}
}

func TestErrClosedAndErrReentrantTLS_AreDistinct(t *testing.T) {
	if errors.Is(ErrClosed, ErrReentrantTLS) {
		t.Fatal("expected distinct sentinel errors")
	}
}

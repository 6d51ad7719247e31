package runloop

import (
	"context"

	"github.com/joeycumines/runloop/internal/task"
)

// ctxDoneFuture resolves once ctx is done. It backs RunWorkers' common
// "drive until shutdown" pattern.
type ctxDoneFuture struct{ ctx context.Context }

func (f ctxDoneFuture) Poll(w task.Waker) (struct{}, bool) {
	select {
	case <-f.ctx.Done():
		return struct{}{}, true
	default:
	}
	go func() {
		<-f.ctx.Done()
		w.Wake()
	}()
	return struct{}{}, false
}

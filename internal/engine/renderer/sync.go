package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/objpick/internal/engine/gpu"
)

// pollInterval bounds each ClientWaitSync call so ctx is checked regularly.
const pollInterval = uint64(time.Millisecond)

var errWaitFailed = errors.New("glClientWaitSync failed")

// fenceAndWait inserts a fence after all commands issued so far and blocks
// until the GPU passes it.
func fenceAndWait(ctx context.Context) error {
	sync := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	defer gl.DeleteSync(sync)

	return waitFence(ctx, func(flags uint32, timeout uint64) uint32 {
		return gl.ClientWaitSync(sync, flags, timeout)
	})
}

// waitFence polls until the fence signals, fails, or ctx is done. The first
// poll flushes so the fence is guaranteed to reach the GPU.
func waitFence(ctx context.Context, poll func(flags uint32, timeout uint64) uint32) error {
	flags := uint32(gl.SYNC_FLUSH_COMMANDS_BIT)
	for {
		switch poll(flags, pollInterval) {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			return nil
		case gl.WAIT_FAILED:
			return errWaitFailed
		}
		flags = 0

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", gpu.ErrWaitTimeout, ctx.Err())
		default:
		}
	}
}

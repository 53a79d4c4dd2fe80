package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/watcher"
)

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var calls [][]string

		d := watcher.NewDebouncer(100*time.Millisecond, func(paths []string) {
			calls = append(calls, paths)
		})

		d.Add("/project/src/c.js")
		d.Add("/project/src/a.js")
		d.Add("/project/src/c.js")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/project/src/a.js", "/project/src/c.js"}, calls[0])
	})
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			callCount++
		})

		d.Add("/a")
		time.Sleep(80 * time.Millisecond)
		d.Add("/b")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, callCount)

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 1, callCount)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var received []string

		d := watcher.NewDebouncer(time.Hour, func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, paths...)
		})

		d.Add("/a")
		d.Flush()

		mu.Lock()
		assert.Equal(t, []string{"/a"}, received)
		mu.Unlock()

		// Nothing pending, nothing delivered.
		d.Flush()
		mu.Lock()
		assert.Len(t, received, 1)
		mu.Unlock()
	})
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var callCount int

		d := watcher.NewDebouncer(100*time.Millisecond, func([]string) {
			callCount++
		})

		d.Add("/a")
		d.Stop()

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, 0, callCount)
	})
}

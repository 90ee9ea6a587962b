package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCachesUntilInvalidated(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func() ([]int, error) {
		calls++
		return []int{calls}, nil
	}

	first, err := Load(c, "practice", "all", load)
	require.NoError(t, err)
	second, err := Load(c, "practice", "all", load)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	c.Invalidate("practice")

	third, err := Load(c, "practice", "all", load)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, third)
}

func TestInvalidateOnlyTouchesEntity(t *testing.T) {
	c := New(time.Minute)
	_, _ = Load(c, "practice", "a", func() (int, error) { return 1, nil })
	_, _ = Load(c, "planner", "a", func() (int, error) { return 2, nil })

	c.Invalidate("practice")

	assert.Equal(t, 1, c.Len())
	v, err := Load(c, "planner", "a", func() (int, error) { return 99, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestEntriesExpire(t *testing.T) {
	c := New(20 * time.Millisecond)
	calls := 0
	load := func() (int, error) { calls++; return calls, nil }

	_, _ = Load(c, "mock", "", load)
	time.Sleep(60 * time.Millisecond)
	v, err := Load(c, "mock", "", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(time.Minute)
	boom := errors.New("boom")

	_, err := Load(c, "mock", "", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := Load(c, "mock", "", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestInvalidateDuringLoadDiscardsResult(t *testing.T) {
	c := New(time.Minute)

	_, err := Load(c, "planner", "", func() (string, error) {
		c.Invalidate("planner")
		return "stale", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentLoadsCoalesce(t *testing.T) {
	c := New(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Load(c, "practice", "", func() (int, error) {
				calls.Add(1)
				<-release
				return 1, nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, 1, c.Len())
}

func TestLoadAfterInvalidateDoesNotJoinEarlierLoad(t *testing.T) {
	c := New(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})

	staleDone := make(chan string)
	go func() {
		v, _ := Load(c, "practice", "", func() (string, error) {
			close(started)
			<-release
			return "rows-before-write", nil
		})
		staleDone <- v
	}()
	<-started

	c.Invalidate("practice")

	fresh, err := Load(c, "practice", "", func() (string, error) {
		return "rows-after-write", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rows-after-write", fresh)

	close(release)
	assert.Equal(t, "rows-before-write", <-staleDone)

	cached, err := Load(c, "practice", "", func() (string, error) {
		return "reloaded", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "rows-after-write", cached)
}

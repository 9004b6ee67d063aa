package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBusy = errors.New("RESOURCE_BUSY")

// fakeSleeper records requested waits without blocking.
type fakeSleeper struct {
	waits []time.Duration
}

func (f *fakeSleeper) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.waits = append(f.waits, d)
	return nil
}

func (f *fakeSleeper) total() time.Duration {
	var sum time.Duration
	for _, w := range f.waits {
		sum += w
	}
	return sum
}

func failTimes(n int, err error) (func(context.Context) error, *int) {
	attempts := 0
	return func(context.Context) error {
		attempts++
		if attempts <= n {
			return err
		}
		return nil
	}, &attempts
}

func TestDo_Success(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(0, nil)
	sleeper := &fakeSleeper{}

	res, err := Do(context.Background(), op, WithSleep(sleeper.sleep))

	require.NoError(t, err)
	assert.Equal(t, 1, *attempts)
	assert.Equal(t, Result{Attempts: 1}, res)
	assert.Empty(t, sleeper.waits)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(3, errBusy)
	sleeper := &fakeSleeper{}

	res, err := Do(context.Background(), op,
		WithInterval(10*time.Second),
		WithSleep(sleeper.sleep))

	require.NoError(t, err)
	assert.Equal(t, 4, *attempts)
	assert.Equal(t, 4, res.Attempts)
	assert.Equal(t, 30*time.Second, res.Waited)
	assert.Equal(t, 30*time.Second, sleeper.total())
}

func TestDo_NonRetryableReturnsOriginalError(t *testing.T) {
	t.Parallel()
	permanent := errors.New("invalid_input")
	op, attempts := failTimes(5, permanent)
	sleeper := &fakeSleeper{}

	_, err := Do(context.Background(), op,
		WithRetryIf(func(err error) bool { return errors.Is(err, errBusy) }),
		WithSleep(sleeper.sleep))

	assert.Same(t, permanent, err)
	assert.Equal(t, 1, *attempts)
	assert.Empty(t, sleeper.waits)
}

func TestDo_MaxAttempts(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(100, errBusy)
	sleeper := &fakeSleeper{}

	res, err := Do(context.Background(), op,
		WithMaxAttempts(3),
		WithInterval(time.Second),
		WithSleep(sleeper.sleep))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, 3, *attempts)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, sleeper.waits, 2)
}

func TestDo_MaxElapsed(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(100, errBusy)
	sleeper := &fakeSleeper{}

	res, err := Do(context.Background(), op,
		WithInterval(10*time.Second),
		WithMaxElapsed(25*time.Second),
		WithSleep(sleeper.sleep))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, *attempts)
	assert.Equal(t, 20*time.Second, res.Waited)
}

func TestDo_OnRetryHook(t *testing.T) {
	t.Parallel()
	op, _ := failTimes(2, errBusy)
	var seen []int

	_, err := Do(context.Background(), op,
		WithInterval(time.Millisecond),
		WithOnRetry(func(attempt int, err error, wait time.Duration) {
			assert.ErrorIs(t, err, errBusy)
			assert.Equal(t, time.Millisecond, wait)
			seen = append(seen, attempt)
		}),
		WithSleep((&fakeSleeper{}).sleep))

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(100, errBusy)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, op, WithInterval(10*time.Millisecond))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *attempts)
}

func TestDo_ContextTimeoutDuringRealSleep(t *testing.T) {
	t.Parallel()
	op, attempts := failTimes(100, errBusy)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Do(ctx, op, WithInterval(time.Hour))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, *attempts)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestSleep(t *testing.T) {
	t.Parallel()
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
}

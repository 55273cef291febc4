package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(_ context.Context, cutoff time.Time) (int64, error) {
	p.calls.Add(1)
	return 3, p.err
}

func TestTokenPurgeRunsPeriodically(t *testing.T) {
	sc, err := New(zap.NewNop())
	require.NoError(t, err)
	p := &countingPurger{}
	require.NoError(t, sc.AddTokenPurge(p, 20*time.Millisecond))

	sc.Start()
	assert.Eventually(t, func() bool { return p.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, sc.Shutdown())
}

func TestPurgeErrorIsLogged(t *testing.T) {
	sc, err := New(zap.NewNop())
	require.NoError(t, err)
	p := &countingPurger{err: errors.New("db gone")}
	sc.purge(p)
	assert.EqualValues(t, 1, p.calls.Load())
}

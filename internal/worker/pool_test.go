package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/recallcards/internal/worker"
)

type recordJob struct {
	n   int
	mu  *sync.Mutex
	out *[]int
	err error
}

func (j recordJob) Name() string { return "record" }

func (j recordJob) Run(context.Context) error {
	j.mu.Lock()
	*j.out = append(*j.out, j.n)
	j.mu.Unlock()
	return j.err
}

func TestPool_SingleWorkerKeepsOrder(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())

	var mu sync.Mutex
	var got []int
	for i := 0; i < 50; i++ {
		var err error
		if i%7 == 0 {
			err = errors.New("job failed")
		}
		require.NoError(t, pool.Submit(recordJob{n: i, mu: &mu, out: &got, err: err}))
	}
	pool.Stop()

	require.Len(t, got, 50)
	for i, n := range got {
		assert.Equal(t, i, n)
	}
}

func TestPool_StopDrainsAfterCancel(t *testing.T) {
	pool := worker.NewPool(2, 16)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	var got []int
	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Submit(recordJob{n: i, mu: &mu, out: &got}))
	}
	cancel()
	pool.Start(ctx)
	pool.Stop()

	assert.Len(t, got, 10)
}

func TestPool_SubmitAfterStop(t *testing.T) {
	pool := worker.NewPool(1, 1)
	pool.Start(context.Background())
	pool.Stop()
	pool.Stop()

	var mu sync.Mutex
	var got []int
	err := pool.Submit(recordJob{mu: &mu, out: &got})
	assert.ErrorIs(t, err, worker.ErrPoolStopped)
	assert.Equal(t, 0, pool.QueueSize())
}

package custody

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLocker struct {
	mu       sync.Mutex
	acquired []string
	released []string
	failOn   string
}

func (l *recordingLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == l.failOn {
		return nil, errors.New("busy")
	}
	l.acquired = append(l.acquired, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.released = append(l.released, key)
	}, nil
}

func TestAcquireAll(t *testing.T) {
	t.Run("sorted and deduplicated", func(t *testing.T) {
		l := &recordingLocker{}
		release, err := AcquireAll(context.Background(), l, "c", "a", "b", "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, l.acquired)
		release()
		assert.Equal(t, []string{"c", "b", "a"}, l.released)
	})

	t.Run("partial failure releases what was taken", func(t *testing.T) {
		l := &recordingLocker{failOn: "b"}
		_, err := AcquireAll(context.Background(), l, "a", "b", "c")
		require.Error(t, err)
		assert.Equal(t, []string{"a"}, l.acquired)
		assert.Equal(t, []string{"a"}, l.released)
	})
}

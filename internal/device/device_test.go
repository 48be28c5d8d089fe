package device

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingSource struct {
	frames atomic.Int64
}

func (c *countingSource) Render(out []float32) int {
	c.frames.Add(int64(len(out)))
	return len(out)
}

func TestOpen_Kinds(t *testing.T) {
	src := &countingSource{}
	logger := zaptest.NewLogger(t)

	out, err := Open(KindNone, src, 48000, logger)
	require.NoError(t, err)
	assert.Equal(t, KindNone, out.Name())
	assert.IsType(t, Offline{}, out)

	out, err = Open(KindNull, src, 48000, nil)
	require.NoError(t, err)
	assert.Equal(t, KindNull, out.Name())
	require.NoError(t, out.Close())

	_, err = Open("speaker", src, 48000, logger)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Open(KindNull, nil, 48000, logger)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNull_PumpsInRealTime(t *testing.T) {
	src := &countingSource{}
	n := NewNull(src, 48000)
	require.NoError(t, n.Resume())
	require.NoError(t, n.Resume(), "resume is idempotent")

	require.Eventually(t, func() bool { return src.frames.Load() > 0 },
		5*time.Second, time.Millisecond)

	require.NoError(t, n.Suspend())
	stopped := src.frames.Load()
	time.Sleep(5 * nullPeriod)
	assert.Equal(t, stopped, src.frames.Load(), "no rendering while suspended")

	require.NoError(t, n.Close())
	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Resume(), ErrUnavailable)
}

func TestOffline_NeverRenders(t *testing.T) {
	var o Output = Offline{}
	require.NoError(t, o.Resume())
	require.NoError(t, o.Suspend())
	require.NoError(t, o.Close())
}

package viewport

import (
	"testing"
	"travel-map-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	zooms []float64
	moves int
}

func (l *recordingListener) OnZoomEnd(zoom float64) { l.zooms = append(l.zooms, zoom) }
func (l *recordingListener) OnMoveEnd()             { l.moves++ }

func TestRemoteUninitializedCenter(t *testing.T) {
	r := NewRemote(nil, 10)
	_, ok := r.Center()
	assert.False(t, ok)

	r.ReportMoveEnd(domain.Coordinates{Lat: 1, Lon: 2})
	c, ok := r.Center()
	require.True(t, ok)
	assert.Equal(t, domain.Coordinates{Lat: 1, Lon: 2}, c)
}

func TestRemoteQueuesCommandsInOrder(t *testing.T) {
	r := NewRemote(&domain.Coordinates{Lat: 40.7506, Lon: -73.9935}, 10)
	r.SetCenter(domain.Coordinates{Lat: 34, Lon: -118})
	r.ZoomTo(12)
	r.FlyTo(domain.Coordinates{Lat: 35, Lon: -119})

	cmds := r.CommandsSince(0)
	require.Len(t, cmds, 3)
	assert.Equal(t, domain.ViewportSetCenter, cmds[0].Kind)
	assert.Equal(t, domain.ViewportZoomTo, cmds[1].Kind)
	assert.Equal(t, 12.0, *cmds[1].Zoom)
	assert.Equal(t, domain.ViewportFlyTo, cmds[2].Kind)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{cmds[0].Seq, cmds[1].Seq, cmds[2].Seq})

	assert.Len(t, r.CommandsSince(2), 1)
	assert.Empty(t, r.CommandsSince(3))

	// Commands never move the mirrored center; only the widget's report does.
	c, _ := r.Center()
	assert.Equal(t, 40.7506, c.Lat)
}

func TestRemoteBoundsBacklog(t *testing.T) {
	r := NewRemote(nil, 10)
	for i := 0; i < maxQueuedCommands+10; i++ {
		r.ZoomTo(float64(i))
	}

	cmds := r.CommandsSince(0)
	require.Len(t, cmds, maxQueuedCommands)
	assert.Equal(t, uint64(11), cmds[0].Seq)
}

func TestRemoteNotifiesAndUnsubscribes(t *testing.T) {
	r := NewRemote(nil, 10)
	a, b := &recordingListener{}, &recordingListener{}
	unsubA := r.Subscribe(a)
	r.Subscribe(b)

	r.ReportZoomEnd(12)
	r.ReportMoveEnd(domain.Coordinates{})
	unsubA()
	r.ReportZoomEnd(9)

	assert.Equal(t, []float64{12}, a.zooms)
	assert.Equal(t, 1, a.moves)
	assert.Equal(t, []float64{12, 9}, b.zooms)
	assert.Equal(t, 9.0, r.Zoom())
}

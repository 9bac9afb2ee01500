package stream

import (
	"bytes"
	"slices"
	"testing"
	"travel-map-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientDeliversInOrder(t *testing.T) {
	c := NewClient(4)
	c.Publish(domain.ViewModel{Version: 1})
	c.Publish(domain.ViewModel{Version: 2})

	assert.Equal(t, uint64(1), (<-c.Views()).Version)
	assert.Equal(t, uint64(2), (<-c.Views()).Version)
	assert.Zero(t, c.Dropped())
}

func TestClientDropsOldestAndKeepsCommands(t *testing.T) {
	c := NewClient(1)
	zoom := 12.0
	c.Publish(domain.ViewModel{Version: 1, Commands: []domain.ViewportCommand{{Seq: 1, Kind: domain.ViewportSetCenter}}})
	c.Publish(domain.ViewModel{Version: 2, Commands: []domain.ViewportCommand{{Seq: 2, Kind: domain.ViewportZoomTo, Zoom: &zoom}}})
	c.Publish(domain.ViewModel{Version: 3})

	vm := <-c.Views()
	assert.Equal(t, uint64(3), vm.Version)
	require.Len(t, vm.Commands, 2)
	assert.Equal(t, uint64(1), vm.Commands[0].Seq)
	assert.Equal(t, uint64(2), vm.Commands[1].Seq)
	assert.Equal(t, uint64(2), c.Dropped())
}

func TestClientKeepsCommandOrderWhenQueueOverflows(t *testing.T) {
	c := NewClient(2)
	for i := uint64(1); i <= 5; i++ {
		c.Publish(domain.ViewModel{Version: i, Commands: []domain.ViewportCommand{{Seq: i, Kind: domain.ViewportFlyTo}}})
	}

	var seqs []uint64
	var versions []uint64
	for len(c.Views()) > 0 {
		vm := <-c.Views()
		versions = append(versions, vm.Version)
		for _, cmd := range vm.Commands {
			seqs = append(seqs, cmd.Seq)
		}
	}

	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, seqs)
	assert.Equal(t, uint64(5), versions[len(versions)-1])
	assert.True(t, slices.IsSorted(versions))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, "view", 7, []byte("{\"a\":1}\n{\"b\":2}")))
	assert.Equal(t, "id: 7\nevent: view\ndata: {\"a\":1}\ndata: {\"b\":2}\n\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteComment(&buf, "keepalive"))
	assert.Equal(t, ": keepalive\n\n", buf.String())
}

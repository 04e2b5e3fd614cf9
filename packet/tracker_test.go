package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerContiguous(t *testing.T) {
	var tr Tracker
	for _, seq := range []uint16{7, 8, 9, 10} {
		assert.Zero(t, tr.Observe(seq))
	}
	assert.Equal(t, uint64(4), tr.Received)
	assert.Zero(t, tr.Lost)
}

func TestTrackerGapAcrossWrap(t *testing.T) {
	var tr Tracker
	assert.Zero(t, tr.Observe(65534))
	assert.Equal(t, uint16(2), tr.Observe(1))
	assert.Zero(t, tr.Observe(2))
	assert.Equal(t, uint64(2), tr.Lost)
	assert.Equal(t, uint64(3), tr.Received)
}

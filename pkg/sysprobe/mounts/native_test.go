package mounts

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNative_RealMountTable(t *testing.T) {
	q, err := Native()
	if errors.Is(err, ErrUnsupported) {
		t.Skip("mount table not supported on this platform")
	}
	require.NoError(t, err)

	records, err := q.Records()
	require.NoError(t, err)

	for _, r := range records {
		assert.NotEmpty(t, r.MountPoint)
		assert.False(t, strings.HasPrefix(r.Device, DevicePrefix), "device %q kept its prefix", r.Device)
	}

	_, err = QueryAll()
	require.NoError(t, err)
}

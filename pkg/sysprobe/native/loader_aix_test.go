//go:build aix && cgo

package native

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoader_BindsPerfstatMember(t *testing.T) {
	binding, err := Resolve(DefaultLoader(), Perfstat())
	require.NoError(t, err)

	assert.Contains(t, binding.Image(), "/usr/lib/libperfstat.a(")
	assert.Equal(t, PerfstatFlags, binding.Flags())
	addr, ok := binding.Symbol("perfstat_cpu_total")
	assert.True(t, ok)
	assert.NotZero(t, addr)
}

func TestDefaultLoader_MissingMember(t *testing.T) {
	_, err := DefaultLoader().Open("/usr/lib/libperfstat.a(missing.o)", PerfstatFlags)
	assert.ErrorIs(t, err, ErrImageUnavailable)
}

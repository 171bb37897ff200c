package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/mounts"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() *Report {
	return &Report{
		Mounts: []mounts.Record{
			{Device: "disk3s1", MountPoint: "/", FSType: "apfs", Total: 1 << 30, Free: 1 << 29, Avail: 1 << 28},
			{Device: "disk4s1", MountPoint: "/Volumes/USB", FSType: "msdos", Total: 2048, Free: 1024, Avail: 1024},
		},
		MountMap: mounts.MountMap{
			"disk4s1": "/Volumes/USB",
			"disk3s1": "/",
		},
	}
}

func render(t *testing.T, name string, r *Report) string {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"csv", "json", "plain", "table", "tsv", "yaml"}, Available())

	_, err := Get("xml")
	assert.ErrorContains(t, err, "unknown formatter: xml")

	r := NewRegistry()
	calls := 0
	r.Register("json", func() Formatter {
		calls++
		return &JSONFormatter{}
	})
	_, err = r.Get("json")
	require.NoError(t, err)
	_, err = r.Get("json")
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "each Get calls the factory")
}

func TestJSONFormatter(t *testing.T) {
	out := render(t, "json", sampleReport())

	var decoded Report
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *sampleReport(), decoded)
	assert.NotContains(t, out, "platforms")
	assert.NotContains(t, out, "binding")
	assert.Contains(t, out, `"mount_point": "/Volumes/USB"`)
}

func TestYAMLFormatter(t *testing.T) {
	r := &Report{Platforms: platform.All()[:2]}
	out := render(t, "yaml", r)

	var decoded Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, r.Platforms, decoded.Platforms)
	assert.Contains(t, out, "name: Linux")
}

func TestTSVFormatter(t *testing.T) {
	out := render(t, "tsv", &Report{MountMap: sampleReport().MountMap})

	assert.Equal(t, "DEVICE\tMOUNT POINT\ndisk3s1\t/\ndisk4s1\t/Volumes/USB\n", out)
}

func TestCSVFormatter(t *testing.T) {
	out := render(t, "csv", &Report{Mounts: sampleReport().Mounts})

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"DEVICE", "MOUNT POINT", "TYPE", "SIZE", "FREE", "AVAIL"}, rows[0])
	assert.Equal(t, []string{"disk3s1", "/", "apfs", "1073741824", "536870912", "268435456"}, rows[1])
}

func TestPlainFormatter(t *testing.T) {
	out := render(t, "plain", &Report{MountMap: sampleReport().MountMap})

	assert.Equal(t, "disk3s1 /\ndisk4s1 /Volumes/USB\n", out)
}

func TestTableFormatter(t *testing.T) {
	out := render(t, "table", sampleReport())

	assert.Contains(t, out, "Mounts")
	assert.Contains(t, out, "Mount map")
	assert.Contains(t, out, "MOUNT POINT")
	assert.Contains(t, out, "1.0 GiB")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "/Volumes/USB")
}

func TestTableFormatter_Binding(t *testing.T) {
	out := render(t, "table", &Report{Binding: &Binding{
		Capability: "perfstat",
		Flags:      327684,
		FlagNames:  "RTLD_MEMBER|RTLD_GLOBAL|RTLD_LAZY",
		Attempts: []Attempt{
			{Image: "/usr/lib/libperfstat.a(shr_64.o)", Error: "image unavailable"},
		},
	}})

	assert.Contains(t, out, "Binding perfstat")
	assert.Contains(t, out, "false")
	assert.Contains(t, out, "327684 (0x50004, RTLD_MEMBER|RTLD_GLOBAL|RTLD_LAZY)")
	assert.Contains(t, out, "attempt /usr/lib/libperfstat.a(shr_64.o)")
}

func TestEmptyReport(t *testing.T) {
	for _, name := range []string{"table", "plain", "tsv", "csv"} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, render(t, name, &Report{}))
		})
	}
}

func TestChangeSections(t *testing.T) {
	out := render(t, "plain", &Report{
		Added:   mounts.MountMap{"disk4s1": "/Volumes/USB"},
		Removed: mounts.MountMap{"disk5s1": "/Volumes/Old"},
	})

	assert.Equal(t, "disk4s1 /Volumes/USB\ndisk5s1 /Volumes/Old\n", out)
}

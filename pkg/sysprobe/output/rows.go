package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// section is one headed block of tabular rows.
type section struct {
	title  string
	header []string
	rows   [][]string
}

// sections flattens a report into tabular blocks. Sizes are humanized
// when human is true and raw byte counts otherwise.
func sections(r *Report, human bool) []section {
	var out []section

	if len(r.Platforms) > 0 {
		s := section{title: "Platforms", header: []string{"ORDINAL", "NAME"}}
		for _, d := range r.Platforms {
			s.rows = append(s.rows, []string{strconv.Itoa(d.Ordinal), d.Name})
		}
		out = append(out, s)
	}

	if len(r.Mounts) > 0 {
		s := section{title: "Mounts", header: []string{"DEVICE", "MOUNT POINT", "TYPE", "SIZE", "FREE", "AVAIL"}}
		for _, m := range r.Mounts {
			s.rows = append(s.rows, []string{
				m.Device, m.MountPoint, m.FSType,
				size(m.Total, human), size(m.Free, human), size(m.Avail, human),
			})
		}
		out = append(out, s)
	}

	if len(r.MountMap) > 0 {
		s := section{title: "Mount map", header: []string{"DEVICE", "MOUNT POINT"}}
		for _, dev := range sortedDevices(r.MountMap) {
			s.rows = append(s.rows, []string{dev, r.MountMap[dev]})
		}
		out = append(out, s)
	}

	for _, c := range []struct {
		title string
		m     map[string]string
	}{{"Added", r.Added}, {"Removed", r.Removed}} {
		if len(c.m) == 0 {
			continue
		}
		s := section{title: c.title, header: []string{"DEVICE", "MOUNT POINT"}}
		for _, dev := range sortedDevices(c.m) {
			s.rows = append(s.rows, []string{dev, c.m[dev]})
		}
		out = append(out, s)
	}

	if b := r.Binding; b != nil {
		s := section{title: "Binding " + b.Capability, header: []string{"FIELD", "VALUE"}}
		s.rows = append(s.rows,
			[]string{"bound", strconv.FormatBool(b.Bound)},
			[]string{"flags", fmt.Sprintf("%d (0x%x, %s)", b.Flags, b.Flags, b.FlagNames)},
		)
		if b.Image != "" {
			s.rows = append(s.rows, []string{"image", b.Image})
		}
		if len(b.Symbols) > 0 {
			s.rows = append(s.rows, []string{"symbols", strings.Join(b.Symbols, ",")})
		}
		for _, a := range b.Attempts {
			s.rows = append(s.rows, []string{"attempt " + a.Image, a.Error})
		}
		out = append(out, s)
	}

	return out
}

func size(n uint64, human bool) string {
	if human {
		return humanize.IBytes(n)
	}
	return strconv.FormatUint(n, 10)
}

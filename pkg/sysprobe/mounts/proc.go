//go:build linux

package mounts

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// procMount is one parsed line of /proc/self/mounts.
type procMount struct {
	device     []byte
	mountPoint []byte
	fsType     []byte
	stat       unix.Statfs_t
}

// procSource emulates getfsstat over the proc mount table. Each call
// re-reads the file, so the table can change between the sizing and fill
// calls exactly as it can with the kernel interface.
type procSource struct {
	procRoot string
	statfs   func(path string, buf *unix.Statfs_t) error
}

// NamesOnly returns a copy that never calls statfs, so a hung network
// mount cannot block a query that only needs names.
func (p procSource) NamesOnly() Source[procMount] {
	p.statfs = nil
	return p
}

func (p procSource) Getfsstat(buf []procMount, _ int, flags int) (int, error) {
	path := filepath.Join(p.procRoot, "self", "mounts")
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}

	n := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) < 3 {
			continue
		}
		if buf == nil {
			n++
			continue
		}
		if n == len(buf) {
			break
		}

		m := procMount{
			device:     unescapeOctal(fields[0]),
			mountPoint: unescapeOctal(fields[1]),
			fsType:     unescapeOctal(fields[2]),
		}
		if flags&PopulateFlags != 0 && p.statfs != nil {
			// Sizes stay zero where statfs is refused.
			_ = p.statfs(string(m.mountPoint), &m.stat)
		}
		buf[n] = m
		n++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scanning %s: %w", path, err)
	}

	return n, nil
}

// unescapeOctal decodes the \ooo escapes the kernel uses for whitespace
// and backslashes in mount table fields.
func unescapeOctal(field []byte) []byte {
	if bytes.IndexByte(field, '\\') < 0 {
		return bytes.Clone(field)
	}

	out := make([]byte, 0, len(field))
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+3 < len(field) && isOctal(field[i+1]) && isOctal(field[i+2]) && isOctal(field[i+3]) {
			out = append(out, (field[i+1]-'0')<<6|(field[i+2]-'0')<<3|(field[i+3]-'0'))
			i += 3
			continue
		}
		out = append(out, field[i])
	}
	return out
}

func isOctal(c byte) bool {
	return c >= '0' && c <= '7'
}

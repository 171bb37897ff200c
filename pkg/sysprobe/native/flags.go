package native

import (
	"fmt"
	"strings"
)

// OpenFlags is the option value handed to the native loader when an
// image is opened.
type OpenFlags int

// Loader option bits. The values are the native loader's own encoding
// and must not change.
const (
	// RTLDMember treats the target as an archive member, "lib.a(obj.o)".
	RTLDMember OpenFlags = 262144

	// RTLDGlobal makes the image's symbols visible to later loads.
	RTLDGlobal OpenFlags = 65536

	// RTLDLazy defers binding of unresolved symbols until first use.
	RTLDLazy OpenFlags = 4
)

// MemberGlobalLazy is the option set used for archive-member libraries.
const MemberGlobalLazy = RTLDMember | RTLDGlobal | RTLDLazy

var flagNames = []struct {
	flag OpenFlags
	name string
}{
	{RTLDMember, "RTLD_MEMBER"},
	{RTLDGlobal, "RTLD_GLOBAL"},
	{RTLDLazy, "RTLD_LAZY"},
}

// Has reports whether every bit of other is set in f.
func (f OpenFlags) Has(other OpenFlags) bool {
	return f&other == other
}

// String renders the flag names joined by "|", with any unnamed bits in hex.
func (f OpenFlags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", int(rest)))
	}
	return strings.Join(parts, "|")
}

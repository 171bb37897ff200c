//go:build aix && cgo

package native

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// aixLoader calls the system dlopen, which understands RTLD_MEMBER and
// the "archive.a(member.o)" image syntax.
type aixLoader struct{}

// DefaultLoader returns the process-wide dynamic loader.
func DefaultLoader() Loader {
	return aixLoader{}
}

func (aixLoader) Open(image string, flags OpenFlags) (Handle, error) {
	cimage := C.CString(image)
	defer C.free(unsafe.Pointer(cimage))

	// dlerror state is per thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h := C.dlopen(cimage, C.int(flags))
	if h == nil {
		return 0, fmt.Errorf("%w: dlopen %s: %s", ErrImageUnavailable, image, dlerror())
	}
	return Handle(uintptr(h)), nil
}

func (aixLoader) Lookup(h Handle, symbol string) (uintptr, error) {
	csymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(csymbol))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	_ = C.dlerror()
	addr := C.dlsym(unsafe.Pointer(uintptr(h)), csymbol)
	if addr == nil {
		return 0, fmt.Errorf("%w: dlsym %s: %s", ErrSymbolUnavailable, symbol, dlerror())
	}
	return uintptr(addr), nil
}

func dlerror() string {
	msg := C.dlerror()
	if msg == nil {
		return "unknown error"
	}
	return C.GoString(msg)
}

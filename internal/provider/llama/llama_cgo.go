//go:build llama

package llama

// cgo link directives for the in-process runtime: libllama.so is expected
// next to the binary (./bin) at both link and run time.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../../bin -lllama
*/
import "C"

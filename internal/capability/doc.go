// Package capability describes the host environment contract consumed by the
// session manager: providers that create capability instances, the download
// progress event target handed to them, pull-based output streams and the
// language detector.
//
// Nothing in this package performs translation or summarization. Concrete
// hosts live under internal/provider.
package capability

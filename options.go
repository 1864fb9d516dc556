package hubbub

import "strings"

// Options is a small set of named diagnostic capabilities. The zero value
// enables nothing. Options never affect dispatch correctness, only what the
// hub reports to its Diagnostics policy.
//
// A hub carries a sticky default set (see WithDefaults); every operation
// additionally accepts a per-call Options value that replaces the default
// for that call only.
type Options uint8

const (
	// WarnUnknown reports subscribe/notify/attach calls whose type key was
	// never passed to Register.
	WarnUnknown Options = 1 << iota
	// WarnUnhandled reports notify calls that reached zero subscribers and
	// zero chain deliveries.
	WarnUnhandled
	// LogEvents reports one event-logged diagnostic per notify call.
	LogEvents
)

// Has reports whether every capability in flags is enabled.
func (o Options) Has(flags Options) bool {
	return o&flags == flags
}

// With returns a copy of o with flags enabled.
func (o Options) With(flags Options) Options {
	return o | flags
}

// Without returns a copy of o with flags disabled.
func (o Options) Without(flags Options) Options {
	return o &^ flags
}

func (o Options) String() string {
	if o == 0 {
		return "none"
	}
	var names []string
	if o.Has(WarnUnknown) {
		names = append(names, "warn-unknown")
	}
	if o.Has(WarnUnhandled) {
		names = append(names, "warn-unhandled")
	}
	if o.Has(LogEvents) {
		names = append(names, "log-events")
	}
	return strings.Join(names, "|")
}

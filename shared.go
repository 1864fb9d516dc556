package hubbub

import (
	"sync"

	"github.com/alphadose/haxmap"
)

var sharedHub = sync.OnceValue(func() *Hub {
	return New(WithLabel("shared"))
})

// Default returns the lazily-initialized process-wide hub. It is a
// convenience only; nothing in the API requires it, and independent hubs
// created with New do not interact with it.
func Default() *Hub {
	return sharedHub()
}

var namedHubs = haxmap.New[string, *Hub]()

// Named returns the process-wide hub registered under name, creating it on
// first use. Hubs returned for the same name are the same instance; the hub's
// label is the name.
func Named(name string) *Hub {
	h, _ := namedHubs.GetOrCompute(name, func() *Hub {
		return New(WithLabel(name))
	})
	return h
}

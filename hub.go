package hubbub

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/fogfish/opts"
	"github.com/google/uuid"

	"github.com/hubbub-go/hubbub/internal/registry"
	"github.com/hubbub-go/hubbub/pkg/weakbox"
)

// Hub is an in-process publish/subscribe notification hub. Publishers call
// Notify with an event's TypeKey; the hub dispatches the delivery closure to
// every live subscriber of that key and forwards the notification to any
// hubs attached as chains for it.
//
// Subscribers and chains are held through weak references only: the hub
// never keeps either alive, and entries whose referent was collected
// elsewhere in the program vanish on their own, without an explicit Remove.
//
// A Hub is safe for concurrent use. Registry access is serialized through an
// internal guard; the guard is never held while delivery closures run or
// while chained hubs are notified, so subscribers may call back into the hub
// (including removing themselves) from inside a delivery.
type Hub struct {
	label       string
	defaults    Options
	diagnostics Diagnostics
	executor    Executor

	mu       sync.Mutex
	registry *registry.Registry[TypeKey]
}

var (
	// WithLabel sets the human-readable hub label used in diagnostics.
	WithLabel = opts.ForName[Hub, string]("label")
	// WithDefaults sets the hub's sticky default Options.
	WithDefaults = opts.ForName[Hub, Options]("defaults")
	// WithDiagnostics installs a custom Diagnostics policy.
	WithDiagnostics = opts.ForName[Hub, Diagnostics]("diagnostics")
	// WithExecutor installs a custom notification execution context.
	WithExecutor = opts.ForName[Hub, Executor]("executor")
)

// New creates a Hub. Without options it has no diagnostics flags enabled,
// logs through LogDiagnostics, dispatches on GoExecutor, and labels itself
// with a fresh uuid.
func New(options ...opts.Option[Hub]) *Hub {
	h := &Hub{
		label:       uuid.Must(uuid.NewV7()).String(),
		diagnostics: LogDiagnostics{},
		executor:    GoExecutor{},
		registry:    registry.New[TypeKey](),
	}
	if err := opts.Apply(h, options); err != nil {
		panic(err)
	}
	return h
}

// Label returns the hub's diagnostic label.
func (h *Hub) Label() string {
	return h.label
}

// Register records key as a known event type under its type name. Purely
// advisory: it only affects WarnUnknown diagnostics, never dispatch.
func (h *Hub) Register(key TypeKey) {
	h.RegisterNamed(key, key.Name())
}

// RegisterNamed records key under a custom display name.
func (h *Hub) RegisterNamed(key TypeKey, displayName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RegisterType(key, displayName)
}

// Add subscribes subscriber to notifications for key. The subscriber must be
// a non-nil pointer; anything else has no reference identity to track, is
// reported through the Diagnostics policy, and is skipped. Adding the same
// subscriber twice for the same key is a no-op; it still receives exactly
// one delivery per notify.
func (h *Hub) Add(subscriber any, key TypeKey, o ...Options) {
	box, ok := weakbox.Wrap(subscriber)
	if !ok {
		h.diagnostics.InvalidSubscriber(h, typeName(subscriber))
		return
	}
	unknown, known := h.withRegistry(key, h.effective(o), func() {
		h.registry.AddSubscriber(key, box)
	})
	if unknown {
		h.diagnostics.UnknownEvent(h, key, known)
	}
}

// Remove unsubscribes subscriber from key. Removing something never added
// is a no-op.
func (h *Hub) Remove(subscriber any, key TypeKey) {
	box, ok := weakbox.Wrap(subscriber)
	if !ok {
		h.diagnostics.InvalidSubscriber(h, typeName(subscriber))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveSubscriber(key, box)
}

// RemoveAll unsubscribes subscriber from every key it was added for.
func (h *Hub) RemoveAll(subscriber any) {
	box, ok := weakbox.Wrap(subscriber)
	if !ok {
		h.diagnostics.InvalidSubscriber(h, typeName(subscriber))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveSubscriberEverywhere(box)
}

// RemoveAllSubscribers clears every subscription on the hub. Chains are
// unaffected.
func (h *Hub) RemoveAllSubscribers() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveAllSubscribers()
}

// Attach forwards future notifications for key to chain. The chain is held
// weakly: a chained hub that stops being referenced elsewhere simply drops
// out, with no teardown handshake.
func (h *Hub) Attach(chain *Hub, key TypeKey, o ...Options) {
	box, ok := weakbox.Wrap(chain)
	if !ok {
		h.diagnostics.InvalidSubscriber(h, typeName(chain))
		return
	}
	unknown, known := h.withRegistry(key, h.effective(o), func() {
		h.registry.AddChain(key, box)
	})
	if unknown {
		h.diagnostics.UnknownEvent(h, key, known)
	}
}

// Detach stops forwarding notifications for key to chain.
func (h *Hub) Detach(chain *Hub, key TypeKey) {
	box, ok := weakbox.Wrap(chain)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveChain(key, box)
}

// DetachAll stops forwarding to chain for every key.
func (h *Hub) DetachAll(chain *Hub) {
	box, ok := weakbox.Wrap(chain)
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveChainEverywhere(box)
}

// DetachAllChains removes every chain from the hub.
func (h *Hub) DetachAllChains() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry.RemoveAllChains()
}

// Has reports whether subscriber is currently subscribed for key.
// Introspection for tests.
func (h *Hub) Has(subscriber any, key TypeKey) bool {
	box, ok := weakbox.Wrap(subscriber)
	if !ok {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.HasSubscriber(key, box)
}

// HasChain reports whether chain is attached for key.
func (h *Hub) HasChain(chain *Hub, key TypeKey) bool {
	box, ok := weakbox.Wrap(chain)
	if !ok {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.HasChain(key, box)
}

// Notify dispatches deliver to every live subscriber of key, then forwards
// the notification to every chain attached for key. Deliveries are submitted
// to the hub's Executor and not awaited: by the time Notify returns,
// subscriber side effects may not have happened yet, and a panic inside
// deliver is recovered by the executor, never seen by the publisher.
//
// Notify reports whether at least one subscriber was reached, directly or
// through a chain. The result is advisory; no error is ever returned.
func (h *Hub) Notify(key TypeKey, deliver func(subscriber any), o ...Options) bool {
	return h.notify(key, func(sub any) (func(), bool) {
		return func() { deliver(sub) }, true
	}, o, nil)
}

// NotifyAs is like Hub.Notify but narrows each subscriber to the capability
// type C before delivery. Live subscribers that do not implement C are
// silently skipped: an after-the-fact type mismatch is a bookkeeping
// artifact of identity-keyed storage, not a user error.
func NotifyAs[C any](h *Hub, key TypeKey, deliver func(C), o ...Options) bool {
	return h.notify(key, func(sub any) (func(), bool) {
		c, ok := sub.(C)
		if !ok {
			return nil, false
		}
		return func() { deliver(c) }, true
	}, o, nil)
}

// match narrows a live referent to the required capability, yielding the
// closure to schedule when it qualifies.
type match func(subscriber any) (invoke func(), ok bool)

// notify is the dispatch core. path holds the hubs already traversed by the
// current forwarding pass; a chain that is on it is skipped, which keeps
// cyclic chain graphs from recursing forever while still letting diamond
// topologies deliver once per distinct path. The guard is only held for the
// registry snapshot, so at most one hub lock is taken at any instant during
// chain traversal.
func (h *Hub) notify(key TypeKey, m match, overrides []Options, path []*Hub) bool {
	opt := h.effective(overrides)

	h.mu.Lock()
	unknown, known := h.unknownLocked(key, opt)
	subscribers := h.registry.LiveSubscribers(key)
	chains := h.registry.LiveChains(key)
	h.mu.Unlock()

	if unknown {
		h.diagnostics.UnknownEvent(h, key, known)
	}
	if opt.Has(LogEvents) {
		h.diagnostics.EventLogged(h, key)
	}

	handled := 0
	for _, sub := range subscribers {
		invoke, ok := m(sub)
		if !ok {
			continue
		}
		h.executor.Go(invoke)
		handled++
	}

	path = append(path[:len(path):len(path)], h)
	for _, c := range chains {
		chain, ok := c.(*Hub)
		if !ok {
			continue
		}
		if slices.Contains(path, chain) {
			slog.Debug("chained hub already on forwarding path, skipped",
				slog.String("hub", h.label),
				slog.String("chain", chain.label),
				slog.String("event", key.Name()),
			)
			continue
		}
		if chain.notify(key, m, overrides, path) {
			handled++
		}
	}

	if handled == 0 && opt.Has(WarnUnhandled) {
		h.diagnostics.UnhandledEvent(h, key)
	}
	return handled > 0
}

// unknownLocked checks the WarnUnknown condition and snapshots the known
// type names while the guard is held; the diagnostic itself fires after the
// guard is released so policies may call back into the hub.
func (h *Hub) unknownLocked(key TypeKey, opt Options) (bool, []string) {
	if !opt.Has(WarnUnknown) || h.registry.Registered(key) {
		return false, nil
	}
	return true, h.registry.KnownTypeNames()
}

// withRegistry runs mutate under the guard, evaluating the WarnUnknown
// condition in the same critical section.
func (h *Hub) withRegistry(key TypeKey, opt Options, mutate func()) (bool, []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	unknown, known := h.unknownLocked(key, opt)
	mutate()
	return unknown, known
}

func (h *Hub) effective(overrides []Options) Options {
	if len(overrides) > 0 {
		return overrides[len(overrides)-1]
	}
	return h.defaults
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}

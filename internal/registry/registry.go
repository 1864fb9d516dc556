// Package registry keeps the per-hub bookkeeping of subscribers and chained
// hubs: two key-indexed collections of weak boxes plus the record of
// explicitly registered event types. The registry is not safe for concurrent
// use; callers serialize access through the owning hub's guard.
package registry

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/hubbub-go/hubbub/pkg/weakbox"
)

// Registry indexes weak boxes by an arbitrary comparable key.
//
// Both collections hold set semantics: inserting an already-present box is a
// no-op, and a key is only present while at least one live box remains under
// it. Dead boxes are pruned as a side effect of every mutation and every
// live lookup; an empty set is removed rather than stored.
type Registry[K comparable] struct {
	subscribed map[K]map[weakbox.Box]struct{}
	chained    map[K]map[weakbox.Box]struct{}
	known      *orderedmap.OrderedMap[K, string]
}

func New[K comparable]() *Registry[K] {
	return &Registry[K]{
		subscribed: make(map[K]map[weakbox.Box]struct{}),
		chained:    make(map[K]map[weakbox.Box]struct{}),
		known:      orderedmap.New[K, string](),
	}
}

// RegisterType records key as a known event type under the given display
// name. Idempotent; the first registration wins.
func (r *Registry[K]) RegisterType(key K, displayName string) {
	if _, ok := r.known.Get(key); ok {
		return
	}
	r.known.Set(key, displayName)
}

// Registered reports whether key was passed to RegisterType.
func (r *Registry[K]) Registered(key K) bool {
	_, ok := r.known.Get(key)
	return ok
}

// KnownTypeNames returns the display names of all registered types in
// registration order.
func (r *Registry[K]) KnownTypeNames() []string {
	names := make([]string, 0, r.known.Len())
	for pair := r.known.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Value)
	}
	return names
}

func (r *Registry[K]) AddSubscriber(key K, box weakbox.Box) {
	add(r.subscribed, key, box)
}

func (r *Registry[K]) RemoveSubscriber(key K, box weakbox.Box) {
	remove(r.subscribed, key, box)
}

func (r *Registry[K]) RemoveSubscriberEverywhere(box weakbox.Box) {
	removeEverywhere(r.subscribed, box)
}

func (r *Registry[K]) RemoveAllSubscribers() {
	clear(r.subscribed)
}

func (r *Registry[K]) AddChain(key K, box weakbox.Box) {
	add(r.chained, key, box)
}

func (r *Registry[K]) RemoveChain(key K, box weakbox.Box) {
	remove(r.chained, key, box)
}

func (r *Registry[K]) RemoveChainEverywhere(box weakbox.Box) {
	removeEverywhere(r.chained, box)
}

func (r *Registry[K]) RemoveAllChains() {
	clear(r.chained)
}

// HasSubscriber reports whether the candidate box is present under key. No
// pruning is needed first: a dead box never equals a box over a live object.
func (r *Registry[K]) HasSubscriber(key K, candidate weakbox.Box) bool {
	_, ok := r.subscribed[key][candidate]
	return ok
}

func (r *Registry[K]) HasChain(key K, candidate weakbox.Box) bool {
	_, ok := r.chained[key][candidate]
	return ok
}

// LiveSubscribers returns the referents of all live boxes under key, pruning
// dead ones as a side effect. Order is unspecified.
func (r *Registry[K]) LiveSubscribers(key K) []any {
	return live(r.subscribed, key)
}

func (r *Registry[K]) LiveChains(key K) []any {
	return live(r.chained, key)
}

// SubscriberCount returns the number of boxes stored under key, dead ones
// included. Introspection for tests.
func (r *Registry[K]) SubscriberCount(key K) int {
	return len(r.subscribed[key])
}

func (r *Registry[K]) ChainCount(key K) int {
	return len(r.chained[key])
}

func add[K comparable](m map[K]map[weakbox.Box]struct{}, key K, box weakbox.Box) {
	set := m[key]
	if set == nil {
		set = make(map[weakbox.Box]struct{})
		m[key] = set
	}
	set[box] = struct{}{}
	prune(m, key)
}

func remove[K comparable](m map[K]map[weakbox.Box]struct{}, key K, box weakbox.Box) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, box)
	prune(m, key)
}

func removeEverywhere[K comparable](m map[K]map[weakbox.Box]struct{}, box weakbox.Box) {
	for key, set := range m {
		delete(set, box)
		prune(m, key)
	}
}

func live[K comparable](m map[K]map[weakbox.Box]struct{}, key K) []any {
	set, ok := m[key]
	if !ok {
		return nil
	}
	out := make([]any, 0, len(set))
	for box := range set {
		if v, alive := box.Value(); alive {
			out = append(out, v)
		} else {
			delete(set, box)
		}
	}
	if len(set) == 0 {
		delete(m, key)
	}
	return out
}

// prune drops dead boxes under key and removes the set once it empties.
func prune[K comparable](m map[K]map[weakbox.Box]struct{}, key K) {
	set := m[key]
	for box := range set {
		if !box.Alive() {
			delete(set, box)
		}
	}
	if len(set) == 0 {
		delete(m, key)
	}
}

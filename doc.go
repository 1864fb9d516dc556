// Package hubbub is an in-process publish/subscribe notification hub.
// Publishers advertise events by abstract type; interested parties register
// as subscribers for an event type without any coupling between the two. A
// hub dispatches a notification to every live subscriber of the matching
// type and can forward it to other hubs attached as chains.
//
// Design decisions:
//   - Weak registry: subscribers and chains are stored behind weak
//     references. The hub never keeps them alive; entries whose referent was
//     collected elsewhere disappear on their own, without unsubscribing.
//   - Type-keyed routing: events are routed by TypeKey, a process-stable
//     identity derived from a Go type. No subtype matching, no string names.
//   - Lock-free dispatch: registry mutation is serialized through one guard
//     per hub, but the guard is never held while deliveries run or chains
//     are notified, so subscribers may call back into the hub.
//   - Fire and forget: deliveries are submitted to a configurable Executor
//     and not awaited. Notify reports only whether anyone was reached.
//   - Advisory diagnostics: misuse (unknown event types, unhandled events,
//     subscribers without reference identity) is reported through a
//     pluggable Diagnostics policy and never alters dispatch.
//
// Example usage:
//
//	type orderPlaced struct{}
//
//	hub := hubbub.New(hubbub.WithLabel("orders"))
//	key := hubbub.Key[orderPlaced]()
//
//	svc := NewFulfillment()
//	hub.Add(svc, key)
//
//	hub.Notify(key, func(sub any) {
//		sub.(*Fulfillment).OnOrderPlaced()
//	})
//
// Chains compose hubs into a directed forwarding graph:
//
//	root.Attach(leaf, key)
//	root.Notify(key, deliver) // reaches leaf's subscribers too
//
// Cycles in the chain graph are tolerated: a hub already visited on the
// current forwarding path is skipped, while diamond topologies deliver once
// per distinct path by design.
package hubbub

package hubbub

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/hubbub-go/hubbub/pkg/slogx"
)

// Diagnostics receives advisory reports of hub misuse and event traffic. All
// reports are fire-and-forget observability signals: implementations must
// not assume they can alter dispatch, and the hub never inspects their
// outcome. Custom policies are plugged in with WithDiagnostics; tests
// typically install a recording policy.
type Diagnostics interface {
	// UnknownEvent reports an add/notify/attach on a key never registered,
	// with the display names of all registered types.
	UnknownEvent(hub *Hub, key TypeKey, knownTypes []string)
	// UnhandledEvent reports a notify that reached zero subscribers and zero
	// chain deliveries.
	UnhandledEvent(hub *Hub, key TypeKey)
	// InvalidSubscriber reports an add/remove of a value without reference
	// identity.
	InvalidSubscriber(hub *Hub, subscriberType string)
	// EventLogged reports one notify call when LogEvents is active.
	EventLogged(hub *Hub, key TypeKey)
}

// LogDiagnostics is the default policy. It writes one debug-level line per
// report; with a handler that filters debug records it is inert, which keeps
// production hubs silent without configuration.
type LogDiagnostics struct {
	// Logger overrides slog.Default when set.
	Logger *slog.Logger
}

func (d LogDiagnostics) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d LogDiagnostics) UnknownEvent(hub *Hub, key TypeKey, knownTypes []string) {
	d.logger().Debug("notification for unregistered event type",
		slog.String("hub", hub.Label()),
		slogx.Stringer("event", key),
		slog.Any("registered", knownTypes),
	)
}

func (d LogDiagnostics) UnhandledEvent(hub *Hub, key TypeKey) {
	d.logger().Debug("event reached no subscribers or chains",
		slog.String("hub", hub.Label()),
		slogx.Stringer("event", key),
	)
}

func (d LogDiagnostics) InvalidSubscriber(hub *Hub, subscriberType string) {
	d.logger().Debug("subscriber has no reference identity, skipped",
		slog.String("hub", hub.Label()),
		slog.String("subscriber", subscriberType),
	)
}

func (d LogDiagnostics) EventLogged(hub *Hub, key TypeKey) {
	d.logger().Debug("event dispatched",
		slog.String("hub", hub.Label()),
		slogx.Stringer("event", key),
	)
}

// JSONDiagnostics returns a policy that writes one JSON record per report to
// w. Writes are serialized; w need not be safe for concurrent use.
func JSONDiagnostics(w io.Writer) Diagnostics {
	return &jsonDiagnostics{w: w}
}

type jsonDiagnostics struct {
	mu sync.Mutex
	w  io.Writer
}

type diagnosticRecord struct {
	Hub        string   `json:"hub"`
	Kind       string   `json:"kind"`
	Event      string   `json:"event,omitempty"`
	Subscriber string   `json:"subscriber,omitempty"`
	Registered []string `json:"registered,omitempty"`
}

func (d *jsonDiagnostics) emit(rec diagnosticRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// Encode errors are swallowed: diagnostics never become control flow.
	_ = json.NewEncoder(d.w).Encode(rec)
}

func (d *jsonDiagnostics) UnknownEvent(hub *Hub, key TypeKey, knownTypes []string) {
	d.emit(diagnosticRecord{Hub: hub.Label(), Kind: "unknown-event", Event: key.Name(), Registered: knownTypes})
}

func (d *jsonDiagnostics) UnhandledEvent(hub *Hub, key TypeKey) {
	d.emit(diagnosticRecord{Hub: hub.Label(), Kind: "unhandled-event", Event: key.Name()})
}

func (d *jsonDiagnostics) InvalidSubscriber(hub *Hub, subscriberType string) {
	d.emit(diagnosticRecord{Hub: hub.Label(), Kind: "invalid-subscriber", Subscriber: subscriberType})
}

func (d *jsonDiagnostics) EventLogged(hub *Hub, key TypeKey) {
	d.emit(diagnosticRecord{Hub: hub.Label(), Kind: "event-logged", Event: key.Name()})
}

// Fault is the catchable fault raised by a Strict policy after the wrapped
// policy has reported. It exists for test assertions and breakpoint
// debugging; production hubs never enable Strict.
type Fault struct {
	Hub  string
	Kind string
	Name string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("hubbub: %s on hub %q (%s)", f.Kind, f.Hub, f.Name)
}

// Strict wraps next so every misuse report additionally panics with a
// *Fault. Event-logged reports pass through without panicking; they signal
// traffic, not misuse. A nil next defaults to LogDiagnostics.
func Strict(next Diagnostics) Diagnostics {
	if next == nil {
		next = LogDiagnostics{}
	}
	return &strictDiagnostics{next: next}
}

type strictDiagnostics struct {
	next Diagnostics
}

func (s *strictDiagnostics) UnknownEvent(hub *Hub, key TypeKey, knownTypes []string) {
	s.next.UnknownEvent(hub, key, knownTypes)
	panic(&Fault{Hub: hub.Label(), Kind: "unknown-event", Name: key.Name()})
}

func (s *strictDiagnostics) UnhandledEvent(hub *Hub, key TypeKey) {
	s.next.UnhandledEvent(hub, key)
	panic(&Fault{Hub: hub.Label(), Kind: "unhandled-event", Name: key.Name()})
}

func (s *strictDiagnostics) InvalidSubscriber(hub *Hub, subscriberType string) {
	s.next.InvalidSubscriber(hub, subscriberType)
	panic(&Fault{Hub: hub.Label(), Kind: "invalid-subscriber", Name: subscriberType})
}

func (s *strictDiagnostics) EventLogged(hub *Hub, key TypeKey) {
	s.next.EventLogged(hub, key)
}

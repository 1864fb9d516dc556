package hubbub

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDiagnosticsWritesDebugLines(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := New(
		WithLabel("logged"),
		WithExecutor(CallerExecutor{}),
		WithDefaults(WarnUnknown|WarnUnhandled|LogEvents),
		WithDiagnostics(LogDiagnostics{Logger: logger}),
	)

	h.Notify(Key[fooEvent](), bumpAll)

	out := buf.String()
	assert.Contains(t, out, "unregistered event type")
	assert.Contains(t, out, "event dispatched")
	assert.Contains(t, out, "no subscribers or chains")
	assert.Contains(t, out, "hub=logged")
	assert.Contains(t, out, "hubbub.fooEvent")
}

func TestLogDiagnosticsInertAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := New(
		WithExecutor(CallerExecutor{}),
		WithDefaults(WarnUnknown|WarnUnhandled|LogEvents),
		WithDiagnostics(LogDiagnostics{Logger: logger}),
	)

	h.Notify(Key[fooEvent](), bumpAll)
	h.Add(42, Key[fooEvent]())

	assert.Empty(t, buf.String())
}

func TestJSONDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	h := New(
		WithLabel("json"),
		WithExecutor(CallerExecutor{}),
		WithDefaults(WarnUnknown|WarnUnhandled),
		WithDiagnostics(JSONDiagnostics(&buf)),
	)
	h.RegisterNamed(Key[barEvent](), "bar")

	h.Notify(Key[fooEvent](), bumpAll)
	h.Add("not-a-pointer", Key[fooEvent]())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var rec diagnosticRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "json", rec.Hub)
	assert.Equal(t, "unknown-event", rec.Kind)
	assert.Equal(t, "hubbub.fooEvent", rec.Event)
	assert.Equal(t, []string{"bar"}, rec.Registered)

	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "unhandled-event", rec.Kind)

	require.NoError(t, json.Unmarshal([]byte(lines[2]), &rec))
	assert.Equal(t, "invalid-subscriber", rec.Kind)
	assert.Equal(t, "string", rec.Subscriber)
}

func TestStrictPanicsWithFault(t *testing.T) {
	diag := &recordingDiagnostics{}
	h := New(
		WithLabel("strict"),
		WithExecutor(CallerExecutor{}),
		WithDefaults(WarnUnhandled),
		WithDiagnostics(Strict(diag)),
	)

	fault := func() (f *Fault) {
		defer func() {
			var ok bool
			f, ok = recover().(*Fault)
			require.True(t, ok, "strict mode panics with *Fault")
		}()
		h.Notify(Key[fooEvent](), bumpAll)
		return nil
	}()

	require.NotNil(t, fault)
	assert.Equal(t, "strict", fault.Hub)
	assert.Equal(t, "unhandled-event", fault.Kind)
	assert.Equal(t, "hubbub.fooEvent", fault.Name)
	assert.Contains(t, fault.Error(), "unhandled-event")

	// the wrapped policy reported before the fault was raised
	assert.Len(t, diag.unhandled, 1)
}

func TestStrictPassesEventLoggedThrough(t *testing.T) {
	diag := &recordingDiagnostics{}
	h := New(
		WithExecutor(CallerExecutor{}),
		WithDefaults(LogEvents),
		WithDiagnostics(Strict(diag)),
	)
	s := &recorder{}
	h.Add(s, Key[fooEvent]())

	assert.NotPanics(t, func() {
		h.Notify(Key[fooEvent](), bumpAll)
	})
	assert.Len(t, diag.logged, 1)
}

func TestStrictNilDefaultsToLogDiagnostics(t *testing.T) {
	d := Strict(nil)
	require.IsType(t, &strictDiagnostics{}, d)
	assert.IsType(t, LogDiagnostics{}, d.(*strictDiagnostics).next)
}

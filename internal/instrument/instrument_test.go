package instrument

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-forms/internal/config"
	"notion-forms/internal/store"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
}

func (m *memorySink) Enqueue(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func TestTracer_ParentChild(t *testing.T) {
	sink := &memorySink{}
	tracer := NewTracer(sink)
	ctx := WithUserID(WithTraceID(context.Background(), "trace-1"), "user-1")

	ctx, parent := tracer.StartSpan(ctx, "http", "handler", "request")
	_, child := tracer.StartSpan(ctx, "engine", "form", "form.build")
	child.SetEntity("database", "db-1")
	child.SetStatus("ok")
	child.End()
	child.End()
	parent.End()

	require.Len(t, sink.events, 2)
	c, p := sink.events[0], sink.events[1]
	assert.Equal(t, "trace-1", c.TraceID)
	require.NotNil(t, c.ParentSpanID)
	assert.Equal(t, p.SpanID, *c.ParentSpanID)
	assert.Nil(t, p.ParentSpanID)
	require.NotNil(t, c.UserID)
	assert.Equal(t, "user-1", *c.UserID)
	assert.Equal(t, "db-1", *c.RecordID)
}

func TestGetInstrumenter_DefaultsToNoop(t *testing.T) {
	inst := GetInstrumenter(context.Background())
	ctx, span := inst.StartSpan(context.Background(), "a", "b", "c")
	span.End()
	assert.NotNil(t, ctx)
	assert.Equal(t, "", span.SpanID())
}

func TestMiddleware_SetsTraceHeader(t *testing.T) {
	sink := &memorySink{}
	app := fiber.New()
	app.Use(Middleware(config.InstrumentationConfig{Enabled: true, SamplingRate: 1}, sink))
	app.Get("/ping", func(c *fiber.Ctx) error {
		assert.Equal(t, "trace-abc", GetTraceID(c.UserContext()))
		return c.SendString("pong")
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("X-Trace-ID", "trace-abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "trace-abc", resp.Header.Get("X-Trace-ID"))

	require.Len(t, sink.events, 1)
	require.NotNil(t, sink.events[0].Status)
	assert.Equal(t, "ok", *sink.events[0].Status)
}

func TestMiddleware_Disabled(t *testing.T) {
	sink := &memorySink{}
	app := fiber.New()
	app.Use(Middleware(config.InstrumentationConfig{Enabled: false}, sink))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "", resp.Header.Get("X-Trace-ID"))
	assert.Empty(t, sink.events)
}

func TestEventBuffer_FlushAndCleanup(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bootstrap(ctx))

	buf := NewEventBuffer(s.DB, s.Dialect, 100, 60000)
	tracer := NewTracer(buf)
	for i := 0; i < 3; i++ {
		_, span := tracer.StartSpan(WithTraceID(ctx, "t"), "engine", "search", "search.databases")
		span.End()
	}
	assert.Equal(t, 3, buf.Len())
	buf.Stop()
	assert.Equal(t, 0, buf.Len())

	row, err := store.QueryRow(ctx, s.DB, "SELECT COUNT(*) AS count FROM _events")
	require.NoError(t, err)
	assert.Equal(t, 3, toInt(row["count"]))

	_, err = store.Exec(ctx, s.DB, "UPDATE _events SET created_at = datetime('now', '-30 days')")
	require.NoError(t, err)
	n, err := CleanupOldEvents(ctx, s.DB, s.Dialect, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRegisterMetricsRoute(t *testing.T) {
	app := fiber.New()
	RegisterMetricsRoute(app)
	Submissions.WithLabelValues("created").Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

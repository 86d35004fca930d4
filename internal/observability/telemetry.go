package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func getLogEntry() *log.Entry {
	return log.WithField("object", "observability")
}

// Tracing installs an SDK tracer provider as the global one while running.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

func NewTracing() *Tracing {
	return &Tracing{}
}

func (t *Tracing) Start(context.Context) error {
	t.provider = sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.01))))
	otel.SetTracerProvider(t.provider)
	return nil
}

func (t *Tracing) Stop(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// MetricsServer serves Registry on /metrics. An empty address disables it.
type MetricsServer struct {
	addr   string
	server *http.Server
	done   chan struct{}
}

func NewMetricsServer(addr string) *MetricsServer {
	return &MetricsServer{addr: addr}
}

func (m *MetricsServer) Start(context.Context) error {
	if m.addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", m.addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.done = make(chan struct{})
	go func() {
		defer close(m.done)
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			getLogEntry().WithField("error", err.Error()).Error("metrics server failed")
		}
	}()
	getLogEntry().WithField("addr", ln.Addr().String()).Info("serving metrics")
	return nil
}

func (m *MetricsServer) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	err := m.server.Shutdown(ctx)
	<-m.done
	return err
}

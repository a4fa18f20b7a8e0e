package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "launchdash"

// Query kinds.
const (
	KindOptions     = "options"
	KindSummary     = "summary"
	KindCorrelation = "correlation"
)

// Transports a query can arrive on.
const (
	TransportHTTP = "http"
	TransportWS   = "ws"
	TransportGRPC = "grpc"
)

// Metric family names, shared with readers of the exposition.
const (
	QueriesTotal      = namespace + "_queries_total"
	QueryInvalidTotal = namespace + "_query_invalid_total"
	DatasetRecords    = namespace + "_dataset_records"
	DatasetSites      = namespace + "_dataset_sites"
	DatasetLoadSecs   = namespace + "_dataset_load_seconds"
	WSClients         = namespace + "_ws_clients"
)

// Metrics holds the server's collectors and the registry they live in.
type Metrics struct {
	reg *prometheus.Registry

	queries     *prometheus.CounterVec
	invalid     *prometheus.CounterVec
	records     prometheus.Gauge
	sites       prometheus.Gauge
	loadSeconds prometheus.Gauge
	wsClients   prometheus.Gauge
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QueriesTotal,
			Help: "Dashboard queries answered, by kind and transport.",
		}, []string{"kind", "transport"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: QueryInvalidTotal,
			Help: "Dashboard queries rejected as malformed, by transport.",
		}, []string{"transport"}),
		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: DatasetRecords,
			Help: "Launch records in the loaded dataset.",
		}),
		sites: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: DatasetSites,
			Help: "Distinct launch sites in the loaded dataset.",
		}),
		loadSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: DatasetLoadSecs,
			Help: "Seconds spent loading the dataset at startup.",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: WSClients,
			Help: "Open WebSocket query channels.",
		}),
	}

	m.reg.MustRegister(
		m.queries, m.invalid, m.records, m.sites, m.loadSeconds, m.wsClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveQuery counts one answered query.
func (m *Metrics) ObserveQuery(kind, transport string) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(kind, transport).Inc()
}

// ObserveInvalid counts one rejected query.
func (m *Metrics) ObserveInvalid(transport string) {
	if m == nil {
		return
	}
	m.invalid.WithLabelValues(transport).Inc()
}

// SetDataset records the size of the loaded dataset and how long the load took.
func (m *Metrics) SetDataset(records, sites int, took time.Duration) {
	if m == nil {
		return
	}
	m.records.Set(float64(records))
	m.sites.Set(float64(sites))
	m.loadSeconds.Set(took.Seconds())
}

// SetWSClients records the number of open WebSocket query channels.
func (m *Metrics) SetWSClients(n int) {
	if m == nil {
		return
	}
	m.wsClients.Set(float64(n))
}

// Registry returns the underlying registry, e.g. for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

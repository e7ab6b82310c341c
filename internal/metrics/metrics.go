package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"ukbol/internal/models"
)

var (
	taxonLookupDesc = prometheus.NewDesc(
		"ukbol_taxon_lookups_total",
		"Total taxon lookup count by outcome",
		[]string{"taxon_id", "outcome"},
		nil,
	)

	upstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ukbol_upstream_request_duration_seconds",
			Help:    "Duration of outbound requests by service, operation and outcome",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "op", "outcome"},
	)

	upstreamUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ukbol_upstream_up",
			Help: "Whether the last availability check of an upstream service succeeded",
		},
		[]string{"service"},
	)
)

// LookupStore is the persistence used for taxon lookup counters.
type LookupStore interface {
	GetAllTaxonLookups(ctx context.Context) ([]models.TaxonLookup, error)
	IncrementTaxonLookup(ctx context.Context, taxonID, outcome string) error
}

// TaxonLookupCollector is a custom Prometheus collector that reads taxon
// lookup counts from the database on each scrape.
type TaxonLookupCollector struct {
	store LookupStore
}

// NewTaxonLookupCollector creates a collector backed by store.
func NewTaxonLookupCollector(store LookupStore) *TaxonLookupCollector {
	return &TaxonLookupCollector{store: store}
}

// Describe sends the metric descriptor to the channel.
func (c *TaxonLookupCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- taxonLookupDesc
}

// Collect queries the database for all taxon lookups and emits them as counters.
func (c *TaxonLookupCollector) Collect(ch chan<- prometheus.Metric) {
	lookups, err := c.store.GetAllTaxonLookups(context.Background())
	if err != nil {
		slog.Error("failed to collect taxon lookup metrics", "error", err)
		return
	}
	for _, l := range lookups {
		ch <- prometheus.MustNewConstMetric(
			taxonLookupDesc,
			prometheus.CounterValue,
			float64(l.Count),
			l.TaxonID,
			l.Outcome,
		)
	}
}

// Recorder provides async taxon lookup recording.
type Recorder struct {
	store LookupStore
}

var (
	recorder     *Recorder
	recorderOnce sync.Once
	upstreamOnce sync.Once
)

// RegisterUpstream registers the outbound request metrics. Safe to call
// more than once.
func RegisterUpstream() {
	upstreamOnce.Do(func() {
		prometheus.MustRegister(upstreamDuration, upstreamUp)
	})
}

// Init registers the taxon lookup collector and initializes the recorder.
// Must be called once at startup, and only when a database is configured.
func Init(store LookupStore) {
	RegisterUpstream()
	recorderOnce.Do(func() {
		recorder = &Recorder{store: store}
		prometheus.MustRegister(NewTaxonLookupCollector(store))
	})
}

// RecordTaxonLookup asynchronously records a taxon lookup outcome.
func RecordTaxonLookup(taxonID, outcome string) {
	if recorder == nil {
		return
	}
	go func() {
		if err := recorder.store.IncrementTaxonLookup(context.Background(), taxonID, outcome); err != nil {
			slog.Error("failed to record taxon lookup", "taxon_id", taxonID, "outcome", outcome, "error", err)
		}
	}()
}

// ObserveUpstream records the duration of one outbound request. Its
// signature matches upstream.Observer.
func ObserveUpstream(service, op, outcome string, elapsed time.Duration) {
	upstreamDuration.WithLabelValues(service, op, outcome).Observe(elapsed.Seconds())
}

// SetUpstreamUp records the result of an availability check.
func SetUpstreamUp(service string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	upstreamUp.WithLabelValues(service).Set(v)
}

package prometrics

import (
	"errors"
	"sync"

	"github.com/Zhima-Mochi/ecom-compositor/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry lazily registers labelled vectors and hands them out behind the
// observability ports. Asking twice for the same name returns the same vector.
type Registry struct {
	reg        prometheus.Registerer
	namespace  string
	counters   sync.Map // name -> *prometheus.CounterVec
	histograms sync.Map // name -> *prometheus.HistogramVec
}

// New binds a registry to reg; nil means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, namespace string) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Registry{reg: reg, namespace: namespace}
}

type counter struct{ v *prometheus.CounterVec }

func (c *counter) Add(d float64, labels ...observability.Label) {
	c.v.With(labelMap(labels)).Add(d)
}

type histogram struct{ v *prometheus.HistogramVec }

func (h *histogram) Observe(v float64, labels ...observability.Label) {
	h.v.With(labelMap(labels)).Observe(v)
}

func labelMap(ls []observability.Label) prometheus.Labels {
	m := make(prometheus.Labels, len(ls))
	for _, l := range ls {
		m[l.Key] = l.Value
	}
	return m
}

func (r *Registry) Counter(name, help string, labelKeys ...string) observability.Counter {
	if v, ok := r.counters.Load(name); ok {
		return &counter{v: v.(*prometheus.CounterVec)}
	}
	cv := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace, Name: name, Help: help,
	}, labelKeys)
	cv = register(r.reg, cv)
	actual, _ := r.counters.LoadOrStore(name, cv)
	return &counter{v: actual.(*prometheus.CounterVec)}
}

func (r *Registry) Histogram(name, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	if v, ok := r.histograms.Load(name); ok {
		return &histogram{v: v.(*prometheus.HistogramVec)}
	}
	if buckets == nil {
		buckets = prometheus.DefBuckets
	}
	hv := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace, Name: name, Help: help, Buckets: buckets,
	}, labelKeys)
	hv = register(r.reg, hv)
	actual, _ := r.histograms.LoadOrStore(name, hv)
	return &histogram{v: actual.(*prometheus.HistogramVec)}
}

// Instruments registers every MetricSpec and returns the instruments keyed for the provider.
func (r *Registry) Instruments(
	counters, histograms []observability.MetricSpec,
) (map[observability.MetricKey]observability.Counter, map[observability.MetricKey]observability.Histogram) {
	cs := make(map[observability.MetricKey]observability.Counter, len(counters))
	for _, s := range counters {
		cs[s.Key] = r.Counter(string(s.Key), s.Help, s.Labels...)
	}
	hs := make(map[observability.MetricKey]observability.Histogram, len(histograms))
	for _, s := range histograms {
		hs[s.Key] = r.Histogram(string(s.Key), s.Help, nil, s.Labels...)
	}
	return cs, hs
}

// register adopts an already registered collector of the same shape instead of panicking.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

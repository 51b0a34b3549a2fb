package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg          *prom.Registry
	loads        *prom.CounterVec
	writes       *prom.CounterVec
	packedWeight prom.Gauge
	packedItems  prom.Gauge
}

// NewPrometheusRecorder constructs and registers the checklist metrics.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		loads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "packlist",
			Name:      "history_loads_total",
			Help:      "Packed history loads by success",
		}, []string{"success"}),
		writes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "packlist",
			Name:      "history_writes_total",
			Help:      "Packed history writes by result",
		}, []string{"result"}),
		packedWeight: prom.NewGauge(prom.GaugeOpts{
			Namespace: "packlist",
			Name:      "packed_weight",
			Help:      "Current total weight of packed items",
		}),
		packedItems: prom.NewGauge(prom.GaugeOpts{
			Namespace: "packlist",
			Name:      "packed_items",
			Help:      "Current number of packed items",
		}),
	}
	reg.MustRegister(pr.loads, pr.writes, pr.packedWeight, pr.packedItems)
	return pr
}

func (p *PrometheusRecorder) IncLoad(success bool) {
	p.loads.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *PrometheusRecorder) IncWrite(result WriteResult) {
	p.writes.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetPackedWeight(total float64) { p.packedWeight.Set(total) }

func (p *PrometheusRecorder) SetPackedItems(n int) { p.packedItems.Set(float64(n)) }

// Handler exposes the registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

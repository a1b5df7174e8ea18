package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline outcomes. A nil *Metrics records nothing.
type Metrics struct {
	generated *prometheus.CounterVec
	emailed   *prometheus.CounterVec
}

// NewMetrics registers the document counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditdoc_documents_generated_total",
				Help: "Total number of document generation attempts by outcome.",
			},
			[]string{"document_type", "export_type", "outcome"},
		),
		emailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creditdoc_documents_emailed_total",
				Help: "Total number of document deliveries by outcome.",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.generated, m.emailed} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeGenerate(req documentLabels, err error) {
	if m == nil {
		return
	}
	m.generated.WithLabelValues(req.documentType, req.exportType, outcome(err)).Inc()
}

func (m *Metrics) observeEmail(err error) {
	if m == nil {
		return
	}
	m.emailed.WithLabelValues(outcome(err)).Inc()
}

type documentLabels struct {
	documentType string
	exportType   string
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

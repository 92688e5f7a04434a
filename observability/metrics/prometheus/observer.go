package prometheus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"willitserver"
)

var _ willitserver.Observer = (*Observer)(nil)

type ObserverBuilder struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Build registers a counter of boundary checks labelled by function,
// direction and result.
func (b *ObserverBuilder) Build() (*Observer, error) {
	name := b.Name
	if name == "" {
		name = "boundary"
	}
	checkCntVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: b.Namespace,
		Subsystem: b.Subsystem,
		Name:      name + "_check_cnt",
		Help:      b.Help,
	}, []string{"function", "direction", "result"})

	reg := b.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(checkCntVec); err != nil {
		return nil, err
	}
	return &Observer{checkCntVec: checkCntVec}, nil
}

type Observer struct {
	checkCntVec *prometheus.CounterVec
}

func (o *Observer) Observe(_ context.Context, function string, dir willitserver.Direction, passed bool) {
	result := "passed"
	if !passed {
		result = "failed"
	}
	o.checkCntVec.WithLabelValues(function, dir.String(), result).Inc()
}

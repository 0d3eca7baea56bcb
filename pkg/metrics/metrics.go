// Package metrics exports dispatcher activity as Prometheus metrics.
package metrics

import (
	stderrors "errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-drift/widgetcore/pkg/dispatch"
)

const namespace = "widgetcore"

// Observer implements dispatch.Observer on top of Prometheus collectors.
type Observer struct {
	gatherer prometheus.Gatherer

	posted    *prometheus.CounterVec
	coalesced *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	delivered *prometheus.CounterVec
	visited   *prometheus.HistogramVec
	handled   *prometheus.CounterVec
}

var _ dispatch.Observer = (*Observer)(nil)

// New registers the dispatcher collectors with reg. A nil reg uses a fresh
// registry, which Handler then serves.
func New(reg *prometheus.Registry) *Observer {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Observer{
		gatherer: reg,
		posted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "posted_total",
			Help:      "Events accepted into the mailbox.",
		}, []string{"kind"}),
		coalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "coalesced_total",
			Help:      "Motion events merged into a pending motion event.",
		}, []string{"kind"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "dropped_total",
			Help:      "Events rejected by Post.",
		}, []string{"kind", "reason"}),
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "messages_total",
			Help:      "Messages delivered through the hierarchy.",
		}, []string{"kind"}),
		visited: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "visited_entities",
			Help:      "Entities visited per delivered message.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128
		}, []string{"kind"}),
		handled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "handled_total",
			Help:      "Messages that ended with a non-zero handler result.",
		}, []string{"kind"}),
	}
}

// EventPosted implements dispatch.Observer.
func (o *Observer) EventPosted(kind dispatch.Kind) {
	o.posted.WithLabelValues(kind.String()).Inc()
}

// EventCoalesced implements dispatch.Observer.
func (o *Observer) EventCoalesced(kind dispatch.Kind) {
	o.coalesced.WithLabelValues(kind.String()).Inc()
}

// EventDropped implements dispatch.Observer.
func (o *Observer) EventDropped(kind dispatch.Kind, reason error) {
	o.dropped.WithLabelValues(kind.String(), dropReason(reason)).Inc()
}

// MessageDelivered implements dispatch.Observer.
func (o *Observer) MessageDelivered(kind dispatch.Kind, visited, result int) {
	label := kind.String()
	o.delivered.WithLabelValues(label).Inc()
	o.visited.WithLabelValues(label).Observe(float64(visited))
	if result != 0 {
		o.handled.WithLabelValues(label).Inc()
	}
}

// Handler serves the registry the observer was created with.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})
}

func dropReason(err error) string {
	switch {
	case stderrors.Is(err, dispatch.ErrQueueFull):
		return "full"
	case stderrors.Is(err, dispatch.ErrBusy):
		return "busy"
	default:
		return "other"
	}
}

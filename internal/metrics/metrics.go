// Package metrics содержит счетчики Prometheus для операций реестра.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OperationsTotal считает выполненные операции по имени и результату.
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "escrow_operations_total",
		Help: "Total escrow operations by name and result.",
	},
	[]string{"op", "result"},
)

// IncOK отмечает успешную операцию.
func IncOK(op string) {
	OperationsTotal.WithLabelValues(op, "ok").Inc()
}

// IncError отмечает операцию, завершившуюся ошибкой.
func IncError(op string) {
	OperationsTotal.WithLabelValues(op, "error").Inc()
}

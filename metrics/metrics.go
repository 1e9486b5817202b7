// Package metrics wires prometheus collectors behind the client's event
// listener so the translation engine itself stays observability-agnostic.
package metrics

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kkrt-labs/kakarot-rpc-go/client"
)

func MakeClientMetrics() client.EventListener {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kakarot",
		Subsystem: "client",
		Name:      "starknet_calls",
	}, []string{"method"})
	failedCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kakarot",
		Subsystem: "client",
		Name:      "starknet_failed_calls",
	}, []string{"method"})
	callLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kakarot",
		Subsystem: "client",
		Name:      "starknet_call_latency",
	}, []string{"method"})
	submittedTransactions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "kakarot",
		Subsystem: "client",
		Name:      "submitted_transactions",
	})
	prometheus.MustRegister(calls, failedCalls, callLatencies, submittedTransactions)

	return &client.SelectiveListener{
		OnStarknetCallCb: func(method string, took time.Duration) {
			calls.WithLabelValues(method).Inc()
			callLatencies.WithLabelValues(method).Observe(took.Seconds())
		},
		OnStarknetCallFailedCb: func(method string, err error) {
			failedCalls.WithLabelValues(method).Inc()
		},
		OnTransactionSubmittedCb: func(hash common.Hash) {
			submittedTransactions.Inc()
		},
	}
}

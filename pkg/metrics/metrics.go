// Package metrics exposes Prometheus instrumentation for graph mutations.
//
// Metrics are registered with the default registry via promauto; embedding
// applications serve them with promhttp or ignore them at no cost.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NodesCreated counts committed AddNode mutations per namespace.
	NodesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgr_nodes_created_total",
			Help: "Total number of nodes created",
		},
		[]string{"namespace"},
	)

	// NodesDeleted counts committed DelNode mutations per namespace.
	NodesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgr_nodes_deleted_total",
			Help: "Total number of nodes deleted",
		},
		[]string{"namespace"},
	)

	// EdgesCreated counts committed AddEdge mutations per namespace.
	EdgesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgr_edges_created_total",
			Help: "Total number of edges created",
		},
		[]string{"namespace"},
	)

	// EdgesDeleted counts committed edge deletions per namespace, including
	// edges removed by a node-delete cascade.
	EdgesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rgr_edges_deleted_total",
			Help: "Total number of edges deleted",
		},
		[]string{"namespace"},
	)
)

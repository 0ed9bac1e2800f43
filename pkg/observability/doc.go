/*
Package observability exposes Prometheus instrumentation for test generation.

Metrics implements generator.Observer, so wiring it is a single option:

	m, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	gen := generator.New(graph, generator.WithObserver(m))
*/
package observability

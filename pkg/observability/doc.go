/*
Package observability exports journey activity as Prometheus metrics.

Metrics is wired into a manager through its lifecycle hooks:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	mgr, err := manager.New(defs, manager.WithLifecycleHooks(metrics.Hooks()))
*/
package observability

/*
Package observability turns engine lifecycle hooks into logs and
Prometheus metrics.

Both helpers return domain.LifecycleHooks, so they can be combined with
LifecycleHooks.Merge and handed to barista.WithLifecycleHooks.
*/
package observability

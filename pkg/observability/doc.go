/*
Package observability turns pipeline lifecycle hooks into Prometheus metrics and
structured audit logs.

Both producers return a domain.LifecycleHooks value; combine them with
LifecycleHooks.Merge and pass the result to digest.WithLifecycleHooks.
*/
package observability

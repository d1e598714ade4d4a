/*
Package observability turns editor lifecycle hooks into Prometheus metrics.

Attach the hooks returned by Metrics.Hooks to an editor with
tapestry.WithLifecycleHooks and expose the registry through promhttp.
*/
package observability

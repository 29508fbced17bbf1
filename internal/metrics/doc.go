// Package metrics provides observability hooks for generation runs.
//
// Components receive a Recorder through an option and default to
// NoopRecorder, so nothing needs a nil check. PrometheusRecorder keeps the
// values on its own registry. pagegen is a one-shot process rather than a
// server, so the values are exported with WriteTextfile for node_exporter's
// textfile collector instead of being scraped over HTTP.
package metrics

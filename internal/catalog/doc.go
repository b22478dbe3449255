// Package catalog defines the closed set of node kinds a workflow may use:
// their input/output handles, media categories, default data, and the
// routing metadata (sink, aggregate, trigger field) consumed by validation
// and propagation. The builtin table can be extended or overridden by HCL
// manifests, see loader.go.
package catalog

// Package api defines the JSON shapes served over HTTP and by the CLI, plus
// thin services that translate between store types and those shapes.
package api

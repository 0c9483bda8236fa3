// Package cli implements the planvec command-line interface.
//
// # Commands
//
//   - extract: vectorize one plan to JSON or GeoJSON, optionally with an overlay PNG
//   - batch: vectorize many plans concurrently, one result file per input
//   - mask: write the edge mask PNG for threshold tuning
//   - overlay: draw a saved GeoJSON result over its plan
//   - serve: run the MCP server on stdin/stdout
//   - config: print the effective configuration as TOML
//
// # Configuration
//
// Every command starts from the documented defaults, overlays the file given
// with --config (TOML, YAML or JSON) and then any per-option flag such as
// --epsilon or --min-sublot-area. The result is validated before use.
//
// # Logging
//
// Logs go to stderr through charmbracelet/log, at info level by default and
// debug with --verbose (-v). PLANVEC_LOG_LEVEL takes precedence when set,
// which is how MCP clients turn on debug output for serve.
package cli

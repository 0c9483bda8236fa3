// Package server implements the MCP (Model Context Protocol) server for plan
// vectorization tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the extraction
// pipeline to MCP-compatible clients, so an assistant can vectorize a scanned
// survey plan, inspect the edge mask and check candidate sub-lots.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Logs go to the logger passed to New, which the CLI points at stderr so
// stdout carries nothing but responses.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Extraction:
//   - plan_extract: Vectorize a plan into bordes_externos and sublotes (JSON or GeoJSON)
//   - plan_edge_mask: Return the binary edge mask as a base64 PNG
//   - plan_overlay: Draw the extracted polygons over the plan
//
// Geometry helpers:
//   - plan_polygon_area: Shoelace area of a polygon
//   - plan_validate_sublot: Sub-lot acceptance test with the failing reason
//
// Extraction tools accept a "config" object of option overrides applied on
// top of the server configuration, and a "region" to restrict processing.
//
// # Result Caching
//
// Extraction results are cached in memory keyed by the SHA-256 of the file
// content, the effective configuration and the region. A cache hit returns
// the stored result, including its run_id.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602: malformed arguments or an invalid configuration override
//   - -32000: any other tool failure (unreadable file, decode error, oversize input)
//   - -32601: unknown method
//   - -32700: a request line that is not JSON
//
// # Usage
//
//	srv := server.New(cfg, logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal(err)
//	}
package server

// Package server implements the MCP (Model Context Protocol) server for the
// scan preprocessing and OCR pipeline.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Every image tool accepts either a file path or an inline data URI.
//
//   - image_preprocess: Crop (optional region), downscale, grayscale and
//     contrast-enhance an image
//   - image_ocr: Extract text, with notifications/progress updates
//   - ocr_info: Engine availability and preprocessing defaults
//   - image_info: Dimensions and format without decoding pixels
//   - image_inspect: Luminance and chroma statistics, after preprocessing
//
// # Progress
//
// image_ocr sends one notifications/progress message per engine update,
// before the final response and in the order the engine emitted them. The
// progressToken is taken from the request's _meta; when absent a UUID is
// generated for the call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: The failure class, e.g. "Recognition engine unavailable"
//   - data: The Go error string
//
// # Usage
//
//	adapter := ocr.NewAdapter(ocr.NewTesseractLoader(""), log)
//	srv := server.New(pipeline.New(adapter), adapter)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

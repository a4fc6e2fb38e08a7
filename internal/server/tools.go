package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageSourceProperties returns the properties shared by every tool that
// takes an image: a file path or an inline data URI.
func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file. Non-image files (e.g. PDF) are passed to the engine as-is.",
		},
		"data_uri": map[string]interface{}{
			"type":        "string",
			"description": "Inline image as a data URI (data:image/png;base64,...). Use instead of path.",
		},
	}
}

// preprocessProperties describes the preprocessing knobs.
func preprocessProperties() map[string]interface{} {
	return map[string]interface{}{
		"contrast": map[string]interface{}{
			"type":        "integer",
			"description": "Contrast amount, -255 to 255. 0 keeps plain grayscale. Default from server configuration (70).",
			"minimum":     -255,
			"maximum":     255,
		},
		"max_dimension": map[string]interface{}{
			"type":        "integer",
			"description": "Longest side of the output in pixels. Images are never upscaled. Default 1600.",
			"minimum":     1,
		},
		"quality": map[string]interface{}{
			"type":        "integer",
			"description": "JPEG quality of the output, 1-100. Default 92.",
			"minimum":     1,
			"maximum":     100,
		},
		"region": map[string]interface{}{
			"type": "object",
			"description": "Crop to part of the page before resizing. Either a named region " +
				"(top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center) " +
				"or corner coordinates x1, y1 (inclusive) and x2, y2 (exclusive) in source pixels.",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{"type": "string"},
				"x1":   map[string]interface{}{"type": "integer", "minimum": 0},
				"y1":   map[string]interface{}{"type": "integer", "minimum": 0},
				"x2":   map[string]interface{}{"type": "integer", "minimum": 1},
				"y2":   map[string]interface{}{"type": "integer", "minimum": 1},
			},
		},
	}
}

// imageSchema builds an object schema over the image source plus extra
// property sets. One of path or data_uri is required.
func imageSchema(extra ...map[string]interface{}) map[string]interface{} {
	props := imageSourceProperties()
	for _, m := range extra {
		for k, v := range m {
			props[k] = v
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"anyOf": []map[string]interface{}{
			{"required": []string{"path"}},
			{"required": []string{"data_uri"}},
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Preprocessing
		{
			Name: "image_preprocess",
			Description: "Prepare a scanned document for OCR: downscale so the longest side fits max_dimension, " +
				"convert to grayscale and boost contrast. Returns the result as a JPEG data URI. " +
				"Inputs that are not images are returned unchanged.",
			InputSchema: imageSchema(preprocessProperties()),
		},

		// Recognition
		{
			Name: "image_ocr",
			Description: "Extract text from a scanned document or photo. The image is preprocessed first unless " +
				"preprocess is false. Progress is reported with notifications/progress.",
			InputSchema: imageSchema(preprocessProperties(), map[string]interface{}{
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Tesseract language code, e.g. eng, deu, fra. Default from server configuration (eng).",
				},
				"preprocess": map[string]interface{}{
					"type":        "boolean",
					"description": "Preprocess the image before recognition. Default true.",
					"default":     true,
				},
			}),
		},
		{
			Name:        "ocr_info",
			Description: "Report whether the recognition engine is available, which engine is configured and the preprocessing defaults.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Inspection
		{
			Name:        "image_info",
			Description: "Get the dimensions, format and size of an image without decoding its pixels.",
			InputSchema: imageSchema(),
		},
		{
			Name: "image_inspect",
			Description: "Report luminance range, mean chroma and alpha statistics of an image, " +
				"after preprocessing unless preprocess is false. Useful for tuning contrast.",
			InputSchema: imageSchema(preprocessProperties(), map[string]interface{}{
				"preprocess": map[string]interface{}{
					"type":        "boolean",
					"description": "Inspect the preprocessed image rather than the original. Default true.",
					"default":     true,
				},
			}),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}

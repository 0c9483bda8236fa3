package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the plan (PNG, JPEG, GIF, BMP, TIFF, WebP or PDF; PDFs use the first page)",
	}
}

func configProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional option overrides, e.g. {\"epsilon\": 3, \"min_sublot_area\": 800}. Keys: blur, canny_low, canny_high, morph_kernel, min_contour_area, epsilon, min_sublot_area, min_angle, merge_distance_percent, border_merge_percent, clahe_clip_limit, clahe_tile_grid, dpi, max_input_bytes",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional region: full, top-left, top-right, bottom-left, bottom-right, top-half, bottom-half, left-half, right-half, center, or \"x1,y1,x2,y2\". Coordinates in the result stay in full-plan pixels",
	}
}

func pointsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Polygon vertices in order as [x, y] pixel pairs",
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "integer"},
			"minItems": 2,
			"maxItems": 2,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Extraction
		{
			Name:        "plan_extract",
			Description: "Vectorize a land-survey plan. Returns the outer plot boundaries (bordes_externos), validated sub-lots (sublotes) and their concatenation (vectores) as pixel polygons. Results are cached per file content and configuration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"config": configProperty(),
					"region": regionProperty(),
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"json", "geojson"},
						"description": "Output format. Default json",
						"default":     "json",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plan_edge_mask",
			Description: "Return the binary edge mask (base64 PNG) the contour tracer sees after smoothing, contrast equalization, edge detection and closing. Use it to tune canny_low, canny_high and morph_kernel.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"config": configProperty(),
					"region": regionProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "plan_overlay",
			Description: "Draw the extracted polygons over the plan, each in its own color, with an optional coordinate grid. Writes a PNG to output, or returns it base64-encoded.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"config": configProperty(),
					"region": regionProperty(),
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional PNG path to write instead of returning the image",
					},
					"grid_spacing": map[string]interface{}{
						"type":        "integer",
						"description": "Optional grid spacing in pixels. 0 disables the grid",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Geometry helpers
		{
			Name:        "plan_polygon_area",
			Description: "Compute the enclosed area of a polygon in square pixels (Shoelace formula, closing edge implied).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": pointsProperty(),
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "plan_validate_sublot",
			Description: "Check whether a polygon qualifies as a sub-lot: 3 to 7 vertices, area at least min_area and every internal angle at least min_angle. Returns the reason when it does not.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": pointsProperty(),
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Minimum area in square pixels. Defaults to the server's min_sublot_area",
					},
					"min_angle": map[string]interface{}{
						"type":        "number",
						"description": "Minimum internal angle in degrees. Defaults to the server's min_angle",
					},
				},
				"required": []string{"points"},
			},
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

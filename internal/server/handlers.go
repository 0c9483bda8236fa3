package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"time"

	"github.com/ironsheep/planvec/internal/config"
	"github.com/ironsheep/planvec/internal/detection"
	"github.com/ironsheep/planvec/internal/export"
	"github.com/ironsheep/planvec/internal/extractor"
	"github.com/ironsheep/planvec/internal/geometry"
	"github.com/ironsheep/planvec/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plan_extract").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Malformed arguments and configuration overrides return -32602; any other
// tool failure returns -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "err", err)
		var cfgErr *config.ConfigurationError
		var argErr *argumentError
		if errors.As(err, &cfgErr) || errors.As(err, &argErr) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool finished", "tool", params.Name, "duration", time.Since(start).Round(time.Millisecond))

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Extraction
	case "plan_extract":
		return s.handlePlanExtract(ctx, args)
	case "plan_edge_mask":
		return s.handlePlanEdgeMask(ctx, args)
	case "plan_overlay":
		return s.handlePlanOverlay(ctx, args)

	// Geometry helpers
	case "plan_polygon_area":
		return s.handlePolygonArea(args)
	case "plan_validate_sublot":
		return s.handleValidateSublot(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// argumentError marks a tool argument the caller got wrong.
type argumentError struct {
	err error
}

func (e *argumentError) Error() string { return "invalid arguments: " + e.err.Error() }
func (e *argumentError) Unwrap() error { return e.err }

func decodeArgs(args json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(args, v); err != nil {
		return &argumentError{err: err}
	}
	return nil
}

// === Extraction Handlers ===

// planArgs are shared by every tool that reads a plan file.
type planArgs struct {
	Path string `json:"path"`

	// Config holds option overrides applied on top of the server
	// configuration, e.g. {"epsilon": 3}.
	Config json.RawMessage `json:"config,omitempty"`

	// Region is a region name or "x1,y1,x2,y2".
	Region string `json:"region,omitempty"`
}

// plan is a loaded plan file with the extractor configured for a request.
type plan struct {
	data []byte
	cfg  config.Config
	ex   *extractor.Extractor
}

func (s *Server) loadPlan(a planArgs) (*plan, error) {
	if a.Path == "" {
		return nil, &argumentError{err: errors.New("path is required")}
	}
	cfg := s.cfg
	if err := config.ApplyJSON(&cfg, a.Config); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := extractor.ReadFile(a.Path, cfg.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	ex := extractor.New(cfg,
		extractor.WithHooks(extractor.NewLogHooks(s.logger)),
		extractor.WithRegionSpec(a.Region))
	return &plan{data: data, cfg: cfg, ex: ex}, nil
}

// extract runs the pipeline or returns the cached result.
func (s *Server) extract(ctx context.Context, a planArgs, p *plan) (*extractor.ExtractionResult, error) {
	key := resultKey(p.data, p.cfg, a.Region)
	if res, ok := s.cache.Get(key); ok {
		s.logger.Debug("cache hit", "path", a.Path, "run_id", res.RunID)
		return res, nil
	}

	res, err := p.ex.Extract(ctx, p.data, a.Path)
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, res)
	s.logger.Info("extracted plan",
		"path", a.Path,
		"run_id", res.RunID,
		"bordes_externos", res.TotalBorders,
		"sublotes", res.TotalSublots)
	return res, nil
}

type planExtractArgs struct {
	planArgs

	// Format is "json" (default) or "geojson".
	Format string `json:"format,omitempty"`
}

func (s *Server) handlePlanExtract(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a planExtractArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Format != "" && a.Format != "json" && a.Format != "geojson" {
		return nil, &argumentError{err: fmt.Errorf("unknown format %q", a.Format)}
	}

	p, err := s.loadPlan(a.planArgs)
	if err != nil {
		return nil, err
	}
	res, err := s.extract(ctx, a.planArgs, p)
	if err != nil {
		return nil, err
	}

	if a.Format == "geojson" {
		data, err := export.GeoJSON(res)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	}
	return res, nil
}

func (s *Server) handlePlanEdgeMask(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a planArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	p, err := s.loadPlan(a)
	if err != nil {
		return nil, err
	}
	mask, err := p.ex.EdgeMask(ctx, p.data, a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EncodeMaskPNG(mask)
}

type planOverlayArgs struct {
	planArgs

	// Output is a file path for the PNG. When empty the image is returned
	// base64-encoded.
	Output string `json:"output,omitempty"`

	// GridSpacing adds a labelled coordinate grid; 0 disables it.
	GridSpacing int `json:"grid_spacing,omitempty"`
}

// OverlayResult describes a rendered overlay.
type OverlayResult struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Output       string `json:"output,omitempty"`
	ImageBase64  string `json:"image_base64,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
	TotalVectors int    `json:"total_vectores"`
}

func (s *Server) handlePlanOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a planOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridSpacing < 0 {
		return nil, &argumentError{err: fmt.Errorf("grid_spacing must be >= 0, got %d", a.GridSpacing)}
	}

	p, err := s.loadPlan(a.planArgs)
	if err != nil {
		return nil, err
	}
	res, err := s.extract(ctx, a.planArgs, p)
	if err != nil {
		return nil, err
	}
	raster, err := p.ex.Raster(ctx, p.data, a.Path)
	if err != nil {
		return nil, err
	}

	opts := export.DefaultOverlayOptions()
	opts.GridSpacing = a.GridSpacing
	opts.GridLabels = a.GridSpacing > 0

	out := &OverlayResult{
		Width:        raster.Bounds().Dx(),
		Height:       raster.Bounds().Dy(),
		TotalVectors: res.TotalVectors,
	}
	if a.Output != "" {
		if err := export.SaveOverlayPNG(a.Output, raster, res, opts); err != nil {
			return nil, err
		}
		out.Output = a.Output
		return out, nil
	}

	img, err := export.Overlay(raster, res, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	out.MimeType = "image/png"
	return out, nil
}

// === Geometry Helper Handlers ===

type polygonArgs struct {
	Points geometry.Polygon `json:"points"`
}

// AreaResult is the result of plan_polygon_area.
type AreaResult struct {
	Area     float64 `json:"area"`
	Vertices int     `json:"vertices"`
}

func (s *Server) handlePolygonArea(args json.RawMessage) (interface{}, error) {
	var a polygonArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return &AreaResult{Area: geometry.Area(a.Points), Vertices: len(a.Points)}, nil
}

type validateSublotArgs struct {
	Points   geometry.Polygon `json:"points"`
	MinArea  *float64         `json:"min_area,omitempty"`
	MinAngle *float64         `json:"min_angle,omitempty"`
}

func (s *Server) handleValidateSublot(args json.RawMessage) (interface{}, error) {
	var a validateSublotArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	criteria := detection.SublotCriteria{
		MinArea:  s.cfg.MinSublotArea,
		MinAngle: s.cfg.MinAngle,
	}
	if a.MinArea != nil {
		criteria.MinArea = *a.MinArea
	}
	if a.MinAngle != nil {
		criteria.MinAngle = *a.MinAngle
	}
	return detection.ValidateSublot(a.Points, criteria), nil
}

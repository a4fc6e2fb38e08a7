package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ironsheep/scan-ocr-mcp/internal/imaging"
	"github.com/ironsheep/scan-ocr-mcp/internal/ocr"
	"github.com/ironsheep/scan-ocr-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_ocr").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries request metadata such as the client's progress token.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

// progressToken returns the client's token, or a fresh UUID when the client
// did not send one.
func (p ToolCallParams) progressToken() interface{} {
	if p.Meta != nil && p.Meta.ProgressToken != nil {
		return p.Meta.ProgressToken
	}
	return uuid.NewString()
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params)
	if err != nil {
		s.log.WithError(err).WithField("tool", params.Name).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, toolErrorMessage(err), err.Error())
	}

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

// toolErrorMessage names the failure class for the JSON-RPC error message.
func toolErrorMessage(err error) string {
	var recErr *ocr.RecognitionError
	var decErr *imaging.DecodeError
	switch {
	case errors.Is(err, ocr.ErrEngineUnavailable):
		return "Recognition engine unavailable"
	case errors.As(err, &recErr):
		return "Recognition failed"
	case errors.As(err, &decErr):
		return "Image could not be decoded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled"
	default:
		return "Tool execution failed"
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, params ToolCallParams) (interface{}, error) {
	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch params.Name {
	case "image_preprocess":
		return s.handleImagePreprocess(ctx, args)
	case "image_ocr":
		return s.handleImageOCR(ctx, args, params.progressToken())
	case "ocr_info":
		return s.handleOCRInfo(ctx)
	case "image_info":
		return s.handleImageInfo(args)
	case "image_inspect":
		return s.handleImageInspect(ctx, args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", params.Name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Argument helpers ===

type imageSourceArgs struct {
	Path    string `json:"path"`
	DataURI string `json:"data_uri"`
}

// ref resolves the image source. Exactly one of path and data_uri is allowed.
func (a imageSourceArgs) ref() (imaging.ImageRef, error) {
	switch {
	case a.Path != "" && a.DataURI != "":
		return imaging.ImageRef{}, errors.New("pass either path or data_uri, not both")
	case a.Path != "":
		return imaging.RefFromFile(a.Path)
	case a.DataURI != "":
		return imaging.Inline(a.DataURI), nil
	default:
		return imaging.ImageRef{}, errors.New("path or data_uri is required")
	}
}

type preprocessArgs struct {
	Contrast     *int            `json:"contrast"`
	MaxDimension *int            `json:"max_dimension"`
	Quality      *int            `json:"quality"`
	Region       *imaging.Region `json:"region"`
}

// options overlays the supplied values on the pipeline defaults.
func (a preprocessArgs) options(defaults pipeline.PreprocessOptions) pipeline.PreprocessOptions {
	opts := defaults
	if a.Contrast != nil {
		opts.Contrast = *a.Contrast
	}
	if a.MaxDimension != nil {
		opts.MaxDimension = *a.MaxDimension
	}
	if a.Quality != nil {
		opts.Quality = *a.Quality
	}
	if a.Region != nil {
		opts.Region = a.Region
	}
	return opts
}

// === Preprocessing Handlers ===

type imagePreprocessArgs struct {
	imageSourceArgs
	preprocessArgs
}

type imagePreprocessResult struct {
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	Preprocessed bool   `json:"preprocessed"`
	ImageDataURI string `json:"image_data_uri,omitempty"`
}

func (s *Server) handleImagePreprocess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imagePreprocessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := a.ref()
	if err != nil {
		return nil, err
	}

	out, err := s.pipeline.Preprocess(ctx, ref, a.options(s.pipeline.Defaults()))
	if err != nil {
		return nil, err
	}

	result := &imagePreprocessResult{Preprocessed: !out.Equal(ref)}
	if out.IsInlineImage() {
		result.ImageDataURI = out.URI()
		if info, err := imaging.Describe(out); err == nil {
			result.Width = info.Width
			result.Height = info.Height
		}
	}
	return result, nil
}

// === Recognition Handlers ===

type imageOCRArgs struct {
	imageSourceArgs
	preprocessArgs
	Language   string `json:"language"`
	Preprocess *bool  `json:"preprocess"`
}

type imageOCRResult struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
	Engine     string   `json:"engine,omitempty"`
	Language   string   `json:"language"`
	States     []string `json:"states"`
}

// progressParams is the payload of notifications/progress.
type progressParams struct {
	ProgressToken interface{} `json:"progressToken"`
	Progress      float64     `json:"progress"`
	Total         float64     `json:"total"`
	Message       string      `json:"message,omitempty"`
}

func (s *Server) handleImageOCR(ctx context.Context, args json.RawMessage, token interface{}) (interface{}, error) {
	var a imageOCRArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := a.ref()
	if err != nil {
		return nil, err
	}

	lang := a.Language
	if lang == "" {
		lang = s.language
	}
	preprocess := true
	if a.Preprocess != nil {
		preprocess = *a.Preprocess
	}

	var states []string
	sink := ocr.ProgressFunc(func(p ocr.Progress) {
		s.notify("notifications/progress", &progressParams{
			ProgressToken: token,
			Progress:      p.Progress,
			Total:         1,
			Message:       p.Status,
		})
	})

	res, err := s.pipeline.Recognize(ctx, ref,
		pipeline.WithLanguage(lang),
		pipeline.WithPreprocess(preprocess),
		pipeline.WithPreprocessOptions(a.options(s.pipeline.Defaults())),
		pipeline.WithProgress(sink),
		pipeline.WithCallObserver(func(_, to pipeline.State) {
			states = append(states, to.String())
		}),
	)
	if err != nil {
		return nil, err
	}

	result := &imageOCRResult{
		Text:       res.Text,
		Confidence: res.Confidence,
		Language:   lang,
		States:     states,
	}
	if s.engine != nil {
		result.Engine = s.engine.Info(ctx).Engine
	}
	return result, nil
}

type ocrInfoResult struct {
	ocr.EngineInfo
	Language     string                        `json:"language"`
	Capabilities pipeline.PlatformCapabilities `json:"capabilities"`
	Defaults     pipeline.PreprocessOptions    `json:"preprocess_defaults"`
}

func (s *Server) handleOCRInfo(ctx context.Context) (interface{}, error) {
	info := ocr.EngineInfo{Available: false, Error: "no engine configured"}
	if s.engine != nil {
		info = s.engine.Info(ctx)
	}
	return &ocrInfoResult{
		EngineInfo:   info,
		Language:     s.language,
		Capabilities: s.pipeline.Capabilities(),
		Defaults:     s.pipeline.Defaults(),
	}, nil
}

// === Inspection Handlers ===

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageSourceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := a.ref()
	if err != nil {
		return nil, err
	}
	return imaging.Describe(ref)
}

type imageInspectArgs struct {
	imageSourceArgs
	preprocessArgs
	Preprocess *bool `json:"preprocess"`
}

type imageInspectResult struct {
	Preprocessed bool                 `json:"preprocessed"`
	Format       string               `json:"format"`
	Stats        *imaging.BufferStats `json:"stats"`
}

func (s *Server) handleImageInspect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a imageInspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	ref, err := a.ref()
	if err != nil {
		return nil, err
	}
	if !ref.IsInlineImage() {
		return nil, fmt.Errorf("%s is not an inline image", ref)
	}

	target := ref
	if a.Preprocess == nil || *a.Preprocess {
		target, err = s.pipeline.Preprocess(ctx, ref, a.options(s.pipeline.Defaults()))
		if err != nil {
			return nil, err
		}
	}

	buf, format, err := s.pipeline.Decode(ctx, target)
	if err != nil {
		return nil, err
	}
	stats, err := imaging.Inspect(buf)
	if err != nil {
		return nil, err
	}

	return &imageInspectResult{
		Preprocessed: !target.Equal(ref),
		Format:       format,
		Stats:        stats,
	}, nil
}

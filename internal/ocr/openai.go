package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is the vision model used when none is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// ErrOpenAIUnconfigured is returned by the OpenAI Loader without an API key.
var ErrOpenAIUnconfigured = errors.New("openai integration is not configured")

const transcribePrompt = "Transcribe all text in this image exactly as written, preserving line breaks. " +
	"The expected language has the Tesseract code %q. " +
	"Reply with the transcription only, without commentary or code fences. " +
	"Reply with an empty message if the image contains no text."

// OpenAIConfig configures the OpenAI engine.
type OpenAIConfig struct {
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a compatible gateway.
	BaseURL string

	// Model is the chat model; "" selects DefaultOpenAIModel.
	Model string
}

// OpenAI recognizes text with a vision-capable chat model.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAILoader returns a Loader for the OpenAI engine.
func NewOpenAILoader(cfg OpenAIConfig) Loader {
	return func(context.Context) (RecognitionEngine, error) {
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, ErrOpenAIUnconfigured
		}

		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}

		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}

		return &OpenAI{
			client: openai.NewClientWithConfig(clientCfg),
			model:  model,
		}, nil
	}
}

// Name identifies the engine.
func (o *OpenAI) Name() string { return "openai" }

// Version returns the configured model.
func (o *OpenAI) Version() string { return o.model }

// Recognize sends in.Image to the model as a data URI and returns its reply.
// The model gives no confidence, so Result.Confidence is nil.
func (o *OpenAI) Recognize(ctx context.Context, in Input, emit func(Message)) (Result, error) {
	mime := in.MIME
	if mime == "" {
		mime = "image/jpeg"
	}
	imageURI := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(in.Image)

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(transcribePrompt, in.Language),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURI,
							Detail: openai.ImageURLDetailHigh,
						},
					},
				},
			},
		},
	}

	emit(Message{Status: "uploading image", Progress: 0})

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("request openai transcription: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errors.New("openai returned no choices")
	}

	emit(Message{Status: "recognizing text", Progress: 1})

	return Result{Text: stripFences(resp.Choices[0].Message.Content)}, nil
}

// stripFences removes a surrounding markdown code block, if any.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	start := 3
	if nl := strings.Index(content[start:], "\n"); nl != -1 {
		start += nl + 1
	} else {
		return strings.TrimSpace(strings.Trim(content, "`"))
	}
	body := content[start:]
	if end := strings.LastIndex(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

package driftcanvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GenResult is the outcome of a successful image generation: the encoded
// image bytes and any accompanying text the model produced.
type GenResult struct {
	ImageData []byte
	Text      string
}

// Generator produces sprite art from images or prompts. Implementations must
// be safe for concurrent use; the pipeline calls them from goroutines.
type Generator interface {
	// GenerateFromImage sends image bytes plus a prompt and returns the
	// generated image. Fails with ErrNoImage if the reply has no image part.
	GenerateFromImage(ctx context.Context, imageData []byte, prompt string) (GenResult, error)

	// GenerateFromText sends a text prompt and returns the generated image.
	// Same contract as GenerateFromImage.
	GenerateFromText(ctx context.Context, prompt string) (GenResult, error)

	// RemixSuggestions returns up to 5 short follow-up prompts for the given
	// image. Best-effort: any request or parsing failure yields an empty
	// slice, never an error.
	RemixSuggestions(ctx context.Context, imageData []byte, instruction string) []string
}

// spritePrompt is prepended to every image-generating request so results
// share a consistent sprite-art look with a solid keyable backdrop.
const spritePrompt = "Render the subject as a single stylized sprite on a plain solid white background, nothing else in frame. "

// suggestionPrompt asks for machine-parseable remix ideas.
const suggestionPrompt = "Look at this image and reply with only a JSON array of up to 5 short remix prompts (4 words or fewer each), no other text. "

// GeminiGenerator implements Generator on the Google Gemini API.
type GeminiGenerator struct {
	client     *genai.Client
	imageModel string
	textModel  string
	log        *zap.Logger
}

// NewGeminiGenerator dials the Gemini API with the given key. Model names
// come from Config; empty strings select the defaults.
func NewGeminiGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("driftcanvas: GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("driftcanvas: create gemini client: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiGenerator{
		client:     client,
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		log:        log,
	}, nil
}

// Close releases the underlying API client.
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// GenerateFromImage implements Generator.
func (g *GeminiGenerator) GenerateFromImage(ctx context.Context, imageData []byte, prompt string) (GenResult, error) {
	parts := []genai.Part{
		genai.ImageData(imageFormat(imageData), imageData),
		genai.Text(spritePrompt + prompt),
	}
	return g.generate(ctx, parts)
}

// GenerateFromText implements Generator.
func (g *GeminiGenerator) GenerateFromText(ctx context.Context, prompt string) (GenResult, error) {
	return g.generate(ctx, []genai.Part{genai.Text(spritePrompt + prompt)})
}

// generate runs one single-shot request against the image model and extracts
// the first image part plus any text. No retries: the caller treats the call
// as all-or-nothing.
func (g *GeminiGenerator) generate(ctx context.Context, parts []genai.Part) (GenResult, error) {
	model := g.client.GenerativeModel(g.imageModel)
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return GenResult{}, fmt.Errorf("driftcanvas: generate content: %w", err)
	}

	var out GenResult
	for _, part := range candidateParts(resp) {
		switch p := part.(type) {
		case genai.Blob:
			if out.ImageData == nil && strings.HasPrefix(p.MIMEType, "image/") {
				out.ImageData = p.Data
			}
		case genai.Text:
			out.Text += string(p)
		}
	}
	if out.ImageData == nil {
		return GenResult{}, ErrNoImage
	}
	return out, nil
}

// RemixSuggestions implements Generator. Never returns more than 5 strings.
func (g *GeminiGenerator) RemixSuggestions(ctx context.Context, imageData []byte, instruction string) []string {
	model := g.client.GenerativeModel(g.textModel)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(imageFormat(imageData), imageData),
		genai.Text(suggestionPrompt+instruction),
	)
	if err != nil {
		g.log.Debug("remix suggestions failed", zap.Error(err))
		return nil
	}

	var text string
	for _, part := range candidateParts(resp) {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return parseSuggestions(text)
}

// candidateParts returns the parts of the first candidate, or nil for an
// empty reply.
func candidateParts(resp *genai.GenerateContentResponse) []genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	c := resp.Candidates[0]
	if c.Content == nil {
		return nil
	}
	return c.Content.Parts
}

// parseSuggestions extracts a JSON string array from a model reply that may
// wrap it in prose or a markdown fence. Returns at most 5 non-empty entries;
// nil if nothing parseable is found.
func parseSuggestions(text string) []string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil
	}

	out := make([]string, 0, 5)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == 5 {
			break
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// imageFormat maps sniffed content to the format label the genai SDK wants
// ("png", "jpeg", ...). Defaults to png.
func imageFormat(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

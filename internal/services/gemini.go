package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/novelterm/aetheria/pkg/chat"
	"github.com/novelterm/aetheria/pkg/prompts"
)

// GeminiService implements ModelService for the Gemini API.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

// NewGeminiService creates a Gemini-backed model service.
func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

// newModel builds a generative model configured with the narrator contract
// and the tool registry.
func (g *GeminiService) newModel() *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SystemPrompt)},
	}
	model.Tools = []*genai.Tool{{FunctionDeclarations: toolDeclarations()}}
	return model
}

// StartSession opens a fresh chat session.
func (g *GeminiService) StartSession(ctx context.Context) (ModelSession, error) {
	model := g.newModel()
	return &geminiSession{chat: model.StartChat(), logger: g.logger}, nil
}

// ResumeSession opens a chat session primed with a saved transcript.
func (g *GeminiService) ResumeSession(ctx context.Context, history []chat.ChatMessage) (ModelSession, error) {
	model := g.newModel()
	cs := model.StartChat()
	cs.History = historyToContents(history)
	return &geminiSession{chat: cs, logger: g.logger}, nil
}

// historyToContents converts a transcript to Gemini conversation history,
// dropping local-only system messages.
func historyToContents(history []chat.ChatMessage) []*genai.Content {
	replayable := chat.FilterForResume(history)
	contents := make([]*genai.Content, 0, len(replayable))
	for _, msg := range replayable {
		contents = append(contents, &genai.Content{
			Role:  msg.Role,
			Parts: []genai.Part{genai.Text(msg.Text)},
		})
	}
	return contents
}

type geminiSession struct {
	chat   *genai.ChatSession
	logger *slog.Logger
}

func (s *geminiSession) Send(ctx context.Context, text string) (*ModelResponse, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

func (s *geminiSession) SendToolResults(ctx context.Context, results []ToolResult) (*ModelResponse, error) {
	parts := make([]genai.Part, 0, len(results))
	for _, res := range results {
		parts = append(parts, genai.FunctionResponse{
			Name:     res.Name,
			Response: res.Response,
		})
	}
	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return parseResponse(resp)
}

// parseResponse flattens a Gemini response into narrative text plus the
// ordered list of tool invocations it carries.
func parseResponse(resp *genai.GenerateContentResponse) (*ModelResponse, error) {
	out := &ModelResponse{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Text += string(p)
		case genai.FunctionCall:
			out.Calls = append(out.Calls, ToolCall{Name: p.Name, Args: p.Args})
		}
	}
	return out, nil
}

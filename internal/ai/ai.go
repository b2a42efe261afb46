// Package ai provides the completion-provider client used for content
// suggestions and chat. Provider errors are returned opaque; callers
// surface them as generic upstream failures and never retry here.
package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Message is one turn of a chat conversation.
type Message struct {
	// Role is "user", "assistant", or "system".
	Role string `json:"role"`
	// Content is the message text.
	Content string `json:"content"`
}

// Suggestions holds the structured editing suggestions for a document.
type Suggestions struct {
	Improvements []string `json:"improvements"`
	Formatting   []string `json:"formatting"`
	Expansion    []string `json:"expansion"`
}

const suggestSystemPrompt = "You are an expert content editor. Analyze the given document content and provide specific, actionable suggestions based on the actual content provided. Focus on concrete improvements rather than general writing advice. Return JSON in this format: { 'improvements': string[], 'formatting': string[], 'expansion': string[] }"

const chatSystemPrompt = "You are a helpful writing assistant that can help with content creation, templates, and writing suggestions. For any content suggestions, provide them in a clear, formatted structure with proper markdown formatting for headings, lists, and emphasis. Be concise and practical in your responses."

// Client calls the OpenAI chat completions API.
type Client struct {
	client openai.Client
	model  string
}

// NewClient constructs a Client for the given API key and model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Suggest asks the provider for editing suggestions on the content and
// parses the JSON response.
func (c *Client) Suggest(ctx context.Context, content string) (*Suggestions, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(suggestSystemPrompt),
			openai.UserMessage("Here is the document content to analyze and provide specific suggestions for:\n\n" + content),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggestion completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("suggestion completion: empty response")
	}

	var suggestions Suggestions
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &suggestions); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	return &suggestions, nil
}

// Chat sends a conversation to the provider and returns the reply text.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	params := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(chatSystemPrompt),
	}
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			params = append(params, openai.AssistantMessage(m.Content))
		case "system":
			params = append(params, openai.SystemMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: params,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

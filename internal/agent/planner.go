package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// PlanMarker tags prompts that already carry a generated plan so they are
// never planned twice.
const PlanMarker = "[[taragent_plan]]"

const planSystemPrompt = `You are a planning assistant for a coding agent. Given a task, produce a short numbered plan of 3 to 6 steps describing how to accomplish it. Each step is one concise line naming a concrete action, such as reading a file, editing code or running a command. Do not write code and do not explain the plan. Output only the numbered steps.`

// thinkBlockRe strips reasoning blocks from non-streamed completions.
var thinkBlockRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

var greetingWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yo": true, "sup": true,
	"thanks": true, "thank": true, "ok": true, "okay": true,
	"yes": true, "no": true, "bye": true,
}

var questionWords = map[string]bool{
	"what": true, "who": true, "when": true, "where": true, "why": true,
	"how": true, "is": true, "are": true, "does": true, "do": true,
	"can": true, "could": true, "should": true, "would": true,
	"did": true, "will": true,
}

var infoWords = map[string]bool{
	"explain": true, "describe": true, "show": true,
	"list": true, "tell": true, "summarize": true,
}

// Planner generates a short plan for a task using a small, fast model
// before the main agent loop runs.
type Planner struct {
	client *openai.Client
	model  string
}

// NewPlanner creates a planner backed by the given client and model.
func NewPlanner(client *openai.Client, model string) *Planner {
	return &Planner{client: client, model: model}
}

// Model returns the planning model id.
func (p *Planner) Model() string {
	return p.model
}

// ShouldPlan reports whether the input looks like a task worth planning.
// Greetings, questions and short info requests go straight to the agent.
func ShouldPlan(input string) bool {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < 5 {
		return false
	}
	if strings.HasPrefix(trimmed, "/") {
		return false
	}
	if strings.Contains(trimmed, PlanMarker) {
		return false
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) < 3 {
		return false
	}

	first := strings.Trim(words[0], ",.!?:;")
	if greetingWords[first] || questionWords[first] {
		return false
	}
	if infoWords[first] && len(words) < 8 {
		return false
	}

	return true
}

// Plan asks the planning model for a numbered plan. Callers treat failures
// as non-fatal and proceed with the original input.
func (p *Planner) Plan(ctx context.Context, input string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.3,
		MaxTokens:   1000,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: planSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("planning request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("planning model returned no choices")
	}

	plan := strings.TrimSpace(thinkBlockRe.ReplaceAllString(resp.Choices[0].Message.Content, ""))
	if plan == "" {
		return "", fmt.Errorf("planning model returned an empty plan")
	}
	return plan, nil
}

// AugmentWithPlan prefixes the original task with its plan so the main
// model sees both. The marker keeps the result from being planned again.
func AugmentWithPlan(input, plan string) string {
	return fmt.Sprintf("%s\n\nPLAN:\n%s\n\nTASK:\n%s", PlanMarker, plan, input)
}

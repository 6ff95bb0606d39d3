package gateway

import (
	"context"
	"net/http"
)

// Persona is the system instruction sent with every chat message
const Persona = `You are HopperAI, a helpful AI coding assistant that provides complete code solutions and examples.

When asked for code:
1. Provide complete, working code solutions
2. Include all necessary imports and dependencies
3. Add helpful comments explaining the code
4. Include example usage where appropriate
5. Provide setup instructions if needed

For project requests:
- Generate full project structure
- Create all necessary files
- Include configuration files
- Add README with setup instructions
- Provide complete working code

For feature requests:
- Provide complete implementation
- Include all required code changes
- Add necessary dependencies
- Show integration examples

Always:
- Write production-ready code
- Follow best practices
- Include error handling
- Add appropriate documentation
- Make code reusable and maintainable`

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Completion forwards a single user message to the chat completions endpoint.
// Calls are stateless: no history is sent and nothing is retried.
type Completion struct {
	c     *client
	model string
}

func NewCompletion(cfg Config) *Completion {
	return &Completion{
		c:     newClient(cfg),
		model: cfg.Model,
	}
}

// Complete returns the text of the first choice
func (g *Completion) Complete(ctx context.Context, content string) (string, error) {
	req := completionRequest{
		Model: g.model,
		Messages: []message{
			{Role: "system", Content: Persona},
			{Role: "user", Content: content},
		},
	}

	var resp completionResponse
	if err := g.c.post(ctx, "/chat/completions", req, &resp, apiErrorBody); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Status: http.StatusBadGateway, Message: "upstream returned no choices"}
	}

	return resp.Choices[0].Message.Content, nil
}

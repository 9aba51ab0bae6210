package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/amestudio/agencydesk/internal/store"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 1024
	apiURL           = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
)

// StreamChunk is a piece of the assistant response being streamed back.
// Err is set alongside a human-readable Text when the API call itself
// failed: streaming consumers can render the text, while blocking
// callers get a real error to propagate.
type StreamChunk struct {
	Text string
	Done bool
	Err  error
}

// Assistant is the chat assistant service. It talks to the Claude
// Messages API, keeps conversation history, and answers task and client
// questions through read-only tool calls against the store.
type Assistant struct {
	apiKey    string
	apiURL    string
	store     store.Store
	history   *History
	model     string
	maxTokens int
	client    *http.Client
	now       func() time.Time
}

// New creates an assistant with the given configuration.
func New(apiKey string, s store.Store, modelName string, maxTokens int) *Assistant {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Assistant{
		apiKey:    apiKey,
		apiURL:    apiURL,
		store:     s,
		history:   NewHistory(20),
		model:     modelName,
		maxTokens: maxTokens,
		client:    &http.Client{},
		now:       time.Now,
	}
}

// Reset clears the conversation history.
func (a *Assistant) Reset() {
	a.history.Reset()
}

// SendMessage sends a user message and returns a channel receiving
// response chunks. The channel is closed when the response completes.
func (a *Assistant) SendMessage(
	ctx context.Context,
	userMsg string,
) (<-chan StreamChunk, error) {
	a.history.Add(RoleUser, userMsg)

	ch := make(chan StreamChunk, 16)

	go func() {
		defer close(ch)
		a.processMessage(ctx, ch)
	}()

	return ch, nil
}

// Ask sends a user message and blocks until the full response text is
// available. Convenience wrapper over SendMessage for the HTTP surface.
func (a *Assistant) Ask(ctx context.Context, userMsg string) (string, error) {
	ch, err := a.SendMessage(ctx, userMsg)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var chunkErr error
	for chunk := range ch {
		if chunk.Err != nil {
			if chunkErr == nil {
				chunkErr = chunk.Err
			}
			continue
		}
		sb.WriteString(chunk.Text)
	}
	if chunkErr != nil {
		return "", chunkErr
	}
	return sb.String(), nil
}

// SuggestContent runs a one-shot content-suggestion flow for the given
// brief (e.g. a client campaign topic) outside the conversation
// history.
func (a *Assistant) SuggestContent(ctx context.Context, brief string) (string, error) {
	if strings.TrimSpace(brief) == "" {
		return "", fmt.Errorf("content brief must not be empty")
	}

	req := apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System: "You are a content strategist for a creative agency. " +
			"Given a brief, propose concrete content ideas: titles, angles, " +
			"and formats. Answer in the language of the brief.",
		Messages: []apiMessage{{
			Role:    string(RoleUser),
			Content: []apiContentBlock{{Type: "text", Text: brief}},
		}},
	}

	resp, err := a.post(ctx, req)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, ""), nil
}

// processMessage handles the API call loop, including tool use iterations.
func (a *Assistant) processMessage(ctx context.Context, ch chan<- StreamChunk) {
	maxToolIterations := 5

	for i := 0; i < maxToolIterations; i++ {
		resp, err := a.callAPI(ctx)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error: %v", err),
				Done: true,
				Err:  err,
			}
			return
		}

		var textParts []string
		var toolUseBlocks []apiToolUse
		hasToolUse := false

		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				textParts = append(textParts, block.Text)
			case "tool_use":
				hasToolUse = true
				toolUseBlocks = append(toolUseBlocks, apiToolUse{
					ID:    block.ID,
					Name:  block.Name,
					Input: block.Input,
				})
			}
		}

		if len(textParts) > 0 {
			combined := strings.Join(textParts, "")
			ch <- StreamChunk{Text: combined, Done: !hasToolUse}

			if !hasToolUse {
				a.history.Add(RoleAssistant, combined)
				return
			}
		}

		if !hasToolUse {
			if len(textParts) == 0 {
				ch <- StreamChunk{Text: "", Done: true}
			}
			return
		}

		// Record the assistant's response (with tool use) in history.
		assistantContent, err := json.Marshal(resp.Content)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error encoding response: %v", err),
				Done: true,
				Err:  err,
			}
			return
		}
		a.history.Add(RoleAssistant, string(assistantContent))

		var toolResults []apiContentBlock
		for _, tu := range toolUseBlocks {
			result := a.executeToolUse(ctx, tu)
			toolResults = append(toolResults, apiContentBlock{
				Type:      "tool_result",
				ToolUseID: tu.ID,
				Content:   result,
			})
		}

		toolResultsJSON, err := json.Marshal(toolResults)
		if err != nil {
			ch <- StreamChunk{
				Text: fmt.Sprintf("Error encoding tool results: %v", err),
				Done: true,
				Err:  err,
			}
			return
		}
		a.history.Add(RoleUser, string(toolResultsJSON))
	}

	ch <- StreamChunk{
		Text: "\n\n(Reached maximum tool use iterations)",
		Done: true,
	}
}

// callAPI makes a single request to the Claude Messages API using the
// current conversation history and tool definitions.
func (a *Assistant) callAPI(ctx context.Context) (*apiResponse, error) {
	return a.post(ctx, apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    a.buildSystemPrompt(),
		Messages:  a.buildAPIMessages(),
		Tools:     toolDefinitions(),
	})
}

// post sends one request to the Messages API and decodes the response.
func (a *Assistant) post(ctx context.Context, reqBody apiRequest) (*apiResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.apiURL, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// buildSystemPrompt constructs the system prompt for the chat assistant.
func (a *Assistant) buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are the assistant of a creative agency's ")
	sb.WriteString("management app. You can look up the agency's tasks ")
	sb.WriteString("and clients and answer questions about upcoming work.\n\n")

	sb.WriteString("You have access to these tools:\n")
	sb.WriteString("- upcoming_tasks: List the tasks due between today and ")
	sb.WriteString("two days from now\n")
	sb.WriteString("- search_tasks: Search tasks by text, status, or priority\n")
	sb.WriteString("- get_client_detail: Get full details for a client by ID\n\n")

	sb.WriteString("IMPORTANT: You CANNOT perform write operations ")
	sb.WriteString("(creating, editing, or completing tasks, clients, or ")
	sb.WriteString("invoices). If asked to, politely explain that you can ")
	sb.WriteString("only search and summarize, and point the user to the ")
	sb.WriteString("corresponding screen in the app.\n\n")

	sb.WriteString("When referencing tasks, include their name and due date. ")
	sb.WriteString("Keep responses concise and answer in the user's language.")

	return sb.String()
}

// buildAPIMessages converts the history into the Claude API message
// format. Messages holding JSON content blocks (from tool use) are sent
// as structured content; plain text messages are sent as-is.
func (a *Assistant) buildAPIMessages() []apiMessage {
	historyMsgs := a.history.Messages()
	var messages []apiMessage

	for _, msg := range historyMsgs {
		if isJSONArray(msg.Content) {
			var blocks []apiContentBlock
			if err := json.Unmarshal([]byte(msg.Content), &blocks); err == nil {
				messages = append(messages, apiMessage{
					Role:    string(msg.Role),
					Content: blocks,
				})
				continue
			}
		}

		messages = append(messages, apiMessage{
			Role: string(msg.Role),
			Content: []apiContentBlock{
				{Type: "text", Text: msg.Content},
			},
		})
	}

	return messages
}

// executeToolUse runs a tool requested by the model and returns the
// result as a JSON string.
func (a *Assistant) executeToolUse(ctx context.Context, tu apiToolUse) string {
	// Read-only guard: reject write-like tool names outright.
	writeTools := map[string]bool{
		"create_task":    true,
		"update_task":    true,
		"delete_task":    true,
		"update_status":  true,
		"create_client":  true,
		"create_invoice": true,
	}
	if writeTools[tu.Name] {
		return `{"error": "Write operations are not permitted. ` +
			`Use the tasks, clients, or billing screens instead."}`
	}

	switch tu.Name {
	case "upcoming_tasks":
		return a.handleUpcomingTasks(ctx)
	case "search_tasks":
		return a.handleSearchTasks(ctx, tu.Input)
	case "get_client_detail":
		return a.handleGetClientDetail(ctx, tu.Input)
	default:
		return fmt.Sprintf(`{"error": "Unknown tool: %s"}`, tu.Name)
	}
}

// handleUpcomingTasks runs the upcoming-tasks selection. The result is
// success-shaped even on failure, so the tool loop never sees an error.
func (a *Assistant) handleUpcomingTasks(ctx context.Context) string {
	result := UpcomingTasks(ctx, a.store, a.now())

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf(`{"tasks": [], "summary": "Failed to encode results: %v"}`, err)
	}
	return string(encoded)
}

// handleSearchTasks queries the store with the provided search parameters.
func (a *Assistant) handleSearchTasks(ctx context.Context, input json.RawMessage) string {
	var params struct {
		Query    string `json:"query"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}

	if err := json.Unmarshal(input, &params); err != nil {
		return fmt.Sprintf(`{"error": "Invalid parameters: %v"}`, err)
	}

	filter := store.TaskFilter{
		SortBy: "due_date",
		Limit:  20,
	}

	if params.Query != "" {
		filter.Query = &params.Query
	}
	if params.Status != "" {
		filter.Statuses = []string{params.Status}
	}

	tasks, err := a.store.GetTasks(ctx, filter)
	if err != nil {
		return fmt.Sprintf(`{"error": "Search failed: %v"}`, err)
	}

	type taskSummary struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		ClientName string `json:"client_name,omitempty"`
		Status     string `json:"status"`
		Priority   string `json:"priority"`
		AssignedTo string `json:"assigned_to"`
		DueDate    string `json:"due_date"`
	}

	summaries := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		if params.Priority != "" && t.Priority != params.Priority {
			continue
		}
		ts := taskSummary{
			ID:         t.ID,
			Name:       t.Name,
			Status:     t.Status,
			Priority:   t.Priority,
			AssignedTo: t.AssignedTo,
			DueDate:    t.DueDate.Format(dueDateLayout),
		}
		if t.ClientName != nil {
			ts.ClientName = *t.ClientName
		}
		summaries = append(summaries, ts)
	}

	result, err := json.Marshal(map[string]interface{}{
		"count": len(summaries),
		"tasks": summaries,
	})
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to encode results: %v"}`, err)
	}

	return string(result)
}

// handleGetClientDetail retrieves full details for a specific client.
func (a *Assistant) handleGetClientDetail(ctx context.Context, input json.RawMessage) string {
	var params struct {
		ClientID string `json:"client_id"`
	}

	if err := json.Unmarshal(input, &params); err != nil {
		return fmt.Sprintf(`{"error": "Invalid parameters: %v"}`, err)
	}

	if params.ClientID == "" {
		return `{"error": "client_id is required"}`
	}

	client, err := a.store.GetClientByID(ctx, params.ClientID)
	if err != nil {
		return fmt.Sprintf(`{"error": "Client not found: %v"}`, err)
	}

	result, err := json.Marshal(client)
	if err != nil {
		return fmt.Sprintf(`{"error": "Failed to encode client: %v"}`, err)
	}

	return string(result)
}

// isJSONArray returns true if the string starts with '['.
func isJSONArray(s string) bool {
	trimmed := strings.TrimSpace(s)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system"`
	Messages  []apiMessage `json:"messages"`
	Tools     []apiTool    `json:"tools,omitempty"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	// Common fields
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For tool_use blocks
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// For tool_result blocks
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type apiToolUse struct {
	ID    string
	Name  string
	Input json.RawMessage
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}

// toolDefinitions returns the tool specifications for the Claude API.
func toolDefinitions() []apiTool {
	return []apiTool{
		{
			Name: "upcoming_tasks",
			Description: "List the agency's pending and in-progress tasks " +
				"due between today and two days from now, earliest first " +
				"(at most 5), with a count summary.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {}
			}`),
		},
		{
			Name: "search_tasks",
			Description: "Search the agency's tasks by text, status, or " +
				"priority. Returns matching tasks with their key details.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"query": {
						"type": "string",
						"description": "Search query matched against task names and descriptions"
					},
					"status": {
						"type": "string",
						"enum": ["pending", "in_progress", "completed"],
						"description": "Filter by task status"
					},
					"priority": {
						"type": "string",
						"enum": ["low", "medium", "high"],
						"description": "Filter by task priority"
					}
				}
			}`),
		},
		{
			Name:        "get_client_detail",
			Description: "Get full details for a specific client by its ID.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"client_id": {
						"type": "string",
						"description": "The unique client ID"
					}
				},
				"required": ["client_id"]
			}`),
		},
	}
}

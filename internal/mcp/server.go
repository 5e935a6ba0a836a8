// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the wish store as MCP tools for orchestrating agents.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/namastexlabs/genie/internal/core"
	"github.com/namastexlabs/genie/internal/observability"
	"github.com/namastexlabs/genie/internal/storage"
	"github.com/namastexlabs/genie/pkg/models"
	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the wish store services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	store       storage.WishStore
	cards       storage.TaskCardIndex
	transitions core.TransitionEngine
	resolver    core.RefResolver
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// Deps carries the service dependencies for the MCP server.
// MetricsCalc and AlertEngine may be nil if observability is disabled.
type Deps struct {
	Store       storage.WishStore
	Cards       storage.TaskCardIndex
	Transitions core.TransitionEngine
	Resolver    core.RefResolver
	MetricsCalc observability.MetricsCalculator
	AlertEngine observability.AlertEngine
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		store:       deps.Store,
		cards:       deps.Cards,
		transitions: deps.Transitions,
		resolver:    deps.Resolver,
		metricsCalc: deps.MetricsCalc,
		alertEngine: deps.AlertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "genie", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getWishInput struct {
	WishID string `json:"wish_id" jsonschema:"required,the wish slug (e.g. auth-upgrade)"`
}

type wishOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Stage    string `json:"stage"`
	Status   string `json:"status,omitempty"`
	Assigned string `json:"assigned,omitempty"`
	Created  string `json:"created"`
	Updated  string `json:"updated"`
	Path     string `json:"path"`
}

type listWishesInput struct {
	Stage string `json:"stage,omitempty" jsonschema:"filter wishes by stage (backlog, in_progress, review, completed)"`
}

type listWishesOutput struct {
	Wishes []wishOutput `json:"wishes"`
	Count  int          `json:"count"`
}

type createWishInput struct {
	WishID string `json:"wish_id" jsonschema:"required,the wish slug (lowercase, hyphen-separated)"`
	Title  string `json:"title,omitempty" jsonschema:"human-readable title (defaults to the slug)"`
}

type moveWishInput struct {
	WishID string `json:"wish_id" jsonschema:"required,the wish slug"`
	Stage  string `json:"stage" jsonschema:"required,the target stage (in_progress, review, completed; review may move back to in_progress for rework)"`
}

type moveWishOutput struct {
	Message string `json:"message"`
}

type readDocumentInput struct {
	WishID   string `json:"wish_id" jsonschema:"required,the wish slug"`
	Document string `json:"document" jsonschema:"required,document name (wish.md, analysis.md, plan.md)"`
}

type readDocumentOutput struct {
	Content string `json:"content"`
}

type addTaskCardInput struct {
	WishID   string   `json:"wish_id" jsonschema:"required,the wish slug"`
	Title    string   `json:"title" jsonschema:"required,short task title"`
	Type     string   `json:"type,omitempty" jsonschema:"dependency annotation: [P] parallel, [S] sequential, or [W:task-001] wait (default [S])"`
	Assigned string   `json:"assigned,omitempty" jsonschema:"specialist name the card is assigned to"`
	Criteria []string `json:"criteria,omitempty" jsonschema:"acceptance criteria lines"`
}

type addTaskCardOutput struct {
	TaskID string `json:"task_id"`
}

type listTaskCardsInput struct {
	WishID string `json:"wish_id" jsonschema:"required,the wish slug"`
}

type cardOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Status   string   `json:"status"`
	Assigned string   `json:"assigned,omitempty"`
	WaitsOn  []string `json:"waits_on,omitempty"`
}

type listTaskCardsOutput struct {
	Cards []cardOutput `json:"cards"`
	Count int          `json:"count"`
}

type updateTaskCardInput struct {
	WishID string `json:"wish_id" jsonschema:"required,the wish slug"`
	TaskID string `json:"task_id" jsonschema:"required,the task card id (e.g. task-001)"`
	Status string `json:"status" jsonschema:"required,new status (pending, in_progress, done)"`
}

type updateTaskCardOutput struct {
	Message string `json:"message"`
}

type resolveReferenceInput struct {
	Reference string `json:"reference" jsonschema:"required,an @path context reference (e.g. @genie/wishes/backlog/w1/wish.md)"`
}

type resolveReferenceOutput struct {
	Content string `json:"content"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	WishesCreated   int            `json:"wishes_created"`
	WishesCompleted int            `json:"wishes_completed"`
	StageMoves      map[string]int `json:"stage_moves"`
	CardsAppended   int            `json:"cards_appended"`
	CardsCompleted  int            `json:"cards_completed"`
	EventCount      int            `json:"event_count"`
	OldestEvent     string         `json:"oldest_event,omitempty"`
	NewestEvent     string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_wish",
		Description: "Get wish details by id. Returns the wish's stage, status line, and paths.",
	}, s.handleGetWish)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_wishes",
		Description: "List wishes with an optional stage filter. Returns an array of wish summaries.",
	}, s.handleListWishes)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_wish",
		Description: "Create a new wish in the backlog with its document skeleton (wish.md, analysis.md, plan.md, tasks/).",
	}, s.handleCreateWish)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "move_wish",
		Description: "Move a wish to another lifecycle stage. Legal moves: backlog->in_progress->review->completed, plus review->in_progress for rework.",
	}, s.handleMoveWish)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "read_document",
		Description: "Read a document from a wish directory (wish.md, analysis.md, plan.md).",
	}, s.handleReadDocument)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task_card",
		Description: "Append a task card to a wish. The card gets the next sequential id (task-NNN).",
	}, s.handleAddTaskCard)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_task_cards",
		Description: "List a wish's task cards sorted by id. Malformed cards are skipped.",
	}, s.handleListTaskCards)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task_card",
		Description: "Update a task card's status. Valid statuses: pending, in_progress, done.",
	}, s.handleUpdateTaskCard)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "resolve_reference",
		Description: "Resolve an @path context reference to the raw content of the target file.",
	}, s.handleResolveReference)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log: wishes created/completed, stage moves, task card activity.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (stale wishes, long reviews, backlog size).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleGetWish(_ context.Context, _ *gomcp.CallToolRequest, input getWishInput) (*gomcp.CallToolResult, wishOutput, error) {
	if input.WishID == "" {
		return errorResult("wish_id is required"), wishOutput{}, nil
	}

	wish, err := s.store.Find(input.WishID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting wish %s: %s", input.WishID, err)), wishOutput{}, nil
	}

	return nil, wishToOutput(wish), nil
}

func (s *Server) handleListWishes(_ context.Context, _ *gomcp.CallToolRequest, input listWishesInput) (*gomcp.CallToolResult, listWishesOutput, error) {
	var wishes []*models.Wish
	var err error

	if input.Stage != "" {
		wishes, err = s.store.ListByStage(models.Stage(input.Stage))
	} else {
		wishes, err = s.store.ListAll()
	}
	if err != nil {
		return errorResult(fmt.Sprintf("listing wishes: %s", err)), listWishesOutput{}, nil
	}

	out := listWishesOutput{Count: len(wishes)}
	for _, w := range wishes {
		out.Wishes = append(out.Wishes, wishToOutput(w))
	}
	return nil, out, nil
}

func (s *Server) handleCreateWish(_ context.Context, _ *gomcp.CallToolRequest, input createWishInput) (*gomcp.CallToolResult, wishOutput, error) {
	if input.WishID == "" {
		return errorResult("wish_id is required"), wishOutput{}, nil
	}

	wish, err := s.store.Create(input.WishID, storage.CreateWishOpts{Title: input.Title})
	if err != nil {
		return errorResult(fmt.Sprintf("creating wish %s: %s", input.WishID, err)), wishOutput{}, nil
	}
	return nil, wishToOutput(wish), nil
}

func (s *Server) handleMoveWish(_ context.Context, _ *gomcp.CallToolRequest, input moveWishInput) (*gomcp.CallToolResult, moveWishOutput, error) {
	if input.WishID == "" || input.Stage == "" {
		return errorResult("wish_id and stage are required"), moveWishOutput{}, nil
	}

	if err := s.transitions.Move(input.WishID, models.Stage(input.Stage)); err != nil {
		return errorResult(fmt.Sprintf("moving wish %s: %s", input.WishID, err)), moveWishOutput{}, nil
	}
	return nil, moveWishOutput{
		Message: fmt.Sprintf("wish %s moved to %s", input.WishID, input.Stage),
	}, nil
}

func (s *Server) handleReadDocument(_ context.Context, _ *gomcp.CallToolRequest, input readDocumentInput) (*gomcp.CallToolResult, readDocumentOutput, error) {
	if input.WishID == "" || input.Document == "" {
		return errorResult("wish_id and document are required"), readDocumentOutput{}, nil
	}

	content, err := s.store.ReadDocument(input.WishID, input.Document)
	if err != nil {
		return errorResult(fmt.Sprintf("reading document: %s", err)), readDocumentOutput{}, nil
	}
	return nil, readDocumentOutput{Content: string(content)}, nil
}

func (s *Server) handleAddTaskCard(_ context.Context, _ *gomcp.CallToolRequest, input addTaskCardInput) (*gomcp.CallToolResult, addTaskCardOutput, error) {
	if input.WishID == "" || input.Title == "" {
		return errorResult("wish_id and title are required"), addTaskCardOutput{}, nil
	}

	card := models.TaskCard{
		Title:      input.Title,
		Assigned:   input.Assigned,
		Acceptance: input.Criteria,
	}
	if input.Type != "" {
		ct, err := models.ParseCardType(input.Type)
		if err != nil {
			return errorResult(err.Error()), addTaskCardOutput{}, nil
		}
		card.Type = ct
	}

	taskID, err := s.cards.Append(input.WishID, card)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task card: %s", err)), addTaskCardOutput{}, nil
	}
	return nil, addTaskCardOutput{TaskID: taskID}, nil
}

func (s *Server) handleListTaskCards(_ context.Context, _ *gomcp.CallToolRequest, input listTaskCardsInput) (*gomcp.CallToolResult, listTaskCardsOutput, error) {
	if input.WishID == "" {
		return errorResult("wish_id is required"), listTaskCardsOutput{}, nil
	}

	cards, err := s.cards.List(input.WishID)
	if err != nil {
		return errorResult(fmt.Sprintf("listing task cards: %s", err)), listTaskCardsOutput{}, nil
	}

	out := listTaskCardsOutput{Count: len(cards)}
	for _, c := range cards {
		out.Cards = append(out.Cards, cardOutput{
			ID:       c.ID,
			Title:    c.Title,
			Type:     c.Type.String(),
			Status:   string(c.Status),
			Assigned: c.Assigned,
			WaitsOn:  c.Type.WaitsOn,
		})
	}
	return nil, out, nil
}

func (s *Server) handleUpdateTaskCard(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskCardInput) (*gomcp.CallToolResult, updateTaskCardOutput, error) {
	if input.WishID == "" || input.TaskID == "" || input.Status == "" {
		return errorResult("wish_id, task_id, and status are required"), updateTaskCardOutput{}, nil
	}

	if err := s.cards.UpdateStatus(input.WishID, input.TaskID, models.CardStatus(input.Status)); err != nil {
		return errorResult(fmt.Sprintf("updating task card: %s", err)), updateTaskCardOutput{}, nil
	}
	return nil, updateTaskCardOutput{
		Message: fmt.Sprintf("task card %s set to %s", input.TaskID, input.Status),
	}, nil
}

func (s *Server) handleResolveReference(_ context.Context, _ *gomcp.CallToolRequest, input resolveReferenceInput) (*gomcp.CallToolResult, resolveReferenceOutput, error) {
	if input.Reference == "" {
		return errorResult("reference is required"), resolveReferenceOutput{}, nil
	}

	content, err := s.resolver.Resolve(input.Reference)
	if err != nil {
		return errorResult(fmt.Sprintf("resolving reference: %s", err)), resolveReferenceOutput{}, nil
	}
	return nil, resolveReferenceOutput{Content: string(content)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics are not available (observability disabled)"), metricsOutput{}, nil
	}

	since := "7d"
	if input.Since != "" {
		since = input.Since
	}
	sinceTime, err := observability.ParseWindow(since)
	if err != nil {
		return errorResult(err.Error()), metricsOutput{}, nil
	}

	m, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), metricsOutput{}, nil
	}

	out := metricsOutput{
		WishesCreated:   m.WishesCreated,
		WishesCompleted: m.WishesCompleted,
		StageMoves:      m.StageMoves,
		CardsAppended:   m.CardsAppended,
		CardsCompleted:  m.CardsCompleted,
		EventCount:      m.EventCount,
	}
	if m.OldestEvent != nil {
		out.OldestEvent = m.OldestEvent.Format(time.RFC3339)
	}
	if m.NewestEvent != nil {
		out.NewestEvent = m.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alerts are not available (observability disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{Count: len(alerts)}
	for _, a := range alerts {
		out.Alerts = append(out.Alerts, alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		})
	}
	return nil, out, nil
}

// --- Helpers ---

func wishToOutput(w *models.Wish) wishOutput {
	return wishOutput{
		ID:       w.ID,
		Title:    w.Title,
		Stage:    string(w.Stage),
		Status:   w.Status,
		Assigned: w.Assigned,
		Created:  w.Created.Format(time.RFC3339),
		Updated:  w.Updated.Format(time.RFC3339),
		Path:     w.Path,
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}


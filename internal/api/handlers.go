package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/notify"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/store/artifact"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/store/projectstore"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/workflow"
)

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	engine    *workflow.Engine
	projects  *projectstore.Store
	artifacts artifact.Store
	hub       *Hub
	webhook   *notify.Webhook
	log       zerolog.Logger
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(
	engine *workflow.Engine,
	projects *projectstore.Store,
	artifacts artifact.Store,
	hub *Hub,
	webhook *notify.Webhook,
	log zerolog.Logger,
) *APIHandler {
	return &APIHandler{
		engine:    engine,
		projects:  projects,
		artifacts: artifacts,
		hub:       hub,
		webhook:   webhook,
		log:       log,
	}
}

// --- Structs for API Requests/Responses ---

type GenerateRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	ProjectType string `json:"projectType"`
	ProjectID   string `json:"projectId"` // optional: clients that open the event socket first pass their own ID
}

type ModifyRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type AskRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type GenerateResponse struct {
	ProjectID  string                  `json:"projectId"`
	Status     string                  `json:"status"`
	Intent     string                  `json:"intent"`
	Iterations int                     `json:"iterations"`
	Files      []types.GeneratedFile   `json:"files"`
	Errors     []types.ValidationError `json:"errors,omitempty"`
	Messages   []string                `json:"messages,omitempty"`
	Blueprint  *types.Blueprint        `json:"blueprint,omitempty"`
}

type AskResponse struct {
	ProjectID string `json:"projectId"`
	Intent    string `json:"intent"`
	Answer    string `json:"answer"`
}

// --- API Handlers ---

// POST /project/generate
func (h *APIHandler) GenerateSite(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ptype := types.ProjectFrontend
	if strings.TrimSpace(req.ProjectType) != "" {
		parsed, err := types.ParseProjectType(req.ProjectType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ptype = parsed
	}

	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		projectID = uuid.NewString()
	}

	h.log.Info().Str("project_id", projectID).Str("project_type", string(ptype)).Msg("generation request received")

	res, err := h.runWorkflow(c.Request.Context(), projectID, req.Prompt, ptype, nil)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("generation failed")
		h.hub.Broadcast(projectID, Event{Type: "error", Message: "generation failed"})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate site"})
		return
	}

	h.persistRun(c.Request.Context(), projectID, req.Prompt, ptype, res, nil)
	c.JSON(http.StatusCreated, buildGenerateResponse(projectID, res))
}

// POST /project/:id/modify
func (h *APIHandler) ModifyProject(c *gin.Context) {
	projectID := c.Param("id")
	var req ModifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	rec, ok := h.projects.Get(projectID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	existing, err := h.loadFiles(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("loading project files failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project files"})
		return
	}

	ptype, perr := types.ParseProjectType(rec.ProjectType)
	if perr != nil {
		ptype = types.ProjectFrontend
	}

	res, err := h.runWorkflow(c.Request.Context(), projectID, req.Prompt, ptype, existing)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("modification failed")
		h.hub.Broadcast(projectID, Event{Type: "error", Message: "modification failed"})
		h.projects.Update(projectID, func(r *projectstore.Record) { r.Status = projectstore.StatusFailed })
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to modify project"})
		return
	}

	h.persistRun(c.Request.Context(), projectID, req.Prompt, ptype, res, existing)
	c.JSON(http.StatusOK, buildGenerateResponse(projectID, res))
}

// POST /project/:id/ask
// Questions run through the same workflow; the routed branch never touches
// files, so nothing is persisted here.
func (h *APIHandler) AskProject(c *gin.Context) {
	projectID := c.Param("id")
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	rec, ok := h.projects.Get(projectID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	existing, err := h.loadFiles(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("loading project files failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load project files"})
		return
	}

	ptype, perr := types.ParseProjectType(rec.ProjectType)
	if perr != nil {
		ptype = types.ProjectFrontend
	}

	res, err := h.engine.Generate(c.Request.Context(), workflow.GenerateRequest{
		Prompt:        req.Prompt,
		ProjectType:   ptype,
		ExistingFiles: existing,
	})
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("question failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, AskResponse{
		ProjectID: projectID,
		Intent:    string(res.Intent),
		Answer:    res.Answer,
	})
}

// GET /project/:id
func (h *APIHandler) GetProject(c *gin.Context) {
	rec, ok := h.projects.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GET /project/:id/files
func (h *APIHandler) GetProjectFiles(c *gin.Context) {
	projectID := c.Param("id")
	if _, ok := h.projects.Get(projectID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	files, err := h.loadFiles(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error().Err(err).Str("project_id", projectID).Msg("loading project files failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project files"})
		return
	}

	// Empty project with no error still returns 200 with an empty map.
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = f.Content
	}
	c.JSON(http.StatusOK, out)
}

// GET /projects
func (h *APIHandler) ListProjects(c *gin.Context) {
	list := h.projects.List()
	if list == nil {
		list = []projectstore.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// GET /project/:id/events
// Subscribing before posting the generate request is the intended order, so
// unknown project IDs are accepted here.
func (h *APIHandler) Events(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	projectID := c.Param("id")
	sc := NewSafeConn(conn)
	h.hub.Subscribe(projectID, sc)
	defer func() {
		h.hub.Unsubscribe(projectID, sc)
		_ = sc.Close()
	}()

	// Inbound messages are ignored; the read loop only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Internals ---

// runWorkflow wires the hub and artifact store into the engine callbacks so
// every file lands in storage and on the socket as soon as it is written.
func (h *APIHandler) runWorkflow(ctx context.Context, projectID, prompt string, ptype types.ProjectType, existing []types.GeneratedFile) (*workflow.Result, error) {
	return h.engine.Generate(ctx, workflow.GenerateRequest{
		Prompt:        prompt,
		ProjectType:   ptype,
		ExistingFiles: existing,
		OnFile: func(f types.GeneratedFile) {
			if err := h.artifacts.Put(ctx, projectID, f.Path, []byte(f.Content)); err != nil {
				h.log.Warn().Err(err).Str("project_id", projectID).Str("path", f.Path).Msg("artifact write failed")
			}
			h.hub.Broadcast(projectID, Event{Type: "file", Path: f.Path, Content: f.Content})
		},
		OnPhase: func(phase string) {
			h.hub.Broadcast(projectID, Event{Type: "phase", Phase: phase})
		},
	})
}

// persistRun records the finished run, removes artifacts for files the run
// deleted, and fires the completion notifications.
func (h *APIHandler) persistRun(ctx context.Context, projectID, prompt string, ptype types.ProjectType, res *workflow.Result, before []types.GeneratedFile) {
	status := projectstore.StatusComplete
	if res.Degraded() {
		status = projectstore.StatusDegraded
	}

	_, ok := h.projects.Update(projectID, func(r *projectstore.Record) {
		if res.Blueprint != nil && strings.TrimSpace(res.Blueprint.Name) != "" {
			r.Name = res.Blueprint.Name
		}
		r.Intent = string(res.Intent)
		r.Status = status
		r.FileCount = len(res.Files)
		r.ErrorCount = len(res.Errors)
		r.Iterations = res.Iterations
	})
	if !ok {
		h.projects.Put(projectstore.Record{
			ID:          projectID,
			Name:        projectName(res, prompt),
			Prompt:      prompt,
			ProjectType: string(ptype),
			Intent:      string(res.Intent),
			Status:      status,
			FileCount:   len(res.Files),
			ErrorCount:  len(res.Errors),
			Iterations:  res.Iterations,
		})
	}

	kept := res.FileMap()
	for _, f := range before {
		if _, stillThere := kept[f.Path]; stillThere {
			continue
		}
		if err := h.artifacts.Delete(ctx, projectID, f.Path); err != nil {
			h.log.Warn().Err(err).Str("project_id", projectID).Str("path", f.Path).Msg("artifact delete failed")
		}
	}

	h.hub.Broadcast(projectID, Event{Type: "done", Message: status})

	if h.webhook.Enabled() {
		ev := notify.Event{
			ProjectID:  projectID,
			Status:     status,
			Intent:     string(res.Intent),
			FileCount:  len(res.Files),
			ErrorCount: len(res.Errors),
			Iterations: res.Iterations,
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			_ = h.webhook.ProjectFinished(ctx, ev)
		}()
	}
}

func (h *APIHandler) loadFiles(ctx context.Context, projectID string) ([]types.GeneratedFile, error) {
	paths, err := h.artifacts.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	files := make([]types.GeneratedFile, 0, len(paths))
	for _, p := range paths {
		content, err := h.artifacts.Get(ctx, projectID, p)
		if err != nil {
			if errors.Is(err, artifact.ErrNotFound) {
				continue
			}
			return nil, err
		}
		files = append(files, types.GeneratedFile{Path: p, Content: string(content)})
	}
	return files, nil
}

func buildGenerateResponse(projectID string, res *workflow.Result) GenerateResponse {
	status := projectstore.StatusComplete
	if res.Degraded() {
		status = projectstore.StatusDegraded
	}
	return GenerateResponse{
		ProjectID:  projectID,
		Status:     status,
		Intent:     string(res.Intent),
		Iterations: res.Iterations,
		Files:      res.Files,
		Errors:     res.Errors,
		Messages:   res.Messages,
		Blueprint:  res.Blueprint,
	}
}

func projectName(res *workflow.Result, prompt string) string {
	if res.Blueprint != nil && strings.TrimSpace(res.Blueprint.Name) != "" {
		return strings.TrimSpace(res.Blueprint.Name)
	}
	r := []rune(strings.TrimSpace(prompt))
	if len(r) == 0 {
		return "Project"
	}
	if len(r) > 60 {
		return string(r[:60])
	}
	return string(r)
}

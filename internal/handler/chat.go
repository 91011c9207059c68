package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/chatlog"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/domain/profile"
	"github.com/divyampandey/pixel-llm-server-go/internal/gemini"
	"github.com/divyampandey/pixel-llm-server-go/internal/handler/shared"
	"github.com/divyampandey/pixel-llm-server-go/internal/llm"
	"github.com/divyampandey/pixel-llm-server-go/internal/pipeline"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

// maxQuestionRunes caps visitor questions before they reach the model.
const maxQuestionRunes = 2000

// ChatRequest is the public chat request body.
type ChatRequest struct {
	Question  string `json:"question"`
	VisitorID string `json:"visitor_id"`
}

// ChatResponse is the public chat response body.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Animation string `json:"animation"`
}

// chatErrorResponse keeps the widget renderable on failure: the error
// text goes into the bubble and the avatar shakes its head.
type chatErrorResponse struct {
	Error     string `json:"error"`
	Animation string `json:"animation"`
}

// ChatHandler serves the public chat endpoint.
type ChatHandler struct {
	cfg         *config.Config
	client      gemini.LLM
	profile     *profile.Profile
	pipe        *pipeline.Pipeline
	transcripts *transcript.Store
	recorder    *chatlog.Recorder
	logger      *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(
	cfg *config.Config,
	client gemini.LLM,
	siteProfile *profile.Profile,
	pipe *pipeline.Pipeline,
	transcripts *transcript.Store,
	recorder *chatlog.Recorder,
	logger *slog.Logger,
) *ChatHandler {
	return &ChatHandler{
		cfg:         cfg,
		client:      client,
		profile:     siteProfile,
		pipe:        pipe,
		transcripts: transcripts,
		recorder:    recorder,
		logger:      logger,
	}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/chat", h.handleChat)

	group := router.Group("/api/transcript")
	group.GET("/count", h.handleVisitorCount)
	group.DELETE("/:visitor_id", h.handleDeleteTranscript)
}

func (h *ChatHandler) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeChatError(c, "Could not read your question. Please try again!")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeChatError(c, "Please ask me a question about Divyam!")
		return
	}
	question = shared.TrimRunes(question, maxQuestionRunes)

	history := h.loadHistory(c, req.VisitorID)

	chatResult, err := h.client.Chat(c.Request.Context(), gemini.Request{
		Prompt:       question,
		SystemPrompt: h.profile.SystemPrompt(),
		History:      history,
	})
	if err != nil {
		shared.LogError(h.logger, "chat", err)
		writeChatError(c, "Something went wrong on my side. Please try again!")
		return
	}

	result := h.pipe.Process(question, chatResult.Text)

	h.recorder.Record(result.Animation, chatResult.Usage)
	h.saveExchange(c, req.VisitorID, question, result.Answer)

	c.JSON(http.StatusOK, ChatResponse{
		Answer:    result.Answer,
		Animation: string(result.Animation),
	})
}

func (h *ChatHandler) handleVisitorCount(c *gin.Context) {
	count, err := h.transcripts.VisitorCount(c.Request.Context())
	if err != nil {
		shared.LogError(h.logger, "transcript", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitor_count": count})
}

func (h *ChatHandler) handleDeleteTranscript(c *gin.Context) {
	visitorID := strings.TrimSpace(c.Param("visitor_id"))
	if err := h.transcripts.Delete(c.Request.Context(), visitorID); err != nil {
		shared.LogError(h.logger, "transcript", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": visitorID})
}

// loadHistory fetches prior turns. History is best-effort: a store
// outage must not take the chat down.
func (h *ChatHandler) loadHistory(c *gin.Context, visitorID string) []llm.HistoryEntry {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" || h.transcripts == nil {
		return nil
	}

	history, err := h.transcripts.GetHistory(c.Request.Context(), visitorID)
	if err != nil {
		shared.LogError(h.logger, "transcript", err)
		return nil
	}
	return history
}

func (h *ChatHandler) saveExchange(c *gin.Context, visitorID, question, answer string) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" || h.transcripts == nil {
		return
	}

	if err := h.transcripts.AppendExchange(c.Request.Context(), visitorID, question, answer); err != nil {
		shared.LogError(h.logger, "transcript", err)
	}
}

func writeChatError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, chatErrorResponse{
		Error:     message,
		Animation: string(animation.TagNo),
	})
}

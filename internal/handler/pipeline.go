package handler

import (
	"log/slog"
	randv2 "math/rand/v2"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/divyampandey/pixel-llm-server-go/internal/animation"
	"github.com/divyampandey/pixel-llm-server-go/internal/brevity"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/handler/shared"
	"github.com/divyampandey/pixel-llm-server-go/internal/httperror"
	"github.com/divyampandey/pixel-llm-server-go/internal/persona"
	"github.com/divyampandey/pixel-llm-server-go/internal/pipeline"
	"github.com/divyampandey/pixel-llm-server-go/internal/randx"
)

// SanitizeRequest is the sanitize debug request body.
type SanitizeRequest struct {
	Text string `json:"text"`
}

// SanitizeResponse exposes the deterministic pipeline half.
type SanitizeResponse struct {
	Text       string `json:"text"`
	Rewrites   int    `json:"rewrites"`
	Truncated  bool   `json:"truncated"`
	EmojiAdded bool   `json:"emoji_added"`
	Fallback   bool   `json:"fallback"`
}

// ClassifyRequest is the classify debug request body. A seed pins the
// random tie-break so a run can be reproduced.
type ClassifyRequest struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Seed     *uint64 `json:"seed"`
}

// ClassifyResponse names the tier that fired.
type ClassifyResponse struct {
	Animation string `json:"animation"`
	Tier      string `json:"tier"`
}

// SimulateRequest runs the full pipeline with overrides.
type SimulateRequest struct {
	Question    string  `json:"question"`
	Answer      string  `json:"answer"`
	SentenceCap int     `json:"sentence_cap"`
	Seed        *uint64 `json:"seed"`
}

// SimulateResponse is the full pipeline trace.
type SimulateResponse struct {
	Answer     string `json:"answer"`
	Animation  string `json:"animation"`
	Tier       string `json:"tier"`
	Rewrites   int    `json:"rewrites"`
	Truncated  bool   `json:"truncated"`
	EmojiAdded bool   `json:"emoji_added"`
	Fallback   bool   `json:"fallback"`
}

// PipelineHandler exposes the sanitization pipeline for debugging,
// behind the /api key.
type PipelineHandler struct {
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	rewriter *persona.Rewriter
	logger   *slog.Logger
}

// NewPipelineHandler creates the pipeline debug handler.
func NewPipelineHandler(cfg *config.Config, pipe *pipeline.Pipeline, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		cfg:      cfg,
		pipe:     pipe,
		rewriter: persona.NewRewriter(cfg.Persona, logger),
		logger:   logger,
	}
}

// RegisterRoutes registers the pipeline debug routes.
func (h *PipelineHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/pipeline")
	group.POST("/sanitize", h.handleSanitize)
	group.POST("/classify", h.handleClassify)
	group.POST("/simulate", h.handleSimulate)
}

func (h *PipelineHandler) handleSanitize(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}

	var req SanitizeRequest
	if err := shared.Decode(payload, &req); err != nil {
		writeError(c, httperror.NewInvalidInput(err.Error()))
		return
	}

	sanitized := h.pipe.Sanitize(req.Text)
	c.JSON(http.StatusOK, SanitizeResponse{
		Text:       sanitized.Text,
		Rewrites:   sanitized.Rewrites,
		Truncated:  sanitized.Truncated,
		EmojiAdded: sanitized.EmojiAdded,
		Fallback:   sanitized.Fallback,
	})
}

func (h *PipelineHandler) handleClassify(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}

	var req ClassifyRequest
	if err := shared.Decode(payload, &req); err != nil {
		writeError(c, httperror.NewInvalidInput(err.Error()))
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeError(c, httperror.NewMissingField("answer"))
		return
	}

	tag, tier := h.classify(req.Question, req.Answer, req.Seed)
	c.JSON(http.StatusOK, ClassifyResponse{
		Animation: string(tag),
		Tier:      tier,
	})
}

func (h *PipelineHandler) handleSimulate(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}

	var req SimulateRequest
	if err := shared.Decode(payload, &req); err != nil {
		writeError(c, httperror.NewInvalidInput(err.Error()))
		return
	}
	if req.SentenceCap < 0 {
		writeError(c, httperror.NewInvalidInput("sentence_cap must not be negative"))
		return
	}

	rewritten := h.rewriter.Apply(req.Answer)

	answer := rewritten.Text
	truncated := false
	emojiAdded := false
	if !rewritten.Fallback {
		personaCfg := h.cfg.Persona
		if req.SentenceCap > 0 {
			personaCfg.SentenceCap = req.SentenceCap
		}
		enforced := brevity.NewEnforcer(personaCfg).Enforce(rewritten.Text)
		answer = enforced.Text
		truncated = enforced.Truncated
		emojiAdded = enforced.EmojiAdded
	}

	tag, tier := h.classify(req.Question, answer, req.Seed)
	c.JSON(http.StatusOK, SimulateResponse{
		Answer:     answer,
		Animation:  string(tag),
		Tier:       tier,
		Rewrites:   rewritten.Rewrites,
		Truncated:  truncated,
		EmojiAdded: emojiAdded,
		Fallback:   rewritten.Fallback,
	})
}

func (h *PipelineHandler) classify(question, answer string, seed *uint64) (animation.Tag, string) {
	if seed == nil {
		return h.pipe.Classify(question, answer)
	}
	rng := randx.New(randv2.New(randv2.NewPCG(*seed, *seed)))
	return animation.NewClassifier(rng, h.logger).Explain(question, answer)
}

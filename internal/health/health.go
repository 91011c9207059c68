package health

import (
	"context"
	"time"

	"github.com/divyampandey/pixel-llm-server-go/internal/chatlog"
	"github.com/divyampandey/pixel-llm-server-go/internal/config"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

var startTime = time.Now()

// Component is one health status entry.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response is the health response body.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// Collect gathers the health status. Liveness probes stay shallow so
// an unreachable Valkey or Postgres never takes the process down.
func Collect(ctx context.Context, cfg *config.Config, deepChecks bool) Response {
	components := make(map[string]Component)

	components["app"] = buildAppStatus()
	components["transcript_store"] = buildTranscriptStoreStatus(ctx, cfg, deepChecks)
	components["gemini"] = buildGeminiStatus(cfg)
	components["chat_log"] = buildChatLogStatus(ctx, cfg, deepChecks)

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	return Response{
		Status:     overall,
		Components: components,
	}
}

func buildAppStatus() Component {
	uptimeSeconds := int(time.Since(startTime).Seconds())
	return Component{
		Status: "ok",
		Detail: map[string]any{
			"uptime_seconds": uptimeSeconds,
		},
	}
}

func buildGeminiStatus(cfg *config.Config) Component {
	apiKeyPresent := false
	model := ""
	timeoutSeconds := 0
	maxRetries := 0

	if cfg != nil {
		apiKeyPresent = cfg.Gemini.PrimaryKey() != ""
		model = cfg.Gemini.Model
		timeoutSeconds = cfg.Gemini.TimeoutSeconds
		maxRetries = cfg.Gemini.MaxRetries
	}
	status := "ok"
	if !apiKeyPresent {
		status = "degraded"
	}

	return Component{
		Status: status,
		Detail: map[string]any{
			"api_key_present": apiKeyPresent,
			"model":           model,
			"timeout_seconds": timeoutSeconds,
			"max_retries":     maxRetries,
		},
	}
}

func buildTranscriptStoreStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	reachability := false
	backend := "memory"
	storeEnabled := false
	ttlMinutes := 0
	visitorCount := 0
	checkErr := ""

	if cfg != nil {
		storeEnabled = cfg.Transcript.Enabled
		ttlMinutes = cfg.Transcript.TTLMinutes
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if storeEnabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		store, err := transcript.NewStore(cfg)
		if err != nil {
			checkErr = err.Error()
		} else {
			defer store.Close()
			if err := store.Ping(checkCtx); err != nil {
				checkErr = err.Error()
			} else {
				reachability = true
				backend = store.Backend()
				count, err := store.VisitorCount(checkCtx)
				if err != nil {
					checkErr = err.Error()
				} else {
					visitorCount = count
				}
			}
		}
	}

	status := "ok"
	if storeEnabled && deepChecks && !reachability {
		status = "degraded"
	}

	detail := map[string]any{
		"store_enabled":   storeEnabled,
		"store_connected": reachability,
		"backend":         backend,
		"visitor_count":   visitorCount,
		"ttl_minutes":     ttlMinutes,
		"deep_checked":    deepChecks,
	}
	if checkErr != "" {
		detail["check_error"] = checkErr
	}

	return Component{
		Status: status,
		Detail: detail,
	}
}

func buildChatLogStatus(ctx context.Context, cfg *config.Config, deepChecks bool) Component {
	enabled := false
	reachability := false
	checkErr := ""

	if cfg != nil {
		enabled = cfg.ChatLog.Enabled
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if enabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		repo := chatlog.NewRepository(cfg, nil)
		defer repo.Close()
		if err := repo.Ping(checkCtx); err != nil {
			checkErr = err.Error()
		} else {
			reachability = true
		}
	}

	status := "ok"
	if enabled && deepChecks && !reachability {
		status = "degraded"
	}

	detail := map[string]any{
		"enabled":      enabled,
		"connected":    reachability,
		"deep_checked": deepChecks,
	}
	if checkErr != "" {
		detail["check_error"] = checkErr
	}

	return Component{
		Status: status,
		Detail: detail,
	}
}

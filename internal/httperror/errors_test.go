package httperror

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/divyampandey/pixel-llm-server-go/internal/gemini"
	"github.com/divyampandey/pixel-llm-server-go/internal/transcript"
)

func TestFromErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   ErrorCode
		status int
	}{
		{gemini.ErrMissingAPIKey, ErrorCodeLLM, http.StatusServiceUnavailable},
		{gemini.ErrInvalidModel, ErrorCodeLLMModel, http.StatusBadRequest},
		{context.DeadlineExceeded, ErrorCodeLLMTimeout, http.StatusGatewayTimeout},
		{transcript.ErrStoreDisabled, ErrorCodeTranscript, http.StatusServiceUnavailable},
		{errors.New("boom"), ErrorCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		apiErr := FromError(tc.err)
		if apiErr.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, apiErr.Code)
		}
		if apiErr.Status != tc.status {
			t.Fatalf("%v: expected status %d, got %d", tc.err, tc.status, apiErr.Status)
		}
	}

	if FromError(nil) != nil {
		t.Fatalf("nil error must map to nil")
	}
}

func TestFromErrorPassesThroughAPIError(t *testing.T) {
	original := NewMissingField("question")
	mapped := FromError(original)
	if mapped != original {
		t.Fatalf("typed errors must pass through unchanged")
	}
	if mapped.Status != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", mapped.Status)
	}
}

func TestResponseCarriesRequestID(t *testing.T) {
	status, body := Response(errors.New("boom"), "req-1")
	if status != http.StatusInternalServerError {
		t.Fatalf("unexpected status %d", status)
	}
	if body.RequestID == nil || *body.RequestID != "req-1" {
		t.Fatalf("request id missing: %+v", body)
	}

	_, body = Response(errors.New("boom"), "")
	if body.RequestID != nil {
		t.Fatalf("empty request id must be null")
	}
}

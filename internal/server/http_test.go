package server

import (
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/divyampandey/pixel-llm-server-go/internal/config"
)

func TestNewHTTPServerAddr(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Host: "127.0.0.1", Port: 8750},
	}

	router := gin.New()
	server := NewHTTPServer(cfg, router)

	if server.Addr != "127.0.0.1:8750" {
		t.Fatalf("unexpected addr %s", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("plain http must serve the router directly")
	}
}

func TestNewHTTPServerH2C(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{Host: "0.0.0.0", Port: 8750, HTTP2Enabled: true},
	}

	router := gin.New()
	server := NewHTTPServer(cfg, router)

	if server.Handler == nil {
		t.Fatalf("handler missing")
	}
	if server.Handler == any(router) {
		t.Fatalf("h2c wrapper expected when http/2 is enabled")
	}
}

package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/project-doc-chat/internal/config"
	"github.com/kirillkom/project-doc-chat/internal/core/ports"
	"github.com/kirillkom/project-doc-chat/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg      config.Config
	accounts ports.AccountService
	projects ports.ProjectService
	chat     ports.ChatService
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	accounts ports.AccountService,
	projects ports.ProjectService,
	chat ports.ChatService,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		accounts: accounts,
		projects: projects,
		chat:     chat,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rt.index)
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /register", rt.register)
	mux.HandleFunc("POST /login", rt.login)
	mux.HandleFunc("GET /me", rt.me)

	mux.HandleFunc("POST /projects/create", rt.createProject)
	mux.HandleFunc("GET /projects/list", rt.listProjects)
	mux.HandleFunc("GET /projects/{project_id}", rt.getProject)
	mux.HandleFunc("GET /projects/{project_id}/documents/{document_id}/raw", rt.downloadDocument)

	mux.HandleFunc("POST /upload", rt.uploadDocument)
	mux.HandleFunc("POST /upload_to_openai", rt.uploadToOpenAI)
	mux.HandleFunc("POST /chat", rt.chatWithProject)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = corsMiddleware(handler, rt.cfg.CORSAllowedOrigins)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.FrontendIndexPath == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "frontend is not configured"})
		return
	}
	http.ServeFile(w, r, rt.cfg.FrontendIndexPath)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

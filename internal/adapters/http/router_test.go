package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/project-doc-chat/internal/config"
	"github.com/kirillkom/project-doc-chat/internal/core/domain"
)

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
	return out
}

func formRequest(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		_ = writer.WriteField(k, v)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	_, _ = part.Write(content)
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestIndexServesFrontendFile(t *testing.T) {
	index := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(index, []byte("<html>chat</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	handler := newTestHandler(config.Config{FrontendIndexPath: index}, nil, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "chat") {
		t.Fatalf("unexpected index response %d %q", res.Code, res.Body.String())
	}
}

func TestRegisterAndLogin(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/register", url.Values{"email": {"alice@example.com"}, "password": {"secret"}}))
	if res.Code != http.StatusOK {
		t.Fatalf("register expected 200, got %d: %s", res.Code, res.Body.String())
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/login", url.Values{"email": {"alice@example.com"}, "password": {"secret"}}))
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["access_token"] != testToken || body["token_type"] != "bearer" {
		t.Fatalf("unexpected login payload: %v", body)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/login", url.Values{"email": {"alice@example.com"}, "password": {"wrong"}}))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("bad login expected 401, got %d", res.Code)
	}
}

func TestRegisterLongPasswordMapsTo400(t *testing.T) {
	handler := NewRouter(config.Config{}, &accountFake{
		registerErr: domain.WrapError(domain.ErrInvalidInput, "register", errors.New("password exceeds 72 bytes")),
	}, &projectServiceFake{}, &chatFake{}, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/register", url.Values{
		"email":    {"alice@example.com"},
		"password": {strings.Repeat("x", 80)},
	}))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
}

func TestRegisterDuplicateMapsTo409(t *testing.T) {
	handler := NewRouter(config.Config{}, &accountFake{
		registerErr: domain.WrapError(domain.ErrConflict, "create user", errors.New("email already registered")),
	}, &projectServiceFake{}, &chatFake{}, nil).Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/register", url.Values{"email": {"a@b.c"}, "password": {"x"}}))
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestMeAcceptsHeaderOrQueryToken(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK || decodeBody(t, res)["email"] != "alice@example.com" {
		t.Fatalf("header token: unexpected %d %s", res.Code, res.Body.String())
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/me?token="+testToken, nil))
	if res.Code != http.StatusOK {
		t.Fatalf("query token: expected 200, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/me", nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", res.Code)
	}
}

func TestCreateAndListProjects(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/projects/create", url.Values{"name": {"Specs"}, "token": {testToken}}))
	if res.Code != http.StatusOK {
		t.Fatalf("create expected 200, got %d", res.Code)
	}
	created := decodeBody(t, res)
	if created["project_id"] != "p1" || created["name"] != "Specs" {
		t.Fatalf("unexpected create payload: %v", created)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/projects/list?token="+testToken, nil))
	listed := decodeBody(t, res)
	projects, ok := listed["projects"].([]any)
	if !ok || len(projects) != 1 {
		t.Fatalf("unexpected list payload: %v", listed)
	}
	if first := projects[0].(map[string]any); first["id"] != "p1" || first["name"] != "Specs" {
		t.Fatalf("unexpected summary: %v", first)
	}
}

func TestGetProjectMapsForbiddenAndNotFound(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: domain.WrapError(domain.ErrForbidden, "get project", errors.New("owner mismatch")), want: http.StatusForbidden},
		{err: domain.WrapError(domain.ErrNotFound, "get project", errors.New("id=missing")), want: http.StatusNotFound},
		{err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler := newTestHandler(config.Config{}, &projectServiceFake{err: tc.err}, nil)
		req := httptest.NewRequest(http.MethodGet, "/projects/missing", nil)
		req.Header.Set("Authorization", "Bearer "+testToken)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)
		if res.Code != tc.want {
			t.Fatalf("err %v: expected %d, got %d", tc.err, tc.want, res.Code)
		}
	}
}

func TestDownloadDocumentStreamsArchivedOriginal(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/projects/p1/documents/d1/raw", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if res.Body.String() != "%PDF-1.4 raw" {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := res.Header().Get("Content-Disposition"); got != `attachment; filename="q3 report.pdf"` {
		t.Fatalf("unexpected content disposition %q", got)
	}
}

func TestDownloadDocumentMapsErrors(t *testing.T) {
	handler := newTestHandler(config.Config{}, &projectServiceFake{
		err: domain.WrapError(domain.ErrNotFound, "open document", errors.New("no archived original")),
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1/documents/file-abc/raw", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/projects/p1/documents/d1/raw", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}
}

func TestUploadReturnsSnippetOfFirst400Runes(t *testing.T) {
	projects := &projectServiceFake{uploadText: strings.Repeat("ж", 450)}
	handler := newTestHandler(config.Config{MaxUploadBytes: 1 << 20}, projects, nil)

	req := multipartRequest(t, "/upload", map[string]string{"project_id": "p1", "token": testToken}, "notes.txt", []byte("raw bytes"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["file_id"] != "d1" || body["filename"] != "notes.txt" || body["uploaded_by"] != "alice@example.com" {
		t.Fatalf("unexpected upload payload: %v", body)
	}
	if got := []rune(body["text_snippet"].(string)); len(got) != textSnippetRunes {
		t.Fatalf("expected %d rune snippet, got %d", textSnippetRunes, len(got))
	}
	if string(projects.uploadedRaw) != "raw bytes" {
		t.Fatalf("upload body not forwarded: %q", projects.uploadedRaw)
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	handler := newTestHandler(config.Config{MaxUploadBytes: 64}, nil, nil)

	req := multipartRequest(t, "/upload", map[string]string{"project_id": "p1", "token": testToken}, "big.bin", bytes.Repeat([]byte("x"), 4096))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", res.Code)
	}
}

func TestUploadRequiresFileAndToken(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := multipartRequest(t, "/upload", map[string]string{"project_id": "p1"}, "a.txt", []byte("x"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, formRequest("/upload", url.Values{"project_id": {"p1"}, "token": {testToken}}))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without multipart file, got %d", res.Code)
	}
}

func TestUploadToOpenAIReturnsProviderPayload(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	req := multipartRequest(t, "/upload_to_openai", map[string]string{"project_id": "p1", "token": testToken}, "a.pdf", []byte("%PDF"))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["id"] != "file-abc" || body["purpose"] != "answers" {
		t.Fatalf("unexpected payload: %v", body)
	}
}

func TestChatReturnsReplyAndUser(t *testing.T) {
	chat := &chatFake{}
	handler := newTestHandler(config.Config{}, nil, chat)

	payload, _ := json.Marshal(map[string]any{"project_id": "p1", "prompt": "why?", "temperature": 0.7, "token": testToken})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload)))

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["reply"] != "answer to why?" || body["user"] != "alice@example.com" {
		t.Fatalf("unexpected chat payload: %v", body)
	}
	if len(body) != 2 {
		t.Fatalf("chat payload must only carry reply and user, got %v", body)
	}
}

func TestChatMapsUpstreamErrorTo502WithDetail(t *testing.T) {
	chat := &chatFake{err: &domain.UpstreamError{Operation: "openai.responses", StatusCode: 429, Body: `{"error":"slow down"}`}}
	handler := newTestHandler(config.Config{}, nil, chat)

	payload, _ := json.Marshal(map[string]any{"project_id": "p1", "prompt": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+testToken)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.Code)
	}
	body := decodeBody(t, res)
	if body["status"] != float64(429) || body["detail"] != `{"error":"slow down"}` {
		t.Fatalf("unexpected upstream payload: %v", body)
	}
}

func TestChatRejectsInvalidJSONAndBadToken(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil, nil)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{")))
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", res.Code)
	}

	payload, _ := json.Marshal(map[string]any{"project_id": "p1", "prompt": "hi", "token": "forged"})
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload)))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.Code)
	}
}

func TestSnippetIsRuneSafe(t *testing.T) {
	if got := snippet("héllo", 2); got != "hé" {
		t.Fatalf("snippet() = %q", got)
	}
	if got := snippet("ab", 10); got != "ab" {
		t.Fatalf("snippet() = %q", got)
	}
}

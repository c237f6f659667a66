package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mhpenta/magicpix"
)

type stubGateway struct {
	generate func(prompt string) magicpix.Result
	edit     func(payload, instruction string) magicpix.Result
}

func (s *stubGateway) Generate(ctx context.Context, prompt string) magicpix.Result {
	if s.generate != nil {
		return s.generate(prompt)
	}
	return magicpix.ImageResult(magicpix.EncodeDataURL([]byte("first")), "")
}

func (s *stubGateway) Edit(ctx context.Context, payload, instruction string) magicpix.Result {
	if s.edit != nil {
		return s.edit(payload, instruction)
	}
	return magicpix.ImageResult(magicpix.EncodeDataURL([]byte("edited")), "")
}

func (s *stubGateway) Model() magicpix.ModelInfo { return magicpix.ModelInfo{APIModelName: "stub"} }

func (s *stubGateway) Close() error { return nil }

func newTestServer(t *testing.T, gw magicpix.Gateway) (*httptest.Server, *magicpix.Orchestrator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := magicpix.NewOrchestrator(gw, magicpix.WithLogger(logger))
	srv := httptest.NewServer(NewRouter(o, logger))
	t.Cleanup(srv.Close)
	return srv, o
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestGenerateEditFlow(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	resp := post(t, srv.URL+"/api/generate", `{"prompt":"A cute robot eating pizza"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status = %d", resp.StatusCode)
	}
	gen := decode[resultJSON](t, resp)
	if gen.Outcome != "image" || gen.Image == "" {
		t.Fatalf("generate result = %+v", gen)
	}

	resp = post(t, srv.URL+"/api/edit", `{"instruction":"Turn it purple"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}

	view := decode[sessionJSON](t, get(t, srv.URL+"/api/session/"))
	if view.Mode != "editing" {
		t.Errorf("mode = %q, want editing", view.Mode)
	}
	if len(view.History) != 2 {
		t.Fatalf("history = %d, want 2", len(view.History))
	}
	if view.History[0].Prompt != "Turn it purple" || view.History[1].Prompt != "A cute robot eating pizza" {
		t.Errorf("history prompts = %q, %q", view.History[0].Prompt, view.History[1].Prompt)
	}
	if view.Current == nil || view.Current.ID != view.History[0].ID {
		t.Errorf("current should be the newest record")
	}
	want := slotJSON{Input: "A cute robot eating pizza"}
	if diff := cmp.Diff(want, view.Generate); diff != "" {
		t.Errorf("generate slot (-want +got):\n%s", diff)
	}
	if view.Edit.Input != "" {
		t.Errorf("edit input should be cleared, got %q", view.Edit.Input)
	}
}

func TestGenerate_FailureIsData(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{
		generate: func(string) magicpix.Result {
			return magicpix.FailureResult(magicpix.OutcomeRefusal, "I can't create that")
		},
	})

	resp := post(t, srv.URL+"/api/generate", `{"prompt":"something"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[resultJSON](t, resp)
	want := resultJSON{Outcome: "refusal", Error: "I can't create that"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result (-want +got):\n%s", diff)
	}

	view := decode[sessionJSON](t, get(t, srv.URL+"/api/session/"))
	if view.Generate.LastError != "I can't create that" || view.Mode != "creating" || len(view.History) != 0 {
		t.Errorf("session after failure = %+v", view)
	}
}

func TestRejections(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "blank prompt", path: "/api/generate", body: `{"prompt":"  "}`, wantStatus: http.StatusBadRequest},
		{name: "bad json", path: "/api/generate", body: `{"prompt":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", path: "/api/generate", body: `{"text":"hi"}`, wantStatus: http.StatusBadRequest},
		{name: "edit without image", path: "/api/edit", body: `{"instruction":"Turn it purple"}`, wantStatus: http.StatusConflict},
		{name: "unknown history id", path: "/api/session/history/nope/select", body: ``, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSelectFromHistoryAndCreate(t *testing.T) {
	srv, o := newTestServer(t, &stubGateway{})
	ctx := context.Background()

	first, _ := o.RequestGeneration(ctx, "first")
	o.Session().GoToCreate()
	if _, err := o.RequestGeneration(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	history := o.Session().History()

	view := decode[sessionJSON](t, post(t, srv.URL+"/api/session/history/"+history[1].ID+"/select", ""))
	if view.Current == nil || view.Current.Data != first.Image {
		t.Errorf("current = %+v, want first image", view.Current)
	}
	if view.History[0].ID != history[0].ID {
		t.Error("selection must not reorder history")
	}

	view = decode[sessionJSON](t, post(t, srv.URL+"/api/session/create", ""))
	if view.Mode != "creating" || view.Current == nil {
		t.Errorf("after create: mode = %q, current = %v", view.Mode, view.Current)
	}
}

func TestDownloadCurrent(t *testing.T) {
	srv, o := newTestServer(t, &stubGateway{})

	resp := get(t, srv.URL+"/api/session/current/download")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status without image = %d, want 404", resp.StatusCode)
	}

	if _, err := o.RequestGeneration(context.Background(), "A flying cat in space"); err != nil {
		t.Fatal(err)
	}

	resp = get(t, srv.URL+"/api/session/current/download")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.HasPrefix(cd, `attachment; filename="magic-pix-`) {
		t.Errorf("content disposition = %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "first" {
		t.Errorf("body = %q, want decoded image bytes", body)
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	resp := get(t, srv.URL+"/healthz")
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected a generated request id")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if got := resp2.Header.Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("request id = %q, want caller's id", got)
	}
}

func TestSuggestions(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	got := decode[map[string][]string](t, get(t, srv.URL+"/api/suggestions"))
	if diff := cmp.Diff(magicpix.Suggestions(), got["prompts"]); diff != "" {
		t.Errorf("prompts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(magicpix.PresetEdits(), got["edits"]); diff != "" {
		t.Errorf("edits (-want +got):\n%s", diff)
	}
}

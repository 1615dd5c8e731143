package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hku-span/span2030/internal/exercise"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeExercise(t *testing.T, rec *httptest.ResponseRecorder) exerciseResponse {
	t.Helper()
	var resp exerciseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestAPI_SetCheckReset(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.serve(httptest.NewRequest(http.MethodGet, "/api/ejercicios/sustantivos-intruso", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"accept"`) {
		t.Error("response must not expose accepted answers")
	}
	cookie := sessionCookie(t, rec)
	resp := decodeExercise(t, rec)
	if resp.Checked || len(resp.Answers) != 0 || resp.Total != 3 {
		t.Errorf("initial response = %+v, want empty unchecked block of 3", resp)
	}

	rec = ts.serve(jsonRequest(http.MethodPut, "/api/ejercicios/sustantivos-intruso/campos/intruso1", `{"value":"Montaña"}`), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200", rec.Code)
	}
	if got := decodeExercise(t, rec).Answers["intruso1"]; got != "Montaña" {
		t.Errorf("Answers[intruso1] = %q, want Montaña", got)
	}

	rec = ts.serve(jsonRequest(http.MethodPost, "/api/ejercicios/sustantivos-intruso/comprobar", ""), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("check status = %d, want 200", rec.Code)
	}
	resp = decodeExercise(t, rec)
	if resp.Results["intruso1"] != exercise.Correct {
		t.Errorf("Results[intruso1] = %v, want correct", resp.Results["intruso1"])
	}
	if resp.Results["intruso2"] != exercise.Incorrect {
		t.Errorf("Results[intruso2] = %v, want incorrect (unanswered)", resp.Results["intruso2"])
	}
	if !resp.Checked || resp.Correct != 1 {
		t.Errorf("Checked/Correct = %v/%d, want true/1", resp.Checked, resp.Correct)
	}

	rec = ts.serve(jsonRequest(http.MethodPost, "/api/ejercicios/sustantivos-intruso/reiniciar", ""), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", rec.Code)
	}
	resp = decodeExercise(t, rec)
	if resp.Checked || len(resp.Answers) != 0 || len(resp.Results) != 0 {
		t.Errorf("after reset = %+v, want empty state", resp)
	}

	events := ts.events.Events()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (check, reset)", len(events))
	}
}

func TestAPI_CheckWithAnswers(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.serve(jsonRequest(http.MethodPost, "/api/ejercicios/sustantivos-plural/comprobar",
		`{"answers":{"luz":"luzes","bambu":"bambús"}}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeExercise(t, rec)
	if resp.Results["luz"] != exercise.Incorrect {
		t.Errorf("luz = %v, want incorrect", resp.Results["luz"])
	}
	if resp.Results["bambu"] != exercise.Correct {
		t.Errorf("bambu = %v, want correct", resp.Results["bambu"])
	}
}

func TestAPI_Errors(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown block", http.MethodGet, "/api/ejercicios/no-existe", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown field", http.MethodPut, "/api/ejercicios/sustantivos-plural/campos/nada", `{"value":"x"}`, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", http.MethodPut, "/api/ejercicios/sustantivos-plural/campos/luz", `{"value":`, http.StatusBadRequest, "BAD_REQUEST"},
		{"empty set body", http.MethodPut, "/api/ejercicios/sustantivos-plural/campos/luz", "", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown json key", http.MethodPut, "/api/ejercicios/sustantivos-plural/campos/luz", `{"valor":"x"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"check unknown field", http.MethodPost, "/api/ejercicios/sustantivos-plural/comprobar", `{"answers":{"nada":"x"}}`, http.StatusNotFound, "NOT_FOUND"},
		{"unknown route", http.MethodGet, "/api/otra-cosa", "", http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.serve(jsonRequest(tt.method, tt.path, tt.body), nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("error code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestAPI_CORS(t *testing.T) {
	ts := newTestServer(t, func(o *Options) {
		o.AllowedOrigins = []string{"https://moodle.hku.hk"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ejercicios/sustantivos-plural", nil)
	req.Header.Set("Origin", "https://moodle.hku.hk")
	rec := ts.serve(req, nil)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://moodle.hku.hk" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the allowed origin", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ejercicios/sustantivos-plural", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = ts.serve(req, nil)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want none for other origins", got)
	}
}

func TestAPI_ChoiceValueSelectsOption(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.serve(jsonRequest(http.MethodPut, "/api/ejercicios/sustantivos-intruso/campos/intruso1", `{"value":" montaña"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
	}
	cookie := sessionCookie(t, rec)
	if got := decodeExercise(t, rec).Answers["intruso1"]; got != "Montaña" {
		t.Errorf("Answers[intruso1] = %q, want option Montaña", got)
	}

	rec = ts.serve(jsonRequest(http.MethodPost, "/api/ejercicios/sustantivos-intruso/comprobar", ""), cookie)
	if got := decodeExercise(t, rec).Results["intruso1"]; got != exercise.Correct {
		t.Fatalf("Results[intruso1] = %v, want correct", got)
	}

	page := ts.serve(httptest.NewRequest(http.MethodGet, "/temas/1-3?tab=practica", nil), cookie)
	if !strings.Contains(page.Body.String(), `<option value="Montaña" selected>`) {
		t.Fatal("page should preselect the option chosen through the API")
	}

	// Re-submitting the rendered form keeps the answer correct.
	rec = ts.serve(postForm("/temas/1-3/ejercicios/sustantivos-intruso/comprobar", url.Values{
		"intruso1": {"Montaña"},
	}), cookie)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("form check status = %d, want 303", rec.Code)
	}
	rec = ts.serve(httptest.NewRequest(http.MethodGet, "/api/ejercicios/sustantivos-intruso", nil), cookie)
	if got := decodeExercise(t, rec).Results["intruso1"]; got != exercise.Correct {
		t.Errorf("Results[intruso1] after form check = %v, want correct", got)
	}
}

func TestChoiceValueOutsideOptions(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"api set", jsonRequest(http.MethodPut, "/api/ejercicios/sustantivos-intruso/campos/intruso1", `{"value":"mar"}`)},
		{"api check", jsonRequest(http.MethodPost, "/api/ejercicios/sustantivos-intruso/comprobar", `{"answers":{"intruso2":"río"}}`)},
		{"form check", postForm("/temas/1-3/ejercicios/sustantivos-intruso/comprobar", url.Values{"intruso3": {"pan"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.serve(tt.req, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %q)", rec.Code, rec.Body.String())
			}
		})
	}
	if ts.store.Len() != 0 {
		t.Errorf("store Len() = %d, want 0 after rejected answers", ts.store.Len())
	}
	if n := len(ts.events.Events()); n != 0 {
		t.Errorf("events = %d, want none for rejected checks", n)
	}

	// The empty "Elige…" value clears a choice.
	rec := ts.serve(jsonRequest(http.MethodPut, "/api/ejercicios/sustantivos-intruso/campos/intruso1", `{"value":""}`), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("empty choice status = %d, want 200", rec.Code)
	}
}

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/assassin/internal/game/directory"
	"github.com/louisbranch/assassin/internal/game/invite"
	"github.com/louisbranch/assassin/internal/game/registry"
	"github.com/louisbranch/assassin/internal/game/session"
	"github.com/louisbranch/assassin/internal/stats"
	"github.com/louisbranch/assassin/internal/store/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st := memory.New()
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	sess := session.New(st, nil, session.DefaultConfig())
	server := New(
		registry.New(st, nil),
		directory.New(st),
		sess,
		invite.New(st),
		stats.New(st),
		st,
		nil,
	)
	ts := httptest.NewServer(server.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		payload = nil
	}
	return resp, payload
}

func TestCreateAndGetGame(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"manor","visibility":"private","creator":"alice","roster":["bob","carol"]}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", resp.StatusCode, payload)
	}
	if payload["name"] != "manor" || payload["status"] != "created" {
		t.Fatalf("unexpected game payload: %v", payload)
	}

	resp, payload = doJSON(t, ts, http.MethodGet, "/v1/games/manor", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	players, ok := payload["players"].([]any)
	if !ok || len(players) != 3 {
		t.Fatalf("expected 3 players, got %v", payload["players"])
	}
}

func TestCreateGameConflict(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"manor","visibility":"private","creator":"alice"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"manor","visibility":"private","creator":"bob"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	errBody, ok := payload["error"].(map[string]any)
	if !ok || errBody["code"] != "GAME_DUPLICATE" {
		t.Fatalf("unexpected error payload: %v", payload)
	}
}

func TestCreateGameValidation(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"","visibility":"private","creator":"alice"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty name, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/v1/games", `{not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", resp.StatusCode)
	}
}

func TestListPublicGames(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"open","visibility":"public","creator":"alice"}`)
	doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"hidden","visibility":"private","creator":"bob"}`)

	resp, payload := doJSON(t, ts, http.MethodGet, "/v1/games", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	games, ok := payload["games"].([]any)
	if !ok || len(games) != 1 || games[0] != "open" {
		t.Fatalf("expected only the public game, got %v", payload["games"])
	}
}

func TestGameLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"manor","visibility":"private","creator":"alice","roster":["bob","carol","dave"]}`)

	resp, _ := doJSON(t, ts, http.MethodPost, "/v1/games/manor/start", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodPost, "/v1/games/manor/start", "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on double start, got %d (%v)", resp.StatusCode, payload)
	}

	resp, payload = doJSON(t, ts, http.MethodGet, "/v1/games/manor/players", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	players, ok := payload["players"].([]any)
	if !ok || len(players) != 4 {
		t.Fatalf("expected 4 players, got %v", payload["players"])
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/v1/games/manor/finish",
		`{"assassinWon":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on finish, got %d", resp.StatusCode)
	}

	resp, payload = doJSON(t, ts, http.MethodGet, "/v1/games/manor", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["status"] != "finished" || payload["result"] != "The assassin won!" {
		t.Fatalf("unexpected finished game payload: %v", payload)
	}
}

func TestPlayerStatusOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, ts, http.MethodPost, "/v1/games",
		`{"name":"manor","visibility":"private","creator":"alice","roster":["bob","carol","dave"]}`)
	doJSON(t, ts, http.MethodPost, "/v1/games/manor/start", "")

	resp, _ := doJSON(t, ts, http.MethodPut, "/v1/games/manor/players/dave/status",
		`{"status":"dead"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodPut, "/v1/games/manor/players/mallory/status",
		`{"status":"dead"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for unknown player, got %d (%v)", resp.StatusCode, payload)
	}
}

func TestInviteFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/v1/games/manor/invites",
		`{"player":"bob","from":"alice"}`)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodGet, "/v1/players/bob/invites", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	invites, ok := payload["invites"].([]any)
	if !ok || len(invites) != 1 {
		t.Fatalf("expected 1 invite, got %v", payload["invites"])
	}

	resp, _ = doJSON(t, ts, http.MethodPost, "/v1/games/manor/invites/bob/response",
		`{"accepted":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp, payload = doJSON(t, ts, http.MethodGet, "/v1/players/bob/invitation?game=manor", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["status"] != "accepted" {
		t.Fatalf("expected accepted, got %v", payload["status"])
	}
}

func TestPlayerSearchOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodPost, "/v1/players",
		`{"player":"alice","email":"Alice@Example.com"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, ts, http.MethodGet, "/v1/players?email=Alice@Example.com", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	players, ok := payload["players"].([]any)
	if !ok || len(players) != 1 {
		t.Fatalf("expected 1 player, got %v", payload["players"])
	}

	resp, _ = doJSON(t, ts, http.MethodGet, "/v1/players?email=unknown@example.com", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, ts, http.MethodGet, "/v1/players", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", resp.StatusCode)
	}
}

func TestStatsOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, ts, http.MethodGet, "/v1/players/alice/stats", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["wins"] != float64(0) || payload["losses"] != float64(0) {
		t.Fatalf("expected zero record, got %v", payload)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doJSON(t, ts, http.MethodDelete, "/v1/games", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, payload := doJSON(t, ts, http.MethodGet, "/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}

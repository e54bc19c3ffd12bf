package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"power_chess/internal/game"
)

func TestCreateMatchReturnsStartingState(t *testing.T) {
	h := newTestServer().Handler()
	rr := do(t, h, http.MethodPost, "/api/matches", `{"seed":7}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		ID    string          `json:"id"`
		State game.BoardState `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.ID == "" {
		t.Fatalf("expected a match id")
	}
	if len(payload.State.Squares) != 32 {
		t.Fatalf("expected 32 occupied squares, got %d", len(payload.State.Squares))
	}
	if payload.State.Active != game.White || payload.State.Phase != game.WaitingForMove {
		t.Fatalf("unexpected opening state: %s %s", payload.State.Active, payload.State.Phase)
	}
	if got := rr.Header().Get("Content-Security-Policy"); got != apiCSP {
		t.Fatalf("expected API CSP header, got %q", got)
	}
}

func TestMoveUpdatesState(t *testing.T) {
	h := newTestServer().Handler()
	id := createMatch(t, h)

	rr := do(t, h, http.MethodPost, "/api/matches/"+id+"/move", `{"from":"e2","to":"e4"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	upd := decodeUpdate(t, rr)
	if upd.State.Active != game.Black {
		t.Fatalf("expected black to move, got %s", upd.State.Active)
	}
	if upd.Result.Outcome == nil || upd.Result.Outcome.Kind != game.MoveDoubleStep {
		t.Fatalf("expected a double step outcome, got %+v", upd.Result.Outcome)
	}
	if len(upd.Result.Changes) == 0 {
		t.Fatalf("expected square changes")
	}
	found := false
	for _, sq := range upd.State.Squares {
		if sq.Square.String() != "e3" {
			continue
		}
		for _, occ := range sq.Occupants {
			if occ.Kind == game.OccupantGhost {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected a ghost on e3")
	}

	rr = do(t, h, http.MethodGet, "/api/matches/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var st struct {
		State game.BoardState `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(st.State.History) != 1 {
		t.Fatalf("expected one history entry, got %d", len(st.State.History))
	}
}

func TestCommandErrorStatuses(t *testing.T) {
	h := newTestServer().Handler()
	id := createMatch(t, h)
	base := "/api/matches/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad json", http.MethodPost, base + "/move", `{"from":`, http.StatusBadRequest},
		{"bad square", http.MethodPost, base + "/move", `{"from":"z9","to":"e4"}`, http.StatusBadRequest},
		{"illegal move", http.MethodPost, base + "/move", `{"from":"e2","to":"e5"}`, http.StatusUnprocessableEntity},
		{"opponent piece", http.MethodPost, base + "/move", `{"from":"e7","to":"e5"}`, http.StatusUnprocessableEntity},
		{"no promotion pending", http.MethodPost, base + "/promote", `{"piece":"q"}`, http.StatusConflict},
		{"no offer", http.MethodPost, base + "/choose", `{"action":"shield"}`, http.StatusConflict},
		{"no action chosen", http.MethodPost, base + "/action", `{}`, http.StatusConflict},
		{"bad color", http.MethodPost, base + "/resign", `{"color":"red"}`, http.StatusBadRequest},
		{"occupied spawn", http.MethodPost, base + "/spawn", `{"square":"e2","rarity":"rare"}`, http.StatusUnprocessableEntity},
		{"unknown match", http.MethodPost, "/api/matches/nope/move", `{"from":"e2","to":"e4"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected an error body, got %q", rr.Body.String())
			}
		})
	}
}

func TestPowerObjectFlowOverHTTP(t *testing.T) {
	h := newTestServer().Handler()
	id := createMatch(t, h)
	base := "/api/matches/" + id

	if rr := do(t, h, http.MethodPost, base+"/spawn", `{"square":"e3","rarity":"rare"}`); rr.Code != http.StatusOK {
		t.Fatalf("spawn: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr := do(t, h, http.MethodPost, base+"/move", `{"from":"e2","to":"e3"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("move: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	upd := decodeUpdate(t, rr)
	if upd.State.Phase != game.WaitingForPowerupChoice || upd.State.Active != game.White {
		t.Fatalf("expected white to choose, got %s %s", upd.State.Active, upd.State.Phase)
	}
	if len(upd.State.Offers) != 2 {
		t.Fatalf("expected two offers, got %d", len(upd.State.Offers))
	}

	if rr := do(t, h, http.MethodPost, base+"/choose", `{"action":"armageddon"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("choose legendary: expected 422, got %d", rr.Code)
	}

	offer := upd.State.Offers[0]
	inputs := map[string]string{
		"black_hole":  `{"square":"e5"}`,
		"eye_for_eye": `{"square":"d7"}`,
		"send_away":   `{"square":"d7"}`,
	}
	input, ok := inputs[offer.ID]
	if !ok {
		t.Fatalf("unexpected rare offer %q", offer.ID)
	}
	if rr := do(t, h, http.MethodPost, base+"/choose", `{"action":"`+offer.ID+`"}`); rr.Code != http.StatusOK {
		t.Fatalf("choose: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if offer.ID != "black_hole" {
		if rr := do(t, h, http.MethodPost, base+"/action", `{"square":"h4"}`); rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("action on empty square: expected 422, got %d", rr.Code)
		}
	}
	rr = do(t, h, http.MethodPost, base+"/action", input)
	if rr.Code != http.StatusOK {
		t.Fatalf("action: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	upd = decodeUpdate(t, rr)
	if upd.State.Phase != game.WaitingForMove || upd.State.Active != game.Black {
		t.Fatalf("expected black to move, got %s %s", upd.State.Active, upd.State.Phase)
	}
}

func TestResignEndsMatch(t *testing.T) {
	h := newTestServer().Handler()
	id := createMatch(t, h)
	base := "/api/matches/" + id

	rr := do(t, h, http.MethodPost, base+"/resign", `{"color":"white"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	upd := decodeUpdate(t, rr)
	if !upd.State.GameOver || upd.State.Winner == nil || *upd.State.Winner != game.Black {
		t.Fatalf("expected black to win, got %+v", upd.State)
	}
	if rr := do(t, h, http.MethodPost, base+"/move", `{"from":"e7","to":"e5"}`); rr.Code != http.StatusConflict {
		t.Fatalf("move after resign: expected 409, got %d", rr.Code)
	}
}

func TestDeleteMatch(t *testing.T) {
	srv := newTestServer()
	h := srv.Handler()
	id := createMatch(t, h)

	if rr := do(t, h, http.MethodDelete, "/api/matches/"+id, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if srv.matches.len() != 0 {
		t.Fatalf("expected an empty registry")
	}
	if rr := do(t, h, http.MethodGet, "/api/matches/"+id, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestSeededMatchesAreReproducible(t *testing.T) {
	h := newTestServer().Handler()
	var counts [2]int
	for i := range counts {
		rr := do(t, h, http.MethodPost, "/api/matches", `{"seed":42}`)
		var payload matchResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		counts[i] = payload.State.SpawnCountdown
	}
	if counts[0] != counts[1] {
		t.Fatalf("expected equal spawn countdowns, got %v", counts)
	}
}

func TestHealthz(t *testing.T) {
	rr := do(t, newTestServer().Handler(), http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rr.Code, rr.Body.String())
	}
}

func TestWebsocketPushesUpdatesAndErrors(t *testing.T) {
	h := newTestServer().Handler()
	ts := httptest.NewServer(h)
	defer ts.Close()
	id := createMatch(t, h)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/matches/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if msg := readWS(t, conn); msg.Type != "state" {
		t.Fatalf("expected initial state, got %q", msg.Type)
	}

	writeWS(t, conn, wsMessage{Type: cmdMove, Payload: json.RawMessage(`{"from":"g1","to":"f3"}`)})
	msg := readWS(t, conn)
	if msg.Type != "update" {
		t.Fatalf("expected update, got %q", msg.Type)
	}
	var upd updatePayload
	if err := json.Unmarshal(msg.Payload, &upd); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	if upd.State.Active != game.Black {
		t.Fatalf("expected black to move, got %s", upd.State.Active)
	}

	writeWS(t, conn, wsMessage{Type: cmdMove, Payload: json.RawMessage(`{"from":"a7","to":"a4"}`)})
	msg = readWS(t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error, got %q", msg.Type)
	}
	var errBody errorPayload
	if err := json.Unmarshal(msg.Payload, &errBody); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errBody.Status != http.StatusUnprocessableEntity || errBody.Command != cmdMove {
		t.Fatalf("unexpected error payload %+v", errBody)
	}

	// HTTP commands reach websocket subscribers too.
	if rr := do(t, h, http.MethodPost, "/api/matches/"+id+"/move", `{"from":"b8","to":"c6"}`); rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if msg := readWS(t, conn); msg.Type != "update" {
		t.Fatalf("expected update, got %q", msg.Type)
	}
}

func TestDeleteClosesWebsocket(t *testing.T) {
	h := newTestServer().Handler()
	ts := httptest.NewServer(h)
	defer ts.Close()
	id := createMatch(t, h)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/matches/" + id + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readWS(t, conn)

	do(t, h, http.MethodDelete, "/api/matches/"+id, "")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close")
	}
}

func newTestServer() *Server {
	return NewServer(Config{DisableSpawning: true})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func createMatch(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/matches", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create match: status %d: %s", rr.Code, rr.Body.String())
	}
	var payload matchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return payload.ID
}

func decodeUpdate(t *testing.T, rr *httptest.ResponseRecorder) updatePayload {
	t.Helper()
	var upd updatePayload
	if err := json.Unmarshal(rr.Body.Bytes(), &upd); err != nil {
		t.Fatalf("decode update: %v", err)
	}
	return upd
}

func readWS(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read websocket: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode websocket message: %v", err)
	}
	return msg
}

func writeWS(t *testing.T, conn *websocket.Conn, msg wsMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write websocket: %v", err)
	}
}

package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"power_chess/internal/game"
)

// Command names double as URL suffixes and websocket message types.
const (
	cmdMove    = "move"
	cmdPromote = "promote"
	cmdChoose  = "choose"
	cmdAction  = "action"
	cmdSpawn   = "spawn"
	cmdResign  = "resign"
)

var errBadRequest = errors.New("bad request")

type moveBody struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type promoteBody struct {
	Piece string `json:"piece"`
}

type chooseBody struct {
	Action string `json:"action"`
}

type actionBody struct {
	Square string `json:"square"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type spawnBody struct {
	Square string `json:"square"`
	Rarity string `json:"rarity"`
}

type resignBody struct {
	Color string `json:"color"`
}

// updatePayload is sent after every successful command, over HTTP to the
// caller and over websocket to every subscriber.
type updatePayload struct {
	Result game.ResultState `json:"result"`
	State  game.BoardState  `json:"state"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Command string `json:"command,omitempty"`
	Status  int    `json:"status"`
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: invalid json", errBadRequest)
	}
	return nil
}

// execute runs one command against the match and broadcasts the update.
func (m *match) execute(kind string, raw json.RawMessage) (updatePayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, err := m.apply(kind, raw)
	if err != nil {
		return updatePayload{}, err
	}
	upd := updatePayload{Result: res.State(), State: m.game.State()}
	m.hub.Broadcast(wsMessage{Type: "update", Payload: mustMarshal(upd)})
	return upd, nil
}

func (m *match) apply(kind string, raw json.RawMessage) (game.Result, error) {
	g := m.game
	switch kind {
	case cmdMove:
		var body moveBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		mv, err := parseMove(body.From, body.To)
		if err != nil {
			return game.Result{}, err
		}
		if err := requirePhase(g, game.WaitingForMove); err != nil {
			return game.Result{}, err
		}
		return g.SubmitMove(mv)

	case cmdPromote:
		var body promoteBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		if err := requirePhase(g, game.WaitingForPromote); err != nil {
			return game.Result{}, err
		}
		pt, ok := game.ParsePieceType(body.Piece)
		if !ok {
			return game.Result{}, fmt.Errorf("%w: unknown piece %q", game.ErrIllegalPromotion, body.Piece)
		}
		return g.Promote(pt)

	case cmdChoose:
		var body chooseBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		if err := requirePhase(g, game.WaitingForPowerupChoice); err != nil {
			return game.Result{}, err
		}
		return g.ChoosePowerAction(body.Action)

	case cmdAction:
		var body actionBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		in, err := body.input()
		if err != nil {
			return game.Result{}, err
		}
		if err := requirePhase(g, game.WaitingForPowerupExec); err != nil {
			return game.Result{}, err
		}
		return g.ExecutePowerAction(in)

	case cmdSpawn:
		var body spawnBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		loc, err := game.ParseLocation(body.Square)
		if err != nil {
			return game.Result{}, err
		}
		rarity := game.Common
		if strings.TrimSpace(body.Rarity) != "" {
			var ok bool
			if rarity, ok = game.ParseRarity(body.Rarity); !ok {
				return game.Result{}, fmt.Errorf("%w: unknown rarity %q", errBadRequest, body.Rarity)
			}
		}
		return g.SpawnPowerObject(loc, rarity)

	case cmdResign:
		var body resignBody
		if err := decodePayload(raw, &body); err != nil {
			return game.Result{}, err
		}
		color, ok := game.ParseColor(body.Color)
		if !ok {
			return game.Result{}, fmt.Errorf("%w: unknown color %q", errBadRequest, body.Color)
		}
		return g.Resign(color)

	default:
		return game.Result{}, fmt.Errorf("%w: unknown command %q", errBadRequest, kind)
	}
}

func parseMove(from, to string) (game.Move, error) {
	start, err := game.ParseLocation(from)
	if err != nil {
		return game.Move{}, err
	}
	end, err := game.ParseLocation(to)
	if err != nil {
		return game.Move{}, err
	}
	return game.Move{Start: start, End: end}, nil
}

// input picks the action input shape from whichever fields are set.
func (b actionBody) input() (game.ActionInput, error) {
	switch {
	case b.Square != "":
		loc, err := game.ParseLocation(b.Square)
		if err != nil {
			return game.ActionInput{}, err
		}
		return game.SquareInput(loc), nil
	case b.From != "" || b.To != "":
		mv, err := parseMove(b.From, b.To)
		if err != nil {
			return game.ActionInput{}, err
		}
		return game.MoveInput(mv), nil
	default:
		return game.NoInput(), nil
	}
}

func requirePhase(g *game.Game, want game.Phase) error {
	switch g.Phase() {
	case want:
		return nil
	case game.GameOver:
		return game.ErrGameOver
	default:
		return fmt.Errorf("%w: game is %s, not %s", game.ErrPrecondition, g.Phase(), want)
	}
}

// statusFor maps command errors onto HTTP status codes. ErrGameOver wraps
// ErrIllegalMove, so it must be checked first.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, game.ErrInvalidLocation):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrPrecondition):
		return http.StatusConflict
	case errors.Is(err, game.ErrIllegalMove),
		errors.Is(err, game.ErrIllegalPromotion),
		errors.Is(err, game.ErrInvalidActionInput),
		errors.Is(err, game.ErrSquareOccupied):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

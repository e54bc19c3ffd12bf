package repl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"power_chess/internal/game"
)

func TestRenderStartingBoard(t *testing.T) {
	s, _ := newTestSession()
	lines := strings.Split(strings.TrimRight(RenderBoard(s.Game()), "\n"), "\n")
	want := []string{
		"8 |RNBQKBNR",
		"7 |PPPPPPPP",
		"6 |xxxxxxxx",
		"5 |xxxxxxxx",
		"4 |xxxxxxxx",
		"3 |xxxxxxxx",
		"2 |pppppppp",
		"1 |rnbqkbnr",
		"   ________",
		"   abcdefgh",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderMarksPowerEntitiesAndGhosts(t *testing.T) {
	b := game.NewEmptyBoard()
	b.PlacePiece(mustSquare(t, "e1"), game.NewPiece(game.White, game.King))
	b.PlacePiece(mustSquare(t, "e8"), game.NewPiece(game.Black, game.King))
	if err := b.AddPowerObject(mustSquare(t, "c4"), game.Rare); err != nil {
		t.Fatalf("AddPowerObject: %v", err)
	}
	if err := b.AddPowerUp(mustSquare(t, "f5"), game.NewPowerUp(game.BlackHole, 4)); err != nil {
		t.Fatalf("AddPowerUp: %v", err)
	}
	b.SetGhost(mustSquare(t, "a3"), game.White)
	g := game.NewGame(game.Options{Board: b, DisableSpawning: true})

	out := RenderBoard(g)
	for _, want := range []string{"8 |xxxxKxxx", "5 |xxxxxWxx", "4 |xxWxxxxx", "3 |xxxxxxxx", "1 |xxxxkxxx"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

func TestMoveCommandForms(t *testing.T) {
	s, out := newTestSession()
	for _, line := range []string{"move e2 e4", "move e7 -> e5", "move g1f3"} {
		if err := s.Exec(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	if n := len(s.Game().History()); n != 3 {
		t.Fatalf("history has %d entries, want 3", n)
	}
	if !strings.Contains(out.String(), "Black to move.") {
		t.Fatalf("expected a black-to-move header in\n%s", out.String())
	}

	out.Reset()
	if err := s.Exec("history"); err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, want := range []string{"1. white pawn e2e4 (double_step)", "2. black pawn e7e5 (double_step)", "3. white knight g1f3"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in\n%s", want, out.String())
		}
	}
}

func TestIllegalMoveIsReported(t *testing.T) {
	s, out := newTestSession()
	err := s.Exec("move e2 e5")
	if !errors.Is(err, game.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
	if !strings.HasPrefix(out.String(), "ERROR: ") {
		t.Fatalf("expected an ERROR line, got %q", out.String())
	}
	if s.Game().ActiveColor() != game.White {
		t.Fatalf("an illegal move must not pass the turn")
	}
}

func TestUsageAndUnknownCommands(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"promote", "ERROR: usage: promote"},
		{"move", "ERROR: usage: move"},
		{"print sideways", "ERROR: usage: print"},
		{"castle", "ERROR: unknown command"},
		{"spawn e5 epic", "ERROR: invalid rarity"},
	}
	for _, tt := range tests {
		s, out := newTestSession()
		if err := s.Exec(tt.line); err == nil {
			t.Fatalf("%q: expected an error", tt.line)
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Fatalf("%q: output %q does not contain %q", tt.line, out.String(), tt.want)
		}
	}
}

func TestSpawnCollectAndChooseByNumber(t *testing.T) {
	s, out := newTestSession()
	for _, line := range []string{"spawn e3 rare", "move e2 e3"} {
		if err := s.Exec(line); err != nil {
			t.Fatalf("%q: %v", line, err)
		}
	}
	if s.Game().Phase() != game.WaitingForPowerupChoice {
		t.Fatalf("phase = %s, want waiting_for_powerup_choice", s.Game().Phase())
	}
	if !strings.Contains(out.String(), "1. ") || !strings.Contains(out.String(), "2. ") {
		t.Fatalf("expected two numbered offers in\n%s", out.String())
	}
	first := s.Game().Offers()[0]
	if err := s.Exec("choose 1"); err != nil {
		t.Fatalf("choose 1: %v", err)
	}
	chosen, ok := s.Game().ChosenAction()
	if !ok || chosen.Kind != first.Kind || chosen.Owner() != game.White {
		t.Fatalf("chosen = %v %v, want %s", chosen, ok, first.ID())
	}
	if !strings.Contains(out.String(), "White to play "+first.Name()) {
		t.Fatalf("expected the exec header in\n%s", out.String())
	}
}

func TestPrintToggle(t *testing.T) {
	s, out := newTestSession()
	if err := s.Exec("print off"); err != nil {
		t.Fatalf("print off: %v", err)
	}
	if err := s.Exec("move e2 e4"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if strings.Contains(out.String(), "abcdefgh") {
		t.Fatalf("board printed while printing is off:\n%s", out.String())
	}
	if err := s.Exec("print board"); err != nil {
		t.Fatalf("print board: %v", err)
	}
	if !strings.Contains(out.String(), "4 |xxxxpxxx") {
		t.Fatalf("expected the board after print board:\n%s", out.String())
	}
}

func TestResignEndsGame(t *testing.T) {
	s, out := newTestSession()
	if err := s.Exec("resign white"); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if winner, ok := s.Game().Winner(); !ok || winner != game.Black {
		t.Fatalf("winner = %s %v, want black", winner, ok)
	}
	if !strings.Contains(out.String(), "Game over: white resigned.") {
		t.Fatalf("expected a game over header in\n%s", out.String())
	}
	if err := s.Exec("move e7 e5"); err == nil {
		t.Fatalf("expected moves to fail after the game ended")
	}
}

func TestNewGameWithSeed(t *testing.T) {
	s, _ := newTestSession()
	if err := s.Exec("move e2 e4"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := s.Exec("new 9"); err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(s.Game().History()) != 0 || s.Game().ActiveColor() != game.White {
		t.Fatalf("new did not reset the game")
	}
	if err := s.Exec("new nine"); err == nil {
		t.Fatalf("expected an invalid seed error")
	}
}

func TestPowerUpsListing(t *testing.T) {
	s, out := newTestSession()
	if err := s.Exec("powerups"); err != nil {
		t.Fatalf("powerups: %v", err)
	}
	if !strings.Contains(out.String(), "no active power-ups") {
		t.Fatalf("unexpected output %q", out.String())
	}

	b := game.NewBoard()
	if err := b.AddPowerUp(mustSquare(t, "d5"), game.NewPowerUp(game.BlackHole, 12)); err != nil {
		t.Fatalf("AddPowerUp: %v", err)
	}
	s.game = game.NewGame(game.Options{Board: b, DisableSpawning: true})
	out.Reset()
	if err := s.Exec("powerups"); err != nil {
		t.Fatalf("powerups: %v", err)
	}
	if !strings.Contains(out.String(), "d5 black_hole (12)") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunStopsAtQuit(t *testing.T) {
	var out bytes.Buffer
	s := New(&out, Options{Seed: 3, DisableSpawning: true})
	in := strings.NewReader("move e2 e4\n\nquit\nmove e7 e5\n")
	if err := s.Run(in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(s.Game().History()); n != 1 {
		t.Fatalf("history has %d entries, want 1", n)
	}
}

func TestHelpListsCommands(t *testing.T) {
	s, out := newTestSession()
	if err := s.Exec("help"); err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"new [seed]", "move e2 e4", "spawn e5", "print board", "quit"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("help output is missing %q:\n%s", want, out.String())
		}
	}
}

func newTestSession() (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(out, Options{Seed: 1, DisableSpawning: true}), out
}

func mustSquare(t *testing.T, coord string) game.Location {
	t.Helper()
	loc, err := game.ParseLocation(coord)
	if err != nil {
		t.Fatalf("invalid coordinate %s", coord)
	}
	return loc
}

// Package repl is a line-oriented console for playing a game locally.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"power_chess/internal/game"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

var errUsage = errors.New("usage")

// Options configures the games a Session starts.
type Options struct {
	Logger logrus.FieldLogger
	// Seed seeds the first game; 0 picks a random seed.
	Seed            uint64
	DisableSpawning bool
}

type command struct {
	usage string
	run   func(s *Session, args []string) error
}

// Session holds the current game and the console settings.
type Session struct {
	out        io.Writer
	opts       Options
	game       *game.Game
	printBoard bool
	commands   map[string]command
}

func New(out io.Writer, opts Options) *Session {
	s := &Session{out: out, opts: opts, printBoard: true}
	s.commands = map[string]command{
		"new":      {"new [seed]", (*Session).cmdNew},
		"move":     {"move e2 e4 | move e2 -> e4", (*Session).cmdMove},
		"promote":  {"promote q|r|b|n", (*Session).cmdPromote},
		"offers":   {"offers", (*Session).cmdOffers},
		"choose":   {"choose <action id, name or number>", (*Session).cmdChoose},
		"action":   {"action [square | from to]", (*Session).cmdAction},
		"spawn":    {"spawn e5 [common|rare|legendary]", (*Session).cmdSpawn},
		"resign":   {"resign white|black", (*Session).cmdResign},
		"print":    {"print board | print on | print off", (*Session).cmdPrint},
		"history":  {"history", (*Session).cmdHistory},
		"powerups": {"powerups", (*Session).cmdPowerUps},
		"help":     {"help", (*Session).cmdHelp},
		"quit":     {"quit", func(*Session, []string) error { return ErrQuit }},
	}
	s.newGame(opts.Seed)
	return s
}

// Game exposes the current game.
func (s *Session) Game() *game.Game { return s.game }

// Run reads commands from in until quit or end of input.
func (s *Session) Run(in io.Reader) error {
	s.printState()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		err := s.Exec(scanner.Text())
		if errors.Is(err, ErrQuit) {
			return nil
		}
	}
	return scanner.Err()
}

// Exec runs one command line. Failures are printed as well as returned.
func (s *Session) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := s.commands[name]
	if !ok {
		err := fmt.Errorf("unknown command %q (try help)", fields[0])
		s.printf("ERROR: %v\n", err)
		return err
	}
	err := cmd.run(s, fields[1:])
	switch {
	case err == nil, errors.Is(err, ErrQuit):
	case errors.Is(err, errUsage):
		s.printf("ERROR: usage: %s\n", cmd.usage)
	default:
		s.printf("ERROR: %v\n", err)
	}
	return err
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Session) newGame(seed uint64) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	opts := game.Options{
		Rand:            rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Logger:          s.opts.Logger,
		DisableSpawning: s.opts.DisableSpawning,
	}
	s.game = game.NewGame(opts)
}

// report prints what a mutation did, then the board when printing is on.
func (s *Session) report(res game.Result) {
	if res.Note != "" {
		s.printf("%s\n", res.Note)
	}
	if res.Phase == game.WaitingForPowerupChoice {
		s.printOffers(res.Offers)
	}
	s.printState()
}

func (s *Session) printState() {
	if !s.printBoard {
		return
	}
	s.printf("\n%s\n%s", s.header(), RenderBoard(s.game))
}

func (s *Session) header() string {
	active := capitalize(s.game.ActiveColor().String())
	switch s.game.Phase() {
	case game.WaitingForMove:
		return active + " to move."
	case game.WaitingForPromote:
		return active + " to promote."
	case game.WaitingForPowerupChoice:
		return active + " to choose a power action."
	case game.WaitingForPowerupExec:
		chosen, _ := s.game.ChosenAction()
		owner := capitalize(chosen.Owner().String())
		return fmt.Sprintf("%s to play %s (%s).", owner, chosen.Name(), chosen.InputFormat().Kind)
	default:
		return "Game over: " + s.game.Status() + "."
	}
}

func (s *Session) printOffers(offers []game.PowerAction) {
	if len(offers) == 0 {
		s.printf("no power actions on offer\n")
		return
	}
	for i, a := range offers {
		s.printf("%d. %s [%s, %s] %s\n", i+1, a.ID(), a.Rarity(), a.InputFormat().Kind, a.Description())
	}
}

func (s *Session) cmdNew(args []string) error {
	var seed uint64
	switch len(args) {
	case 0:
	case 1:
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q", args[0])
		}
		seed = n
	default:
		return errUsage
	}
	s.newGame(seed)
	s.printState()
	return nil
}

func (s *Session) cmdMove(args []string) error {
	parts := make([]string, 0, 2)
	for _, a := range args {
		if a != "->" {
			parts = append(parts, a)
		}
	}
	if len(parts) == 0 || len(parts) > 2 {
		return errUsage
	}
	mv, err := game.ParseMove(strings.Join(parts, ""))
	if err != nil {
		return err
	}
	if s.game.Phase() != game.WaitingForMove {
		return fmt.Errorf("not able to move: game is %s", s.game.Phase())
	}
	res, err := s.game.SubmitMove(mv)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdPromote(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	pt, ok := game.ParsePieceType(args[0])
	if !ok {
		return fmt.Errorf("invalid promotion choice %q", args[0])
	}
	res, err := s.game.Promote(pt)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdOffers([]string) error {
	s.printOffers(s.game.Offers())
	return nil
}

func (s *Session) cmdChoose(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	id := strings.Join(args, " ")
	offers := s.game.Offers()
	if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(offers) {
		id = offers[n-1].ID()
	}
	res, err := s.game.ChoosePowerAction(id)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdAction(args []string) error {
	var in game.ActionInput
	switch len(args) {
	case 0:
		in = game.NoInput()
	case 1:
		loc, err := game.ParseLocation(args[0])
		if err != nil {
			return err
		}
		in = game.SquareInput(loc)
	case 2:
		mv, err := game.ParseMove(args[0] + args[1])
		if err != nil {
			return err
		}
		in = game.MoveInput(mv)
	default:
		return errUsage
	}
	res, err := s.game.ExecutePowerAction(in)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdSpawn(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	loc, err := game.ParseLocation(args[0])
	if err != nil {
		return err
	}
	rarity := game.Common
	if len(args) == 2 {
		var ok bool
		if rarity, ok = game.ParseRarity(args[1]); !ok {
			return fmt.Errorf("invalid rarity %q", args[1])
		}
	}
	res, err := s.game.SpawnPowerObject(loc, rarity)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdResign(args []string) error {
	color := s.game.ActiveColor()
	if len(args) == 1 {
		var ok bool
		if color, ok = game.ParseColor(args[0]); !ok {
			return fmt.Errorf("invalid color %q", args[0])
		}
	} else if len(args) > 1 {
		return errUsage
	}
	res, err := s.game.Resign(color)
	if err != nil {
		return err
	}
	s.report(res)
	return nil
}

func (s *Session) cmdPrint(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	switch strings.ToLower(args[0]) {
	case "board":
		s.printf("%s\n%s", s.header(), RenderBoard(s.game))
	case "on":
		s.printBoard = true
	case "off":
		s.printBoard = false
	default:
		return errUsage
	}
	return nil
}

func (s *Session) cmdHistory([]string) error {
	history := s.game.History()
	if len(history) == 0 {
		s.printf("no moves yet\n")
		return nil
	}
	for i, entry := range history {
		line := fmt.Sprintf("%d. %s %s %s", i+1, entry.Color, entry.Piece.Name(), entry.Move)
		if entry.Kind != game.MoveNormal {
			line += " (" + entry.Kind.String() + ")"
		}
		if entry.ByAction {
			line += " by " + entry.Action.ID()
		}
		s.printf("%s\n", line)
	}
	return nil
}

func (s *Session) cmdPowerUps([]string) error {
	powerUps := s.game.PowerUps()
	if len(powerUps) == 0 {
		s.printf("no active power-ups\n")
		return nil
	}
	locs := make([]game.Location, 0, len(powerUps))
	for loc := range powerUps {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool { return locs[i].Index() < locs[j].Index() })
	for _, loc := range locs {
		pu := powerUps[loc]
		left := strconv.Itoa(pu.TurnsRemaining)
		if pu.TurnsRemaining == game.Forever {
			left = "forever"
		}
		s.printf("%s %s (%s)\n", loc, pu.Kind, left)
	}
	return nil
}

func (s *Session) cmdHelp([]string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.printf("  %s\n", s.commands[name].usage)
	}
	return nil
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

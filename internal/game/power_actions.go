package game

import (
	"fmt"
	"strings"

	"power_chess/internal/shared"
)

// ActionKind names one entry of the power action catalog.
type ActionKind uint8

const (
	ActionAdjust ActionKind = iota
	ActionSecondEffort
	ActionShield
	ActionSwap
	ActionRewind
	ActionBlackHole
	ActionEyeForEye
	ActionSendAway
	ActionArmageddon
	ActionClone
)

// Power-up durations are counted in completed turns of either color.
const (
	shieldTurns     = 6
	blackHoleTurns  = 12
	armageddonTurns = 2
)

var actionIDs = [...]string{
	ActionAdjust:       "adjust",
	ActionSecondEffort: "second_effort",
	ActionShield:       "shield",
	ActionSwap:         "swap",
	ActionRewind:       "rewind",
	ActionBlackHole:    "black_hole",
	ActionEyeForEye:    "eye_for_eye",
	ActionSendAway:     "send_away",
	ActionArmageddon:   "armageddon",
	ActionClone:        "clone",
}

var actionNames = [...]string{
	ActionAdjust:       "Adjust",
	ActionSecondEffort: "Second Effort",
	ActionShield:       "Shield",
	ActionSwap:         "Swap",
	ActionRewind:       "Rewind",
	ActionBlackHole:    "Black Hole",
	ActionEyeForEye:    "Eye for an Eye",
	ActionSendAway:     "Send Away",
	ActionArmageddon:   "Armageddon",
	ActionClone:        "Clone",
}

func (k ActionKind) ID() string {
	if int(k) < len(actionIDs) {
		return actionIDs[k]
	}
	return "?"
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return "?"
}

func (k ActionKind) MarshalText() ([]byte, error) { return []byte(k.ID()), nil }

// ParseActionKind accepts the id ("eye_for_eye"), the display name, or either
// without separators.
func ParseActionKind(s string) (ActionKind, bool) {
	norm := normalizeActionName(s)
	for i := range actionIDs {
		if normalizeActionName(actionIDs[i]) == norm || normalizeActionName(actionNames[i]) == norm {
			return ActionKind(i), true
		}
	}
	return 0, false
}

func normalizeActionName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(s)
}

type InputKind uint8

const (
	InputNone InputKind = iota
	InputSquare
	InputMove
)

func (k InputKind) String() string {
	switch k {
	case InputSquare:
		return "square"
	case InputMove:
		return "move"
	default:
		return "none"
	}
}

func (k InputKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *InputKind) UnmarshalText(text []byte) error {
	parsed, err := parseEnum(text, InputMove, "input kind")
	*k = parsed
	return err
}

// InputFormat tells a client what an action needs before it can run.
type InputFormat struct {
	Kind        InputKind
	Description string
}

// ActionInput is the tagged argument of ExecutePowerAction.
type ActionInput struct {
	Kind   InputKind
	Square Location
	Move   Move
}

func NoInput() ActionInput { return ActionInput{Kind: InputNone} }

func SquareInput(loc Location) ActionInput { return ActionInput{Kind: InputSquare, Square: loc} }

func MoveInput(m Move) ActionInput { return ActionInput{Kind: InputMove, Move: m} }

func (in ActionInput) String() string {
	switch in.Kind {
	case InputSquare:
		return in.Square.String()
	case InputMove:
		return in.Move.String()
	default:
		return "none"
	}
}

// actionContext binds an offer to the capture that produced it.
type actionContext struct {
	where Location
	color Color
}

// actionEffect reports squares whose piece position may trigger a promotion,
// and the move an action executed, if any.
type actionEffect struct {
	moved   []Location
	outcome *MoveOutcome
}

type catalogEntry struct {
	rarity      Rarity
	input       InputFormat
	description string
	valid       func(g *Game, ctx actionContext, in ActionInput) bool
	act         func(g *Game, ctx actionContext, in ActionInput) actionEffect
}

var catalog = [...]catalogEntry{
	ActionAdjust: {
		rarity:      Common,
		input:       InputFormat{Kind: InputSquare, Description: "[a-h][1-8] empty square next to the capturing piece"},
		description: "Adjust: move the capturing piece to an adjacent empty square.",
		valid:       validAdjust,
		act:         actAdjust,
	},
	ActionSecondEffort: {
		rarity:      Common,
		input:       InputFormat{Kind: InputMove, Description: "[a-h][1-8] [a-h][1-8] legal move for the capturing piece"},
		description: "Second Effort: the capturing piece moves again right away.",
		valid:       validSecondEffort,
		act:         actSecondEffort,
	},
	ActionShield: {
		rarity:      Common,
		input:       InputFormat{Kind: InputNone},
		description: "Shield: the capturing piece is invulnerable for the next three turns, or until it captures.",
		act:         actShield,
	},
	ActionSwap: {
		rarity:      Common,
		input:       InputFormat{Kind: InputSquare, Description: "[a-h][1-8] square of the friendly piece to swap with"},
		description: "Swap: swap the capturing piece with another of your pieces.",
		valid:       validSwap,
		act:         actSwap,
	},
	ActionRewind: {
		rarity:      Common,
		input:       InputFormat{Kind: InputNone},
		description: "Rewind: undo your opponent's previous move (captures stay captured).",
		act:         actRewind,
	},
	ActionBlackHole: {
		rarity:      Rare,
		input:       InputFormat{Kind: InputSquare, Description: "[a-h][1-8] empty square to place the black hole on"},
		description: "Black Hole: for the next six turns no piece may land on the chosen empty square; pieces still pass over it.",
		valid:       validBlackHole,
		act:         actBlackHole,
	},
	ActionEyeForEye: {
		rarity:      Rare,
		input:       InputFormat{Kind: InputSquare, Description: "[a-h][1-8] opposing piece to destroy"},
		description: "Eye for an Eye: destroy the capturing piece and an opposing piece of equal or lesser value. Kings outrank every other piece and are never a target.",
		valid:       validEyeForEye,
		act:         actEyeForEye,
	},
	ActionSendAway: {
		rarity:      Rare,
		input:       InputFormat{Kind: InputSquare, Description: "[a-h][1-8] piece to send away"},
		description: "Send Away: return any one piece to a random empty square on its owner's back rank.",
		valid:       validSendAway,
		act:         actSendAway,
	},
	ActionArmageddon: {
		rarity:      Legendary,
		input:       InputFormat{Kind: InputNone},
		description: "Armageddon: destroy all pawns. Both kings are invulnerable for the next turn.",
		act:         actArmageddon,
	},
	ActionClone: {
		rarity:      Legendary,
		input:       InputFormat{Kind: InputNone},
		description: "Clone: place a copy of the capturing piece on a random empty square of your back rank (does nothing when none is free).",
		act:         actClone,
	},
}

// ActionsOfRarity lists the catalog entries of one rarity in catalog order.
func ActionsOfRarity(r Rarity) []ActionKind {
	var out []ActionKind
	for i := range catalog {
		if catalog[i].rarity == r {
			out = append(out, ActionKind(i))
		}
	}
	return out
}

// PowerAction is an offered action bound to the capture that earned it.
type PowerAction struct {
	Kind ActionKind
	ctx  actionContext
}

func (a PowerAction) entry() *catalogEntry { return &catalog[a.Kind] }

func (a PowerAction) ID() string { return a.Kind.ID() }

func (a PowerAction) Name() string { return a.Kind.String() }

func (a PowerAction) Rarity() Rarity { return a.entry().rarity }

func (a PowerAction) InputFormat() InputFormat { return a.entry().input }

func (a PowerAction) Description() string { return a.entry().description }

// Origin is the square of the capture that earned this action.
func (a PowerAction) Origin() Location { return a.ctx.where }

// Owner is the color that earned this action.
func (a PowerAction) Owner() Color { return a.ctx.color }

func (a PowerAction) String() string {
	return fmt.Sprintf("%s (%s)", a.Name(), a.Rarity())
}

// ValidInput reports whether in may be passed to the action in the current
// game. An action whose input has no possible valid value accepts NoInput.
func (a PowerAction) ValidInput(g *Game, in ActionInput) bool {
	sp := a.entry()
	if sp.input.Kind == InputNone {
		return in.Kind == InputNone
	}
	if in.Kind == InputNone {
		return !a.hasValidInput(g)
	}
	if in.Kind != sp.input.Kind {
		return false
	}
	return sp.valid(g, a.ctx, in)
}

// hasValidInput probes every possible input of the action's format.
func (a PowerAction) hasValidInput(g *Game) bool {
	sp := a.entry()
	for _, loc := range shared.AllLocations() {
		var in ActionInput
		switch sp.input.Kind {
		case InputSquare:
			in = SquareInput(loc)
		case InputMove:
			in = MoveInput(Move{Start: a.ctx.where, End: loc})
		default:
			return true
		}
		if sp.valid(g, a.ctx, in) {
			return true
		}
	}
	return false
}

// act runs the effect. The input must already have passed ValidInput.
func (a PowerAction) act(g *Game, in ActionInput) actionEffect {
	sp := a.entry()
	if sp.input.Kind != InputNone && in.Kind == InputNone {
		return actionEffect{}
	}
	return sp.act(g, a.ctx, in)
}

// offerActions draws up to two distinct catalog entries of the rarity.
func (g *Game) offerActions(r Rarity, where Location, color Color) []PowerAction {
	kinds := ActionsOfRarity(r)
	shuffle(g.rng, kinds)
	if len(kinds) > 2 {
		kinds = kinds[:2]
	}
	out := make([]PowerAction, 0, len(kinds))
	for _, kind := range kinds {
		out = append(out, PowerAction{Kind: kind, ctx: actionContext{where: where, color: color}})
	}
	return out
}

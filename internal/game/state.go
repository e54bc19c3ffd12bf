package game

import "power_chess/internal/shared"

// OccupantState is a serializable occupant.
type OccupantState struct {
	Kind      OccupantKind `json:"kind"`
	Piece     *PieceType   `json:"piece,omitempty"`
	Color     *Color       `json:"color,omitempty"`
	Moved     bool         `json:"moved,omitempty"`
	Rarity    *Rarity      `json:"rarity,omitempty"`
	PowerUp   *PowerUpKind `json:"powerUp,omitempty"`
	TurnsLeft int          `json:"turnsLeft,omitempty"`
}

func occupantState(o Occupant) OccupantState {
	st := OccupantState{Kind: o.Kind}
	switch o.Kind {
	case OccupantPiece:
		pt, color := o.Piece.Type, o.Piece.Color
		st.Piece = &pt
		st.Color = &color
		st.Moved = o.Piece.Moved
	case OccupantGhost:
		color := o.Color
		st.Color = &color
	case OccupantPowerObject:
		rarity := o.Rarity
		st.Rarity = &rarity
	case OccupantPowerUp:
		kind := o.PowerUp.Kind
		st.PowerUp = &kind
		st.TurnsLeft = o.PowerUp.TurnsRemaining
	}
	return st
}

func occupantStates(occs []Occupant) []OccupantState {
	out := make([]OccupantState, 0, len(occs))
	for _, occ := range occs {
		out = append(out, occupantState(occ))
	}
	return out
}

// SquareState lists what sits on one non-empty square.
type SquareState struct {
	Square    Location        `json:"square"`
	Occupants []OccupantState `json:"occupants"`
}

// OfferState describes an offered power action.
type OfferState struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Rarity      Rarity    `json:"rarity"`
	Input       InputKind `json:"input"`
	InputHint   string    `json:"inputHint,omitempty"`
	Description string    `json:"description"`
	Origin      Location  `json:"origin"`
}

func offerState(a PowerAction) OfferState {
	format := a.InputFormat()
	return OfferState{
		ID:          a.ID(),
		Name:        a.Name(),
		Rarity:      a.Rarity(),
		Input:       format.Kind,
		InputHint:   format.Description,
		Description: a.Description(),
		Origin:      a.Origin(),
	}
}

func offerStates(actions []PowerAction) []OfferState {
	out := make([]OfferState, 0, len(actions))
	for _, a := range actions {
		out = append(out, offerState(a))
	}
	return out
}

type HistoryState struct {
	From     Location       `json:"from"`
	To       Location       `json:"to"`
	Color    Color          `json:"color"`
	Piece    PieceType      `json:"piece"`
	Kind     MoveKind       `json:"kind"`
	Captured []OccupantKind `json:"captured,omitempty"`
	Action   string         `json:"action,omitempty"`
}

type PowerUpState struct {
	Square    Location    `json:"square"`
	Kind      PowerUpKind `json:"kind"`
	TurnsLeft int         `json:"turnsLeft"`
}

// BoardState is a serializable representation of the game state.
type BoardState struct {
	Squares          []SquareState  `json:"squares"`
	Active           Color          `json:"active"`
	Phase            Phase          `json:"phase"`
	Offers           []OfferState   `json:"offers"`
	Chosen           *OfferState    `json:"chosen,omitempty"`
	PendingPromotion *Location      `json:"pendingPromotion,omitempty"`
	History          []HistoryState `json:"history"`
	PowerUps         []PowerUpState `json:"powerUps"`
	SpawnCountdown   int            `json:"spawnCountdown"`
	Turns            int            `json:"turns"`
	LastNote         string         `json:"lastNote"`
	GameOver         bool           `json:"gameOver"`
	Status           string         `json:"status"`
	HasWinner        bool           `json:"hasWinner"`
	Winner           *Color         `json:"winner,omitempty"`
}

// State returns a snapshot of the game. Calling it never changes the game.
func (g *Game) State() BoardState {
	st := BoardState{
		Squares:        []SquareState{},
		Active:         g.active,
		Phase:          g.phase,
		Offers:         offerStates(g.offers),
		History:        make([]HistoryState, 0, len(g.history)),
		PowerUps:       []PowerUpState{},
		SpawnCountdown: g.countdown,
		Turns:          g.turns,
		LastNote:       g.lastNote,
		GameOver:       g.phase == GameOver,
		Status:         g.status,
		HasWinner:      g.hasWinner,
	}
	for _, loc := range shared.AllLocations() {
		if g.board.IsVacant(loc) {
			continue
		}
		st.Squares = append(st.Squares, SquareState{Square: loc, Occupants: occupantStates(g.board.OccupantsAt(loc))})
	}
	if g.chosen != nil {
		chosen := offerState(*g.chosen)
		st.Chosen = &chosen
	}
	if g.promotion != nil {
		loc := *g.promotion
		st.PendingPromotion = &loc
	}
	for _, entry := range g.history {
		hs := HistoryState{
			From:     entry.Move.Start,
			To:       entry.Move.End,
			Color:    entry.Color,
			Piece:    entry.Piece,
			Kind:     entry.Kind,
			Captured: entry.Captured,
		}
		if entry.ByAction {
			hs.Action = entry.Action.ID()
		}
		st.History = append(st.History, hs)
	}
	for _, entry := range g.board.PowerUps() {
		st.PowerUps = append(st.PowerUps, PowerUpState{Square: entry.Location, Kind: entry.PowerUp.Kind, TurnsLeft: entry.PowerUp.TurnsRemaining})
	}
	if g.hasWinner {
		winner := g.winner
		st.Winner = &winner
	}
	return st
}

type SpawnState struct {
	Square Location `json:"square"`
	Rarity Rarity   `json:"rarity"`
}

type ExpiredState struct {
	Square Location    `json:"square"`
	Kind   PowerUpKind `json:"kind"`
}

type OutcomeState struct {
	From      Location        `json:"from"`
	To        Location        `json:"to"`
	Kind      MoveKind        `json:"kind"`
	Captured  []OccupantState `json:"captured,omitempty"`
	RookFrom  *Location       `json:"rookFrom,omitempty"`
	RookTo    *Location       `json:"rookTo,omitempty"`
	EnPassant *Location       `json:"enPassant,omitempty"`
}

// ResultState is a serializable Result.
type ResultState struct {
	Phase   Phase          `json:"phase"`
	Active  Color          `json:"active"`
	Outcome *OutcomeState  `json:"outcome,omitempty"`
	Spawned *SpawnState    `json:"spawned,omitempty"`
	Expired []ExpiredState `json:"expired,omitempty"`
	Offers  []OfferState   `json:"offers"`
	Changes []SquareChange `json:"changes"`
	Note    string         `json:"note,omitempty"`
}

func (r Result) State() ResultState {
	st := ResultState{
		Phase:   r.Phase,
		Active:  r.Active,
		Offers:  offerStates(r.Offers),
		Changes: r.Changes,
		Note:    r.Note,
	}
	if st.Changes == nil {
		st.Changes = []SquareChange{}
	}
	if r.Outcome != nil {
		out := &OutcomeState{
			From:      r.Outcome.Move.Start,
			To:        r.Outcome.Move.End,
			Kind:      r.Outcome.Kind,
			Captured:  occupantStates(r.Outcome.Captured),
			EnPassant: r.Outcome.EnPassant,
		}
		if r.Outcome.Castle != nil {
			from, to := r.Outcome.Castle.From, r.Outcome.Castle.To
			out.RookFrom, out.RookTo = &from, &to
		}
		st.Outcome = out
	}
	if r.Spawned != nil {
		st.Spawned = &SpawnState{Square: r.Spawned.Location, Rarity: r.Spawned.Rarity}
	}
	for _, e := range r.Expired {
		st.Expired = append(st.Expired, ExpiredState{Square: e.Location, Kind: e.Kind})
	}
	return st
}

package core

import "fmt"

// Result is a player's outcome once the game has ended.
type Result int

const (
	ResultNone Result = iota
	ResultWin
	ResultLose
	ResultDraw
)

func (r Result) String() string {
	switch r {
	case ResultNone:
		return "None"
	case ResultWin:
		return "Win"
	case ResultLose:
		return "Lose"
	case ResultDraw:
		return "Draw"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// State is the authoritative, copyable snapshot of a game.
//
// All game objects live in the Registry; everything else holds ComponentIDs.
// The stack holds in-progress extended sequences, top last. State is mutated
// in place by a single caller at a time; Copy produces a fully independent fork.
type State struct {
	players       int
	currentPlayer int
	firstPlayer   int
	turn          int
	round         int
	ended         bool
	results       []Result
	rng           *Random
	registry      *Registry
	stack         []ExtendedAction
}

// NewState creates an empty state for the given player count and seed.
func NewState(players int, seed uint64) (*State, error) {
	if players <= 0 {
		return nil, fmt.Errorf("new state with %d players: %w", players, ErrInvalidPlayerCount)
	}
	return &State{
		players:  players,
		results:  make([]Result, players),
		rng:      NewRandom(seed),
		registry: NewRegistry(),
	}, nil
}

func (s *State) Players() int        { return s.players }
func (s *State) CurrentPlayer() int  { return s.currentPlayer }
func (s *State) FirstPlayer() int    { return s.firstPlayer }
func (s *State) Turn() int           { return s.turn }
func (s *State) Round() int          { return s.round }
func (s *State) Rand() *Random       { return s.rng }
func (s *State) Registry() *Registry { return s.registry }
func (s *State) IsTerminal() bool    { return s.ended }

// SetCurrentPlayer sets the nominal player. Used by setup logic.
func (s *State) SetCurrentPlayer(p int) error {
	if p < 0 || p >= s.players {
		return fmt.Errorf("set current player %d: %w", p, ErrInvalidPlayer)
	}
	s.currentPlayer = p
	return nil
}

// SetFirstPlayer sets who opens each round and makes them the current player.
func (s *State) SetFirstPlayer(p int) error {
	if err := s.SetCurrentPlayer(p); err != nil {
		return err
	}
	s.firstPlayer = p
	return nil
}

// EndPlayerTurn passes the nominal turn to the next player in seat order.
func (s *State) EndPlayerTurn() {
	s.turn++
	s.currentPlayer = (s.currentPlayer + 1) % s.players
}

// EndRound starts a new round with the first player.
func (s *State) EndRound() {
	s.round++
	s.turn = 0
	s.currentPlayer = s.firstPlayer
}

// EndGame records final results. A nil slice marks a draw for everyone.
func (s *State) EndGame(results []Result) error {
	if results != nil && len(results) != s.players {
		return fmt.Errorf("end game with %d results for %d players: %w", len(results), s.players, ErrInvalidPlayerCount)
	}
	for i := range s.results {
		if results == nil {
			s.results[i] = ResultDraw
		} else {
			s.results[i] = results[i]
		}
	}
	s.ended = true
	return nil
}

// Result returns the player's outcome, ResultNone while the game runs.
func (s *State) Result(player int) Result {
	if player < 0 || player >= s.players {
		return ResultNone
	}
	return s.results[player]
}

// Winner returns the first player with ResultWin, or -1.
func (s *State) Winner() int {
	for i, r := range s.results {
		if r == ResultWin {
			return i
		}
	}
	return -1
}

// PushSequence makes seq the active extended sequence.
func (s *State) PushSequence(seq ExtendedAction) {
	s.stack = append(s.stack, seq)
}

// PopSequence removes and returns the active sequence.
func (s *State) PopSequence() (ExtendedAction, error) {
	if len(s.stack) == 0 {
		return nil, ErrEmptyStack
	}
	top := s.stack[len(s.stack)-1]
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
	return top, nil
}

// ActiveSequence returns the top of the stack, or nil during normal turns.
func (s *State) ActiveSequence() ExtendedAction {
	if len(s.stack) == 0 {
		return nil
	}
	return s.stack[len(s.stack)-1]
}

func (s *State) InProgress() bool { return len(s.stack) > 0 }
func (s *State) StackDepth() int  { return len(s.stack) }

// Copy returns a deep copy. In-flight sequences are copied through
// Action.Copy, so their cursors are independent of the original.
func (s *State) Copy() *State {
	c := &State{
		players:       s.players,
		currentPlayer: s.currentPlayer,
		firstPlayer:   s.firstPlayer,
		turn:          s.turn,
		round:         s.round,
		ended:         s.ended,
		results:       append([]Result(nil), s.results...),
		rng:           s.rng.copy(),
		registry:      s.registry.Copy(),
	}
	if len(s.stack) > 0 {
		c.stack = make([]ExtendedAction, len(s.stack))
		for i, seq := range s.stack {
			c.stack[i] = seq.Copy().(ExtendedAction)
		}
	}
	return c
}

// Hash digests every field that can influence future play, including the
// random source and the in-progress stack.
func (s *State) Hash() StateHash {
	h := NewHasher()
	h.Int(s.players).Int(s.currentPlayer).Int(s.firstPlayer).Int(s.turn).Int(s.round).Bool(s.ended)
	for _, r := range s.results {
		h.Int(int(r))
	}
	s.rng.hashInto(h)
	s.registry.hashInto(h)
	h.Int(len(s.stack))
	for _, seq := range s.stack {
		h.Uint64(seq.Hash())
	}
	return StateHash(h.Sum())
}

package rules

import (
	"github.com/mitchelldurbincs/TabletopForwardModel/internal/game/core"
	"github.com/rs/zerolog"
)

// WinConditionChecker handles game over detection and winner determination for
// elimination games: a player is alive while they own at least one live
// component of the tracked type.
type WinConditionChecker struct {
	logger        zerolog.Logger
	componentType string
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger, componentType string) *WinConditionChecker {
	return &WinConditionChecker{
		logger:        logger.With().Str("component", "WinConditionChecker").Logger(),
		componentType: componentType,
	}
}

// AlivePlayers returns the players still owning a tracked component, in seat order.
func (wc *WinConditionChecker) AlivePlayers(s *core.State) []int {
	var alive []int
	for p := 0; p < s.Players(); p++ {
		if len(s.Registry().OwnedBy(p, wc.componentType)) > 0 {
			alive = append(alive, p)
		}
	}
	return alive
}

// CheckGameOver determines if the game is over based on the number of alive players.
// Returns (isGameOver, winnerID); winnerID is -1 for a draw.
func (wc *WinConditionChecker) CheckGameOver(s *core.State) (bool, int) {
	alive := wc.AlivePlayers(s)

	// Game is over only if:
	// - 0 players alive (draw)
	// - 1 player alive AND there were originally more than 1 player
	var gameOver bool
	if s.Players() > 1 {
		gameOver = len(alive) <= 1
	} else {
		gameOver = len(alive) == 0
	}

	winnerID := -1
	if gameOver && len(alive) == 1 {
		winnerID = alive[0]
		wc.logger.Info().Int("winner_player_id", winnerID).Msg("Winner determined")
	} else if gameOver {
		wc.logger.Info().Msg("No winner found (draw, or all players eliminated simultaneously)")
	}

	wc.logger.Debug().Bool("is_game_over", gameOver).Ints("alive_players_ids", alive).Msg("Game over check complete")

	return gameOver, winnerID
}

// Results converts a winner into per-player results. A negative winner is a draw.
func Results(players, winner int) []core.Result {
	out := make([]core.Result, players)
	for i := range out {
		switch {
		case winner < 0:
			out[i] = core.ResultDraw
		case i == winner:
			out[i] = core.ResultWin
		default:
			out[i] = core.ResultLose
		}
	}
	return out
}

// EndIfOver checks the condition and, when the game is over, records the
// results on the state. It reports whether the game ended.
func (wc *WinConditionChecker) EndIfOver(s *core.State) (bool, error) {
	over, winner := wc.CheckGameOver(s)
	if !over {
		return false, nil
	}
	return true, s.EndGame(Results(s.Players(), winner))
}

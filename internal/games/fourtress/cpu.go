package fourtress

import (
	rand "math/rand/v2"

	"github.com/nix24/ChipMinigameParlor/internal/board"
)

// NoMove is returned when no column is playable. The caller must treat it
// as a draw, not retry.
const NoMove = -1

// ChooseMove picks a column for the CPU: take an immediate win if one
// exists, otherwise block the opponent's immediate win, otherwise pick
// uniformly at random among the valid columns.
func ChooseMove(b *board.Board, cpu, opponent board.Cell, rng *rand.Rand) int {
	valid := b.ValidMoves()
	if len(valid) == 0 {
		return NoMove
	}

	if col := winningMove(b, cpu, valid); col != NoMove {
		return col
	}
	if col := winningMove(b, opponent, valid); col != NoMove {
		return col
	}
	return valid[rng.IntN(len(valid))]
}

// winningMove returns the first column that gives player four in a row,
// or NoMove. Trial placements happen on a clone so the live board is
// never disturbed.
func winningMove(b *board.Board, player board.Cell, valid []int) int {
	for _, col := range valid {
		trial := b.Clone()
		trial.Place(col, player)
		if trial.CheckWin(player) {
			return col
		}
	}
	return NoMove
}

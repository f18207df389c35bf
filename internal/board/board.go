// Package board implements the 6x7 grid used by the fourtress game:
// connect-four placement and win detection plus the row-clear mechanic
// that removes fully-occupied rows and drops the cells above them.
package board

// Cell is the occupancy state of one grid position.
type Cell int

const (
	Empty Cell = iota
	P1
	P2
)

// String returns the display glyph for a cell.
func (c Cell) String() string {
	switch c {
	case P1:
		return "🔴"
	case P2:
		return "🟡"
	default:
		return "⚪"
	}
}

// Grid dimensions are fixed. Row 0 is the top row; gravity pulls pieces
// toward row Rows-1.
const (
	Rows = 6
	Cols = 7
)

// Board is a fixed-size connect-four grid. The zero value is unusable;
// construct with New.
type Board struct {
	cells [Rows][Cols]Cell
}

// New creates an empty board.
func New() *Board {
	return &Board{}
}

// At returns the cell at the given row and column.
func (b *Board) At(row, col int) Cell {
	return b.cells[row][col]
}

// IsValidMove reports whether a piece can be dropped into col: the column
// index must be in range and its topmost cell empty.
func (b *Board) IsValidMove(col int) bool {
	return col >= 0 && col < Cols && b.cells[0][col] == Empty
}

// Place drops a piece into the lowest empty cell of col. It returns the
// row the piece landed in, or false when the move is invalid.
func (b *Board) Place(col int, player Cell) (int, bool) {
	if !b.IsValidMove(col) || player == Empty {
		return 0, false
	}
	for row := Rows - 1; row >= 0; row-- {
		if b.cells[row][col] == Empty {
			b.cells[row][col] = player
			return row, true
		}
	}
	return 0, false
}

// CheckWin reports whether player has four contiguous pieces in any
// direction: horizontal, vertical, or either diagonal.
func (b *Board) CheckWin(player Cell) bool {
	// Horizontal
	for row := 0; row < Rows; row++ {
		for col := 0; col <= Cols-4; col++ {
			if b.run(row, col, 0, 1, player) {
				return true
			}
		}
	}
	// Vertical
	for row := 0; row <= Rows-4; row++ {
		for col := 0; col < Cols; col++ {
			if b.run(row, col, 1, 0, player) {
				return true
			}
		}
	}
	// Diagonal down-right
	for row := 0; row <= Rows-4; row++ {
		for col := 0; col <= Cols-4; col++ {
			if b.run(row, col, 1, 1, player) {
				return true
			}
		}
	}
	// Diagonal up-right
	for row := 3; row < Rows; row++ {
		for col := 0; col <= Cols-4; col++ {
			if b.run(row, col, -1, 1, player) {
				return true
			}
		}
	}
	return false
}

func (b *Board) run(row, col, dRow, dCol int, player Cell) bool {
	for i := 0; i < 4; i++ {
		if b.cells[row+i*dRow][col+i*dCol] != player {
			return false
		}
	}
	return true
}

// IsFull reports whether no further moves are possible: every cell of the
// top row is occupied.
func (b *Board) IsFull() bool {
	for col := 0; col < Cols; col++ {
		if b.cells[0][col] == Empty {
			return false
		}
	}
	return true
}

// ClearFullRows removes every fully-occupied row, shifting the rows above
// it down by one and leaving a fresh empty top row. A clear can expose a
// newly-full row above the removed one, so the scan repeats until no full
// row remains. Returns the number of rows cleared. Column contiguity is
// preserved: cells only ever move straight down.
func (b *Board) ClearFullRows() int {
	cleared := 0
	for {
		row := b.findFullRow()
		if row < 0 {
			return cleared
		}
		for r := row; r > 0; r-- {
			b.cells[r] = b.cells[r-1]
		}
		b.cells[0] = [Cols]Cell{}
		cleared++
	}
}

func (b *Board) findFullRow() int {
	for row := Rows - 1; row >= 0; row-- {
		full := true
		for col := 0; col < Cols; col++ {
			if b.cells[row][col] == Empty {
				full = false
				break
			}
		}
		if full {
			return row
		}
	}
	return -1
}

// ValidMoves returns the playable column indices in ascending order.
func (b *Board) ValidMoves() []int {
	moves := make([]int, 0, Cols)
	for col := 0; col < Cols; col++ {
		if b.IsValidMove(col) {
			moves = append(moves, col)
		}
	}
	return moves
}

// Clone returns a deep copy, used by the CPU policy to try candidate
// moves without mutating the live board.
func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

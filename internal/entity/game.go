package entity

const (
	PlayerX   = "X"
	PlayerO   = "O"
	EmptyCell = ""

	BoardSize = 9
)

var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]string

// Winner returns the symbol and cells of the first completed line, or an empty
// symbol and nil when no line is complete.
func (that Board) Winner() (string, []int) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a, []int{combo[0], combo[1], combo[2]}
		}
	}

	return EmptyCell, nil
}

// Lines returns every completed line. Only used to check that alternating play
// never produces lines for both symbols.
func (that Board) Lines() map[string][][3]int {
	lines := make(map[string][][3]int)
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			lines[a] = append(lines[a], combo)
		}
	}

	return lines
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			cells = append(cells, i)
		}
	}

	return cells
}

// IsBalanced reports whether X has made as many moves as O, or one more.
func (that Board) IsBalanced() bool {
	var x, o int
	for _, cell := range that {
		switch cell {
		case PlayerX:
			x++
		case PlayerO:
			o++
		}
	}

	return x == o || x == o+1
}

func (that Board) String() string {
	out := make([]byte, 0, BoardSize)
	for _, cell := range that {
		if cell == EmptyCell {
			out = append(out, '.')
			continue
		}
		out = append(out, cell[0])
	}

	return string(out)
}

func IsValidPosition(position int) bool {
	return position >= 0 && position < BoardSize
}

// Opponent returns the other symbol.
func Opponent(symbol string) string {
	if symbol == PlayerX {
		return PlayerO
	}

	return PlayerX
}

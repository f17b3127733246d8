package common

// IsValidCoordinate checks if the given coordinates are within the bounds of the board
func IsValidCoordinate(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}

// Chebyshev is the king-move distance: diagonal steps count as one.
func Chebyshev(x1, y1, x2, y2 int) int {
	return Max(Abs(x1-x2), Abs(y1-y2))
}

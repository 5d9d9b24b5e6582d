package league

import "math"

// DefaultRating is the rating assigned to players configured without one.
const DefaultRating = 1200

// DefaultKFactor bounds the per-game rating swing.
const DefaultKFactor = 32

// Expectation is the standard Elo expected score for a player rated `rating`
// against an opponent rated `opponent`.
func Expectation(rating, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-rating)/400))
}

// RatingDelta computes the white-side rating change for a finished game.
// score is white's game score: 1 for a win, 0.5 for a draw, 0 for a loss.
// Black's change is exactly -delta, so the rating pool is conserved.
func RatingDelta(white, black, score, k float64) float64 {
	return k * (score - Expectation(white, black))
}

// UpdateRatings applies one game's outcome to both ratings and returns the
// white-side delta. Callers apply this exactly once per finished game,
// forfeits included.
func UpdateRatings(white, black *float64, score, k float64) float64 {
	delta := RatingDelta(*white, *black, score, k)
	*white += delta
	*black -= delta
	return delta
}

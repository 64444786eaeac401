package entities

import (
	"math"
	"time"
)

// Wallet holds a user's play-money balance for one tournament
type Wallet struct {
	ID           int64   `db:"id"`
	TournamentID int64   `db:"tournament_id"`
	UserID       int64   `db:"user_id"`
	Amount       float64 `db:"amount"`
}

// BetGame is the priced, bettable proxy of one bracket match
type BetGame struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	MatchID      int64     `db:"match_id"`
	Probability1 float64   `db:"probability_user1"`
	Probability2 float64   `db:"probability_user2"`
	Distributed  bool      `db:"distributed"`
	CreatedAt    time.Time `db:"created_at"`
}

// ProbabilityFor returns the win probability priced for the given user of the match
func (g *BetGame) ProbabilityFor(match *Match, userID int64) (float64, bool) {
	if match.User1ID != nil && *match.User1ID == userID {
		return g.Probability1, true
	}
	if match.User2ID != nil && *match.User2ID == userID {
		return g.Probability2, true
	}
	return 0, false
}

// Wager is one bet placed by a user against a BetGame
type Wager struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	BetGameID    int64     `db:"bet_game_id"`
	UserID       int64     `db:"user_id"`
	Amount       float64   `db:"amount"`
	TargetUserID int64     `db:"target_user_id"`
	PlacedAt     time.Time `db:"placed_at"`
	Probability  float64   `db:"probability"`
	Distributed  bool      `db:"distributed"`
}

// Payout returns what the wager pays given the match winner.
// Odds are fixed at placement time, so a winning wager returns stake / snapshot probability.
func (w *Wager) Payout(winnerID int64) float64 {
	if w.TargetUserID != winnerID || w.Probability <= 0 {
		return 0
	}
	return w.Amount / w.Probability
}

// PotentialPayout is the payout if the targeted user wins
func (w *Wager) PotentialPayout() float64 {
	return w.Payout(w.TargetUserID)
}

// LedgerEntry is the immutable settlement record of one wager
type LedgerEntry struct {
	ID           int64     `db:"id"`
	TournamentID int64     `db:"tournament_id"`
	MatchID      int64     `db:"match_id"`
	BetGameID    int64     `db:"bet_game_id"`
	WagerID      int64     `db:"wager_id"`
	UserID       int64     `db:"user_id"`
	Amount       float64   `db:"amount"`
	CreatedAt    time.Time `db:"created_at"`
}

// MoneylineOdd converts a win probability to American moneyline odds
func MoneylineOdd(probability float64) int {
	if probability <= 0 || probability >= 1 {
		return 0
	}
	if probability < 0.5 {
		return int(math.Round(100 * (1 - probability) / probability))
	}
	return int(math.Round(-100 * probability / (1 - probability)))
}

// DecimalOdd converts a win probability to the decimal payout multiplier
func DecimalOdd(probability float64) float64 {
	if probability <= 0 {
		return 0
	}
	return 1 / probability
}

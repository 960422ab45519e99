package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/lib/pq"
)

type GameRepo struct {
	DB *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameResult is one row of a user's history
type GameResult struct {
	GameID          string    `json:"gameId"`
	Username        string    `json:"username"`
	HumanSide       string    `json:"humanSide"`
	BotName         string    `json:"botName"`
	BotDifficulty   string    `json:"botDifficulty"`
	Winner          string    `json:"winner"`
	Reason          string    `json:"reason"`
	TotalMoves      int       `json:"totalMoves"`
	BlackCount      int       `json:"blackCount"`
	WhiteCount      int       `json:"whiteCount"`
	RatingBefore    int       `json:"ratingBefore"`
	RatingAfter     int       `json:"ratingAfter"`
	DurationSeconds int       `json:"durationSeconds"`
	CreatedAt       time.Time `json:"createdAt"`
	FinishedAt      time.Time `json:"finishedAt"`
}

type GameDetails struct {
	GameResult
	UserID int64         `json:"userId"`
	Moves  []domain.Move `json:"moves"`
	Board  [][]int       `json:"board"`
}

// movesToText stores moves in algebraic notation, passes included
func movesToText(moves []domain.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

func movesFromText(text []string) ([]domain.Move, error) {
	moves := make([]domain.Move, 0, len(text))
	for _, s := range text {
		m, err := domain.ParseMove(s)
		if err != nil {
			return nil, fmt.Errorf("stored move %q: %w", s, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}

const insertGameQuery = `
	INSERT INTO game (game_id, user_id, username, human_side, bot_name, bot_difficulty, winner, reason,
	                  moves, total_moves, black_count, white_count, board_state,
	                  rating_before, rating_after, duration_seconds, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	ON CONFLICT (game_id) DO NOTHING;
	`

// SaveGame saves a finished game and updates the player's stats and rating
// transactionally. A game that is already stored is left alone, so the
// player's stats count it once.
func (r *GameRepo) SaveGame(record *domain.GameRecord) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var ratingBefore int
	err = tx.QueryRow(`SELECT rating FROM players WHERE id = $1 FOR UPDATE;`, record.UserID).Scan(&ratingBefore)
	if err != nil {
		return fmt.Errorf("failed to lock player %d: %w", record.UserID, err)
	}

	score := record.HumanScore()
	ratingAfter := domain.CalculateElo(ratingBefore, domain.GetBotRating(record.BotDifficulty), score)

	boardJSON, err := json.Marshal(record.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %w", err)
	}

	res, err := tx.Exec(insertGameQuery,
		record.GameID, record.UserID, record.Username, record.HumanSide.String(),
		record.BotName, record.BotDifficulty, record.Winner, record.Reason,
		pq.Array(movesToText(record.Moves)), len(record.Moves), record.BlackCount, record.WhiteCount, boardJSON,
		ratingBefore, ratingAfter, record.DurationSeconds(), record.CreatedAt, record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert game record: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read inserted rows: %w", err)
	}
	if inserted == 0 {
		log.Printf("[DB] Game %s already saved, player stats left unchanged", record.GameID)
		return nil
	}

	_, err = tx.Exec(`
	UPDATE players
	SET games_played = games_played + 1,
	    games_won = games_won + CASE WHEN $2 THEN 1 ELSE 0 END,
	    games_drawn = games_drawn + CASE WHEN $3 THEN 1 ELSE 0 END,
	    rating = $4
	WHERE id = $1;
	`, record.UserID, score == 1.0, score == 0.5, ratingAfter)
	if err != nil {
		return fmt.Errorf("failed to update player stats in transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

const gameSelectFields = `game_id, username, human_side, bot_name, bot_difficulty, winner, reason,
	total_moves, black_count, white_count, rating_before, rating_after, duration_seconds, created_at, finished_at`

func scanGameResult(row interface{ Scan(dest ...any) error }, extra ...any) (*GameResult, error) {
	var g GameResult
	dest := []any{
		&g.GameID,
		&g.Username,
		&g.HumanSide,
		&g.BotName,
		&g.BotDifficulty,
		&g.Winner,
		&g.Reason,
		&g.TotalMoves,
		&g.BlackCount,
		&g.WhiteCount,
		&g.RatingBefore,
		&g.RatingAfter,
		&g.DurationSeconds,
		&g.CreatedAt,
		&g.FinishedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetUserGameHistory returns the user's most recent games first
func (r *GameRepo) GetUserGameHistory(userID int64, limit int) ([]GameResult, error) {
	query := `SELECT ` + gameSelectFields + ` FROM game WHERE user_id = $1 ORDER BY finished_at DESC LIMIT $2;`

	rows, err := r.DB.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	defer rows.Close()

	games := make([]GameResult, 0)
	for rows.Next() {
		g, err := scanGameResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game rows: %w", err)
	}
	return games, nil
}

// GetGameByID returns a stored game with its move list and final board, or nil if unknown
func (r *GameRepo) GetGameByID(gameID string) (*GameDetails, error) {
	query := `SELECT ` + gameSelectFields + `, user_id, moves, board_state FROM game WHERE game_id = $1;`

	var (
		userID    int64
		moveText  []string
		boardJSON []byte
	)
	g, err := scanGameResult(r.DB.QueryRow(query, gameID), &userID, pq.Array(&moveText), &boardJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	moves, err := movesFromText(moveText)
	if err != nil {
		return nil, err
	}

	details := &GameDetails{GameResult: *g, UserID: userID, Moves: moves}
	if boardJSON != nil {
		if err := json.Unmarshal(boardJSON, &details.Board); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %w", err)
		}
	}
	return details, nil
}

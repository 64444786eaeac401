package repository

import (
	"context"
	"errors"
	"fmt"

	"tourney/database"
	"tourney/domain/entities"
	"tourney/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// tournamentRepository implements interfaces.TournamentRepository
type tournamentRepository struct {
	q       Queryable
	guildID int64
}

// NewTournamentRepository creates a guild-scoped tournament repository on the pool
func NewTournamentRepository(db *database.DB, guildID int64) interfaces.TournamentRepository {
	return &tournamentRepository{q: db.Pool, guildID: guildID}
}

// NewTournamentRepositoryScoped creates a tournament repository with a transaction and guild scope
func NewTournamentRepositoryScoped(tx Queryable, guildID int64) interfaces.TournamentRepository {
	return &tournamentRepository{q: tx, guildID: guildID}
}

const tournamentColumns = `
	t.id, t.guild_id, t.name, t.registration_date, t.start_date, t.end_date, t.best_of,
	t.max_players, t.maps, t.team_size, t.has_started, t.has_finished, t.channel_id, t.created_at,
	(SELECT COUNT(*) FROM tournament_participants p WHERE p.tournament_id = t.id)`

// Create inserts a tournament in the repository's guild
func (r *tournamentRepository) Create(ctx context.Context, tournament *entities.Tournament) error {
	if r.guildID != 0 {
		tournament.GuildID = r.guildID
	}

	query := `
		INSERT INTO tournaments (
			guild_id, name, registration_date, start_date, end_date, best_of,
			max_players, maps, team_size, has_started, has_finished, channel_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		tournament.GuildID,
		tournament.Name,
		tournament.RegistrationDate,
		tournament.StartDate,
		tournament.EndDate,
		tournament.BestOf,
		tournament.MaxPlayers,
		tournament.Maps,
		tournament.TeamSize,
		tournament.HasStarted,
		tournament.HasFinished,
		tournament.ChannelID,
	).Scan(&tournament.ID, &tournament.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}

	return nil
}

// GetByID retrieves a tournament of the guild, nil if not found
func (r *tournamentRepository) GetByID(ctx context.Context, id int64) (*entities.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments t
		WHERE t.id = $1 AND ($2::BIGINT = 0 OR t.guild_id = $2)
	`

	tournament, err := scanTournament(r.q.QueryRow(ctx, query, id, r.guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}

	return tournament, nil
}

// Update persists every mutable tournament field
func (r *tournamentRepository) Update(ctx context.Context, tournament *entities.Tournament) error {
	query := `
		UPDATE tournaments
		SET name = $2, registration_date = $3, start_date = $4, end_date = $5, best_of = $6,
			max_players = $7, maps = $8, team_size = $9, has_started = $10, has_finished = $11,
			channel_id = $12
		WHERE id = $1 AND ($13::BIGINT = 0 OR guild_id = $13)
	`

	tag, err := r.q.Exec(ctx, query,
		tournament.ID,
		tournament.Name,
		tournament.RegistrationDate,
		tournament.StartDate,
		tournament.EndDate,
		tournament.BestOf,
		tournament.MaxPlayers,
		tournament.Maps,
		tournament.TeamSize,
		tournament.HasStarted,
		tournament.HasFinished,
		tournament.ChannelID,
		r.guildID,
	)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", tournament.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tournament %d not found", tournament.ID)
	}

	return nil
}

// GetActive returns unfinished tournaments of the guild, soonest first
func (r *tournamentRepository) GetActive(ctx context.Context) ([]*entities.Tournament, error) {
	query := `SELECT ` + tournamentColumns + `
		FROM tournaments t
		WHERE t.has_finished = FALSE AND ($1::BIGINT = 0 OR t.guild_id = $1)
		ORDER BY t.start_date, t.id
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*entities.Tournament
	for rows.Next() {
		tournament, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, tournament)
	}

	return tournaments, rows.Err()
}

// RegisterParticipant records a registration
func (r *tournamentRepository) RegisterParticipant(ctx context.Context, tournamentID, userID int64) error {
	query := `
		INSERT INTO tournament_participants (tournament_id, user_id)
		VALUES ($1, $2)
	`

	if _, err := r.q.Exec(ctx, query, tournamentID, userID); err != nil {
		return fmt.Errorf("failed to register user %d to tournament %d: %w", userID, tournamentID, err)
	}

	return nil
}

// UnregisterParticipant removes a registration, false if there was none
func (r *tournamentRepository) UnregisterParticipant(ctx context.Context, tournamentID, userID int64) (bool, error) {
	query := `DELETE FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2`

	tag, err := r.q.Exec(ctx, query, tournamentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unregister user %d from tournament %d: %w", userID, tournamentID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// IsRegistered reports whether the user is registered
func (r *tournamentRepository) IsRegistered(ctx context.Context, tournamentID, userID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tournament_participants WHERE tournament_id = $1 AND user_id = $2
		)
	`

	var registered bool
	if err := r.q.QueryRow(ctx, query, tournamentID, userID).Scan(&registered); err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}

	return registered, nil
}

// GetParticipants returns registrations in registration order
func (r *tournamentRepository) GetParticipants(ctx context.Context, tournamentID int64) ([]*entities.TournamentParticipant, error) {
	query := `
		SELECT tournament_id, user_id, registered_at
		FROM tournament_participants
		WHERE tournament_id = $1
		ORDER BY registered_at, user_id
	`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []*entities.TournamentParticipant
	for rows.Next() {
		var p entities.TournamentParticipant
		if err := rows.Scan(&p.TournamentID, &p.UserID, &p.RegisteredAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}

	return participants, rows.Err()
}

// SaveTeamMembers upserts team rows in one batch
func (r *tournamentRepository) SaveTeamMembers(ctx context.Context, members []*entities.TeamMember) error {
	if len(members) == 0 {
		return nil
	}

	query := `
		INSERT INTO tournament_teams (tournament_id, leader_id, teammate_id, position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id, teammate_id)
		DO UPDATE SET leader_id = EXCLUDED.leader_id, position = EXCLUDED.position
	`

	batch := &pgx.Batch{}
	for _, m := range members {
		batch.Queue(query, m.TournamentID, m.LeaderID, m.TeammateID, m.Position)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for range members {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save team member: %w", err)
		}
	}

	return nil
}

// GetTeamMembers returns team rows grouped by leader
func (r *tournamentRepository) GetTeamMembers(ctx context.Context, tournamentID int64) ([]*entities.TeamMember, error) {
	query := `
		SELECT tournament_id, leader_id, teammate_id, position
		FROM tournament_teams
		WHERE tournament_id = $1
		ORDER BY leader_id, position
	`

	rows, err := r.q.Query(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %w", err)
	}
	defer rows.Close()

	var members []*entities.TeamMember
	for rows.Next() {
		var m entities.TeamMember
		if err := rows.Scan(&m.TournamentID, &m.LeaderID, &m.TeammateID, &m.Position); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, &m)
	}

	return members, rows.Err()
}

func scanTournament(row pgx.Row) (*entities.Tournament, error) {
	var t entities.Tournament
	err := row.Scan(
		&t.ID,
		&t.GuildID,
		&t.Name,
		&t.RegistrationDate,
		&t.StartDate,
		&t.EndDate,
		&t.BestOf,
		&t.MaxPlayers,
		&t.Maps,
		&t.TeamSize,
		&t.HasStarted,
		&t.HasFinished,
		&t.ChannelID,
		&t.CreatedAt,
		&t.RegisteredCount,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

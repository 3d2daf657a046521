package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"karwan-auliya/internal/domains/profile/model"
	"karwan-auliya/internal/infrastructure/database"
)

const profileColumns = `id, display_name, avatar_url, bio, created_at, updated_at`

type Repository interface {
	// Get returns nil, nil for a user without a profile row.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	Upsert(ctx context.Context, userID uuid.UUID, req model.UpdateRequest) (*model.Profile, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	if err := row.Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Upsert(ctx context.Context, userID uuid.UUID, req model.UpdateRequest) (*model.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, display_name, avatar_url, bio)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
			avatar_url   = COALESCE(EXCLUDED.avatar_url, profiles.avatar_url),
			bio          = COALESCE(EXCLUDED.bio, profiles.bio),
			updated_at   = now()
		RETURNING `+profileColumns,
		userID, req.DisplayName, req.AvatarURL, req.Bio))
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

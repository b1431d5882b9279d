package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/fitstack/gymgate/pkg/domain"
)

// ProfilesRepository reads a user's gym association and role rows. The
// gate only ever reads through this repository; writes belong to the
// member-management layer.
type ProfilesRepository struct {
	db Querier
}

// NewProfilesRepository creates a new profiles repository over a DB or
// transaction.
func NewProfilesRepository(db Querier) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// GetTenantProfile fetches the gym link and all role-assignment rows for
// a user in a single joined query. A user with no gym link yields a
// profile with a nil GymID and no assignments.
func (r *ProfilesRepository) GetTenantProfile(ctx context.Context, userID uuid.UUID) (*domain.TenantProfile, error) {
	query := `
		SELECT gm.gym_id, ra.role_name, ra.is_active
		FROM gym_members gm
		LEFT JOIN role_assignments ra
			ON ra.gym_id = gm.gym_id AND ra.user_id = gm.user_id AND ra.deleted_at IS NULL
		WHERE gm.user_id = $1 AND gm.deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profile := &domain.TenantProfile{}
	for rows.Next() {
		var (
			gymID    uuid.UUID
			roleName sql.NullString
			isActive sql.NullBool
		)
		if err := rows.Scan(&gymID, &roleName, &isActive); err != nil {
			return nil, err
		}
		if profile.GymID == nil {
			id := gymID
			profile.GymID = &id
		}
		if roleName.Valid {
			profile.Assignments = append(profile.Assignments, domain.RoleAssignment{
				Role:   domain.RoleName(roleName.String),
				Active: isActive.Valid && isActive.Bool,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profile, nil
}

// GetGymByID retrieves a gym row.
func (r *ProfilesRepository) GetGymByID(ctx context.Context, id uuid.UUID) (*domain.Gym, error) {
	query := `
		SELECT id, name, slug, created_at, updated_at, deleted_at
		FROM gyms
		WHERE id = $1 AND deleted_at IS NULL
	`

	var gym domain.Gym
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&gym.ID, &gym.Name, &gym.Slug, &gym.CreatedAt, &gym.UpdatedAt, &gym.DeletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

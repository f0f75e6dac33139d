package repository

import (
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

const selectUser = `
	SELECT id, username, password_hash, full_name, email, role, is_active, target_hours, worked_hours, created_at, version
	FROM users
`

func scanUser(s scanner) (*domain.User, error) {
	u := &domain.User{}
	err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email, &u.Role, &u.IsActive, &u.TargetHours, &u.WorkedHours, &u.CreatedAt, &u.Version)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, selectUser+"WHERE id = $1", id))
}

func (r *Repository) GetUserByUsername(username string) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	return scanUser(r.dbpool.QueryRowContext(ctx, selectUser+"WHERE username = $1", username))
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, selectUser+"ORDER BY id")
	if err != nil {
		return nil, err
	}

	return collect(rows, scanUser)
}

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		INSERT INTO users (username, password_hash, full_name, email, role, target_hours, worked_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, version
	`

	return r.dbpool.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.FullName, user.Email, user.Role, user.TargetHours, user.WorkedHours,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version)
}

// UpdateUser 用户名不可修改；版本号不一致时返回 sql.ErrNoRows
func (r *Repository) UpdateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE users
		SET password_hash = $1, full_name = $2, email = $3, role = $4, is_active = $5,
			target_hours = $6, worked_hours = $7, version = version + 1
		WHERE id = $8 AND version = $9
		RETURNING version
	`

	return r.dbpool.QueryRowContext(ctx, query,
		user.PasswordHash, user.FullName, user.Email, user.Role, user.IsActive,
		user.TargetHours, user.WorkedHours, user.ID, user.Version,
	).Scan(&user.Version)
}

func (r *Repository) DeleteUser(id int64) error {
	return r.deleteByID("users", id)
}

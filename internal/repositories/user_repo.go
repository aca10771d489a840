package repositories

import (
	"context"
	"errors"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	List(ctx context.Context) ([]*models.User, error)
}

type userRepo struct {
	db database.Querier
}

func NewUserRepo(db database.Querier) UserRepository {
	return &userRepo{db: db}
}

func scanUser(row scanner, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	res, err := r.db.Run(ctx, `INSERT INTO users (username, password, role) VALUES (?, ?, ?)`, u.Username, u.PasswordHash, u.Role)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.DuplicateName("user", u.Username)
		}
		return err
	}
	u.ID = res.InsertedID
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	u := &models.User{}
	if err := scanUser(r.db.Get(ctx, `SELECT id, username, password, role, created_at FROM users WHERE id = ?`, id), u); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("user")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	if err := scanUser(r.db.Get(ctx, `SELECT id, username, password, role, created_at FROM users WHERE username = ?`, username), u); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("user")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := r.db.Run(ctx, `UPDATE users SET password = ? WHERE id = ?`, passwordHash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("user")
	}
	return nil
}

func (r *userRepo) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.All(ctx, `SELECT id, username, password, role, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := scanUser(rows, u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package repositories

import (
	"context"
	"errors"
	"strings"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	Update(ctx context.Context, id int64, update models.CategoryUpdate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Category, error)
	CountItems(ctx context.Context, id int64) (int, error)
}

type categoryRepo struct {
	db database.Querier
}

func NewCategoryRepo(db database.Querier) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row scanner, category *models.Category) error {
	return row.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt)
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `INSERT INTO categories (name, description) VALUES (?, ?)`
	res, err := r.db.Run(ctx, query, category.Name, category.Description)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return common.DuplicateName("category", category.Name)
		}
		return err
	}
	category.ID = res.InsertedID
	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category := &models.Category{}
	query := `SELECT id, name, description, created_at FROM categories WHERE id = ?`
	if err := scanCategory(r.db.Get(ctx, query, id), category); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("category")
		}
		return nil, err
	}
	return category, nil
}

// FindByName matches trimmed names case-insensitively.
func (r *categoryRepo) FindByName(ctx context.Context, name string) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE LOWER(TRIM(name)) = LOWER(?)
	`
	if err := scanCategory(r.db.Get(ctx, query, strings.TrimSpace(name)), category); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("category")
		}
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, id int64, update models.CategoryUpdate) error {
	set := newSetClause()
	addField(set, "name", update.Name)
	addField(set, "description", update.Description)
	if set.empty() {
		return common.ValidationError("body", "no fields to update")
	}

	query := `UPDATE categories SET ` + set.sql() + ` WHERE id = ?`
	res, err := r.db.Run(ctx, query, append(set.args, id)...)
	if err != nil {
		if database.IsUniqueViolation(err) && update.Name != nil {
			return common.DuplicateName("category", *update.Name)
		}
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("category")
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Run(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("category")
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.created_at, COUNT(i.id)
		FROM categories c
		LEFT JOIN inventory i ON i.category_id = c.id
		GROUP BY c.id, c.name, c.description, c.created_at
		ORDER BY c.name
	`
	rows, err := r.db.All(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt, &category.ItemCount); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) CountItems(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.Get(ctx, `SELECT COUNT(*) FROM inventory WHERE category_id = ?`, id).Scan(&count)
	return count, err
}

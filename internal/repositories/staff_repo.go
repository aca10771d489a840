package repositories

import (
	"context"
	"errors"

	"hardwarestore/internal/common"
	"hardwarestore/internal/models"
	"hardwarestore/pkg/database"
)

type StaffRepository interface {
	Create(ctx context.Context, staff *models.Staff) error
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	Update(ctx context.Context, id int64, update models.StaffUpdate) error
	UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Staff, error)
	ListByStatus(ctx context.Context, status models.StaffStatus) ([]*models.Staff, error)
	ListByDepartment(ctx context.Context, department string) ([]*models.Staff, error)
	Performance(ctx context.Context, staffID *int64) ([]models.StaffPerformance, error)
}

type staffRepo struct {
	db database.Querier
}

func NewStaffRepo(db database.Querier) StaffRepository {
	return &staffRepo{db: db}
}

const staffColumns = `id, name, email, phone, position, department, hire_date, salary, status, created_at FROM staff`

func scanStaff(row scanner, s *models.Staff) error {
	return row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Position, &s.Department, &s.HireDate,
		&s.Salary, &s.Status, &s.CreatedAt)
}

func (r *staffRepo) listStaff(ctx context.Context, query string, args ...any) ([]*models.Staff, error) {
	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []*models.Staff
	for rows.Next() {
		s := &models.Staff{}
		if err := scanStaff(rows, s); err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (r *staffRepo) Create(ctx context.Context, s *models.Staff) error {
	if s.Status == "" {
		s.Status = models.StaffActive
	}
	query := `
		INSERT INTO staff (name, email, phone, position, department, hire_date, salary, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.Run(ctx, query, s.Name, s.Email, s.Phone, s.Position, s.Department, dateArg(s.HireDate),
		s.Salary, s.Status)
	if err != nil {
		return err
	}
	s.ID = res.InsertedID
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	s := &models.Staff{}
	if err := scanStaff(r.db.Get(ctx, `SELECT `+staffColumns+` WHERE id = ?`, id), s); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return nil, common.NotFound("staff member")
		}
		return nil, err
	}
	return s, nil
}

func (r *staffRepo) Update(ctx context.Context, id int64, update models.StaffUpdate) error {
	set := newSetClause()
	addField(set, "name", update.Name)
	addField(set, "email", update.Email)
	addField(set, "phone", update.Phone)
	addField(set, "position", update.Position)
	addField(set, "department", update.Department)
	if update.HireDate != nil {
		set.raw("hire_date = ?", dateArg(update.HireDate))
	}
	addField(set, "salary", update.Salary)
	addField(set, "status", update.Status)
	if set.empty() {
		return common.ValidationError("body", "no fields to update")
	}

	res, err := r.db.Run(ctx, `UPDATE staff SET `+set.sql()+` WHERE id = ?`, append(set.args, id)...)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("staff member")
	}
	return nil
}

func (r *staffRepo) UpdateStatus(ctx context.Context, id int64, status models.StaffStatus) error {
	return r.Update(ctx, id, models.StaffUpdate{Status: &status})
}

func (r *staffRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Run(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return common.NotFound("staff member")
	}
	return nil
}

func (r *staffRepo) List(ctx context.Context) ([]*models.Staff, error) {
	return r.listStaff(ctx, `SELECT `+staffColumns+` ORDER BY name`)
}

func (r *staffRepo) ListByStatus(ctx context.Context, status models.StaffStatus) ([]*models.Staff, error) {
	return r.listStaff(ctx, `SELECT `+staffColumns+` WHERE status = ? ORDER BY name`, status)
}

func (r *staffRepo) ListByDepartment(ctx context.Context, department string) ([]*models.Staff, error) {
	return r.listStaff(ctx, `SELECT `+staffColumns+` WHERE LOWER(department) = LOWER(?) ORDER BY name`, department)
}

// Performance aggregates recorded sales per staff member; staffID narrows it to one.
func (r *staffRepo) Performance(ctx context.Context, staffID *int64) ([]models.StaffPerformance, error) {
	query := `
		SELECT st.id, st.name, st.position, COUNT(s.id), COALESCE(SUM(s.total_price), 0), COALESCE(AVG(s.total_price), 0)
		FROM staff st
		LEFT JOIN sales s ON s.staff_id = st.id
	`
	var args []any
	if staffID != nil {
		query += ` WHERE st.id = ?`
		args = append(args, *staffID)
	}
	query += `
		GROUP BY st.id, st.name, st.position
		ORDER BY COALESCE(SUM(s.total_price), 0) DESC, st.name
	`

	rows, err := r.db.All(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StaffPerformance
	for rows.Next() {
		var p models.StaffPerformance
		if err := rows.Scan(&p.StaffID, &p.Name, &p.Position, &p.TotalSales, &p.TotalRevenue, &p.AverageSale); err != nil {
			return nil, err
		}
		p.AverageSale = p.AverageSale.Round(2)
		out = append(out, p)
	}
	return out, rows.Err()
}

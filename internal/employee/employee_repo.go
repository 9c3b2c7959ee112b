package employee

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// NewID reserves an identifier in the store's own format.
	NewID() string
	Create(ctx context.Context, empl *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context, q ListQuery) (ListResult, error)
	Update(ctx context.Context, empl *Employee) error
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.Session(&gorm.Session{Context: ctx})
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) NewID() string {
	return uuid.NewString()
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.conn(ctx).Create(empl).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}

	var empl Employee
	err := r.conn(ctx).First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) List(ctx context.Context, q ListQuery) (ListResult, error) {
	q = q.Normalize()

	var total int64
	if err := r.conn(ctx).
		Model(&Employee{}).
		Scopes(SearchScope(q.Search)).
		Count(&total).Error; err != nil {
		return ListResult{}, err
	}

	employees := make([]Employee, 0, q.Limit)
	if total > int64(q.Offset()) {
		if err := r.conn(ctx).
			Scopes(SearchScope(q.Search), NewestFirst, Paginate(q)).
			Find(&employees).Error; err != nil {
			return ListResult{}, err
		}
	}

	return ListResult{Employees: employees, Total: total}, nil
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	res := r.conn(ctx).
		Model(empl).
		Select("name", "email", "phone", "department", "salary", "profile_image", "updated_at").
		Updates(empl)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res := r.conn(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type departmentRow struct {
	Department  string
	Count       int64
	TotalSalary decimal.Decimal
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var rows []departmentRow
	err := r.conn(ctx).
		Model(&Employee{}).
		Select("department, COUNT(*) AS count, COALESCE(SUM(salary), 0) AS total_salary").
		Group("department").
		Order("department").
		Scan(&rows).Error
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Departments: make(map[string]int64, len(rows)), TotalSalary: decimal.Zero}
	for _, row := range rows {
		stats.TotalEmployees += row.Count
		stats.Departments[row.Department] += row.Count
		stats.TotalSalary = stats.TotalSalary.Add(row.TotalSalary)
	}
	return stats, nil
}

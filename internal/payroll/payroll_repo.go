package payroll

import (
	"context"

	"go-workforce/internal/shared/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	EmployeeID *uuid.UUID
	Month      int
	Year       int
}

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Upsert inserts p or replaces the row already stored for the same
	// (employee, month, year). p is refreshed from the stored row.
	Upsert(ctx context.Context, p *Payroll) error
	FindAll(ctx context.Context, filter ListFilter) ([]Payroll, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Payroll, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payroll, error)
	Update(ctx context.Context, p *Payroll) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

const upsertSQL = `
INSERT INTO payrolls (
	id, employee_id, month, year,
	basic_salary, house_rent_allowance, medical_allowance, conveyance_allowance, special_allowance, gross_salary,
	provident_fund, professional_tax, income_tax, net_salary,
	remarks, created_by, updated_by, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (employee_id, month, year) DO UPDATE SET
	basic_salary = EXCLUDED.basic_salary,
	house_rent_allowance = EXCLUDED.house_rent_allowance,
	medical_allowance = EXCLUDED.medical_allowance,
	conveyance_allowance = EXCLUDED.conveyance_allowance,
	special_allowance = EXCLUDED.special_allowance,
	gross_salary = EXCLUDED.gross_salary,
	provident_fund = EXCLUDED.provident_fund,
	professional_tax = EXCLUDED.professional_tax,
	income_tax = EXCLUDED.income_tax,
	net_salary = EXCLUDED.net_salary,
	remarks = EXCLUDED.remarks,
	updated_by = EXCLUDED.updated_by,
	updated_at = EXCLUDED.updated_at
RETURNING *`

func (r *repository) Upsert(ctx context.Context, p *Payroll) error {
	return r.db.WithContext(ctx).Raw(upsertSQL,
		p.ID, p.EmployeeID, p.Month, p.Year,
		p.BasicSalary, p.HouseRentAllowance, p.MedicalAllowance, p.ConveyanceAllowance, p.SpecialAllowance, p.GrossSalary,
		p.ProvidentFund, p.ProfessionalTax, p.IncomeTax, p.NetSalary,
		p.Remarks, p.CreatedBy, p.UpdatedBy, p.CreatedAt, p.UpdatedAt,
	).Scan(p).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Payroll, error) {
	var payrolls []Payroll
	err := r.db.WithContext(ctx).
		Scopes(
			scope.Employee(filter.EmployeeID),
			scope.Equal("month", filter.Month),
			scope.Equal("year", filter.Year),
		).
		Order("year DESC").
		Order("month DESC").
		Find(&payrolls).Error
	return payrolls, err
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Payroll, error) {
	var p Payroll
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payroll, error) {
	var p Payroll
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Payroll) error {
	return r.db.WithContext(ctx).Save(p).Error
}

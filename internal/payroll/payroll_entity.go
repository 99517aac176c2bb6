package payroll

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payroll is one employee's compensation for a calendar month. Gross and net
// are derived and must be recomputed on every write.
type Payroll struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_payroll_employee_period,priority:1"`
	Month      int       `gorm:"column:month;type:smallint;not null;uniqueIndex:uq_payroll_employee_period,priority:2;check:chk_payroll_month,month BETWEEN 1 AND 12"`
	Year       int       `gorm:"column:year;type:int;not null;uniqueIndex:uq_payroll_employee_period,priority:3"`

	// Earnings
	BasicSalary         decimal.Decimal `gorm:"column:basic_salary;type:numeric(14,2);not null;default:0"`
	HouseRentAllowance  decimal.Decimal `gorm:"column:house_rent_allowance;type:numeric(14,2);not null;default:0"`
	MedicalAllowance    decimal.Decimal `gorm:"column:medical_allowance;type:numeric(14,2);not null;default:0"`
	ConveyanceAllowance decimal.Decimal `gorm:"column:conveyance_allowance;type:numeric(14,2);not null;default:0"`
	SpecialAllowance    decimal.Decimal `gorm:"column:special_allowance;type:numeric(14,2);not null;default:0"`
	GrossSalary         decimal.Decimal `gorm:"column:gross_salary;type:numeric(14,2);not null;default:0"`

	// Deductions
	ProvidentFund   decimal.Decimal `gorm:"column:provident_fund;type:numeric(14,2);not null;default:0"`
	ProfessionalTax decimal.Decimal `gorm:"column:professional_tax;type:numeric(14,2);not null;default:0"`
	IncomeTax       decimal.Decimal `gorm:"column:income_tax;type:numeric(14,2);not null;default:0"`
	NetSalary       decimal.Decimal `gorm:"column:net_salary;type:numeric(14,2);not null;default:0"`

	Remarks   string     `gorm:"column:remarks;type:text;not null;default:''"`
	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (Payroll) TableName() string {
	return "payrolls"
}

// Recalculate derives gross and net from the stored components.
func (p *Payroll) Recalculate() {
	p.GrossSalary = p.BasicSalary.
		Add(p.HouseRentAllowance).
		Add(p.MedicalAllowance).
		Add(p.ConveyanceAllowance).
		Add(p.SpecialAllowance)
	p.NetSalary = p.GrossSalary.Sub(p.TotalDeductions())
}

func (p *Payroll) TotalDeductions() decimal.Decimal {
	return p.ProvidentFund.Add(p.ProfessionalTax).Add(p.IncomeTax)
}

// ParseMonth accepts a full or three-letter English month name in any case,
// or a number from 1 to 12.
func ParseMonth(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, n >= 1 && n <= 12
	}
	for m := time.January; m <= time.December; m++ {
		name := m.String()
		if strings.EqualFold(v, name) || strings.EqualFold(v, name[:3]) {
			return int(m), true
		}
	}
	return 0, false
}

func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return time.Month(m).String()
}

package payroll

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MonthValue holds a month as sent by the client, either a JSON string
// ("March") or a JSON number (3).
type MonthValue string

func (m *MonthValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = MonthValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*m = MonthValue(n.String())
	return nil
}

type Earnings struct {
	BasicSalary         *decimal.Decimal `json:"basic_salary"`
	HouseRentAllowance  *decimal.Decimal `json:"house_rent_allowance"`
	MedicalAllowance    *decimal.Decimal `json:"medical_allowance"`
	ConveyanceAllowance *decimal.Decimal `json:"conveyance_allowance"`
	SpecialAllowance    *decimal.Decimal `json:"special_allowance"`
}

type Deductions struct {
	ProvidentFund   *decimal.Decimal `json:"provident_fund"`
	ProfessionalTax *decimal.Decimal `json:"professional_tax"`
	IncomeTax       *decimal.Decimal `json:"income_tax"`
}

// UpsertPayrollRequest replaces every component of the (employee, month,
// year) record. Missing amounts are stored as zero.
type UpsertPayrollRequest struct {
	EmployeeID string     `json:"employee_id"`
	Month      MonthValue `json:"month"`
	Year       int        `json:"year"`
	Earnings
	Deductions
	Remarks string `json:"remarks"`
}

// UpdatePayrollRequest changes only the fields that are present.
type UpdatePayrollRequest struct {
	Earnings
	Deductions
	Remarks *string `json:"remarks"`
}

type ListPayrollQuery struct {
	EmployeeID string `form:"employee_id"`
	Month      string `form:"month"`
	Year       string `form:"year"`
}

type PayrollResponse struct {
	ID                  string  `json:"id"`
	EmployeeID          string  `json:"employee_id"`
	Month               string  `json:"month"`
	Year                int     `json:"year"`
	BasicSalary         string  `json:"basic_salary"`
	HouseRentAllowance  string  `json:"house_rent_allowance"`
	MedicalAllowance    string  `json:"medical_allowance"`
	ConveyanceAllowance string  `json:"conveyance_allowance"`
	SpecialAllowance    string  `json:"special_allowance"`
	GrossSalary         string  `json:"gross_salary"`
	ProvidentFund       string  `json:"provident_fund"`
	ProfessionalTax     string  `json:"professional_tax"`
	IncomeTax           string  `json:"income_tax"`
	NetSalary           string  `json:"net_salary"`
	Remarks             string  `json:"remarks"`
	CreatedBy           *string `json:"created_by,omitempty"`
	UpdatedBy           *string `json:"updated_by,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

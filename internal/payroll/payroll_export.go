package payroll

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Payroll"

var exportHeader = []any{
	"Employee ID", "Month", "Year",
	"Basic Salary", "House Rent Allowance", "Medical Allowance", "Conveyance Allowance", "Special Allowance",
	"Gross Salary",
	"Provident Fund", "Professional Tax", "Income Tax",
	"Net Salary", "Remarks",
}

func renderWorkbook(payrolls []Payroll) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", "N1", headerStyle); err != nil {
		return nil, err
	}

	for i, p := range payrolls {
		row := []any{
			p.EmployeeID.String(), MonthName(p.Month), p.Year,
			p.BasicSalary.InexactFloat64(),
			p.HouseRentAllowance.InexactFloat64(),
			p.MedicalAllowance.InexactFloat64(),
			p.ConveyanceAllowance.InexactFloat64(),
			p.SpecialAllowance.InexactFloat64(),
			p.GrossSalary.InexactFloat64(),
			p.ProvidentFund.InexactFloat64(),
			p.ProfessionalTax.InexactFloat64(),
			p.IncomeTax.InexactFloat64(),
			p.NetSalary.InexactFloat64(),
			p.Remarks,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if len(payrolls) > 0 {
		last := len(payrolls) + 1
		if err := f.SetCellStyle(exportSheet, "D2", fmt.Sprintf("M%d", last), moneyStyle); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

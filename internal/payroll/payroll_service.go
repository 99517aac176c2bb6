package payroll

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go-workforce/internal/access"
	"go-workforce/internal/audit"
	payrollerrors "go-workforce/internal/payroll/errors"
	"go-workforce/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Upsert(ctx context.Context, caller access.Caller, req UpsertPayrollRequest) (PayrollResponse, error)
	Update(ctx context.Context, caller access.Caller, id string, req UpdatePayrollRequest) (PayrollResponse, error)
	List(ctx context.Context, caller access.Caller, q ListPayrollQuery) ([]PayrollResponse, error)
	GetByID(ctx context.Context, caller access.Caller, id string) (PayrollResponse, error)
	// Export renders the same rows List would return as an XLSX workbook.
	Export(ctx context.Context, caller access.Caller, q ListPayrollQuery) ([]byte, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	audit  audit.Logger
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, repo Repository, auditLogger audit.Logger, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &service{
		db:     db,
		repo:   repo,
		audit:  auditLogger,
		logger: l,
		now:    time.Now,
	}
}

func (s *service) Upsert(ctx context.Context, caller access.Caller, req UpsertPayrollRequest) (PayrollResponse, error) {
	s.logger.Debug("upsert payroll requested",
		zap.String("actor_id", caller.EmployeeID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("month", string(req.Month)),
		zap.Int("year", req.Year),
	)
	if !caller.Privileged() {
		return PayrollResponse{}, payrollerrors.ErrForbidden
	}

	employeeID, month, err := validateUpsertRequest(req)
	if err != nil {
		s.logger.Warn("upsert payroll validation failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	now := s.now().UTC()
	actor := actorID(caller)
	p := &Payroll{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Month:      month,
		Year:       req.Year,
		Remarks:    strings.TrimSpace(req.Remarks),
		CreatedBy:  actor,
		UpdatedBy:  actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.BasicSalary = amount(req.BasicSalary)
	p.HouseRentAllowance = amount(req.HouseRentAllowance)
	p.MedicalAllowance = amount(req.MedicalAllowance)
	p.ConveyanceAllowance = amount(req.ConveyanceAllowance)
	p.SpecialAllowance = amount(req.SpecialAllowance)
	p.ProvidentFund = amount(req.ProvidentFund)
	p.ProfessionalTax = amount(req.ProfessionalTax)
	p.IncomeTax = amount(req.IncomeTax)
	p.Recalculate()

	if err := s.repo.Upsert(ctx, p); err != nil {
		s.logger.Error("upsert payroll persist failed", zap.Error(err))
		return PayrollResponse{}, mapRepositoryError(err)
	}

	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionPayrollUpserted,
		Message:    "payroll record written",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "payroll",
		EntityID:   p.ID.String(),
		Meta: map[string]any{
			"employee_id":  p.EmployeeID.String(),
			"month":        p.Month,
			"year":         p.Year,
			"gross_salary": p.GrossSalary.StringFixed(2),
			"net_salary":   p.NetSalary.StringFixed(2),
		},
	})
	s.logger.Info("upsert payroll success",
		zap.String("payroll_id", p.ID.String()),
		zap.String("employee_id", p.EmployeeID.String()),
		zap.Int("month", p.Month),
		zap.Int("year", p.Year),
	)
	return mapToResponse(*p), nil
}

func validateUpsertRequest(req UpsertPayrollRequest) (uuid.UUID, int, error) {
	switch {
	case strings.TrimSpace(req.EmployeeID) == "":
		return uuid.Nil, 0, apperror.RequiredField("employee_id")
	case strings.TrimSpace(string(req.Month)) == "":
		return uuid.Nil, 0, apperror.RequiredField("month")
	case req.Year == 0:
		return uuid.Nil, 0, apperror.RequiredField("year")
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil || employeeID == uuid.Nil {
		return uuid.Nil, 0, payrollerrors.ErrInvalidEmployeeID
	}
	month, ok := ParseMonth(string(req.Month))
	if !ok {
		return uuid.Nil, 0, payrollerrors.ErrInvalidMonth
	}
	if !validYear(req.Year) {
		return uuid.Nil, 0, payrollerrors.ErrInvalidYear
	}
	if err := validateAmounts(req.Earnings, req.Deductions); err != nil {
		return uuid.Nil, 0, err
	}
	return employeeID, month, nil
}

func (s *service) Update(ctx context.Context, caller access.Caller, id string, req UpdatePayrollRequest) (PayrollResponse, error) {
	s.logger.Debug("update payroll requested",
		zap.String("payroll_id", id),
		zap.String("actor_id", caller.EmployeeID.String()),
	)
	if !caller.Privileged() {
		return PayrollResponse{}, payrollerrors.ErrForbidden
	}
	payrollID, err := uuid.Parse(id)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}
	if err := validateAmounts(req.Earnings, req.Deductions); err != nil {
		return PayrollResponse{}, err
	}

	var updated Payroll
	var changed []string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		p, err := qtx.FindByIDForUpdate(ctx, payrollID)
		if err != nil {
			return mapRepositoryError(err)
		}

		changed = applyPatch(p, req)
		p.Recalculate()
		p.UpdatedBy = actorID(caller)
		p.UpdatedAt = s.now().UTC()

		if err := qtx.Update(ctx, p); err != nil {
			return mapRepositoryError(err)
		}
		updated = *p
		return nil
	})
	if err != nil {
		if !errors.Is(err, payrollerrors.ErrPayrollNotFound) {
			s.logger.Error("update payroll failed", zap.String("payroll_id", id), zap.Error(err))
		}
		return PayrollResponse{}, err
	}

	s.audit.Log(ctx, audit.Entry{
		Action:     audit.ActionPayrollUpdated,
		Message:    "payroll record updated",
		ActorID:    caller.EmployeeID.String(),
		EntityType: "payroll",
		EntityID:   updated.ID.String(),
		Meta: map[string]any{
			"fields":       changed,
			"gross_salary": updated.GrossSalary.StringFixed(2),
			"net_salary":   updated.NetSalary.StringFixed(2),
		},
	})
	s.logger.Info("update payroll success",
		zap.String("payroll_id", updated.ID.String()),
		zap.Strings("fields", changed),
	)
	return mapToResponse(updated), nil
}

// applyPatch copies the present fields of req onto p and returns their names.
func applyPatch(p *Payroll, req UpdatePayrollRequest) []string {
	var changed []string
	set := func(name string, dst *decimal.Decimal, v *decimal.Decimal) {
		if v == nil {
			return
		}
		*dst = v.Round(2)
		changed = append(changed, name)
	}
	set("basic_salary", &p.BasicSalary, req.BasicSalary)
	set("house_rent_allowance", &p.HouseRentAllowance, req.HouseRentAllowance)
	set("medical_allowance", &p.MedicalAllowance, req.MedicalAllowance)
	set("conveyance_allowance", &p.ConveyanceAllowance, req.ConveyanceAllowance)
	set("special_allowance", &p.SpecialAllowance, req.SpecialAllowance)
	set("provident_fund", &p.ProvidentFund, req.ProvidentFund)
	set("professional_tax", &p.ProfessionalTax, req.ProfessionalTax)
	set("income_tax", &p.IncomeTax, req.IncomeTax)
	if req.Remarks != nil {
		p.Remarks = strings.TrimSpace(*req.Remarks)
		changed = append(changed, "remarks")
	}
	return changed
}

func (s *service) List(ctx context.Context, caller access.Caller, q ListPayrollQuery) ([]PayrollResponse, error) {
	payrolls, err := s.find(ctx, caller, q)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(payrolls), nil
}

func (s *service) GetByID(ctx context.Context, caller access.Caller, id string) (PayrollResponse, error) {
	payrollID, err := uuid.Parse(id)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidPayrollID
	}
	p, err := s.repo.FindByID(ctx, payrollID)
	if err != nil {
		return PayrollResponse{}, mapRepositoryError(err)
	}
	if !caller.CanView(p.EmployeeID) {
		return PayrollResponse{}, payrollerrors.ErrForbidden
	}
	return mapToResponse(*p), nil
}

func (s *service) Export(ctx context.Context, caller access.Caller, q ListPayrollQuery) ([]byte, error) {
	payrolls, err := s.find(ctx, caller, q)
	if err != nil {
		return nil, err
	}
	body, err := renderWorkbook(payrolls)
	if err != nil {
		s.logger.Error("export payroll render failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("export payroll success", zap.Int("rows", len(payrolls)))
	return body, nil
}

func (s *service) find(ctx context.Context, caller access.Caller, q ListPayrollQuery) ([]Payroll, error) {
	filter, err := parseListQuery(q)
	if err != nil {
		return nil, err
	}
	filter.EmployeeID = caller.ScopeEmployee(filter.EmployeeID)

	payrolls, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("list payrolls failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return payrolls, nil
}

func parseListQuery(q ListPayrollQuery) (ListFilter, error) {
	var f ListFilter
	if v := strings.TrimSpace(q.EmployeeID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, payrollerrors.ErrInvalidEmployeeID
		}
		f.EmployeeID = &id
	}
	if v := strings.TrimSpace(q.Month); v != "" {
		m, ok := ParseMonth(v)
		if !ok {
			return f, payrollerrors.ErrInvalidMonth
		}
		f.Month = m
	}
	if v := strings.TrimSpace(q.Year); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || !validYear(y) {
			return f, payrollerrors.ErrInvalidYear
		}
		f.Year = y
	}
	return f, nil
}

func validateAmounts(e Earnings, d Deductions) error {
	for _, v := range []*decimal.Decimal{
		e.BasicSalary, e.HouseRentAllowance, e.MedicalAllowance, e.ConveyanceAllowance, e.SpecialAllowance,
		d.ProvidentFund, d.ProfessionalTax, d.IncomeTax,
	} {
		if v != nil && v.IsNegative() {
			return payrollerrors.ErrInvalidAmount
		}
	}
	return nil
}

func validYear(y int) bool {
	return y >= 1900 && y <= 9999
}

func amount(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return v.Round(2)
}

func actorID(caller access.Caller) *uuid.UUID {
	if caller.EmployeeID == uuid.Nil {
		return nil
	}
	id := caller.EmployeeID
	return &id
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	v := id.String()
	return &v
}

func mapToResponse(p Payroll) PayrollResponse {
	return PayrollResponse{
		ID:                  p.ID.String(),
		EmployeeID:          p.EmployeeID.String(),
		Month:               MonthName(p.Month),
		Year:                p.Year,
		BasicSalary:         p.BasicSalary.StringFixed(2),
		HouseRentAllowance:  p.HouseRentAllowance.StringFixed(2),
		MedicalAllowance:    p.MedicalAllowance.StringFixed(2),
		ConveyanceAllowance: p.ConveyanceAllowance.StringFixed(2),
		SpecialAllowance:    p.SpecialAllowance.StringFixed(2),
		GrossSalary:         p.GrossSalary.StringFixed(2),
		ProvidentFund:       p.ProvidentFund.StringFixed(2),
		ProfessionalTax:     p.ProfessionalTax.StringFixed(2),
		IncomeTax:           p.IncomeTax.StringFixed(2),
		NetSalary:           p.NetSalary.StringFixed(2),
		Remarks:             p.Remarks,
		CreatedBy:           uuidString(p.CreatedBy),
		UpdatedBy:           uuidString(p.UpdatedBy),
		CreatedAt:           p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(payrolls []Payroll) []PayrollResponse {
	resp := make([]PayrollResponse, len(payrolls))
	for i, p := range payrolls {
		resp[i] = mapToResponse(p)
	}
	return resp
}

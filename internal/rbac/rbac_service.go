package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	LoadPolicy(perms []Permission) error
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}
	return &service{enforcer: enforcer, logger: l}
}

// LoadPolicy replaces every policy held by the enforcer.
func (s *service) LoadPolicy(perms []Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	for _, pair := range Inheritance {
		if _, err := s.enforcer.AddGroupingPolicy(string(pair[0]), string(pair[1])); err != nil {
			return err
		}
	}
	for _, p := range perms {
		if _, err := s.enforcer.AddPolicy(string(p.Role), p.Resource, p.Action); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy loaded", zap.Int("permissions", len(perms)))
	return nil
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("employee_id", req.EmployeeID),
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/neurobridge-auth/internal/data/repos/role"
	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/identity"
	"github.com/yungbote/neurobridge-auth/internal/platform/apierr"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type RoleService interface {
	List(ctx context.Context) ([]*types.Role, error)
	Create(ctx context.Context, name, description string) (*types.Role, error)
	// Delete reports whether a row was actually removed.
	Delete(ctx context.Context, name string) (bool, error)
	// GrantDemoRoles sets the custom Roles claim on the configured demo
	// account. Collaborator tooling only.
	GrantDemoRoles(ctx context.Context) error
}

type roleService struct {
	db         *gorm.DB
	log        *logger.Logger
	roleRepo   role.RoleRepo
	idClient   identity.Client
	demoUserID string
}

func NewRoleService(
	db *gorm.DB,
	log *logger.Logger,
	roleRepo role.RoleRepo,
	idClient identity.Client,
	demoUserID string,
) RoleService {
	serviceLog := log.With("service", "RoleService")
	return &roleService{
		db:         db,
		log:        serviceLog,
		roleRepo:   roleRepo,
		idClient:   idClient,
		demoUserID: demoUserID,
	}
}

func (rs *roleService) List(ctx context.Context) ([]*types.Role, error) {
	roles, err := rs.roleRepo.GetAll(ctx, nil)
	if err != nil {
		rs.log.Error("Failed to list roles", "error", err)
		return nil, apierr.BadRequest("Failed to list roles")
	}
	return roles, nil
}

func (rs *roleService) Create(ctx context.Context, name, description string) (*types.Role, error) {
	if name == "" {
		return nil, apierr.BadRequest("No role name provided")
	}

	// Lookup is case-sensitive on purpose; "Admin" and "admin" are
	// distinct rows today. See DESIGN.md before changing this.
	existing, err := rs.roleRepo.GetByName(ctx, nil, name)
	if err != nil {
		rs.log.Error("Failed to look up role", "name", name, "error", err)
		return nil, apierr.BadRequest("Failed to create role")
	}
	if existing != nil {
		return nil, apierr.BadRequest("Role already exists")
	}

	newRole := &types.Role{Name: name, Description: description, Level: 0}
	if err := rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, cErr := rs.roleRepo.Create(ctx, tx, []*types.Role{newRole})
		return cErr
	}); err != nil {
		rs.log.Error("Failed to create role", "name", name, "error", err)
		return nil, apierr.BadRequest("Failed to create role")
	}
	return newRole, nil
}

func (rs *roleService) Delete(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, apierr.BadRequest("No Role name provided")
	}
	deleted, err := rs.roleRepo.DeleteByName(ctx, nil, name)
	if err != nil {
		rs.log.Error("Failed to delete role", "name", name, "error", err)
		return false, apierr.BadRequest("Failed to delete role")
	}
	return deleted > 0, nil
}

func (rs *roleService) GrantDemoRoles(ctx context.Context) error {
	if rs.demoUserID == "" {
		return apierr.BadRequest("No demo user configured")
	}
	if err := rs.idClient.SetUserRoles(ctx, rs.demoUserID, []string{"User"}); err != nil {
		if errors.Is(err, identity.ErrTransport) {
			rs.log.Error("Identity provider unreachable during claims update", "error", err)
			return apierr.OracleUnreachable("Failed to reach identity provider, try again later")
		}
		rs.log.Warn("Failed to update demo user claims", "user_id", rs.demoUserID, "error", err)
		return apierr.BadRequest("User not found")
	}
	return nil
}

package role

import (
	"context"
	"errors"

	"gorm.io/gorm"

	types "github.com/yungbote/neurobridge-auth/internal/domain"
	"github.com/yungbote/neurobridge-auth/internal/platform/logger"
)

type RoleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, roles []*types.Role) ([]*types.Role, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Role, error)
	// GetByName matches exactly; role-name uniqueness is case-sensitive.
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error)
	// GetByNameFold matches case-insensitively. Not used by the create
	// path; it exists so the folded comparison stays available.
	GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error)
	// DeleteByName reports how many rows were removed; deleting a
	// missing role is not an error.
	DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	// GetMemberIDs reads the join table directly; no relationship loading.
	GetMemberIDs(ctx context.Context, tx *gorm.DB, roleID int) ([]string, error)
}

type roleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoleRepo(db *gorm.DB, baseLog *logger.Logger) RoleRepo {
	repoLog := baseLog.With("repo", "RoleRepo")
	return &roleRepo{db: db, log: repoLog}
}

func (rr *roleRepo) Create(ctx context.Context, tx *gorm.DB, roles []*types.Role) ([]*types.Role, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	if len(roles) == 0 {
		return []*types.Role{}, nil
	}

	for _, r := range roles {
		if r.Description == "" {
			r.Description = types.DefaultRoleDescription
		}
	}

	if err := transaction.WithContext(ctx).Create(&roles).Error; err != nil {
		return nil, err
	}

	return roles, nil
}

func (rr *roleRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Role, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var results []*types.Role
	if err := transaction.WithContext(ctx).
		Order("role_id").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *roleRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error) {
	return rr.getWhere(ctx, tx, "name = ?", name)
}

func (rr *roleRepo) GetByNameFold(ctx context.Context, tx *gorm.DB, name string) (*types.Role, error) {
	return rr.getWhere(ctx, tx, "LOWER(name) = LOWER(?)", name)
}

func (rr *roleRepo) getWhere(ctx context.Context, tx *gorm.DB, query string, arg string) (*types.Role, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var result types.Role
	err := transaction.WithContext(ctx).
		Where(query, arg).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (rr *roleRepo) DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	res := transaction.WithContext(ctx).
		Where("name = ?", name).
		Delete(&types.Role{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (rr *roleRepo) GetMemberIDs(ctx context.Context, tx *gorm.DB, roleID int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var userIDs []string
	if err := transaction.WithContext(ctx).
		Model(&types.UserRole{}).
		Where("role_id = ?", roleID).
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

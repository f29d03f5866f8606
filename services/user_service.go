package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/akinalp/mygames/models"
	"github.com/akinalp/mygames/pkg"
	"github.com/akinalp/mygames/repository"
	"github.com/akinalp/mygames/ws"
)

// UserInvalidator, kullanıcı değiştiğinde auth middleware'in cache'ini düşürür.
type UserInvalidator interface {
	InvalidateUser(userID string)
}

// UserService, admin kullanıcı yönetimi.
// Rol kontrolü middleware.RequireRole(admin) tarafından yapılır.
type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, actorID, userID string, req *models.UpdateRoleRequest) (*models.User, error)
	SetActive(ctx context.Context, actorID, userID string, req *models.UpdateStatusRequest) (*models.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	tokens      TokenService
	invalidator UserInvalidator
	logger      *zap.Logger
}

// NewUserService, constructor.
func NewUserService(
	userRepo repository.UserRepository,
	tokens TokenService,
	invalidator UserInvalidator,
	logger *zap.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		tokens:      tokens,
		invalidator: invalidator,
		logger:      logger.Named("users"),
	}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateRole, kullanıcının rolünü değiştirir. Admin kendi rolünü düşüremez,
// aksi halde sistemde hiç admin kalmayabilir.
func (s *userService) UpdateRole(ctx context.Context, actorID, userID string, req *models.UpdateRoleRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	if actorID == userID && req.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot change your own role", pkg.ErrBadRequest)
	}

	if err := s.userRepo.UpdateRole(ctx, userID, req.Role); err != nil {
		return nil, err
	}
	s.invalidator.InvalidateUser(userID)

	s.logger.Info("user role updated",
		zap.String("actor_id", actorID), zap.String("user_id", userID), zap.String("role", string(req.Role)))
	return s.userRepo.GetByID(ctx, userID)
}

// SetActive, hesabı aktif/pasif yapar. Pasif yapılan hesabın tüm refresh
// token'ları revoke edilir, açık access token'lar middleware'de reddedilir.
func (s *userService) SetActive(ctx context.Context, actorID, userID string, req *models.UpdateStatusRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}
	active := *req.IsActive
	if actorID == userID && !active {
		return nil, fmt.Errorf("%w: cannot deactivate your own account", pkg.ErrBadRequest)
	}

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	s.invalidator.InvalidateUser(userID)

	if !active {
		if err := s.tokens.RevokeAll(ctx, userID, ws.RevokeReasonDeactivated); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user status updated",
		zap.String("actor_id", actorID), zap.String("user_id", userID), zap.Bool("is_active", active))
	return s.userRepo.GetByID(ctx, userID)
}

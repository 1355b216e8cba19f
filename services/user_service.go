package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"usuarios-api/events"
	"usuarios-api/helper"
	"usuarios-api/logging"
	"usuarios-api/models"
	"usuarios-api/repositories"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	VerifyToken(ctx context.Context, token string) (bool, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	GetSelf(ctx context.Context, userID uint) (*models.UserProfile, error)
	UpdateUser(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.UserProfile, error)
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	userRepo  repositories.UserRepository
	hasher    PasswordHasher
	tokens    TokenService
	validator *helper.Validator
	publisher events.Publisher
	now       func() time.Time
}

func NewUserService(
	userRepo repositories.UserRepository,
	hasher PasswordHasher,
	tokens TokenService,
	validator *helper.Validator,
	publisher events.Publisher,
) UserService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &userService{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		validator: validator,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	l := logging.FromContext(ctx).With(zap.String("svc", "user.register"))

	if err := s.validator.Struct(req); err != nil {
		l.Info("register rejected", zap.Int("status", 400), zap.Error(err))
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email, 0)
	if err != nil {
		l.Error("register failed", zap.Int("status", 500), zap.String("reason", "existence check"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("check existing user: %w", err)}
	}
	if exists {
		l.Info("register rejected", zap.Int("status", 400), zap.String("reason", "user already exists"))
		return nil, models.ErrorConflict{}
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		l.Error("register failed", zap.Int("status", 500), zap.String("reason", "cannot hash the password"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("hash password: %w", err)}
	}

	role := req.Role
	if role == "" {
		role = models.RoleViewer
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashed,
		Role:     role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost the race against a concurrent registration.
		if errors.Is(err, repositories.ErrDuplicateUser) {
			l.Info("register rejected", zap.Int("status", 400), zap.String("reason", "unique index"))
			return nil, models.ErrorConflict{}
		}
		l.Error("register failed", zap.Int("status", 500), zap.String("reason", "insert"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("create user: %w", err)}
	}

	l.Info("user registered", zap.Uint("user_id", user.ID))
	s.publish(ctx, models.EventUserRegistered, user)

	profile := user.Profile()
	return &profile, nil
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	l := logging.FromContext(ctx).With(zap.String("svc", "user.login"))

	if err := s.validator.Struct(req); err != nil {
		l.Info("login rejected", zap.Int("status", 400), zap.Error(err))
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("login failed", zap.Int("status", 400), zap.String("reason", "invalid credentials"))
			return nil, models.ErrorInvalidCredentials{}
		}
		l.Error("login failed", zap.Int("status", 500), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("find user by email: %w", err)}
	}

	if !s.hasher.Verify(req.Password, user.Password) {
		l.Info("login failed", zap.Int("status", 400), zap.String("reason", "invalid credentials"))
		return nil, models.ErrorInvalidCredentials{}
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		l.Error("login failed", zap.Int("status", 500), zap.String("reason", "cannot sign token"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("issue token: %w", err)}
	}

	l.Info("login successful", zap.Uint("user_id", user.ID))
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyToken is true only for a valid, unexpired token whose user still
// exists. Bad tokens yield false; only store failures are errors.
func (s *userService) VerifyToken(ctx context.Context, token string) (bool, error) {
	l := logging.FromContext(ctx).With(zap.String("svc", "user.verify_token"))

	if token == "" {
		return false, nil
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			l.Debug("token rejected", zap.Error(err))
			return false, nil
		}
		l.Error("token verification failed", zap.Int("status", 500), zap.Error(err))
		return false, models.ErrorInternalServer{Err: fmt.Errorf("verify token: %w", err)}
	}

	if _, err := s.userRepo.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Debug("token rejected", zap.String("reason", "user no longer exists"), zap.Uint("user_id", claims.UserID))
			return false, nil
		}
		l.Error("token verification failed", zap.Int("status", 500), zap.Error(err))
		return false, models.ErrorInternalServer{Err: fmt.Errorf("find user by id: %w", err)}
	}
	return true, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list users failed", zap.String("svc", "user.list"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("list users: %w", err)}
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}
	return summaries, nil
}

func (s *userService) GetSelf(ctx context.Context, userID uint) (*models.UserProfile, error) {
	user, err := s.findUser(ctx, "user.get_self", userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, req models.UpdateUserRequest) (*models.UserProfile, error) {
	l := logging.FromContext(ctx).With(zap.String("svc", "user.update"), zap.Uint("user_id", id))

	if err := s.validator.Struct(req); err != nil {
		l.Info("update rejected", zap.Int("status", 400), zap.Error(err))
		return nil, err
	}

	if _, err := s.findUser(ctx, "user.update", id); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, req.Username, req.Email, id)
	if err != nil {
		l.Error("update failed", zap.Int("status", 500), zap.String("reason", "existence check"), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("check existing user: %w", err)}
	}
	if taken {
		l.Info("update rejected", zap.Int("status", 400), zap.String("reason", "username or email in use"))
		return nil, models.ErrorConflict{}
	}

	changes := repositories.UserChanges{Username: req.Username, Email: req.Email}
	if req.Password != nil {
		hashed, err := s.hasher.Hash(*req.Password)
		if err != nil {
			l.Error("update failed", zap.Int("status", 500), zap.String("reason", "cannot hash the password"), zap.Error(err))
			return nil, models.ErrorInternalServer{Err: fmt.Errorf("hash password: %w", err)}
		}
		changes.PasswordHash = &hashed
	}

	if err := s.userRepo.Update(ctx, id, changes); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, models.ErrorNotFound{}
		case errors.Is(err, repositories.ErrDuplicateUser):
			return nil, models.ErrorConflict{}
		}
		l.Error("update failed", zap.Int("status", 500), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("update user: %w", err)}
	}

	user, err := s.findUser(ctx, "user.update", id)
	if err != nil {
		return nil, err
	}

	l.Info("user updated", zap.Bool("password_changed", req.Password != nil))
	s.publish(ctx, models.EventUserUpdated, user)

	profile := user.Profile()
	return &profile, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With(zap.String("svc", "user.delete"), zap.Uint("user_id", id))

	user, err := s.findUser(ctx, "user.delete", id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrorNotFound{}
		}
		l.Error("delete failed", zap.Int("status", 500), zap.Error(err))
		return models.ErrorInternalServer{Err: fmt.Errorf("delete user: %w", err)}
	}

	l.Info("user deleted")
	s.publish(ctx, models.EventUserDeleted, user)
	return nil
}

func (s *userService) findUser(ctx context.Context, svc string, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrorNotFound{}
		}
		logging.FromContext(ctx).Error("find user failed", zap.String("svc", svc), zap.Uint("user_id", id), zap.Error(err))
		return nil, models.ErrorInternalServer{Err: fmt.Errorf("find user by id: %w", err)}
	}
	return user, nil
}

// publish is best-effort: the store change already happened.
func (s *userService) publish(ctx context.Context, eventType models.UserEventType, user *models.User) {
	event := models.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish user event failed",
			zap.String("event", string(eventType)), zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

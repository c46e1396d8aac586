package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ledger-service/internal/domain"
	"ledger-service/internal/repository"
	"ledger-service/pkg/auth/jwtutil"
	xerrors "ledger-service/pkg/errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	admins repository.AdminRepository
	signer *jwtutil.Signer
	logger *zap.Logger
}

func NewAuthUsecase(admins repository.AdminRepository, signer *jwtutil.Signer, logger *zap.Logger) *AuthUsecase {
	return &AuthUsecase{
		admins: admins,
		signer: signer,
		logger: logger,
	}
}

// Login checks the password against the stored bcrypt hash and issues a
// bearer token. Unknown logins and wrong passwords return the same error.
func (uc *AuthUsecase) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	if req.LoginID == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: login_id and password are required", xerrors.ErrInvalidInput)
	}

	admin, err := uc.admins.GetByLoginID(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte(req.Password)); err != nil {
		uc.logger.Warn("failed login attempt", zap.String("login_id", req.LoginID))
		return nil, xerrors.ErrInvalidCredentials
	}

	token, err := uc.signer.Sign(strconv.FormatInt(admin.ID, 10), admin.LoginID, time.Now())
	if err != nil {
		return nil, err
	}

	uc.logger.Info("admin logged in", zap.Int64("admin_id", admin.ID))
	return &domain.TokenResponse{
		AccessToken:    token,
		TokenType:      "bearer",
		ExpiresInHours: int(uc.signer.TTL().Hours()),
	}, nil
}

// EnsureAdmin creates the admin account if no admin with that login exists.
func (uc *AuthUsecase) EnsureAdmin(ctx context.Context, loginID, password string) error {
	if loginID == "" || password == "" {
		return nil
	}

	_, err := uc.admins.GetByLoginID(ctx, loginID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, xerrors.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &domain.Admin{LoginID: loginID, HashedPassword: string(hash)}
	if err := uc.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			return nil
		}
		return err
	}

	uc.logger.Info("seeded admin account", zap.String("login_id", loginID))
	return nil
}

// AdminExists backs the auth middleware's check that a token's subject is
// still a known admin.
func (uc *AuthUsecase) AdminExists(ctx context.Context, adminID string) (bool, error) {
	id, err := strconv.ParseInt(adminID, 10, 64)
	if err != nil {
		return false, nil
	}
	if _, err := uc.admins.GetByID(ctx, id); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

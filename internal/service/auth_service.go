package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/simpadu-api/internal/authz"
	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
)

type userFetcher interface {
	GetUser(ctx context.Context, id string) (*models.UserRecord, error)
}

// SessionWriter is the part of a session store the authenticator mutates.
type SessionWriter interface {
	SignIn(ctx context.Context, identity models.Identity) error
	SignOut(ctx context.Context) error
	Fail(ctx context.Context, message string)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	// Allowlist maps a lower-cased email to the remote user id.
	Allowlist map[string]string
	// BasePath prefixes the redirect targets returned to the client.
	BasePath string
}

// AuthService validates credentials against the remote user record and
// records the outcome in the caller's session.
type AuthService struct {
	users     userFetcher
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users userFetcher, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	allowlist := make(map[string]string, len(config.Allowlist))
	for email, id := range config.Allowlist {
		allowlist[strings.ToLower(strings.TrimSpace(email))] = id
	}
	config.Allowlist = allowlist
	return &AuthService{users: users, validator: validate, metrics: metrics, logger: logger, config: config}
}

// Login authenticates the credentials and signs the identity into store.
// On failure the store keeps its previous identity and records the message.
func (s *AuthService) Login(ctx context.Context, store SessionWriter, req models.LoginRequest) (*models.LoginResponse, error) {
	identity, err := s.authenticate(ctx, req)
	if err != nil {
		appErr := appErrors.FromError(err)
		store.Fail(ctx, appErr.Message)
		if appErr.Status >= 500 {
			s.metrics.RecordLogin(LoginFailed)
		} else {
			s.metrics.RecordLogin(LoginRejected)
		}
		return nil, err
	}

	if err := store.SignIn(ctx, identity); err != nil {
		s.metrics.RecordLogin(LoginFailed)
		s.logger.Error("persist session", zap.Error(err))
		store.Fail(ctx, appErrors.ErrInternal.Message)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "gagal menyimpan sesi")
	}

	s.metrics.RecordLogin(LoginSucceeded)
	s.logger.Info("user signed in", zap.String("user_id", identity.ID.String()), zap.String("role", string(identity.RoleName())))
	return &models.LoginResponse{
		User:     identity,
		Redirect: s.config.BasePath + authz.LandingPath(identity.RoleName()),
	}, nil
}

func (s *AuthService) authenticate(ctx context.Context, req models.LoginRequest) (models.Identity, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Email dan kata sandi wajib diisi dengan benar.")
	}

	id, ok := s.config.Allowlist[strings.ToLower(strings.TrimSpace(req.Email))]
	if !ok {
		return models.Identity{}, appErrors.Clone(appErrors.ErrUnknownEmail, "")
	}

	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrFetchFailed.Code {
			s.logger.Warn("fetch user for login", zap.String("user_id", id), zap.Error(err))
			return models.Identity{}, appErrors.Wrap(err, appErrors.ErrRemoteFetchFailed.Code, appErrors.ErrRemoteFetchFailed.Status, appErrors.ErrRemoteFetchFailed.Message)
		}
		s.logger.Warn("unusable user record", zap.String("user_id", id), zap.Error(err))
		return models.Identity{}, appErrors.Wrap(err, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, appErrors.ErrInvalidCredentials.Message)
	}

	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		return models.Identity{}, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	return user.Identity, nil
}

// Logout clears the session and returns where the client should go next.
func (s *AuthService) Logout(ctx context.Context, store SessionWriter) (*models.LogoutResponse, error) {
	if err := store.SignOut(ctx); err != nil {
		s.logger.Error("clear session", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "gagal menghapus sesi")
	}
	return &models.LogoutResponse{Redirect: s.config.BasePath + "/login"}, nil
}

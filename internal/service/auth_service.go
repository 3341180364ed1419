package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Jottaaa12/pdv-web-admin/internal/apierror"
	"github.com/Jottaaa12/pdv-web-admin/internal/config"
	"github.com/Jottaaa12/pdv-web-admin/internal/dto"
	"github.com/Jottaaa12/pdv-web-admin/internal/model"
	"github.com/Jottaaa12/pdv-web-admin/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 6
	maxPasswordBytes  = 72 // bcrypt ignores anything past this

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidRefreshToken is returned by Refresh for expired, forged or
// non-refresh tokens.
var ErrInvalidRefreshToken = errors.New("refresh token invalid or expired")

type AuthService interface {
	// Login returns nil, nil when the credentials do not match an active user.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	UpsertUser(ctx context.Context, actorID *uuid.UUID, req dto.UpsertUserRequest) (*dto.UserProfile, error)
	ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserProfile, error)
}

type authService struct {
	repo      repository.UserRepository
	audit     AuditService
	cfg       *config.Config
	policy    TxPolicy
	dummyHash []byte
}

func NewAuthService(repo repository.UserRepository, audit AuditService, cfg *config.Config, policy TxPolicy) AuthService {
	// Compared against when the username is unknown so both paths cost one
	// bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)
	return &authService{repo: repo, audit: audit, cfg: cfg, policy: policy, dummyHash: dummy}
}

func userProfile(u *model.User) dto.UserProfile {
	return dto.UserProfile{ID: u.ID.String(), Username: u.Username, Name: u.Name, Role: u.Role, Active: u.Active}
}

// ── Login ─────────────────────────────────────────────────────────────────────

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, nil, strings.TrimSpace(req.Username))
	if err != nil {
		if !apierror.Is(err, apierror.KindNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil
	}
	if !user.Active {
		return nil, nil
	}

	resp, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		return s.audit.Record(ctx, tx, &user.ID, ActionLogin, "users", user.ID.String())
	}); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("login audit failed")
	}
	return resp, nil
}

// ── Refresh ───────────────────────────────────────────────────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["typ"] != TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if apierror.Is(err, apierror.KindNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidRefreshToken
	}
	return s.issueTokens(user)
}

// ── UpsertUser ────────────────────────────────────────────────────────────────
// Creates when req.ID is empty, updates otherwise. A username held by another
// user is a conflict and nothing is written.

func (s *authService) UpsertUser(ctx context.Context, actorID *uuid.UUID, req dto.UpsertUserRequest) (*dto.UserProfile, error) {
	id, err := parseOptionalUUID("id", req.ID)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apierror.Validation("username is required")
	}
	if req.Role != model.RoleOperator && req.Role != model.RoleManager {
		return nil, apierror.Validation("role must be %q or %q", model.RoleOperator, model.RoleManager)
	}
	if id == nil && req.Password == nil {
		return nil, apierror.Validation("password is required for new users")
	}

	var hash string
	if req.Password != nil {
		pw := *req.Password
		if utf8.RuneCountInString(pw) < MinPasswordLength {
			return nil, apierror.Validation("password must have at least %d characters", MinPasswordLength)
		}
		if len(pw) > maxPasswordBytes {
			return nil, apierror.Validation("password must have at most %d bytes", maxPasswordBytes)
		}
		h, err := bcrypt.GenerateFromPassword([]byte(pw), s.cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		hash = string(h)
	}

	duplicate := apierror.Conflict("username '%s' already in use", username)
	var user *model.User
	err = runTx(ctx, s.repo.DB(), s.policy, func(tx *gorm.DB) error {
		action := ActionCreateUser
		if id != nil {
			existing, err := s.repo.FindForUpdate(ctx, tx, *id)
			if err != nil {
				return err
			}
			user = existing
			action = ActionUpdateUser
		} else {
			user = &model.User{Active: true}
		}

		holder, err := s.repo.FindByUsername(ctx, tx, username)
		switch {
		case err == nil && holder.ID != user.ID:
			return duplicate
		case err != nil && !apierror.Is(err, apierror.KindNotFound):
			return err
		}

		user.Username = username
		user.Role = req.Role
		if req.Name != "" {
			user.Name = strings.TrimSpace(req.Name)
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
		if hash != "" {
			user.PasswordHash = hash
		}

		if id == nil {
			err = s.repo.Create(ctx, tx, user)
		} else {
			err = s.repo.Update(ctx, tx, user)
		}
		if apierror.Is(err, apierror.KindConflict) {
			// lost a race with a concurrent insert of the same username
			return duplicate
		}
		if err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, actorID, action, "users", user.ID.String())
	})
	if err != nil {
		return nil, err
	}
	profile := userProfile(user)
	return &profile, nil
}

func (s *authService) ListUsers(ctx context.Context, includeInactive bool) ([]dto.UserProfile, error) {
	users, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UserProfile, len(users))
	for i := range users {
		resp[i] = userProfile(&users[i])
	}
	return resp, nil
}

// ── Tokens ────────────────────────────────────────────────────────────────────

func (s *authService) issueTokens(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenTypeAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenTypeRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userProfile(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, typ string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"typ":      typ,
		"exp":      now.Add(duration).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

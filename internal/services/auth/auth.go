// Package services содержит логику бизнес-уровня для работы с читателями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/library-management/internal/lib/jwt"
	"github.com/magabrotheeeer/library-management/internal/lib/password"
	"github.com/magabrotheeeer/library-management/internal/models"
)

// Ошибки аутентификации, транслируемые обработчиками в HTTP-статусы.
var (
	// ErrInvalidCredentials - неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked - refresh-токен отозван при выходе из системы.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrNotRefreshToken - вместо refresh-токена передан access-токен.
	ErrNotRefreshToken = errors.New("token is not a refresh token")
)

// UserRepository описывает контракт для работы с читателями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового читателя и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает читателя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail возвращает читателя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenBlacklist описывает черный список отозванных refresh-токенов.
type TokenBlacklist interface {
	// BlacklistToken помещает jti в черный список до истечения ttl.
	BlacklistToken(jti string, ttl time.Duration) error

	// IsTokenBlacklisted проверяет, отозван ли токен с данным jti.
	IsTokenBlacklisted(jti string) (bool, error)
}

// AuthService отвечает за регистрацию, авторизацию, обновление и отзыв JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	blacklist TokenBlacklist
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, blacklist TokenBlacklist) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		blacklist: blacklist,
	}
}

// Register создает нового читателя с хэшированием пароля и выдает пару токенов.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (*models.User, *models.TokenPair, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return nil, nil, err
	}
	user := models.User{
		Email:          req.Email,
		Username:       req.Username,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PhoneNumber:    req.PhoneNumber,
		PasswordHash:   hashed,
		IsLibrarian:    false, // библиотекаря назначает администратор, не регистрация
		IsActiveMember: true,
	}
	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	user.UID = uid
	user.MembershipDate = time.Now().UTC()

	pair, err := s.generatePair(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Login проверяет пароль читателя по имени пользователя или email
// и выдает пару токенов.
func (s *AuthService) Login(ctx context.Context, username, email, rawPassword string) (*models.User, *models.TokenPair, error) {
	var user *models.User
	var err error
	if username != "" {
		user, err = s.users.GetUserByUsername(ctx, username)
	} else {
		user, err = s.users.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.generatePair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh проверяет refresh-токен, отзывает его и выдает новую пару токенов.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	const op = "auth.Refresh"
	claims, err := s.validateRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	// Ротация: старый refresh-токен отзывается вместе с выдачей нового.
	if err := s.blacklist.BlacklistToken(claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUserByUsername(ctx, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.generatePair(user)
}

// Logout отзывает refresh-токен, помещая его jti в черный список
// до истечения срока действия токена.
func (s *AuthService) Logout(_ context.Context, refreshToken string) error {
	const op = "auth.Logout"
	claims, err := s.validateRefresh(refreshToken)
	if err != nil {
		return err
	}
	if err := s.blacklist.BlacklistToken(claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ValidateToken проверяет access-токен и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

func (s *AuthService) validateRefresh(refreshToken string) (*jwt.CustomClaims, error) {
	claims, err := s.jwtMaker.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrNotRefreshToken
	}
	revoked, err := s.blacklist.IsTokenBlacklisted(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) generatePair(user *models.User) (*models.TokenPair, error) {
	access, err := s.jwtMaker.GenerateAccessToken(user.Username, user.UID, user.IsLibrarian)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.Username, user.UID, user.IsLibrarian)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

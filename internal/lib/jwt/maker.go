package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"`     // Имя пользователя
	UserUID              string `json:"user_uid"`     // Уникальный идентификатор пользователя
	IsLibrarian          bool   `json:"is_librarian"` // Признак библиотекаря
	TokenType            string `json:"token_type"`   // Вид токена: access или refresh
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt, ID и пр.)
}

// GenerateAccessToken создает короткоживущий access токен,
// подписывая его секретным ключом.
func (j *MakerImpl) GenerateAccessToken(username, userUID string, isLibrarian bool) (string, error) {
	return j.generate(username, userUID, isLibrarian, TokenTypeAccess, j.accessTTL)
}

// GenerateRefreshToken создает refresh токен с уникальным jti,
// по которому токен можно отозвать при выходе из системы.
func (j *MakerImpl) GenerateRefreshToken(username, userUID string, isLibrarian bool) (string, error) {
	return j.generate(username, userUID, isLibrarian, TokenTypeRefresh, j.refreshTTL)
}

func (j *MakerImpl) generate(username, userUID string, isLibrarian bool, tokenType string, ttl time.Duration) (string, error) {
	claims := CustomClaims{
		Username:    username,
		UserUID:     userUID,
		IsLibrarian: isLibrarian,
		TokenType:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

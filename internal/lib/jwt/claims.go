// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки пары токенов: короткоживущего
// access и долгоживущего refresh. MakerImpl — конкретная реализация с использованием
// секретного ключа и отдельных сроков жизни для каждого вида токена.
package jwt

import (
	"time"
)

// Виды токенов, хранящиеся в claim token_type.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateAccessToken создает access токен с данными пользователя.
	GenerateAccessToken(username, userUID string, isLibrarian bool) (string, error)
	// GenerateRefreshToken создает refresh токен с уникальным jti для отзыва.
	GenerateRefreshToken(username, userUID string, isLibrarian bool) (string, error)
	// ParseToken возвращает *CustomClaims, если токен корректен.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токенов.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL токенов.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"jobtrack/internal/database"
	"jobtrack/internal/store"
)

var (
	// ErrInvalidCredentials 不区分“用户不存在”与“密码错误”。
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthService 负责处理密码哈希、JWT 生成与校验。
type AuthService struct {
	secret         []byte
	method         jwt.SigningMethod
	accessTokenTTL time.Duration
	bcryptCost     int
	now            func() time.Time

	// 邮箱不存在时与 dummyHash 比对，使两种失败路径耗时一致。
	dummyHash string
}

// TokenClaims 表示 JWT 中的业务字段；Subject 为用户邮箱。
type TokenClaims struct {
	jwt.RegisteredClaims
}

// NewAuthService 校验签名算法并构造服务实例。只接受 HMAC 算法。
func NewAuthService(secret, algorithm string, accessTTL time.Duration, bcryptCost int) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("secret key is required")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}

	dummyHash, err := HashPasswordWithCost("not-a-real-password", bcryptCost)
	if err != nil {
		return nil, err
	}

	return &AuthService{
		secret:         []byte(secret),
		method:         method,
		accessTokenTTL: accessTTL,
		bcryptCost:     bcryptCost,
		now:            time.Now,
		dummyHash:      dummyHash,
	}, nil
}

// HashPassword 使用配置的 cost 生成密码哈希。
func (s *AuthService) HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, s.bcryptCost)
}

// CheckPasswordHash 校验密码是否匹配哈希。
func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	return CheckPasswordHash(password, hash)
}

// Authenticate 按邮箱查找用户并校验密码，邮箱不存在与密码错误均返回 ErrInvalidCredentials。
func (s *AuthService) Authenticate(ctx context.Context, tx *gorm.DB, email, password string) (*database.User, error) {
	user, err := store.GetUserByEmail(ctx, tx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			CheckPasswordHash(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken 签发访问令牌，返回令牌与过期时间。
func (s *AuthService) IssueToken(subject string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTokenTTL)

	claims := TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken 解析并验证 JWT，失败一律返回 ErrInvalidToken。
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// AccessTokenTTL 暴露访问令牌有效期。
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}

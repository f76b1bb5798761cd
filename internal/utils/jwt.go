package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wfunc/clue-less/internal/errors"
)

// JWTClaims 自定义JWT Claims。只承载游客身份，没有账号体系
type JWTClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey string
	expiry    time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: secretKey,
		expiry:    expiry,
	}
}

// GenerateToken 为游客身份签发令牌
func (j *JWTManager) GenerateToken(userID, username string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "clue-less",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTokenInvalid, "签发令牌失败")
	}
	return signed, nil
}

// ValidateToken 验证令牌
func (j *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New(errors.ErrTokenInvalid, "非预期的签名算法")
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTokenInvalid, "令牌校验失败")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New(errors.ErrTokenInvalid, "无效的令牌")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New(errors.ErrTokenExpired, "令牌已过期")
	}
	return claims, nil
}

package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/logan-wrld/austin-port-to-rail/config"
)

// AuthService issues and validates operator tokens. There is no user
// database: a single operator credential is provisioned through the
// environment and hashed at startup.
type AuthService struct {
	jwtSecret     []byte
	expiryH       int
	operatorEmail string
	operatorHash  []byte
}

func NewAuthService(jwtCfg config.JWTConfig, opCfg config.OperatorConfig) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(opCfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		jwtSecret:     []byte(jwtCfg.Secret),
		expiryH:       jwtCfg.ExpiryHours,
		operatorEmail: opCfg.Email,
		operatorHash:  hash,
	}, nil
}

// Authenticate checks a login attempt against the operator credential.
func (s *AuthService) Authenticate(email, password string) bool {
	if email != s.operatorEmail {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.operatorHash, []byte(password)) == nil
}

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (s *AuthService) GenerateToken(email, role string) (string, error) {
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(
				time.Duration(s.expiryH) * time.Hour,
			)),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

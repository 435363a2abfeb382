package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = errors.New("invalid token")
)

const tokenTTL = 24 * time.Hour

// AuthService is the shared-password gate of the console. A successful
// login yields a token attributed to the configured operator.
type AuthService struct {
	passwordHash []byte
	secret       []byte
	operator     Operator

	now func() time.Time
}

func NewAuthService(passwordHash, secret string, operator Operator) *AuthService {
	return &AuthService{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		operator:     operator,
		now:          time.Now,
	}
}

// ตรวจสอบพาสเวิร์ด
func (s *AuthService) checkPassword(password string) bool {
	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

// Login checks password and returns a signed token and its expiry.
func (s *AuthService) Login(password string) (string, time.Time, error) {
	if password == "" || !s.checkPassword(password) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(tokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id":   s.operator.ID,
		"operator_name": s.operator.Name,
		"exp":           expiresAt.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenString and returns the operator it was issued to.
func (s *AuthService) Parse(tokenString string) (*Operator, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	id, ok := claims["operator_id"].(string)
	if !ok || id == "" {
		return nil, ErrInvalidToken
	}
	name, _ := claims["operator_name"].(string)
	return &Operator{ID: id, Name: name}, nil
}

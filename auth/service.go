package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-pkgz/auth/v2/token"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/models"
)

const (
	Issuer     = "rayan-saffron"
	bcryptCost = 10
	roleAttr   = "role"
)

// Identity is the caller extracted from a verified bearer token.
type Identity struct {
	ID    string
	Email string
	Role  string
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

// Service issues and verifies HS256 bearer tokens.
type Service struct {
	tokens   *token.Service
	duration time.Duration
	now      func() time.Time
}

func NewService(secret string, duration time.Duration) *Service {
	tokens := token.NewService(token.Opts{
		SecretReader: token.SecretFunc(func(aud string) (string, error) {
			return secret, nil
		}),
		TokenDuration: duration,
		Issuer:        Issuer,
		DisableXSRF:   true,
	})
	return &Service{tokens: tokens, duration: duration, now: time.Now}
}

func (s *Service) Issue(u *models.User) (string, error) {
	user := token.User{
		ID:    strconv.FormatUint(uint64(u.ID), 10),
		Name:  u.Username,
		Email: u.Email,
	}
	user.SetStrAttr(roleAttr, u.Role)

	now := s.now()
	claims := token.Claims{
		User: &user,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  []string{Issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenStr, err := s.tokens.Token(claims)
	if err != nil {
		return "", apperr.E(apperr.KindInternal, "auth.Issue", err)
	}
	return tokenStr, nil
}

func (s *Service) Parse(tokenStr string) (*Identity, error) {
	const op = "auth.Parse"

	claims, err := s.tokens.Parse(tokenStr)
	if err != nil {
		return nil, apperr.E(apperr.KindUnauthorized, op, err)
	}
	if claims.User == nil {
		return nil, apperr.E(apperr.KindUnauthorized, op, errors.New("token carries no user"))
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return nil, apperr.E(apperr.KindUnauthorized, op, errors.New("token expired"))
	}

	return &Identity{
		ID:    claims.User.ID,
		Email: claims.User.Email,
		Role:  claims.User.StrAttr(roleAttr),
	}, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

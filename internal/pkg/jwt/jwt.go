package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Claims struct {
	UserID    string `json:"sub_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"sid,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
	jwtlib.RegisteredClaims
}

// TokenSpec describes one access token to mint.
type TokenSpec struct {
	UserID    string
	Email     string
	Role      string
	SessionID string
	Purpose   string
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// GenerateToken signs an HS256 token and returns it with its expiry.
func (s *Service) GenerateToken(spec TokenSpec) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		UserID:    spec.UserID,
		Email:     spec.Email,
		Role:      spec.Role,
		SessionID: spec.SessionID,
		Purpose:   spec.Purpose,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   spec.UserID,
			ExpiresAt: jwtlib.NewNumericDate(exp),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, jwtlib.WithTimeFunc(s.now))
}

// ParseExpired checks the signature but accepts an expired token.
// It is used when a caller presents a stale access token next to a refresh token.
func (s *Service) ParseExpired(tokenStr string) (*Claims, error) {
	return s.parse(tokenStr, jwtlib.WithoutClaimsValidation())
}

func (s *Service) parse(tokenStr string, opts ...jwtlib.ParserOption) (*Claims, error) {
	opts = append(opts, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PeekClaims decodes claims without checking the signature. Clients use it to
// read their own session id and expiry; it must never gate access.
func PeekClaims(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

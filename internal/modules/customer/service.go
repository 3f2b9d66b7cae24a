package customer

import (
	"context"
	"strings"
	"unicode"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/password"
)

type Service struct {
	customers CustomerRepository
	jwt       *jwt.Service
}

func NewService(customers CustomerRepository, jwtSvc *jwt.Service) *Service {
	return &Service{customers: customers, jwt: jwtSvc}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	if err := password.Validate(req.Password); err != nil {
		return nil, err
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	c := &domain.Customer{
		Phone:        phone,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.customers.Create(ctx, c); err != nil {
		if domain.IsConflict(err) {
			return nil, domain.ConflictError{Resource: "customer", Msg: "phone already registered", Err: domain.ErrDuplicate}
		}
		return nil, err
	}
	return s.issue(c)
}

// Login never reveals whether the phone is registered.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, invalidLogin()
	}

	c, err := s.customers.GetByPhone(ctx, phone)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, invalidLogin()
		}
		return nil, err
	}
	if err := password.Check(req.Password, c.PasswordHash); err != nil {
		return nil, invalidLogin()
	}
	return s.issue(c)
}

func (s *Service) issue(c *domain.Customer) (*AuthResponse, error) {
	token, _, err := s.jwt.GenerateToken(jwt.TokenSpec{
		UserID: c.ID,
		Email:  c.Email,
		Role:   string(domain.RoleCustomer),
	})
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
		Customer:    c,
	}, nil
}

func invalidLogin() error {
	return domain.AuthError{Msg: "invalid phone or password", Err: domain.ErrInvalidCredentials}
}

// normalizePhone keeps digits and a leading plus.
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", domain.ValidationError{Field: "phone", Msg: "phone may only contain digits"}
		}
	}
	phone := b.String()
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return "", domain.ValidationError{Field: "phone", Msg: "phone must have 10 to 15 digits"}
	}
	return phone, nil
}

package customer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/jwt"
	"cabbooking/internal/pkg/password"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	args := m.Called(ctx, c)
	if args.Error(0) == nil {
		c.ID = "cust-new"
	}
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func newTestService() (*Service, *MockCustomerRepository, *jwt.Service) {
	repo := new(MockCustomerRepository)
	j := jwt.New("test", time.Hour)
	return NewService(repo, j), repo, j
}

func TestService_Register_IssuesCustomerToken(t *testing.T) {
	svc, repo, j := newTestService()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Phone == "+919876543210" && c.PasswordHash != "Secret1pass"
	})).Return(nil)

	resp, err := svc.Register(context.Background(), RegisterRequest{Phone: "+91 98765-43210", Password: "Secret1pass", Name: " Anu "})
	require.NoError(t, err)
	assert.Equal(t, "Anu", resp.Customer.Name)

	claims, err := j.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "cust-new", claims.UserID)
	assert.Equal(t, string(domain.RoleCustomer), claims.Role)
}

func TestService_Register_DuplicatePhone(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.On("Create", mock.Anything, mock.Anything).
		Return(domain.ConflictError{Resource: "customer", Err: domain.ErrDuplicate})

	_, err := svc.Register(context.Background(), RegisterRequest{Phone: "9876543210", Password: "Secret1pass"})
	assert.True(t, domain.IsConflict(err))
}

func TestService_Register_RejectsWeakPasswordAndBadPhone(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{Phone: "9876543210", Password: "short"})
	assert.True(t, errors.Is(err, domain.ErrWeakPassword))

	_, err = svc.Register(context.Background(), RegisterRequest{Phone: "98abc", Password: "Secret1pass"})
	assert.True(t, domain.IsValidation(err))

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Login_IsGeneric(t *testing.T) {
	svc, repo, _ := newTestService()
	hash, err := password.Hash("Secret1pass")
	require.NoError(t, err)

	repo.On("GetByPhone", mock.Anything, "9876543210").Return(&domain.Customer{ID: "c1", Phone: "9876543210", PasswordHash: hash}, nil)
	repo.On("GetByPhone", mock.Anything, "9000000000").Return(nil, domain.NotFoundError{Resource: "customer", Err: domain.ErrCustomerNotFound})

	_, err = svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "Wrong1pass"})
	wrongPw := err
	_, err = svc.Login(context.Background(), LoginRequest{Phone: "9000000000", Password: "Secret1pass"})
	unknown := err

	assert.True(t, errors.Is(wrongPw, domain.ErrInvalidCredentials))
	assert.Equal(t, wrongPw.Error(), unknown.Error())

	resp, err := svc.Login(context.Background(), LoginRequest{Phone: "9876543210", Password: "Secret1pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

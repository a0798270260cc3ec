package admin

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProfileRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestService() (*Service, *mockUserRepo, *mockProfileRepo) {
	users := new(mockUserRepo)
	profiles := new(mockProfileRepo)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewService(users, profiles, log), users, profiles
}

func TestCreateUser_WithProfile(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("ExistsByEmail", mock.Anything, "new@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 10
		}).Return(nil)
	profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

	user, profile, err := service.CreateUser(context.Background(), CreateUserRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "secret123",
		Profile: &ProfileInput{
			Address:      "Main st 1",
			Document:     "123456789",
			DocumentType: "id_card",
			BirthDate:    "1990-04-12",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.StatusActive, user.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	require.NotNil(t, profile)
	assert.Equal(t, int64(10), profile.UserID)
	assert.Equal(t, 1990, profile.BirthDate.Year())
	profiles.AssertExpectations(t)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	service, users, _ := newTestService()

	_, _, err := service.CreateUser(context.Background(), CreateUserRequest{
		Name:     "User",
		Email:    "a@b.com",
		Password: "secret123",
		Role:     "superuser",
	})

	assert.ErrorIs(t, err, ErrInvalidRole)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_InvalidBirthDate(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, _, err := service.CreateUser(context.Background(), CreateUserRequest{
		Name:     "User",
		Email:    "a@b.com",
		Password: "secret123",
		Profile:  &ProfileInput{BirthDate: "12/04/1990"},
	})

	assert.ErrorIs(t, err, ErrInvalidBirthDate)
	profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetUser_MissingProfileIsNotAnError(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "User"}, nil)
	profiles.On("GetByUserID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	user, profile, err := service.GetUser(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Nil(t, profile)
}

func TestGetUser_NotFound(t *testing.T) {
	service, users, _ := newTestService()

	users.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, _, err := service.GetUser(context.Background(), 404)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	service, users, profiles := newTestService()

	oldHash := "$2a$10$old-hash-value"
	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{
		ID:           1,
		Name:         "User",
		Email:        "user@example.com",
		PasswordHash: oldHash,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	profiles.On("GetByUserID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	user, _, err := service.UpdateUser(context.Background(), 1, UpdateUserRequest{
		Password: "newsecret",
	})

	require.NoError(t, err)
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("newsecret")))
}

func TestUpdateUser_PartialKeepsOtherFields(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{
		ID:     1,
		Name:   "Original",
		Email:  "user@example.com",
		Phone:  "77001234567",
		Role:   domain.RoleUser,
		Status: domain.StatusActive,
	}, nil)
	users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	profiles.On("GetByUserID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)

	user, _, err := service.UpdateUser(context.Background(), 1, UpdateUserRequest{Name: "Renamed"})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, "77001234567", user.Phone)
}

func TestUpdateUser_ProfileUpsertCreatesWhenMissing(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "User"}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	profiles.On("GetByUserID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)
	profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

	_, profile, err := service.UpdateUser(context.Background(), 1, UpdateUserRequest{
		Profile: &ProfileInput{Address: "New address"},
	})

	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "New address", profile.Address)
	profiles.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateUser_ProfileUpsertUpdatesExisting(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, Name: "User"}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	profiles.On("GetByUserID", mock.Anything, int64(1)).Return(&domain.Profile{
		ID:           3,
		UserID:       1,
		Address:      "Old address",
		Document:     "123",
		DocumentType: "id_card",
		BirthDate:    time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
	}, nil)
	profiles.On("Update", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

	_, profile, err := service.UpdateUser(context.Background(), 1, UpdateUserRequest{
		Profile: &ProfileInput{Address: "New address"},
	})

	require.NoError(t, err)
	assert.Equal(t, "New address", profile.Address)
	assert.Equal(t, "123", profile.Document)
	profiles.AssertCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteUser_RemovesProfileFirst(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1}, nil)
	profiles.On("DeleteByUserID", mock.Anything, int64(1)).Return(nil)
	users.On("Delete", mock.Anything, int64(1)).Return(nil)

	require.NoError(t, service.DeleteUser(context.Background(), 1))
	profiles.AssertCalled(t, "DeleteByUserID", mock.Anything, int64(1))
	users.AssertCalled(t, "Delete", mock.Anything, int64(1))
}

func TestDeleteUser_NotFound(t *testing.T) {
	service, users, profiles := newTestService()

	users.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, service.DeleteUser(context.Background(), 404), ErrUserNotFound)
	profiles.AssertNotCalled(t, "DeleteByUserID", mock.Anything, mock.Anything)
}

package testutil

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/zerowastechef/server/internal/domain/activity"
	"github.com/zerowastechef/server/internal/domain/user"
	"github.com/zerowastechef/server/internal/ports/outbound"
)

// MockUserRepository is a testify mock of outbound.UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ outbound.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	return userResult(args)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	return userResult(args)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	return userResult(args)
}

func (m *MockUserRepository) FindByLogin(ctx context.Context, identifier string) (*user.User, error) {
	args := m.Called(ctx, identifier)
	return userResult(args)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*user.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*user.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func userResult(args mock.Arguments) (*user.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// MockActivityRepository is a testify mock of outbound.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

var _ outbound.ActivityRepository = (*MockActivityRepository)(nil)

func (m *MockActivityRepository) ForUser(ctx context.Context, userID int64) (*activity.Log, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Log), args.Error(1)
}

func (m *MockActivityRepository) All(ctx context.Context) (*activity.Log, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*activity.Log), args.Error(1)
}

// MockImageStore is a testify mock of outbound.ImageStore
type MockImageStore struct {
	mock.Mock
}

var _ outbound.ImageStore = (*MockImageStore)(nil)

func (m *MockImageStore) Save(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	args := m.Called(ctx, filename, contentType, content)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockImageStore) URL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

// MockMetricsRecorder is a testify mock of outbound.MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

var _ outbound.MetricsRecorder = (*MockMetricsRecorder)(nil)

func (m *MockMetricsRecorder) RecordRegistration(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockMetricsRecorder) RecordLogin(ctx context.Context, success bool) {
	m.Called(ctx, success)
}

func (m *MockMetricsRecorder) RecordVote(ctx context.Context, isLike bool) {
	m.Called(ctx, isLike)
}

func (m *MockMetricsRecorder) RecordRecipeCreated(ctx context.Context) {
	m.Called(ctx)
}

// NopMetrics discards business events
type NopMetrics struct{}

func (NopMetrics) RecordRegistration(context.Context)  {}
func (NopMetrics) RecordLogin(context.Context, bool)   {}
func (NopMetrics) RecordVote(context.Context, bool)    {}
func (NopMetrics) RecordRecipeCreated(context.Context) {}

package auth_test

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockConfig implements auth.Config for testing
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetSigningMethod() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAuthScheme() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetClientHost() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAPIHost() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetGithubClientID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetGithubClientSecret() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) IsDevelopment() bool {
	args := m.Called()
	return args.Bool(0)
}

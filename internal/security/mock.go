package security

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockVerifier is a testify mock for Verifier.
type MockVerifier struct {
	mock.Mock
}

var _ Verifier = (*MockVerifier)(nil)

func (m *MockVerifier) VerifyToken(token string) (*Payload, error) {
	args := m.Called(token)
	if payload, ok := args.Get(0).(*Payload); ok {
		return payload, args.Error(1)
	}
	return nil, args.Error(1)
}

// Accept makes token verify as an access token held by role.
func (m *MockVerifier) Accept(token, role string) *Payload {
	return m.AcceptScoped(token, role, TokenScopeAccess)
}

// AcceptScoped is Accept with an explicit scope.
func (m *MockVerifier) AcceptScoped(token, role, scope string) *Payload {
	now := time.Now()
	payload := &Payload{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      role,
		Scope:     scope,
		IssuedAt:  now,
		ExpiredAt: now.Add(time.Hour),
	}
	m.On("VerifyToken", token).Return(payload, nil)
	return payload
}

// Reject makes token fail verification with err.
func (m *MockVerifier) Reject(token string, err error) {
	m.On("VerifyToken", token).Return(nil, err)
}

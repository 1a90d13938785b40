package backend

import (
	"context"

	"github.com/esteemapp/surfer-core/types"
)

// MockCredential is what MockBackend resolves when ResolveFunc is not set.
// It keeps a copy of the pin so tests can inspect it after the call.
type MockCredential struct {
	Account *types.Account
	Pin     []byte
	KeyRole types.KeyRole
	Zeroed  bool
}

func (c *MockCredential) Username() string    { return c.Account.Username() }
func (c *MockCredential) Role() types.KeyRole { return c.KeyRole }
func (c *MockCredential) Zero()               { c.Zeroed = true }

type MockBackend struct {
	KindFunc    func() types.AuthKind
	ResolveFunc func(acc *types.Account, pin []byte, role types.KeyRole) (Credential, error)
	SubmitFunc  func(ctx context.Context, cred Credential, bundle types.Bundle) (*types.BroadcastResult, error)
}

func (m *MockBackend) Kind() types.AuthKind {
	if m.KindFunc != nil {
		return m.KindFunc()
	}

	return types.AuthKindUnknown
}

func (m *MockBackend) Resolve(acc *types.Account, pin []byte, role types.KeyRole) (Credential, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(acc, pin, role)
	}

	return &MockCredential{Account: acc, Pin: append([]byte{}, pin...), KeyRole: role}, nil
}

func (m *MockBackend) Submit(ctx context.Context, cred Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, cred, bundle)
	}

	return &types.BroadcastResult{}, nil
}

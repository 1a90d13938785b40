package client

import (
	"context"

	"github.com/esteemapp/surfer-core/types"
)

type MockSteemConnect struct {
	BroadcastFunc     func(ctx context.Context, accessToken string, bundle types.Bundle) (*DelegatedResult, error)
	HotSigningURLFunc func(op types.Operation, redirect string) (string, error)

	AppAuthorizationURLFunc func(app string, grant bool, redirect string) string
}

func (m *MockSteemConnect) Broadcast(ctx context.Context, accessToken string, bundle types.Bundle) (*DelegatedResult, error) {
	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(ctx, accessToken, bundle)
	}

	return nil, nil
}

func (m *MockSteemConnect) HotSigningURL(op types.Operation, redirect string) (string, error) {
	if m.HotSigningURLFunc != nil {
		return m.HotSigningURLFunc(op, redirect)
	}

	return "", nil
}

func (m *MockSteemConnect) AppAuthorizationURL(app string, grant bool, redirect string) string {
	if m.AppAuthorizationURLFunc != nil {
		return m.AppAuthorizationURLFunc(app, grant, redirect)
	}

	return ""
}

type MockEsteem struct {
	RecordActivityFunc func(ctx context.Context, record *types.ActivityRecord) error
}

func (m *MockEsteem) RecordActivity(ctx context.Context, record *types.ActivityRecord) error {
	if m.RecordActivityFunc != nil {
		return m.RecordActivityFunc(ctx, record)
	}

	return nil
}

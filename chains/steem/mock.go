package steem

import (
	"context"
)

type MockClient struct {
	AddressFunc                         func() string
	CallFunc                            func(ctx context.Context, api, method string, params []interface{}, out interface{}) error
	GetDiscussionsFunc                  func(ctx context.Context, by string, query *DiscussionQuery) ([]*Discussion, error)
	GetAccountsFunc                     func(ctx context.Context, names ...string) ([]*Account, error)
	GetDynamicGlobalPropertiesFunc      func(ctx context.Context) (*DynamicGlobalProperties, error)
	GetFollowCountFunc                  func(ctx context.Context, name string) (*FollowCount, error)
	GetActiveVotesFunc                  func(ctx context.Context, author, permlink string) ([]*ActiveVote, error)
	BroadcastTransactionSynchronousFunc func(ctx context.Context, tx *Transaction) (*BroadcastResponse, error)
}

func (m *MockClient) Address() string {
	if m.AddressFunc != nil {
		return m.AddressFunc()
	}

	return ""
}

func (m *MockClient) Call(ctx context.Context, api, method string, params []interface{}, out interface{}) error {
	if m.CallFunc != nil {
		return m.CallFunc(ctx, api, method, params, out)
	}

	return nil
}

func (m *MockClient) GetDiscussions(ctx context.Context, by string, query *DiscussionQuery) ([]*Discussion, error) {
	if m.GetDiscussionsFunc != nil {
		return m.GetDiscussionsFunc(ctx, by, query)
	}

	return nil, nil
}

func (m *MockClient) GetAccounts(ctx context.Context, names ...string) ([]*Account, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx, names...)
	}

	return nil, nil
}

func (m *MockClient) GetDynamicGlobalProperties(ctx context.Context) (*DynamicGlobalProperties, error) {
	if m.GetDynamicGlobalPropertiesFunc != nil {
		return m.GetDynamicGlobalPropertiesFunc(ctx)
	}

	return nil, nil
}

func (m *MockClient) GetFollowCount(ctx context.Context, name string) (*FollowCount, error) {
	if m.GetFollowCountFunc != nil {
		return m.GetFollowCountFunc(ctx, name)
	}

	return nil, nil
}

func (m *MockClient) GetActiveVotes(ctx context.Context, author, permlink string) ([]*ActiveVote, error) {
	if m.GetActiveVotesFunc != nil {
		return m.GetActiveVotesFunc(ctx, author, permlink)
	}

	return nil, nil
}

func (m *MockClient) BroadcastTransactionSynchronous(ctx context.Context, tx *Transaction) (*BroadcastResponse, error) {
	if m.BroadcastTransactionSynchronousFunc != nil {
		return m.BroadcastTransactionSynchronousFunc(ctx, tx)
	}

	return nil, nil
}

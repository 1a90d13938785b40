package database

import (
	"github.com/esteemapp/surfer-core/types"
)

type MockDb struct {
	InitFunc           func() error
	CloseFunc          func() error
	GetItemFunc        func(key, defaultValue string) string
	SetItemFunc        func(key, value string) error
	RemoveItemFunc     func(key string) error
	LoadAccountFunc    func(username string) (*types.Account, error)
	SaveAccountFunc    func(record *AccountRecord) error
	ListAccountsFunc   func() ([]string, error)
	DeleteAccountsFunc func() error
}

func (mock *MockDb) Init() error {
	if mock.InitFunc != nil {
		return mock.InitFunc()
	}

	return nil
}

func (mock *MockDb) Close() error {
	if mock.CloseFunc != nil {
		return mock.CloseFunc()
	}

	return nil
}

func (mock *MockDb) GetItem(key, defaultValue string) string {
	if mock.GetItemFunc != nil {
		return mock.GetItemFunc(key, defaultValue)
	}

	return defaultValue
}

func (mock *MockDb) SetItem(key, value string) error {
	if mock.SetItemFunc != nil {
		return mock.SetItemFunc(key, value)
	}

	return nil
}

func (mock *MockDb) RemoveItem(key string) error {
	if mock.RemoveItemFunc != nil {
		return mock.RemoveItemFunc(key)
	}

	return nil
}

func (mock *MockDb) LoadAccount(username string) (*types.Account, error) {
	if mock.LoadAccountFunc != nil {
		return mock.LoadAccountFunc(username)
	}

	return nil, nil
}

func (mock *MockDb) SaveAccount(record *AccountRecord) error {
	if mock.SaveAccountFunc != nil {
		return mock.SaveAccountFunc(record)
	}

	return nil
}

func (mock *MockDb) ListAccounts() ([]string, error) {
	if mock.ListAccountsFunc != nil {
		return mock.ListAccountsFunc()
	}

	return nil, nil
}

func (mock *MockDb) DeleteAccounts() error {
	if mock.DeleteAccountsFunc != nil {
		return mock.DeleteAccountsFunc()
	}

	return nil
}

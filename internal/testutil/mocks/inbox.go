// Package mocks provides testify mocks of the viewer's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/welldanyogia/webrana-inbox-viewer/internal/client"
	"github.com/welldanyogia/webrana-inbox-viewer/internal/models"
)

// MockInbox is a mock implementation of handlers.Inbox
type MockInbox struct {
	mock.Mock
}

func (m *MockInbox) ListEmails(ctx context.Context, page, size uint) (*models.EmailPage, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailPage), args.Error(1)
}

func (m *MockInbox) GetEmail(ctx context.Context, id string) (*models.Email, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *MockInbox) DeleteEmail(ctx context.Context, id string) (*models.DeleteResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeleteResult), args.Error(1)
}

func (m *MockInbox) DeleteAllEmails(ctx context.Context) (*models.DeleteResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeleteResult), args.Error(1)
}

func (m *MockInbox) SearchEmails(ctx context.Context, req models.SearchRequest) (*models.EmailPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EmailPage), args.Error(1)
}

func (m *MockInbox) GetMetaData(ctx context.Context) (*models.MetaData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MetaData), args.Error(1)
}

func (m *MockInbox) Login(ctx context.Context, creds models.Credentials) error {
	args := m.Called(ctx, creds)
	return args.Error(0)
}

func (m *MockInbox) OpenAttachment(ctx context.Context, emailID, attachmentID string) (*client.Attachment, error) {
	args := m.Called(ctx, emailID, attachmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Attachment), args.Error(1)
}

// MockCredentialSaver is a mock implementation of handlers.CredentialSaver
type MockCredentialSaver struct {
	mock.Mock
}

func (m *MockCredentialSaver) Save(c models.Credentials) error {
	return m.Called(c).Error(0)
}

func (m *MockCredentialSaver) Delete() error {
	return m.Called().Error(0)
}

package mocks

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

// --- Mock Database ---
type MockDatabase struct {
	GetUserDocumentFunc        func(ctx context.Context, userID string) (*types.UserDocument, error)
	SetUserDocumentFunc        func(ctx context.Context, doc *types.UserDocument) error
	UpdateUserFieldsFunc       func(ctx context.Context, userID string, data map[string]interface{}) error
	AppendToArrayFieldFunc     func(ctx context.Context, userID string, field string, value interface{}) error
	RemoveFromArrayFieldFunc   func(ctx context.Context, userID string, field string, values ...interface{}) error
	RemoveFoodHistoryEntryFunc func(ctx context.Context, userID string, foodID string) error
	ListUserIDsFunc            func(ctx context.Context) ([]string, error)
}

func (m *MockDatabase) GetUserDocument(ctx context.Context, userID string) (*types.UserDocument, error) {
	if m.GetUserDocumentFunc != nil {
		return m.GetUserDocumentFunc(ctx, userID)
	}
	return nil, shared.ErrNotFound
}
func (m *MockDatabase) SetUserDocument(ctx context.Context, doc *types.UserDocument) error {
	if m.SetUserDocumentFunc != nil {
		return m.SetUserDocumentFunc(ctx, doc)
	}
	return nil
}
func (m *MockDatabase) UpdateUserFields(ctx context.Context, userID string, data map[string]interface{}) error {
	if m.UpdateUserFieldsFunc != nil {
		return m.UpdateUserFieldsFunc(ctx, userID, data)
	}
	return nil
}
func (m *MockDatabase) AppendToArrayField(ctx context.Context, userID string, field string, value interface{}) error {
	if m.AppendToArrayFieldFunc != nil {
		return m.AppendToArrayFieldFunc(ctx, userID, field, value)
	}
	return nil
}
func (m *MockDatabase) RemoveFromArrayField(ctx context.Context, userID string, field string, values ...interface{}) error {
	if m.RemoveFromArrayFieldFunc != nil {
		return m.RemoveFromArrayFieldFunc(ctx, userID, field, values...)
	}
	return nil
}
func (m *MockDatabase) RemoveFoodHistoryEntry(ctx context.Context, userID string, foodID string) error {
	if m.RemoveFoodHistoryEntryFunc != nil {
		return m.RemoveFoodHistoryEntryFunc(ctx, userID, foodID)
	}
	return nil
}
func (m *MockDatabase) ListUserIDs(ctx context.Context) ([]string, error) {
	if m.ListUserIDsFunc != nil {
		return m.ListUserIDsFunc(ctx)
	}
	return nil, nil
}

// --- Mock Generator ---
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, parts ...shared.PromptPart) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, parts ...shared.PromptPart) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, parts...)
	}
	return "", shared.NewInferenceError(shared.InferenceNotConfigured, nil)
}

// --- Mock Publisher ---
type MockPublisher struct {
	PublishCloudEventFunc func(ctx context.Context, topic string, e event.Event) (string, error)
}

func (m *MockPublisher) PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error) {
	if m.PublishCloudEventFunc != nil {
		return m.PublishCloudEventFunc(ctx, topic, e)
	}
	return "msg-id", nil
}

// --- Mock Storage ---
type MockBlobStore struct {
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ReadFunc  func(ctx context.Context, bucket, object string) ([]byte, error)
}

func (m *MockBlobStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, bucket, object, data)
	}
	return nil
}
func (m *MockBlobStore) Read(ctx context.Context, bucket, object string) ([]byte, error) {
	if m.ReadFunc != nil {
		return m.ReadFunc(ctx, bucket, object)
	}
	return nil, shared.ErrNotFound
}

// --- Mock Authenticator ---
type MockAuthenticator struct {
	CreateAccountFunc func(ctx context.Context, email, password string) (string, error)
	SignInFunc        func(ctx context.Context, email, password string) (*types.Session, error)
	SignOutFunc       func(ctx context.Context, userID string) error
	VerifyTokenFunc   func(ctx context.Context, idToken string) (string, error)
}

func (m *MockAuthenticator) CreateAccount(ctx context.Context, email, password string) (string, error) {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, email, password)
	}
	return "user-1", nil
}
func (m *MockAuthenticator) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &types.Session{UserID: "user-1", IDToken: "token"}, nil
}
func (m *MockAuthenticator) SignOut(ctx context.Context, userID string) error {
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx, userID)
	}
	return nil
}
func (m *MockAuthenticator) VerifyToken(ctx context.Context, idToken string) (string, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, idToken)
	}
	return "user-1", nil
}

// --- Mock Notifications ---
type MockNotificationService struct {
	SendPushNotificationFunc func(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error
}

func (m *MockNotificationService) SendPushNotification(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error {
	if m.SendPushNotificationFunc != nil {
		return m.SendPushNotificationFunc(ctx, userID, title, body, tokens, data)
	}
	return nil
}

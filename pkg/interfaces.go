package shared

import (
	"context"

	"github.com/cloudevents/sdk-go/v2/event"

	"github.com/risithcha/nutritrack/pkg/types"
)

// --- Persistence Interfaces ---

// Database is the per-user document store. Implementations return errors
// matching ErrNotFound, ErrPermissionDenied or ErrUnavailable where they can.
type Database interface {
	GetUserDocument(ctx context.Context, userID string) (*types.UserDocument, error)
	SetUserDocument(ctx context.Context, doc *types.UserDocument) error
	UpdateUserFields(ctx context.Context, userID string, data map[string]interface{}) error
	AppendToArrayField(ctx context.Context, userID string, field string, value interface{}) error
	RemoveFromArrayField(ctx context.Context, userID string, field string, values ...interface{}) error
	RemoveFoodHistoryEntry(ctx context.Context, userID string, foodID string) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// --- Inference Interfaces ---

// Image is raw image bytes plus the MIME type they were captured in.
type Image struct {
	MIMEType string
	Data     []byte
}

// PromptPart is either a text fragment or an inline image.
type PromptPart struct {
	Text  string
	Image *Image
}

func TextPart(s string) PromptPart {
	return PromptPart{Text: s}
}

func ImagePart(img Image) PromptPart {
	return PromptPart{Image: &img}
}

// Generator is a multimodal text-generation endpoint.
type Generator interface {
	Generate(ctx context.Context, parts ...PromptPart) (string, error)
}

// --- Auth Interfaces ---

type Authenticator interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (*types.Session, error)
	SignOut(ctx context.Context, userID string) error
	VerifyToken(ctx context.Context, idToken string) (string, error)
}

// --- Messaging Interfaces ---

type Publisher interface {
	PublishCloudEvent(ctx context.Context, topic string, e event.Event) (string, error)
}

// --- Storage Interfaces ---

type BlobStore interface {
	Write(ctx context.Context, bucket, object string, data []byte) error
	Read(ctx context.Context, bucket, object string) ([]byte, error)
}

// --- Notification Interfaces ---

type NotificationService interface {
	SendPushNotification(ctx context.Context, userID string, title, body string, tokens []string, data map[string]string) error
}

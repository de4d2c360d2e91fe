package firestore

import (
	"cloud.google.com/go/firestore"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

type Client struct {
	fs *firestore.Client
}

func NewClient(client *firestore.Client) *Client {
	return &Client{fs: client}
}

func (c *Client) Close() error {
	return c.fs.Close()
}

// Raw exposes the underlying client for transactions.
func (c *Client) Raw() *firestore.Client {
	return c.fs
}

// Users is the top-level collection: users/{uid}
func (c *Client) Users() *Collection[types.UserDocument] {
	return &Collection[types.UserDocument]{
		Ref:           c.fs.Collection(shared.CollectionUsers),
		ToFirestore:   UserDocumentToFirestore,
		FromFirestore: FirestoreToUserDocument,
	}
}

package ports

import (
	"context"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

// StateRepository persists the whole document. Load returns an empty
// document when nothing has been saved yet. Save replaces what was stored.
type StateRepository interface {
	Load(ctx context.Context) (*domain.State, error)
	Save(ctx context.Context, state *domain.State) error
	Close() error
}

// LinkRegistry defines the short link operations
type LinkRegistry interface {
	CreateLink(ctx context.Context, ownerID, targetURL, customCode string, ttlSeconds int64) (*domain.LinkRecord, error)
	ListLinksByOwner(ctx context.Context, ownerID string) ([]domain.LinkRecord, error)
	ResolveAndHit(ctx context.Context, code string) (string, error)
	ShortURL(code string) string
}

// AccountService defines registration and login
type AccountService interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	ExternalLogin(ctx context.Context, email string) (string, error)
}

// TokenVerifier checks bearer tokens
type TokenVerifier interface {
	Verify(token string) (*domain.Identity, error)
}

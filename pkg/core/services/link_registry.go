package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

const (
	DefaultTTLSeconds int64 = 60 * 60 * 24 * 7
	// MaxTTLSeconds keeps expiresAt well inside int64 milliseconds.
	MaxTTLSeconds     int64 = 100 * 365 * 24 * 60 * 60
	DefaultCodeLength       = 7
	// MaxCodeAttempts bounds how many generated codes are tried before
	// CreateLink gives up with ErrExhausted.
	MaxCodeAttempts = 5
)

// LinkRegistry owns the shorts collection. Every call loads the whole
// document, and every mutating call rewrites it before returning, so a
// click costs O(records). That is the scalability limit of this design.
type LinkRegistry struct {
	state      *StateStore
	validate   *validator.Validate
	baseURL    string
	defaultTTL int64
	codeLength int
	newCode    CodeGenerator
	newID      func() string
	now        func() time.Time
}

type RegistryOption func(*LinkRegistry)

// WithBaseURL sets the prefix used by ShortURL.
func WithBaseURL(baseURL string) RegistryOption {
	return func(r *LinkRegistry) { r.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithDefaultTTL sets the TTL applied when the caller gives none.
func WithDefaultTTL(seconds int64) RegistryOption {
	return func(r *LinkRegistry) {
		if seconds > 0 {
			r.defaultTTL = seconds
		}
	}
}

func WithClock(now func() time.Time) RegistryOption {
	return func(r *LinkRegistry) { r.now = now }
}

func WithCodeGenerator(gen CodeGenerator) RegistryOption {
	return func(r *LinkRegistry) { r.newCode = gen }
}

func NewLinkRegistry(state *StateStore, opts ...RegistryOption) *LinkRegistry {
	r := &LinkRegistry{
		state:      state,
		validate:   validator.New(),
		defaultTTL: DefaultTTLSeconds,
		codeLength: DefaultCodeLength,
		newCode:    generateShortCode,
		newID:      uuid.NewString,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateLink validates the target, allocates a code and appends a new
// record. A non-empty customCode is used verbatim and must not collide
// with any code ever issued, expired ones included. ttlSeconds <= 0
// selects the default TTL.
func (r *LinkRegistry) CreateLink(ctx context.Context, ownerID, targetURL, customCode string, ttlSeconds int64) (*domain.LinkRecord, error) {
	if ownerID == "" {
		return nil, domain.NewError(domain.ErrValidation, "Owner required")
	}
	if targetURL == "" {
		return nil, domain.NewError(domain.ErrValidation, "URL required")
	}
	if err := r.validate.Var(targetURL, "url"); err != nil {
		return nil, domain.NewError(domain.ErrValidation, "Invalid URL")
	}
	// a code is one path segment; these characters could never route back to it
	if customCode != "" && r.validate.Var(customCode, "excludesall=/?#") != nil {
		return nil, domain.NewError(domain.ErrValidation, "Invalid custom code")
	}
	if ttlSeconds <= 0 {
		ttlSeconds = r.defaultTTL
	}
	if ttlSeconds > MaxTTLSeconds {
		return nil, domain.NewError(domain.ErrValidation, "ttlSeconds too large")
	}

	var created domain.LinkRecord
	err := r.state.Mutate(ctx, func(s *domain.State) error {
		code, err := r.allocateCode(s, customCode)
		if err != nil {
			return err
		}

		now := r.now().UnixMilli()
		created = domain.LinkRecord{
			ID:        r.newID(),
			OwnerID:   ownerID,
			TargetURL: targetURL,
			Code:      code,
			CreatedAt: now,
			ExpiresAt: now + ttlSeconds*1000,
			Clicks:    0,
		}
		s.Shorts = append(s.Shorts, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *LinkRegistry) allocateCode(s *domain.State, customCode string) (string, error) {
	if customCode != "" {
		if s.FindByCode(customCode) >= 0 {
			return "", domain.NewError(domain.ErrConflict, "Code already in use")
		}
		return customCode, nil
	}

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := r.newCode(r.codeLength)
		if err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		if s.FindByCode(code) < 0 {
			return code, nil
		}
	}
	return "", domain.NewError(domain.ErrExhausted,
		fmt.Sprintf("No free short code after %d attempts", MaxCodeAttempts))
}

// ListLinksByOwner returns every record owned by ownerID, expired ones
// included, in insertion order.
func (r *LinkRegistry) ListLinksByOwner(ctx context.Context, ownerID string) ([]domain.LinkRecord, error) {
	list := []domain.LinkRecord{}
	err := r.state.Read(ctx, func(s *domain.State) error {
		for _, l := range s.Shorts {
			if l.OwnerID == ownerID {
				list = append(list, l)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ResolveAndHit returns the target of code and counts the visit. The
// click is persisted before the target is returned.
func (r *LinkRegistry) ResolveAndHit(ctx context.Context, code string) (string, error) {
	var target string
	err := r.state.Mutate(ctx, func(s *domain.State) error {
		i := s.FindByCode(code)
		if i < 0 {
			return domain.NewError(domain.ErrNotFound, "Not found")
		}
		link := &s.Shorts[i]
		if link.ExpiredAt(r.now()) {
			return domain.NewError(domain.ErrExpired, "Link expired")
		}
		link.Clicks++
		target = link.TargetURL
		return nil
	})
	if err != nil {
		return "", err
	}
	return target, nil
}

// ShortURL is the public address of code.
func (r *LinkRegistry) ShortURL(code string) string {
	return r.baseURL + "/" + code
}

package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wadjakorntonsri/shortly/pkg/core/domain"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// AccountService registers users and logs them in. It owns the users
// collection of the shared document.
type AccountService struct {
	state  *StateStore
	tokens *TokenService
	cost   int
}

func NewAccountService(state *StateStore, tokens *TokenService) *AccountService {
	return &AccountService{state: state, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Signup creates an account and returns a token for it.
func (s *AccountService) Signup(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.NewError(domain.ErrValidation, "Username and password required")
	}
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return "", domain.NewError(domain.ErrValidation, "Username too short")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", domain.NewError(domain.ErrValidation, "Password must be at least 6 chars")
	}

	// Fail fast before paying for bcrypt; the check is repeated under the write lock.
	if err := s.state.Read(ctx, func(st *domain.State) error {
		if st.FindUser(username) >= 0 {
			return errUsernameTaken()
		}
		return nil
	}); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{ID: uuid.NewString(), Username: username, Hash: string(hash)}
	if err := s.state.Mutate(ctx, func(st *domain.State) error {
		if st.FindUser(username) >= 0 {
			return errUsernameTaken()
		}
		st.Users = append(st.Users, user)
		return nil
	}); err != nil {
		return "", err
	}

	return s.tokens.Issue(user)
}

// Login checks the password and returns a fresh token.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.NewError(domain.ErrValidation, "Username and password required")
	}

	var user domain.User
	found := false
	if err := s.state.Read(ctx, func(st *domain.State) error {
		if i := st.FindUser(username); i >= 0 {
			user = st.Users[i]
			found = true
		}
		return nil
	}); err != nil {
		return "", err
	}

	if !found || user.Hash == "" {
		return "", domain.NewError(domain.ErrInvalidCredentials, "Invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return "", domain.NewError(domain.ErrInvalidCredentials, "Invalid username or password")
	}

	return s.tokens.Issue(user)
}

// ExternalLogin signs in a user whose email was verified by an identity
// provider, creating a password-less account on first use. The returned
// token is the same kind Signup and Login issue.
func (s *AccountService) ExternalLogin(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.NewError(domain.ErrValidation, "Email required")
	}

	var user domain.User
	if err := s.state.Mutate(ctx, func(st *domain.State) error {
		if i := st.FindUser(email); i >= 0 {
			// a password account with this name belongs to someone else
			if st.Users[i].Hash != "" {
				return errUsernameTaken()
			}
			user = st.Users[i]
			return nil
		}
		user = domain.User{ID: uuid.NewString(), Username: email}
		st.Users = append(st.Users, user)
		return nil
	}); err != nil {
		return "", err
	}

	return s.tokens.Issue(user)
}

func errUsernameTaken() error {
	return domain.NewError(domain.ErrConflict, "Username already taken")
}

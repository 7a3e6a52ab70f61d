package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"privacyhub/internal/apperr"
	"privacyhub/internal/models"
	"privacyhub/internal/observability"
	"privacyhub/internal/store"
)

// Session is what registration and login hand back to the client.
type Session struct {
	Identity models.PublicIdentity
	Token    string
	Claims   *Claims
}

type AuthService struct {
	identities store.IdentityStore
	profiles   store.ProfileStore
	tokens     *TokenService
	cost       int
	logger     *zap.Logger
	metrics    *observability.Metrics

	// compared against on unknown identifiers so both login failures cost
	// the same
	dummyHash []byte
}

func NewAuthService(
	identities store.IdentityStore,
	profiles store.ProfileStore,
	tokens *TokenService,
	cost int,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		identities: identities,
		profiles:   profiles,
		tokens:     tokens,
		cost:       cost,
		logger:     logger,
		metrics:    metrics,
		dummyHash:  dummy,
	}, nil
}

const registerFailed = "An error occurred during registration."
const loginFailed = "An error occurred during login."

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*Session, error) {
	if username == "" || email == "" || password == "" {
		return nil, apperr.ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.ErrInvalidInput
		}
		return nil, apperr.Wrap(apperr.KindInternal, registerFailed, err)
	}

	identity := &models.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			return nil, apperr.ErrUserExists
		}
		return nil, apperr.Wrap(apperr.KindInternal, registerFailed, err)
	}
	if _, err := s.profiles.Get(ctx, identity.ID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, registerFailed, err)
	}

	session, err := s.issue(identity.Public())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, registerFailed, err)
	}
	s.metrics.Registered()
	s.logger.Info("user registered", zap.String("user_id", identity.ID))
	return session, nil
}

// Login accepts a username or email. Unknown identifiers and wrong passwords
// both return apperr.ErrAuthFailed.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	if identifier == "" || password == "" {
		return nil, apperr.ErrInvalidInput
	}

	identity, err := s.identities.FindByLogin(ctx, identifier)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, apperr.Wrap(apperr.KindInternal, loginFailed, err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.metrics.Login("failure")
		return nil, apperr.ErrAuthFailed
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		s.metrics.Login("failure")
		return nil, apperr.ErrAuthFailed
	}

	session, err := s.issue(identity.Public())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, loginFailed, err)
	}
	s.metrics.Login("success")
	return session, nil
}

func (s *AuthService) issue(identity models.PublicIdentity) (*Session, error) {
	token, claims, err := s.tokens.Sign(identity)
	if err != nil {
		return nil, err
	}
	return &Session{Identity: identity, Token: token, Claims: claims}, nil
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"planboard/internal/model"
	"planboard/internal/repository"
)

// DefaultRole is used when a refreshed author record carries no role.
const DefaultRole = "guy"

// Session is the complete session payload. Nothing else survives a refresh.
type Session struct {
	Role     string `json:"role"`
	Username string `json:"username"`
}

type Resolver struct {
	authors repository.AuthorRepositoryInterface
	logger  *log.Entry
	now     func() time.Time
}

type ResolverOption func(*Resolver)

func WithLogger(entry *log.Entry) ResolverOption {
	return func(r *Resolver) { r.logger = entry }
}

func WithClock(now func() time.Time) ResolverOption {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(authors repository.AuthorRepositoryInterface, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		authors: authors,
		logger:  log.WithField("component", "identity"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SignIn resolves a normalized provider profile to a local author, creating one on first sign-in.
// It fails with ErrInvalidEmail when the email is unusable and ErrIdentityConflict when the
// email or username already belongs to an account of another provider.
func (r *Resolver) SignIn(ctx context.Context, p Profile) (Session, error) {
	email := SanitizeEmail(p.Email)
	if email == "" {
		r.logger.WithField("provider", p.Provider).Warn("sign-in rejected: invalid or missing email")
		return Session{}, ErrInvalidEmail
	}

	existing, err := r.authors.FindByProviderID(ctx, p.ID)
	if err != nil {
		r.logger.WithError(err).Error("author lookup by provider id failed")
	}
	if existing == nil {
		existing, err = r.authors.FindByEmail(ctx, email)
		if err != nil {
			r.logger.WithError(err).Error("author lookup by email failed")
		}
	}

	if existing != nil {
		if existing.Provider == "" || existing.Provider != string(p.Provider) {
			r.logger.WithFields(log.Fields{
				"provider": p.Provider,
				"stored":   existing.Provider,
			}).Warn("sign-in rejected: identity belongs to another provider")
			return Session{}, ErrIdentityConflict
		}
		return Session{Role: existing.Role, Username: existing.Username}, nil
	}

	author := r.newAuthor(p, email)
	if err := r.authors.Create(ctx, author); err != nil {
		if errors.Is(err, repository.ErrDuplicateAuthor) {
			return Session{}, ErrIdentityConflict
		}
		return Session{}, fmt.Errorf("create author: %w", err)
	}
	r.logger.WithFields(log.Fields{
		"provider": p.Provider,
		"username": author.Username,
	}).Info("author created")
	return Session{Role: author.Role, Username: author.Username}, nil
}

func (r *Resolver) newAuthor(p Profile, email string) *model.Author {
	username := SanitizeUsername(firstOf(p.Username, localPart(email)))
	if username == "" {
		username = FallbackUsername(r.now())
	}
	name := SanitizeName(p.Name)
	if name == "" {
		name = username
	}
	bio := SanitizeBio(p.Bio)
	if bio == "" {
		bio = DefaultBio
	}
	return &model.Author{
		ProviderID: p.ID,
		Name:       name,
		Username:   username,
		Email:      email,
		Provider:   string(p.Provider),
		Image:      SanitizeImage(p.Image),
		Bio:        bio,
		Role:       p.Role,
	}
}

// Refresh rebuilds the session from the stored author. A vanished author revokes the session.
func (r *Resolver) Refresh(ctx context.Context, s Session) (Session, error) {
	if s.Username == "" {
		return Session{}, ErrSessionRevoked
	}
	author, err := r.authors.FindByUsername(ctx, s.Username)
	if err != nil {
		return Session{}, fmt.Errorf("refresh session: %w", err)
	}
	if author == nil {
		r.logger.WithField("username", s.Username).Error("session user vanished, aborting session")
		return Session{}, ErrSessionRevoked
	}
	role := author.Role
	if role == "" {
		role = DefaultRole
	}
	return Session{Role: role, Username: author.Username}, nil
}

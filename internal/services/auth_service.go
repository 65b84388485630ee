package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// SignupScope is the idempotency scope of sign-up requests.
const SignupScope = "/signup"

// SignUpInput carries the sign-up form.
type SignUpInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Username  *string
}

// AuthService registers and authenticates users. Sign-up writes both
// generations: a current profile and a legacy credential row sharing its id.
type AuthService struct {
	DB *gorm.DB

	// AnyPassword lets a current-schema profile without a legacy credential
	// sign in with any password.
	AnyPassword bool
	// IdemTTL is how long a sign-up Idempotency-Key is honored.
	IdemTTL time.Duration
	// NameLocale drives title-casing of first and last names.
	NameLocale language.Tag
}

// NewAuthService constructs an AuthService.
func NewAuthService(db *gorm.DB, anyPassword bool, idemTTL time.Duration) *AuthService {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &AuthService{
		DB:          db,
		AnyPassword: anyPassword,
		IdemTTL:     idemTTL,
		NameLocale:  language.Und,
	}
}

// SignUp registers a user. When key is non-empty and a previous sign-up with
// the same key and the same normalized request succeeded, that profile is
// returned with replayed=true and nothing is written. The same key with a
// different request is ErrIdempotencyMismatch. A duplicate email in either
// schema is ErrConflict.
func (s *AuthService) SignUp(ctx context.Context, key string, in SignUpInput) (profile domain.UserProfile, replayed bool, err error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "SignUp",
		trace.WithAttributes(attribute.Bool("idempotency.key_present", key != "")),
	)
	defer span.End()

	in, err = s.normalize(in)
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	key = strings.TrimSpace(key)
	fp := signupFingerprint(in)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if key != "" {
			rec, err := repo.GetIdempotency(ctx, tx, SignupScope, key, time.Now().UTC())
			switch {
			case err == nil:
				if rec.Fingerprint == "" || subtle.ConstantTimeCompare([]byte(rec.Fingerprint), []byte(fp)) != 1 {
					return ErrIdempotencyMismatch
				}
				u, err := repo.GetUser(ctx, tx, rec.ResourceID)
				if err != nil {
					return err
				}
				profile, replayed = domain.ProfileFromUser(*u), true
				return nil
			case !errors.Is(err, repo.ErrNotFound):
				return err
			}
		}

		taken, err := repo.EmailTaken(ctx, tx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}

		u := &domain.User{
			ID:        uuid.NewString(),
			Username:  in.Username,
			Email:     in.Email,
			FirstName: in.FirstName,
			LastName:  in.LastName,
		}
		if err := repo.CreateUser(ctx, tx, u); err != nil {
			return conflictOr(err)
		}
		if err := repo.CreateLegacyUser(ctx, tx, &domain.LegacyUser{
			UserID:    u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Password:  HashPassword(in.Password),
		}); err != nil {
			return conflictOr(err)
		}
		if key != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, SignupScope, key, fp, u.ID, http.StatusCreated, s.IdemTTL); err != nil {
				return conflictOr(err)
			}
		}
		profile = domain.ProfileFromUser(*u)
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, false, dependency("sign up", err)
	}
	span.SetAttributes(attribute.Bool("idempotency.replayed", replayed))
	return profile, replayed, nil
}

func (s *AuthService) normalize(in SignUpInput) (SignUpInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return in, invalid("All fields are required")
	}
	if in.Username != nil {
		u := strings.TrimSpace(*in.Username)
		if u == "" {
			in.Username = nil
		} else {
			in.Username = &u
		}
	}
	title := cases.Title(s.NameLocale)
	in.FirstName = title.String(in.FirstName)
	in.LastName = title.String(in.LastName)
	return in, nil
}

// signupFingerprint digests a normalized sign-up request. The password is
// included so a replay cannot be obtained by someone who only knows the
// email and the key.
func signupFingerprint(in SignUpInput) string {
	username := ""
	if in.Username != nil {
		username = *in.Username
	}
	h := sha256.New()
	for _, part := range []string{in.Email, in.FirstName, in.LastName, username, in.Password} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func conflictOr(err error) error {
	if errors.Is(err, repo.ErrDuplicate) {
		return ErrConflict
	}
	return err
}

// SignIn authenticates email/password and returns the profile the client
// should use from now on.
//
// A legacy credential row, when present, must verify; its id then resolves
// to the current profile if one shares it. Without a credential row a
// current profile signs in only when AnyPassword is set.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.UserProfile, error) {
	ctx, span := otel.Tracer("services/AuthService").Start(ctx, "SignIn")
	defer span.End()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.UserProfile{}, invalid("Email and password are required")
	}

	var out domain.UserProfile
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cred, err := repo.FindLegacyUserByEmail(ctx, tx, email)
		switch {
		case err == nil:
			if !VerifyPassword(cred.Password, password) {
				return ErrInvalidCredentials
			}
			if u, err := repo.GetUser(ctx, tx, cred.UserID); err == nil {
				out = domain.ProfileFromUser(*u)
				return nil
			} else if !errors.Is(err, repo.ErrNotFound) {
				return err
			}
			out = domain.ProfileFromLegacy(*cred)
			return nil
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		u, err := repo.FindUserByEmail(ctx, tx, email)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		if !s.AnyPassword {
			return ErrInvalidCredentials
		}
		out = domain.ProfileFromUser(*u)
		return nil
	})
	if err != nil {
		return domain.UserProfile{}, dependency("sign in", err)
	}
	return out, nil
}

// HashPassword returns the hex SHA-256 digest stored in legacy credential rows.
func HashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares pw against a stored hex digest in constant time.
func VerifyPassword(stored, pw string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(HashPassword(pw))) == 1
}

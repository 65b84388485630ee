package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
	"github.com/tbourn/farm-dashboard-backend/internal/repo"
)

// IdentityResolver maps an incoming user id to the schema generation that
// holds its profile. The id's shape picks which table is probed first; on a
// miss the other table is probed, so either schema may answer.
type IdentityResolver struct {
	DB *gorm.DB
}

// NewIdentityResolver constructs an IdentityResolver over db.
func NewIdentityResolver(db *gorm.DB) *IdentityResolver {
	return &IdentityResolver{DB: db}
}

// Resolve returns the identity and profile for id, or ErrUserNotFound when
// neither schema has it.
func (r *IdentityResolver) Resolve(ctx context.Context, id string) (domain.ResolvedProfile, error) {
	ctx, span := otel.Tracer("services/IdentityResolver").Start(ctx, "Resolve",
		trace.WithAttributes(attribute.String("user.id", id)),
	)
	defer span.End()

	rp, err := resolveIn(ctx, r.DB, id)
	if err == nil {
		span.SetAttributes(attribute.String("user.generation", rp.Identity.Generation.String()))
	}
	return rp, err
}

// resolveIn runs the two-step probe against db, which may be a transaction.
func resolveIn(ctx context.Context, db *gorm.DB, id string) (domain.ResolvedProfile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ResolvedProfile{}, ErrUserNotFound
	}
	first := domain.ClassifyID(id)
	for _, gen := range []domain.Generation{first, first.Other()} {
		p, err := probe(ctx, db, gen, id)
		if err == nil {
			return domain.ResolvedProfile{
				Identity: domain.Identity{ID: id, Generation: gen},
				Profile:  p,
			}, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return domain.ResolvedProfile{}, dependency("resolve identity", err)
		}
	}
	return domain.ResolvedProfile{}, ErrUserNotFound
}

func probe(ctx context.Context, db *gorm.DB, gen domain.Generation, id string) (domain.UserProfile, error) {
	if gen == domain.GenerationCurrent {
		u, err := repo.GetUser(ctx, db, id)
		if err != nil {
			return domain.UserProfile{}, err
		}
		return domain.ProfileFromUser(*u), nil
	}
	u, err := repo.GetLegacyUser(ctx, db, id)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return domain.ProfileFromLegacy(*u), nil
}

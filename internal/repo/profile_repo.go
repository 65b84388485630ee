package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/farm-dashboard-backend/internal/domain"
)

// GetUser fetches a current-schema profile by exact id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetLegacyUser fetches a legacy-schema profile by exact id, or ErrNotFound.
func GetLegacyUser(ctx context.Context, db *gorm.DB, id string) (*domain.LegacyUser, error) {
	var u domain.LegacyUser
	if err := db.WithContext(ctx).Where("user_id = ?", id).Take(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByEmail looks up a current-schema profile by email (case-insensitive).
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindLegacyUserByEmail looks up a legacy credential row by email (case-insensitive).
func FindLegacyUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.LegacyUser, error) {
	var u domain.LegacyUser
	err := db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken reports whether email is registered in either schema.
func EmailTaken(ctx context.Context, db *gorm.DB, email string) (bool, error) {
	if _, err := FindUserByEmail(ctx, db, email); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := FindLegacyUserByEmail(ctx, db, email); err == nil {
		return true, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return false, nil
}

// CreateUser inserts a current-schema profile. A unique violation on id,
// email or username is reported as ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// CreateLegacyUser inserts a legacy credential row, mapping unique
// violations to ErrDuplicate.
func CreateLegacyUser(ctx context.Context, db *gorm.DB, u *domain.LegacyUser) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FarmLocation is the set of farm fields a profile update may change. Nil
// pointers leave the stored value untouched.
type FarmLocation struct {
	FarmName     *string
	Latitude     float64
	Longitude    float64
	SizeHectares *float64
}

// UpdateFarmLocation sets the farm coordinates (and optional name/size) of a
// current-schema profile and returns the updated row. Returns ErrNotFound if
// no profile has id.
func UpdateFarmLocation(ctx context.Context, db *gorm.DB, id string, loc FarmLocation) (*domain.User, error) {
	updates := map[string]any{
		"farm_latitude":  loc.Latitude,
		"farm_longitude": loc.Longitude,
	}
	if loc.FarmName != nil {
		updates["farm_name"] = *loc.FarmName
	}
	if loc.SizeHectares != nil {
		updates["farm_size_hectares"] = *loc.SizeHectares
	}
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetUser(ctx, db, id)
}

// ListUserIDsWithCoordinates returns the ids of every current-schema profile
// with both farm coordinates set, ordered by creation time.
func ListUserIDsWithCoordinates(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("farm_latitude IS NOT NULL AND farm_longitude IS NOT NULL").
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

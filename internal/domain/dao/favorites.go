package dao

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// favoritesHelper manages (actor, entity) favorite rows for one entity
// family. Add and remove are idempotent; the unique index on the favstar
// table resolves concurrent adds.
type favoritesHelper struct {
	db        *gorm.DB
	className entity.FavStarClassName
}

// favoritedIDs returns the subset of ids the current actor has favorited.
func (h *favoritesHelper) favoritedIDs(ctx context.Context, ids []int) ([]int, error) {
	actor := ActorFromContext(ctx)
	if actor.IsAnonymous() || len(ids) == 0 {
		return []int{}, nil
	}
	var found []int
	err := h.db.WithContext(ctx).
		Model(&entity.FavStar{}).
		Where("user_id = ? AND class_name = ? AND obj_id IN ?", actor.ID, h.className, ids).
		Pluck("obj_id", &found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// add records a favorite for the current actor. Adding twice leaves one row.
func (h *favoritesHelper) add(ctx context.Context, objID int) error {
	actor := ActorFromContext(ctx)
	if actor.IsAnonymous() {
		return nil
	}
	var count int64
	err := h.db.WithContext(ctx).
		Model(&entity.FavStar{}).
		Where("user_id = ? AND class_name = ? AND obj_id = ?", actor.ID, h.className, objID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	err = h.db.WithContext(ctx).Create(&entity.FavStar{
		UserID:    actor.ID,
		ClassName: h.className,
		ObjID:     objID,
	}).Error
	if err != nil && isDuplicateKeyError(err) {
		// A concurrent add won the race; the favorite exists either way.
		return nil
	}
	return err
}

// remove deletes the actor's favorite row if present.
func (h *favoritesHelper) remove(ctx context.Context, objID int) error {
	actor := ActorFromContext(ctx)
	if actor.IsAnonymous() {
		return nil
	}
	return h.db.WithContext(ctx).
		Where("user_id = ? AND class_name = ? AND obj_id = ?", actor.ID, h.className, objID).
		Delete(&entity.FavStar{}).Error
}

// isDuplicateKeyError matches unique-constraint violations across the
// supported drivers.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}

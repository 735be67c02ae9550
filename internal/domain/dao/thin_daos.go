package dao

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// The DAOs below are thin bindings: the inherited surface plus the one or
// two lookups their callers actually need.

// DatasetDAO binds the generic DAO to datasets.
type DatasetDAO struct {
	*BaseDAO[entity.Dataset]
}

// NewDatasetDAO creates the dataset DAO.
func NewDatasetDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Dataset]) (*DatasetDAO, error) {
	opts = append([]Option[entity.Dataset]{
		WithUUIDColumn[entity.Dataset]("uuid"),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &DatasetDAO{BaseDAO: base}, nil
}

// FindByDatabaseID returns the datasets registered against a database.
func (d *DatasetDAO) FindByDatabaseID(ctx context.Context, databaseID int) ([]*entity.Dataset, error) {
	var datasets []*entity.Dataset
	err := d.DB().WithContext(ctx).
		Where("database_id = ?", databaseID).
		Find(&datasets).Error
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

// DatabaseDAO binds the generic DAO to database connections.
type DatabaseDAO struct {
	*BaseDAO[entity.Database]
}

// NewDatabaseDAO creates the database DAO.
func NewDatabaseDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Database]) (*DatabaseDAO, error) {
	opts = append([]Option[entity.Database]{
		WithUUIDColumn[entity.Database]("uuid"),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &DatabaseDAO{BaseDAO: base}, nil
}

// FindByName returns the database with the given name, or nil.
func (d *DatabaseDAO) FindByName(ctx context.Context, name string) (*entity.Database, error) {
	var database entity.Database
	err := d.DB().WithContext(ctx).
		Where("database_name = ?", name).
		First(&database).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &database, nil
}

// UserDAO binds the generic DAO to users.
type UserDAO struct {
	*BaseDAO[entity.User]
}

// NewUserDAO creates the user DAO.
func NewUserDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.User]) (*UserDAO, error) {
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &UserDAO{BaseDAO: base}, nil
}

// FindByUsername returns the user with the given username, or nil.
func (d *UserDAO) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := d.DB().WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// TagDAO binds the generic DAO to tags and tagged objects.
type TagDAO struct {
	*BaseDAO[entity.Tag]
}

// NewTagDAO creates the tag DAO.
func NewTagDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Tag]) (*TagDAO, error) {
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &TagDAO{BaseDAO: base}, nil
}

// FindByName returns the tag with the given name, or nil.
func (d *TagDAO) FindByName(ctx context.Context, name string) (*entity.Tag, error) {
	var tag entity.Tag
	err := d.DB().WithContext(ctx).
		Where("name = ?", name).
		First(&tag).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// FindTaggedObjects returns the attachment rows for a tag, optionally
// narrowed to one object type.
func (d *TagDAO) FindTaggedObjects(ctx context.Context, tagID int, objectType string) ([]*entity.TaggedObject, error) {
	tx := d.DB().WithContext(ctx).Where("tag_id = ?", tagID)
	if objectType != "" {
		tx = tx.Where("object_type = ?", objectType)
	}
	var tagged []*entity.TaggedObject
	if err := tx.Find(&tagged).Error; err != nil {
		return nil, err
	}
	return tagged, nil
}

// SavedQueryDAO binds the generic DAO to saved queries. Saved queries are
// private: non-admins only see their own.
type SavedQueryDAO struct {
	*BaseDAO[entity.SavedQuery]
}

// NewSavedQueryDAO creates the saved-query DAO.
func NewSavedQueryDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.SavedQuery]) (*SavedQueryDAO, error) {
	opts = append([]Option[entity.SavedQuery]{
		WithUUIDColumn[entity.SavedQuery]("uuid"),
		WithBaseFilter[entity.SavedQuery](CreatedByVisibilityFilter{Column: "user_id"}),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &SavedQueryDAO{BaseDAO: base}, nil
}

// FindByDatabaseID returns the visible saved queries against a database.
func (d *SavedQueryDAO) FindByDatabaseID(ctx context.Context, databaseID int) ([]*entity.SavedQuery, error) {
	var queries []*entity.SavedQuery
	err := d.baseQuery(ctx, queryConfig{}).
		Where("db_id = ?", databaseID).
		Find(&queries).Error
	if err != nil {
		return nil, err
	}
	return queries, nil
}

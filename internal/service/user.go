package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
)

// UserService handles user reads, subscriptions and avatar management.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user id=%d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

// List returns a page of users ordered by username plus the total count.
func (s *UserService) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Order("username")
	if limit > 0 {
		offset := 0
		if page > 1 {
			offset = (page - 1) * limit
		}
		query = query.Offset(offset).Limit(limit)
	}

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

// Subscribe makes userID follow authorID. Following yourself is invalid,
// following twice is a conflict.
func (s *UserService) Subscribe(ctx context.Context, userID, authorID uint) (*model.User, error) {
	if userID == authorID {
		return nil, fmt.Errorf("%w: you cannot subscribe to yourself", model.ErrInvalidInput)
	}

	author, err := s.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}

	subscribed, err := s.IsSubscribed(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if subscribed {
		return nil, fmt.Errorf("%w: you are already subscribed to %s", model.ErrConflict, author.Username)
	}

	sub := model.Subscription{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: you are already subscribed to %s", model.ErrConflict, author.Username)
		}
		return nil, err
	}
	return author, nil
}

// Unsubscribe removes the subscription row; removing an absent one is a
// not-found error.
func (s *UserService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&model.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no subscription to user id=%d", model.ErrNotFound, authorID)
	}
	return nil
}

// IsSubscribed reports whether userID follows authorID. Anonymous callers
// (userID 0) follow nobody.
func (s *UserService) IsSubscribed(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SubscribedAuthorIDs returns the set of author ids the user follows.
// Empty for anonymous callers.
func (s *UserService) SubscribedAuthorIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if userID == 0 {
		return set, nil
	}
	var ids []uint
	err := s.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Subscriptions returns the page of authors the user follows plus the total.
func (s *UserService) Subscriptions(ctx context.Context, userID uint, page, limit int) ([]model.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", userID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("users.username")
	if limit > 0 {
		offset := 0
		if page > 1 {
			offset = (page - 1) * limit
		}
		query = query.Offset(offset).Limit(limit)
	}

	var authors []model.User
	if err := query.Find(&authors).Error; err != nil {
		return nil, 0, err
	}
	return authors, count, nil
}

// RecipesByAuthor returns the author's newest recipes, optionally truncated,
// plus the author's total recipe count.
func (s *UserService) RecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]model.Recipe, int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recipes []model.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, 0, err
	}
	return recipes, count, nil
}

// SetAvatar stores the avatar URL for the user.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, url string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("avatar_url", url).Error
}

// ClearAvatar removes the user's avatar reference.
func (s *UserService) ClearAvatar(ctx context.Context, userID uint) error {
	return s.SetAvatar(ctx, userID, "")
}

package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) FindPending(ctx context.Context, db *gorm.DB, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := db.WithContext(ctx).
		Where("status = ?", domain.NotificationStatusPending).
		Order("created_at, id").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sentAt time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND status = ?", id, domain.NotificationStatusPending).
		Updates(map[string]any{
			"status":  domain.NotificationStatusSent,
			"sent_at": sentAt,
		}).Error
}

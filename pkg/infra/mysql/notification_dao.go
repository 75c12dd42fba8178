package mysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 通知严重级别
const (
	SeverityCritical = 1
	SeverityMajor    = 2
	SeverityMinor    = 3
	SeverityNotice   = 4
)

// AdminNotification 后台通知收件箱记录
type AdminNotification struct {
	ID          int64  `gorm:"primaryKey"`
	Severity    int    `gorm:"column:severity"`
	Title       string `gorm:"column:title;size:255"`
	Description string `gorm:"column:description"`
	IsRemoved   bool   `gorm:"column:is_removed"`
	DateAdded   time.Time
}

// TableName 表名
func (AdminNotification) TableName() string {
	return "admin_notifications"
}

// NotificationDAO 后台通知数据访问对象
type NotificationDAO struct {
	db *gorm.DB
}

// NewNotificationDAO 创建 NotificationDAO 实例
func NewNotificationDAO(db *gorm.DB) *NotificationDAO {
	return &NotificationDAO{db: db}
}

// HasUnread 按标题精确匹配查询是否存在未删除通知
// 标题串内含完整 SKU，等值匹配即可去重
func (dao *NotificationDAO) HasUnread(ctx context.Context, title string) (bool, error) {
	var count int64
	result := dao.db.WithContext(ctx).
		Model(&AdminNotification{}).
		Where("title = ?", title).
		Where("is_removed = ?", false).
		Count(&count)

	if result.Error != nil {
		return false, fmt.Errorf("failed to count notifications: %w", result.Error)
	}
	return count > 0, nil
}

// Create 写入一条通知
func (dao *NotificationDAO) Create(ctx context.Context, severity int, title, description string) error {
	notification := AdminNotification{
		Severity:    severity,
		Title:       title,
		Description: description,
		DateAdded:   time.Now(),
	}

	result := dao.db.WithContext(ctx).Create(&notification)
	if result.Error != nil {
		return fmt.Errorf("failed to create notification: %w", result.Error)
	}
	return nil
}

package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConfigEntry 配置表记录（path 唯一键，value 存序列化 blob）
type ConfigEntry struct {
	Path      string `gorm:"primaryKey;size:255"`
	Value     string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

// TableName 表名
func (ConfigEntry) TableName() string {
	return "app_config"
}

// ConfigDAO 配置 blob 数据访问对象
// 实现 params.Backend 接口
type ConfigDAO struct {
	db *gorm.DB
}

// NewConfigDAO 创建 ConfigDAO 实例
func NewConfigDAO(db *gorm.DB) *ConfigDAO {
	return &ConfigDAO{db: db}
}

// Get 按路径读取配置值，记录不存在返回空串
func (dao *ConfigDAO) Get(ctx context.Context, path string) (string, error) {
	var entry ConfigEntry
	result := dao.db.WithContext(ctx).Where("path = ?", path).First(&entry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get config %s: %w", path, result.Error)
	}
	return entry.Value, nil
}

// Save 按路径覆盖写入配置值（不存在则插入）
func (dao *ConfigDAO) Save(ctx context.Context, path string, value string) error {
	entry := ConfigEntry{
		Path:      path,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	result := dao.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry)

	if result.Error != nil {
		return fmt.Errorf("failed to save config %s: %w", path, result.Error)
	}
	return nil
}

// Package repository 提供了数据访问层的实现。
package repository

import (
	"time"

	"papermind-go/internal/model"

	"gorm.io/gorm"
)

// ArtifactRepository 接口定义了临时文档记录的持久化操作。
// 这些记录用于审计每个临时对象是否被如期释放。
type ArtifactRepository interface {
	CreateArtifactRecord(record *model.TempArtifact) error
	MarkReleased(recordID uint) error
	FindHeldArtifacts() ([]model.TempArtifact, error)
}

// artifactRepository 是 ArtifactRepository 接口的 GORM 实现。
type artifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository 创建一个新的 ArtifactRepository 实例。
func NewArtifactRepository(db *gorm.DB) ArtifactRepository {
	return &artifactRepository{db: db}
}

// CreateArtifactRecord 在数据库中创建一条临时文档记录。
func (r *artifactRepository) CreateArtifactRecord(record *model.TempArtifact) error {
	return r.db.Create(record).Error
}

// MarkReleased 将指定记录标记为已释放。
func (r *artifactRepository) MarkReleased(recordID uint) error {
	now := time.Now()
	return r.db.Model(&model.TempArtifact{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"status":      model.ArtifactStatusReleased,
			"released_at": &now,
		}).Error
}

// FindHeldArtifacts 查找所有仍处于持有状态的记录，供运维排查泄漏。
func (r *artifactRepository) FindHeldArtifacts() ([]model.TempArtifact, error) {
	var records []model.TempArtifact
	err := r.db.Where("status = ?", model.ArtifactStatusHeld).Find(&records).Error
	return records, err
}

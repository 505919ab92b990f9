package model

import "time"

// TempArtifact 的状态值。
const (
	ArtifactStatusHeld     = 0 // 对象仍在存储中，归当前请求持有
	ArtifactStatusReleased = 1 // 对象已删除
)

// TempArtifact 定义了 temp_artifact 表的 ORM 模型。
// 它记录了每个临时上传文档的生命周期，用于审计释放是否完成。
type TempArtifact struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ObjectName string     `gorm:"type:varchar(255);not null" json:"objectName"`
	FileName   string     `gorm:"type:varchar(255);not null" json:"fileName"`
	TotalSize  int64      `gorm:"not null" json:"totalSize"`
	UserID     uint       `gorm:"index;not null" json:"userId"`
	Status     int        `gorm:"type:tinyint;not null;default:0" json:"status"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	ReleasedAt *time.Time `gorm:"default:null" json:"releasedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (TempArtifact) TableName() string {
	return "temp_artifact"
}

// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"papermind-go/internal/config"
	"papermind-go/internal/model"
	"papermind-go/internal/repository"
	"papermind-go/pkg/log"
	"papermind-go/pkg/storage"

	"github.com/google/uuid"
)

// DocumentArtifact 是一次请求持有的临时文档对象。
// 对象归当前请求独占，Release 保证恰好删除一次，重复调用无副作用。
type DocumentArtifact struct {
	ObjectName string
	FileName   string
	Size       int64

	once    sync.Once
	release func()
}

// Release 释放临时对象。删除失败只记录日志，不影响调用方的结果。
func (a *DocumentArtifact) Release() {
	a.once.Do(a.release)
}

// ArtifactService 定义了临时文档生命周期管理的接口。
type ArtifactService interface {
	// WithDocument 将上传的文档写入对象存储，执行 body，并在 body 返回后
	// 无条件释放对象——成功、提交失败、轮询超时或 panic 都不例外。
	WithDocument(ctx context.Context, userID uint, file *multipart.FileHeader, body func(artifact *DocumentArtifact) error) error
}

type artifactService struct {
	minioCfg     config.MinIOConfig
	artifactRepo repository.ArtifactRepository
}

// NewArtifactService 创建一个新的 ArtifactService 实例。
func NewArtifactService(minioCfg config.MinIOConfig, artifactRepo repository.ArtifactRepository) ArtifactService {
	return &artifactService{minioCfg: minioCfg, artifactRepo: artifactRepo}
}

// WithDocument 获取并最终释放临时文档。
func (s *artifactService) WithDocument(ctx context.Context, userID uint, file *multipart.FileHeader, body func(artifact *DocumentArtifact) error) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("打开上传文档失败: %w", err)
	}
	defer src.Close()

	objectName := fmt.Sprintf("tmp/%s-%s", uuid.NewString(), file.Filename)
	if err := storage.PutObject(ctx, s.minioCfg.BucketName, objectName, src, file.Size); err != nil {
		return fmt.Errorf("写入临时文档失败: %w", err)
	}

	record := &model.TempArtifact{
		ObjectName: objectName,
		FileName:   file.Filename,
		TotalSize:  file.Size,
		UserID:     userID,
		Status:     model.ArtifactStatusHeld,
	}
	if err := s.artifactRepo.CreateArtifactRecord(record); err != nil {
		// 审计记录写不进去时不能把对象留在存储里
		if rmErr := storage.RemoveObject(context.Background(), s.minioCfg.BucketName, objectName); rmErr != nil {
			log.Errorf("回滚临时文档失败: object=%s, err=%v", objectName, rmErr)
		}
		return fmt.Errorf("创建临时文档记录失败: %w", err)
	}

	artifact := &DocumentArtifact{
		ObjectName: objectName,
		FileName:   file.Filename,
		Size:       file.Size,
		release: func() {
			// 释放用后台上下文：请求被取消时清理也必须完成
			bgCtx := context.Background()
			if err := storage.RemoveObject(bgCtx, s.minioCfg.BucketName, objectName); err != nil {
				log.Errorf("删除临时文档失败: object=%s, err=%v", objectName, err)
				return
			}
			if err := s.artifactRepo.MarkReleased(record.ID); err != nil {
				log.Errorf("更新临时文档记录失败: recordID=%d, err=%v", record.ID, err)
			}
		},
	}
	// body 内部无论走到哪个分支，对象都会被释放，panic 也不例外
	defer artifact.Release()

	return body(artifact)
}

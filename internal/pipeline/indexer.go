// Package pipeline 定义了会话消息的后台索引流程。
package pipeline

import (
	"context"
	"fmt"

	"papermind-go/internal/config"
	"papermind-go/internal/model"
	"papermind-go/pkg/es"
	"papermind-go/pkg/log"
	"papermind-go/pkg/tasks"
)

// Indexer 消费 Kafka 中的消息索引任务并写入 Elasticsearch。
type Indexer struct {
	esCfg config.ElasticsearchConfig
}

// NewIndexer 创建一个新的 Indexer 实例。
func NewIndexer(esCfg config.ElasticsearchConfig) *Indexer {
	return &Indexer{esCfg: esCfg}
}

// Process 将单条消息写入索引。文档 ID 由任务内容确定，
// Kafka 重投同一任务时只会覆盖同一文档，不会产生重复条目。
func (p *Indexer) Process(ctx context.Context, task tasks.MessageIndexTask) error {
	doc := model.EsMessage{
		DocID:     fmt.Sprintf("%d:%s", task.UserID, task.DedupKey()),
		UserID:    task.UserID,
		SessionID: task.SessionID,
		Query:     task.Query,
		Answer:    task.Answer,
		Kind:      task.Kind,
		Timestamp: task.Timestamp,
	}
	if err := es.IndexMessage(ctx, p.esCfg.IndexName, doc); err != nil {
		return fmt.Errorf("写入消息索引失败: %w", err)
	}
	log.Infof("消息已写入索引: sessionId=%s, docId=%s", task.SessionID, doc.DocID)
	return nil
}

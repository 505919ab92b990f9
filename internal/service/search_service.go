// Package service 包含了应用的业务逻辑层。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"papermind-go/internal/config"
	"papermind-go/internal/model"
	"papermind-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
)

// SearchService 定义了会话历史检索的接口。
type SearchService interface {
	// SearchMessages 在调用者自己的历史消息上做全文检索。
	SearchMessages(ctx context.Context, userID uint, query string, topK int) ([]model.SearchHit, error)
}

type searchService struct {
	esClient *elasticsearch.Client
	esCfg    config.ElasticsearchConfig
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(esClient *elasticsearch.Client, esCfg config.ElasticsearchConfig) SearchService {
	return &searchService{esClient: esClient, esCfg: esCfg}
}

// SearchMessages 执行历史记录检索。
// 查询始终带 user_id 过滤，一个用户永远搜不到别人的会话。
func (s *searchService) SearchMessages(ctx context.Context, userID uint, query string, topK int) ([]model.SearchHit, error) {
	if topK <= 0 {
		topK = 10
	}

	esQuery := map[string]interface{}{
		"size": topK,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":  query,
							"fields": []string{"query", "answer"},
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"user_id": userID}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("序列化 Elasticsearch 查询失败: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(s.esCfg.IndexName),
		s.esClient.Search.WithBody(&buf),
		s.esClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("向 Elasticsearch 发送搜索请求失败: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, errors.New("搜索请求失败")
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					SessionID string    `json:"session_id"`
					Query     string    `json:"query"`
					Answer    string    `json:"answer"`
					Timestamp time.Time `json:"timestamp"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("解析 Elasticsearch 响应失败: %w", err)
	}

	hits := make([]model.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, model.SearchHit{
			SessionID: h.Source.SessionID,
			Query:     h.Source.Query,
			Answer:    h.Source.Answer,
			Timestamp: h.Source.Timestamp,
			Score:     h.Score,
		})
	}
	return hits, nil
}

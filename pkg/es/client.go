// Package es 提供了与 Elasticsearch 交互的客户端功能。
// Elasticsearch 只服务于标题选择器的模糊检索，推荐排序本身永远不经过它。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cinematch-go/internal/config"
	"cinematch-go/internal/model"
	"cinematch-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var ESClient *elasticsearch.Client

// InitES 初始化 Elasticsearch 客户端。
func InitES(esCfg config.ElasticsearchConfig) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return createIndexIfNotExists(esCfg.IndexName)
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它。
func createIndexIfNotExists(indexName string) error {
	res, err := ESClient.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	// 200 说明索引已存在
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	// 404 说明索引不存在，需要创建
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	return createIndex(indexName)
}

// createIndex 按照标题检索的需要创建索引。
func createIndex(indexName string) error {
	// title 为 text 并带 keyword 子字段：match 用于模糊检索，keyword 用于排序/聚合
	mapping := `{
		"mappings": {
			"properties": {
				"row_idx": { "type": "integer" },
				"title": {
					"type": "text",
					"fields": {
						"raw": { "type": "keyword" }
					}
				},
				"genres": { "type": "text" }
			}
		}
	}`

	res, err := ESClient.Indices.Create(
		indexName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)

	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}

// RecreateIndex 删除并重建标题索引。索引重建采用整体替换而非增量更新。
func RecreateIndex(indexName string) error {
	res, err := ESClient.Indices.Delete([]string{indexName}, ESClient.Indices.Delete.WithIgnoreUnavailable(true))
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("删除索引 '%s' 失败: %s", indexName, res.String())
	}
	return createIndex(indexName)
}

// IndexTitleDoc 将单条电影标题文档索引到 Elasticsearch。
func IndexTitleDoc(ctx context.Context, indexName string, doc model.MovieTitleDoc) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: fmt.Sprintf("%d", doc.RowIdx),
		Body:       bytes.NewReader(docBytes),
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引标题文档到 Elasticsearch 出错: %s", res.String())
		return errors.New("failed to index title document")
	}

	return nil
}

// SearchTitles 在标题索引上执行 match 查询，供选择器自动补全使用。
func SearchTitles(ctx context.Context, indexName, query string, size int) ([]model.MovieTitleDoc, error) {
	var buf bytes.Buffer
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"title": map[string]interface{}{
					"query":     query,
					"fuzziness": "AUTO",
				},
			},
		},
		"size": size,
	}
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(indexName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.MovieTitleDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	docs := make([]model.MovieTitleDoc, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		docs = append(docs, hit.Source)
	}
	return docs, nil
}

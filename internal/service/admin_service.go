package service

import (
	"fmt"
	"time"

	"cinematch-go/internal/model"
	"cinematch-go/pkg/kafka"
	"cinematch-go/pkg/log"
	"cinematch-go/pkg/tasks"
)

// AdminService 接口定义了索引管理操作。
type AdminService interface {
	// TriggerRebuild 投递一个索引重建任务到 Kafka，返回任务 ID。
	// 重建由后台消费者串行执行，不在请求线程中进行。
	TriggerRebuild(requestedBy string, forceFetch bool) (string, error)
	// IndexStatus 返回当前在线索引的状态。
	IndexStatus() model.IndexStatusDTO
}

type adminService struct {
	recommendService RecommendService
}

// NewAdminService 创建一个新的 AdminService 实例。
func NewAdminService(recommendService RecommendService) AdminService {
	return &adminService{recommendService: recommendService}
}

// TriggerRebuild 发送索引重建任务。
func (s *adminService) TriggerRebuild(requestedBy string, forceFetch bool) (string, error) {
	task := tasks.IndexBuildTask{
		TaskID:      fmt.Sprintf("rebuild-%d", time.Now().UnixNano()),
		RequestedBy: requestedBy,
		ForceFetch:  forceFetch,
		RequestedAt: time.Now().Unix(),
	}
	if err := kafka.ProduceIndexBuildTask(task); err != nil {
		log.Error("投递索引重建任务失败", err)
		return "", fmt.Errorf("投递索引重建任务失败: %w", err)
	}
	log.Infof("[AdminService] 已投递索引重建任务, TaskID: %s, RequestedBy: %s", task.TaskID, requestedBy)
	return task.TaskID, nil
}

// IndexStatus 返回当前索引状态。
func (s *adminService) IndexStatus() model.IndexStatusDTO {
	return s.recommendService.Status()
}

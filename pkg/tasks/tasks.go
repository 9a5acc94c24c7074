// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// IndexBuildTask represents the data structure for an index rebuild job.
type IndexBuildTask struct {
	TaskID      string `json:"task_id"`
	RequestedBy string `json:"requested_by"`
	// ForceFetch 为 true 时忽略本地数据集副本，强制重新获取快照
	ForceFetch  bool  `json:"force_fetch"`
	RequestedAt int64 `json:"requested_at"`
}

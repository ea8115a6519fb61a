package queue

import (
	"encoding/json"
	"time"

	"github.com/tablecart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartSnapshotPurge 过期购物车快照清理任务
	TaskCartSnapshotPurge = constants.TaskCartSnapshotPurge
)

// CartSnapshotPurgePayload 快照清理任务载荷
type CartSnapshotPurgePayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewCartSnapshotPurgeTask 创建快照清理任务
func NewCartSnapshotPurgeTask(payload CartSnapshotPurgePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartSnapshotPurge, body), nil
}

// ParseCartSnapshotPurgePayload 解析快照清理任务载荷
func ParseCartSnapshotPurgePayload(body []byte) (CartSnapshotPurgePayload, error) {
	var payload CartSnapshotPurgePayload
	if len(body) == 0 {
		return payload, nil
	}
	err := json.Unmarshal(body, &payload)
	return payload, err
}

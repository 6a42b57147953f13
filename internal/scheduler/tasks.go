package scheduler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

const TaskWeeklyDigest = "digest.weekly"

type WeeklyDigestPayload struct {
	Vertical string `json:"vertical"`
	Force    bool   `json:"force,omitempty"`
}

func NewWeeklyDigestTask(payload WeeklyDigestPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.Vertical) == "" {
		return nil, fmt.Errorf("weekly digest task requires a vertical")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWeeklyDigest, data), nil
}

func ParseWeeklyDigestPayload(task *asynq.Task) (WeeklyDigestPayload, error) {
	var payload WeeklyDigestPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return WeeklyDigestPayload{}, err
	}
	return payload, nil
}

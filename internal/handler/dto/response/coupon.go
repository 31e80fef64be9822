package response

import (
	"time"

	"ordersaga/internal/usecase/queries"
	"ordersaga/internal/usecase/shared"
)

type EnqueueIssuanceResponse struct {
	Accepted bool  `json:"accepted"`
	Position int64 `json:"position,omitempty"`
}

type IssuanceStatusResponse struct {
	Status      string     `json:"status"`
	Position    int64      `json:"position,omitempty"`
	Message     string     `json:"message,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func FromIssuanceStatus(status *queries.IssuanceStatus) *IssuanceStatusResponse {
	if status.Result != nil {
		return fromIssuanceResult(status.Result)
	}
	return &IssuanceStatusResponse{
		Status:   "WAITING",
		Position: status.Position,
	}
}

func fromIssuanceResult(result *shared.IssuanceResult) *IssuanceStatusResponse {
	state := "REJECTED"
	if result.Success {
		state = "ISSUED"
	}
	completedAt := result.CompletedAt
	return &IssuanceStatusResponse{
		Status:      state,
		Message:     result.Message,
		CompletedAt: &completedAt,
	}
}

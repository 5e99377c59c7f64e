package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/taleforge/internal/services/messaging Service

import "context"

// Service picks narrator lines for story milestones
type Service interface {
	// GetMilestoneMessage returns a narrator line for an announced update
	GetMilestoneMessage(ctx context.Context, input *GetMilestoneMessageInput) (*GetMilestoneMessageOutput, error)

	// GetErrorMessage returns a user-friendly error message
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)
}

package queue

import "github.com/kaurvahtra/listq/internal/models"

// Notifier receives queue state transitions. Callbacks run synchronously
// outside the manager's lock, so they may call back into the Manager; a
// slow notifier delays the processing loop.
type Notifier interface {
	OnStatusChange(status *models.QueueStatus)
	OnMutationSuccess(mut *models.Mutation)
	OnMutationFailed(mut *models.Mutation, err error)
	OnQueueProcessed(result *models.ProcessResult)
}

// NopNotifier is a Notifier that ignores every event. Embed it to implement
// only the callbacks you care about.
type NopNotifier struct{}

func (NopNotifier) OnStatusChange(*models.QueueStatus)       {}
func (NopNotifier) OnMutationSuccess(*models.Mutation)       {}
func (NopNotifier) OnMutationFailed(*models.Mutation, error) {}
func (NopNotifier) OnQueueProcessed(*models.ProcessResult)   {}

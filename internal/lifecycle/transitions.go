package lifecycle

import (
	"time"

	"fieldops/internal/store"
)

// effect changes fields that depend on a status transition.
type effect func(job *store.Job, now time.Time)

type transition struct {
	from, to store.JobStatus
}

// transitions lists every allowed (from, to) pair and the effects that run,
// in order, when a job moves along it. A pair with from == to is an
// amendment of the job in its current status.
var transitions = map[transition][]effect{
	{store.JobStatusPending, store.JobStatusPending}:       {clearCompletion, touch},
	{store.JobStatusPending, store.JobStatusInProgress}:    {clearCompletion, touch},
	{store.JobStatusPending, store.JobStatusCompleted}:     {enterCompleted, touch},
	{store.JobStatusInProgress, store.JobStatusPending}:    {clearCompletion, touch},
	{store.JobStatusInProgress, store.JobStatusInProgress}: {clearCompletion, touch},
	{store.JobStatusInProgress, store.JobStatusCompleted}:  {enterCompleted, touch},
	{store.JobStatusCompleted, store.JobStatusPending}:     {clearCompletion, touch},
	{store.JobStatusCompleted, store.JobStatusInProgress}:  {clearCompletion, touch},
	{store.JobStatusCompleted, store.JobStatusCompleted}:   {amendCompleted, touch},
}

func lookupTransition(from, to store.JobStatus) ([]effect, bool) {
	effects, ok := transitions[transition{from, to}]
	return effects, ok
}

// enterCompleted stamps the completion date, closes the action-taken text
// and snapshots the parts list.
func enterCompleted(job *store.Job, now time.Time) {
	completed := now
	job.CompletedDate = &completed
	job.ActionTaken = NormalizeActionTaken(job.ActionTaken)
	job.Parts = SanitizeParts(job.Parts)
}

// amendCompleted re-applies the completion rules to an already completed
// job. The original completion date is kept.
func amendCompleted(job *store.Job, now time.Time) {
	if job.CompletedDate == nil {
		completed := now
		job.CompletedDate = &completed
	}
	job.ActionTaken = NormalizeActionTaken(job.ActionTaken)
	job.Parts = SanitizeParts(job.Parts)
}

// clearCompletion drops the completion date. Action taken and parts stay
// for a later re-completion.
func clearCompletion(job *store.Job, _ time.Time) {
	job.CompletedDate = nil
}

func touch(job *store.Job, now time.Time) {
	job.UpdatedAt = now
}

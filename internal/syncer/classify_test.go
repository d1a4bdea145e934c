package syncer_test

import (
	"testing"
	"time"

	"expertstats/internal/store"
	"expertstats/internal/syncer"
)

func TestClassify(t *testing.T) {
	now := time.Unix(1700000000, 0)
	recent := now.Add(-2 * time.Hour).Unix()
	stale := now.Add(-200 * 24 * time.Hour).Unix()
	const staleHours = 180 * 24

	activity := func(ts int64) *int64 { return &ts }

	cases := []struct {
		name string
		task store.Task
		want store.Flag
	}{
		{"canceled", store.Task{State: "canceled", LastActivity: activity(recent)}, store.FlagLost},
		{"canceled without activity", store.Task{State: "canceled"}, store.FlagLost},
		{"hidden", store.Task{State: "paid", Hidden: true, LastActivity: activity(recent)}, store.FlagLost},
		{"completed with activity", store.Task{State: "completed", LastActivity: activity(recent)}, store.FlagCompleted},
		{"paid with activity", store.Task{State: "paid", LastActivity: activity(recent)}, store.FlagWon},
		{"hired with activity", store.Task{State: "hired", LastActivity: activity(recent)}, store.FlagEstimated},
		{"published with activity", store.Task{State: "published", LastActivity: activity(recent)}, store.FlagUnset},
		{"hired private workroom", store.Task{State: "hired"}, store.FlagLost},
		{"completed private workroom", store.Task{State: "completed"}, store.FlagLost},
		{"refunded private workroom", store.Task{State: "refunded"}, store.FlagLost},
		{"paid without activity", store.Task{State: "paid"}, store.FlagUnset},
		{"zero activity counts as none", store.Task{State: "hired", LastActivity: activity(0)}, store.FlagLost},
		{"stale hired overrides estimated", store.Task{State: "hired", LastActivity: activity(stale)}, store.FlagLost},
		{"stale published", store.Task{State: "published", LastActivity: activity(stale)}, store.FlagLost},
		{"stale completed keeps completed", store.Task{State: "completed", LastActivity: activity(stale)}, store.FlagCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := tc.task
			if got := syncer.Classify(&task, now, staleHours); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestClassifyStaleBoundaryUsesWholeHours(t *testing.T) {
	now := time.Unix(1700000000, 0)
	const staleHours = 24

	exactly := now.Add(-24 * time.Hour).Unix()
	almost := now.Add(-25*time.Hour + time.Second).Unix()
	over := now.Add(-25 * time.Hour).Unix()

	for _, tc := range []struct {
		ts   int64
		want store.Flag
	}{
		{exactly, store.FlagEstimated},
		{almost, store.FlagEstimated},
		{over, store.FlagLost},
	} {
		ts := tc.ts
		task := &store.Task{State: "hired", LastActivity: &ts}
		if got := syncer.Classify(task, now, staleHours); got != tc.want {
			t.Fatalf("activity %d: expected %q, got %q", tc.ts, tc.want, got)
		}
	}
}

func TestClassifyStaleOverrideIsAbsolute(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := now.Add(-1000 * time.Hour).Unix()
	for _, state := range []string{"published", "estimated", "hired"} {
		for _, hidden := range []bool{true, false} {
			task := &store.Task{State: state, Hidden: hidden, LastActivity: &ts}
			if got := syncer.Classify(task, now, 10); got != store.FlagLost {
				t.Fatalf("state %s hidden %v: expected lost, got %q", state, hidden, got)
			}
		}
	}
}

func TestBuildQueueOrder(t *testing.T) {
	queue := syncer.BuildQueue()
	want := []struct {
		task  string
		page  int
		paged bool
	}{
		{syncer.TaskProfile, 0, false},
		{syncer.TaskTransactions, 1, true},
		{syncer.TaskLost, 0, false},
		{syncer.TaskPending, 1, true},
		{syncer.TaskActive, 1, true},
		{syncer.TaskPreferred, 1, true},
		{syncer.TaskInProgress, 1, true},
		{syncer.TaskFavourites, 1, true},
		{syncer.TaskPromoted, 1, false},
		{syncer.TaskHidden, 1, true},
		{syncer.TaskArchived, 1, true},
	}
	if len(queue) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(queue))
	}
	for i, step := range queue {
		if step.Task != want[i].task || step.Page != want[i].page || step.Paged != want[i].paged {
			t.Fatalf("step %d: expected %+v, got %+v", i, want[i], step)
		}
		if step.Label == "" {
			t.Fatalf("step %d has no label", i)
		}
	}
}

package syncer

import (
	"time"

	"expertstats/internal/store"
)

// Classify derives a task's flag from its state, visibility, and last
// activity. The first matching rule wins:
//
//   - canceled or hidden tasks are lost
//   - with activity: completed is completed, paid is won, hired is estimated
//   - without activity: hired, completed, and refunded are lost, since the
//     workroom is private to another expert
//
// Afterwards an open task (published, estimated, hired) whose last activity
// is more than staleHours old is lost, overriding any earlier result.
func Classify(task *store.Task, now time.Time, staleHours int64) store.Flag {
	if task == nil {
		return store.FlagUnset
	}
	var activity int64
	if task.LastActivity != nil {
		activity = *task.LastActivity
	}

	flag := store.FlagUnset
	switch {
	case task.State == "canceled":
		flag = store.FlagLost
	case task.Hidden:
		flag = store.FlagLost
	case activity != 0:
		switch task.State {
		case "completed":
			flag = store.FlagCompleted
		case "paid":
			flag = store.FlagWon
		case "hired":
			flag = store.FlagEstimated
		}
	default:
		switch task.State {
		case "hired", "completed", "refunded":
			flag = store.FlagLost
		}
	}

	if isOpenState(task.State) && activity != 0 && elapsedHours(now, activity) > staleHours {
		flag = store.FlagLost
	}
	return flag
}

func isOpenState(state string) bool {
	for _, open := range lostStates {
		if state == open {
			return true
		}
	}
	return false
}

// elapsedHours returns the whole hours between activity and now, rounded down.
func elapsedHours(now time.Time, activity int64) int64 {
	seconds := now.Unix() - activity
	hours := seconds / 3600
	if seconds < 0 && seconds%3600 != 0 {
		hours--
	}
	return hours
}

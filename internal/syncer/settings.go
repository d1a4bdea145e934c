package syncer

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"expertstats/internal/store"
)

const (
	settingAccountDetails    = store.SettingAccountDetails
	settingAverage           = store.SettingAverage
	settingBalance           = store.SettingBalance
	settingRevenue           = store.SettingRevenue
	settingCancelAfterDays   = store.SettingCancelAfterDays
	settingSyncCursor        = store.SettingSyncCursor
	settingLastSyncCompleted = store.SettingLastSyncCompleted
)

// staleHours returns the stale threshold in hours: the cancel_after_days
// setting when stored, else the configured fallback.
func (p *Processor) staleHours(ctx context.Context) (int64, error) {
	days := p.cancelAfterDays
	var raw json.RawMessage
	found, err := p.settings.GetSetting(ctx, settingCancelAfterDays, &raw)
	if err != nil {
		return 0, err
	}
	if found {
		if parsed, ok := parseDays(raw); ok {
			days = parsed
		}
	}
	return 24 * int64(days), nil
}

// parseDays accepts a JSON number or a numeric string.
func parseDays(raw json.RawMessage) (int, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number < 0 {
			return 0, false
		}
		return int(number), true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		value, err := strconv.Atoi(strings.TrimSpace(text))
		if err == nil && value >= 0 {
			return value, true
		}
	}
	return 0, false
}

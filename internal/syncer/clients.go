package syncer

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"expertstats/internal/logging"
	"expertstats/internal/services/codeable"
	"expertstats/internal/store"
)

var signInLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006 15:04",
	"January 2, 2006",
}

var freeformParser = newFreeformParser()

func newFreeformParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// storeClient upserts an embedded client. Absent clients and clients without
// a valid id are ignored; they are repeated across many tasks and
// transactions.
func (p *Processor) storeClient(ctx context.Context, logger *slog.Logger, client *codeable.ClientInfo, now time.Time) error {
	if client == nil || !client.ID.Valid() {
		logger.Debug("client without id skipped",
			logging.String(logging.FieldEventType, "record_skipped"),
			logging.String("entity", "client"),
		)
		return nil
	}
	record := &store.Client{
		ClientID:       int64(client.ID),
		FullName:       client.FullName,
		Role:           client.Role,
		LastSignIn:     parseSignIn(client.LastSignInAt, now),
		Pro:            bool(client.Pro),
		TimezoneOffset: client.TimezoneOffset.Decimal,
		Tiny:           client.Avatar.TinyURL,
		Small:          client.Avatar.SmallURL,
		Medium:         client.Avatar.MediumURL,
		Large:          client.Avatar.LargeURL,
		LastSync:       now.Unix(),
	}

	exists, err := p.records.ClientExists(ctx, record.ClientID)
	if err != nil {
		return writeFailure("client", record.ClientID, err)
	}
	if exists {
		err = p.records.UpdateClient(ctx, record)
	} else {
		err = p.records.InsertClient(ctx, record)
	}
	if err != nil {
		return writeFailure("client", record.ClientID, err)
	}
	return nil
}

// parseSignIn reads the free-form last_sign_in_at value. Well-known layouts
// are tried first, then natural language relative to now ("yesterday",
// "3 days ago"). A natural language match must cover the whole value, since a
// partial match fills the rest from now. Unparseable values yield nil.
func parseSignIn(value string, now time.Time) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range signInLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	result, err := freeformParser.Parse(value, now)
	if err != nil || result == nil {
		return nil
	}
	if result.Index != 0 || len(strings.TrimSpace(result.Text)) != len(value) {
		return nil
	}
	parsed := result.Time.UTC()
	return &parsed
}

package domain

import "fmt"

// MaxBatchTitles caps how many titles appear in one dispatch message.
const MaxBatchTitles = 3

// DispatchBatch is the ephemeral view of a user's pending notifications
// assembled at dispatch time. Records keeps the full pending set so the
// dispatcher can flip is_sent for exactly the records the message covered.
type DispatchBatch struct {
	UserID  int64
	Records []NotificationRecord
}

// Empty reports whether the batch has nothing to send.
func (b DispatchBatch) Empty() bool {
	return len(b.Records) == 0
}

// Title builds the combined message title: up to MaxBatchTitles posting
// titles, with an "외 N건" suffix when more are pending.
func (b DispatchBatch) Title() string {
	if b.Empty() {
		return ""
	}
	title := ""
	shown := len(b.Records)
	if shown > MaxBatchTitles {
		shown = MaxBatchTitles
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			title += "\n"
		}
		title += "- " + b.Records[i].Title
	}
	if rest := len(b.Records) - shown; rest > 0 {
		title += fmt.Sprintf("\n외 %d건", rest)
	}
	return title
}

// Link returns the representative link: the most recently created record.
// ListPending returns records newest first, so this is the first entry.
func (b DispatchBatch) Link() string {
	if b.Empty() {
		return ""
	}
	return b.Records[0].OriginalURL
}

// RecordIDs lists the IDs covered by this batch, for MarkSent.
func (b DispatchBatch) RecordIDs() []string {
	ids := make([]string, 0, len(b.Records))
	for _, rec := range b.Records {
		ids = append(ids, rec.ID)
	}
	return ids
}

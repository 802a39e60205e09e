package recordings

import (
	"context"
	"strings"

	"github.com/webNext25/zoom-smart-dialer/internal/bridge"
)

// BridgeSink persists finished call sessions as recordings.
type BridgeSink struct {
	svc *Service
}

func NewBridgeSink(svc *Service) *BridgeSink { return &BridgeSink{svc: svc} }

func (s *BridgeSink) SaveRecording(ctx context.Context, rec bridge.Recording) error {
	_, err := s.svc.Create(ctx, rec.UserID, CreateRequest{
		PhoneNumber: rec.Destination,
		Duration:    rec.DurationSeconds,
		Transcript:  flattenTranscript(rec.Transcript),
	})
	return err
}

// flattenTranscript renders the utterance list as speaker-prefixed lines in
// arrival order.
func flattenTranscript(utterances []bridge.Utterance) string {
	var b strings.Builder
	for i, u := range utterances {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(u.Speaker))
		b.WriteString(": ")
		b.WriteString(u.Text)
	}
	return b.String()
}

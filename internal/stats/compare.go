package stats

import (
	"fmt"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// CompareSession ranks one session against its project siblings: share of
// project tokens and messages, rank by tokens and by active duration, and
// whether the session sits above the project average.
func CompareSession(sessionID string, sessions []SessionData, policy Policy, breakThreshold time.Duration) (*model.SessionComparison, error) {
	type row struct {
		id       string
		tokens   uint64
		messages uint64
		duration uint32
	}

	rows := make([]row, 0, len(sessions))
	target := -1
	for i, sd := range sessions {
		acc := Accumulate(sd.Messages, policy)
		rows = append(rows, row{
			id:       sd.Session.SessionID,
			tokens:   acc.Tokens.Total(),
			messages: acc.Messages,
			duration: acc.Duration(breakThreshold),
		})
		if sd.Session.SessionID == sessionID ||
			sd.Session.ActualSessionID == sessionID ||
			sd.Session.FilePath == sessionID {
			target = i
		}
	}
	if target < 0 {
		return nil, fmt.Errorf("session %q not found in project", sessionID)
	}

	var totalTokens, totalMessages uint64
	for _, r := range rows {
		totalTokens += r.tokens
		totalMessages += r.messages
	}

	t := rows[target]
	cmp := &model.SessionComparison{
		SessionID:            t.id,
		RankByTokens:         1,
		RankByDuration:       1,
		ProjectSessionsTotal: len(rows),
	}
	if totalTokens > 0 {
		cmp.PercentOfTokens = float32(t.tokens) / float32(totalTokens) * 100
	}
	if totalMessages > 0 {
		cmp.PercentOfMessages = float32(t.messages) / float32(totalMessages) * 100
	}
	for i, r := range rows {
		if i == target {
			continue
		}
		if r.tokens > t.tokens {
			cmp.RankByTokens++
		}
		if r.duration > t.duration {
			cmp.RankByDuration++
		}
	}
	avg := totalTokens / uint64(len(rows))
	cmp.IsAboveAverage = t.tokens > avg
	return cmp, nil
}

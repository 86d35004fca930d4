package db

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

type (
	ChatSettings struct {
		ChatID              int64 `db:"id"`
		AntiSpamEnabled     bool  `db:"antispam_enabled"`
		AdminsBypassEnabled bool  `db:"bypass_enabled"`
		// SpamLimit overrides the process-wide message limit when positive.
		SpamLimit int `db:"spam_limit"`
		// MutePenalty is stored in seconds.
		MutePenalty Seconds `db:"mute_penalty"`
	}

	CensoredWord struct {
		ChatID    int64     `db:"chat_id"`
		Word      string    `db:"word"`
		MatchMode MatchMode `db:"match_mode"`
	}

	MatchMode string

	Seconds time.Duration
)

const (
	MatchStrict MatchMode = "strict"
	MatchSmart  MatchMode = "smart"
)

func (m MatchMode) Valid() bool {
	return m == MatchStrict || m == MatchSmart
}

func (s Seconds) Duration() time.Duration {
	return time.Duration(s)
}

func (s Seconds) Value() (driver.Value, error) {
	return int64(time.Duration(s) / time.Second), nil
}

func (s *Seconds) Scan(v any) error {
	switch val := v.(type) {
	case nil:
		*s = 0
	case int64:
		*s = Seconds(time.Duration(val) * time.Second)
	case []byte:
		var n int64
		if _, err := fmt.Sscan(string(val), &n); err != nil {
			return errors.Wrap(err, "scan seconds")
		}
		*s = Seconds(time.Duration(n) * time.Second)
	default:
		return errors.Errorf("unsupported seconds type %T", v)
	}
	return nil
}

package infra

import (
	"fmt"
	"strings"

	"dishdash/pkg/logging"

	"github.com/dgraph-io/badger/v4"
)

// OpenBadger opens the embedding cache at path. An empty path disables it and
// returns a nil DB.
func OpenBadger(path string) (*badger.DB, error) {
	if path == "" {
		return nil, nil
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(badgerLogger{}))
	if err != nil {
		return nil, fmt.Errorf("open embedding cache at %s: %w", path, err)
	}
	return db, nil
}

// badgerLogger routes badger's printf-style logs into zerolog. Info and debug
// chatter is demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{}) {
	logging.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Warningf(f string, v ...interface{}) {
	logging.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Infof(f string, v ...interface{}) {
	logging.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

func (badgerLogger) Debugf(f string, v ...interface{}) {
	logging.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(f, v...)))
}

package activity

import (
	"context"
	"sync"
	"time"

	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

// Recorder reports a successful broadcast to the activity backend. Record
// returns immediately; delivery happens on a detached goroutine.
type Recorder interface {
	Record(record *types.ActivityRecord)
}

type Logger struct {
	client   client.Esteem
	timeout  time.Duration
	failures chan error
	wg       sync.WaitGroup
}

// NewLogger creates a logger whose failures are also delivered to a channel
// of the given capacity. Failures are dropped when the channel is full.
func NewLogger(esteem client.Esteem, timeout time.Duration, failureBuffer int) *Logger {
	return &Logger{
		client:   esteem,
		timeout:  timeout,
		failures: make(chan error, failureBuffer),
	}
}

func (l *Logger) Record(record *types.ActivityRecord) {
	l.wg.Add(1)

	go func() {
		defer l.wg.Done()

		// The caller's context may already be done, so the record gets its own.
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if err := l.client.RecordActivity(ctx, record); err != nil {
			log.Warn("Cannot record activity ", record.TypeCode, " for ", record.Username, ", err = ", err)
			if !errors.Is(err, types.ErrActivityLog) {
				err = errors.Wrap(types.ErrActivityLog, err.Error())
			}

			select {
			case l.failures <- err:
			default:
			}
			return
		}

		log.Verbose("Recorded activity ", record.TypeCode, " for ", record.Username)
	}()
}

// Failures reports activity records that could not be delivered.
func (l *Logger) Failures() <-chan error {
	return l.failures
}

// Wait blocks until every in-flight record finished.
func (l *Logger) Wait() {
	l.wg.Wait()
}

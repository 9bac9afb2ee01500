package obs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "debug")
	ctx := logger.WithContext(context.Background())

	func() (err error) {
		defer Time(ctx, "journal.FetchPlaces")(&err)
		return errors.New("boom")
	}()

	out := buf.String()
	assert.Contains(t, out, `"op":"journal.FetchPlaces"`)
	assert.Contains(t, out, `"error":"boom"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestTimeWithoutContextLoggerIsSilent(t *testing.T) {
	var err error
	assert.NotPanics(t, func() { Time(context.Background(), "noop")(&err) })
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", ParseLevel(" DEBUG ").String())
	assert.Equal(t, "warn", ParseLevel("warning").String())
	assert.Equal(t, "info", ParseLevel("chatty").String())
}

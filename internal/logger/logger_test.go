package logger_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/recallcards/internal/logger"
)

func newBufferLogger(level logger.Level) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithCaller(false),
	), &buf
}

func TestLogger_FiltersByLevel(t *testing.T) {
	log, buf := newBufferLogger(logger.WARN)
	log.Info("hidden")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN  shown 1")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	log, buf := newBufferLogger(logger.DEBUG)
	log.WithPrefix("card_store").
		WithFields(map[string]any{"rating": "good", "card_id": "abc"}).
		Debug("review applied")

	assert.Contains(t, buf.String(), "[card_store] review applied card_id=abc rating=good\n")
}

func TestLogger_WithFieldDoesNotLeakIntoParent(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)
	_ = log.WithField("request_id", "r1")
	log.Info("plain")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("WARNING"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
	assert.True(t, logger.ValidLevel("error"))
	assert.False(t, logger.ValidLevel(""))
}

func TestContext(t *testing.T) {
	log, _ := newBufferLogger(logger.INFO)
	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

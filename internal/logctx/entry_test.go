package logctx

import (
	"context"
	"tailf/internal/global"
	"testing"
)

func TestLogEvent(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	tests := []struct {
		name          string
		logLevel      int
		eventLevel    int
		severity      string
		message       string
		vars          []any
		expectEvents  int
		expectMessage string
	}{
		{
			name:          "event level <= print level is logged",
			logLevel:      2,
			eventLevel:    1,
			severity:      global.InfoLog,
			message:       "hello world",
			expectEvents:  1,
			expectMessage: "hello world",
		},
		{
			name:         "event level > print level is dropped",
			logLevel:     1,
			eventLevel:   3,
			severity:     global.InfoLog,
			message:      "should not appear",
			expectEvents: 0,
		},
		{
			name:          "error severity bypasses level filtering",
			logLevel:      0,
			eventLevel:    5,
			severity:      global.ErrorLog,
			message:       "fatal error",
			expectEvents:  1,
			expectMessage: "fatal error",
		},
		{
			name:          "formatted message with vars",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.InfoLog,
			message:       "value=%d",
			vars:          []any{42},
			expectEvents:  1,
			expectMessage: "value=42",
		},
		{
			name:          "no formatting when no format verbs",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.InfoLog,
			message:       "log this message",
			vars:          []any{123},
			expectEvents:  1,
			expectMessage: "log this message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := New(context.Background(), global.NSTest, tt.logLevel, done)
			logger := GetLogger(ctx)
			if logger == nil {
				t.Fatalf("expected logger creation, got nil logger")
			}

			LogEvent(ctx, tt.eventLevel, tt.severity, tt.message, tt.vars...)

			logger.mutex.Lock()
			defer logger.mutex.Unlock()

			if len(logger.queue) != tt.expectEvents {
				t.Fatalf("expected %d queued events, got %d", tt.expectEvents, len(logger.queue))
			}
			if tt.expectEvents > 0 && logger.queue[0].Message != tt.expectMessage {
				t.Errorf("expected message '%s', got '%s'", tt.expectMessage, logger.queue[0].Message)
			}
		})
	}
}

func TestCtxTags(t *testing.T) {
	ctx := context.Background()

	ctx = AppendCtxTag(ctx, global.NSTailf)
	child := AppendCtxTag(ctx, global.NSWatcher)

	parentTags := GetTagList(ctx)
	childTags := GetTagList(child)

	if len(parentTags) != 1 || parentTags[0] != global.NSTailf {
		t.Errorf("parent tags mutated: %v", parentTags)
	}
	if len(childTags) != 2 || childTags[1] != global.NSWatcher {
		t.Errorf("unexpected child tags: %v", childTags)
	}

	popped := RemoveLastCtxTag(child)
	poppedTags := GetTagList(popped)
	if len(poppedTags) != 1 || poppedTags[0] != global.NSTailf {
		t.Errorf("unexpected tags after pop: %v", poppedTags)
	}

	multi := AppendCtxTag(ctx, global.NSWatcher, global.NSoDir)
	multiTags := GetTagList(multi)
	if len(multiTags) != 3 || multiTags[2] != global.NSoDir {
		t.Errorf("unexpected tags after multi append: %v", multiTags)
	}

	// Popping an empty list returns the context unchanged
	if got := GetTagList(RemoveLastCtxTag(context.Background())); len(got) != 0 {
		t.Errorf("expected empty tags, got %v", got)
	}
}

package sentry

import (
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"
)

func TestInit_NoDSN(t *testing.T) {
	if err := Init(Config{}, nil); err != nil {
		t.Fatalf("expected no error without DSN, got %v", err)
	}
}

func TestScrubEvent(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		Headers: map[string]string{
			"Authorization": "Bearer secret",
			"Cookie":        "session=1",
			"Content-Type":  "image/jpeg",
		},
		Data: strings.Repeat("x", 4096),
	}}

	scrubEvent(event)

	if _, ok := event.Request.Headers["Authorization"]; ok {
		t.Error("authorization header should be removed")
	}
	if _, ok := event.Request.Headers["Cookie"]; ok {
		t.Error("cookie header should be removed")
	}
	if event.Request.Headers["Content-Type"] != "image/jpeg" {
		t.Error("other headers should be kept")
	}
	if event.Request.Data != "[omitted]" {
		t.Errorf("large bodies should be omitted, got %d bytes", len(event.Request.Data))
	}
}

func TestCaptureException_Nil(t *testing.T) {
	CaptureException(nil, map[string]interface{}{"user_id": "u"}, nil)
}

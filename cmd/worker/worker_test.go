package main

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/unclebandit/campaignhub-backend/internal/queue"
)

func TestAuditorCountsEvents(t *testing.T) {
	var buf bytes.Buffer
	a := newAuditor(slog.New(slog.NewTextHandler(&buf, nil)))

	events := []queue.Event{
		queue.NewEvent(queue.EventContactCreated, 1, 10, nil),
		queue.NewEvent(queue.EventContactCreated, 1, 11, nil),
		queue.NewEvent(queue.EventCampaignSent, 1, 5, nil),
	}

	var wg sync.WaitGroup
	for _, e := range events {
		wg.Add(1)
		go func(e queue.Event) {
			defer wg.Done()
			if err := a.Handle(e); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(e)
	}
	wg.Wait()

	got := strings.Join(a.Summary(), ",")
	if got != "campaign.sent=1,contact.created=2" {
		t.Errorf("unexpected summary %q", got)
	}
	if !strings.Contains(buf.String(), "type=campaign.sent") {
		t.Errorf("expected event in audit log, got %q", buf.String())
	}
}

func TestAuditorRejectsUntypedEvents(t *testing.T) {
	a := newAuditor(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	if err := a.Handle(queue.Event{ResourceID: 3}); err == nil {
		t.Fatal("expected error for an event without type")
	}
	if len(a.Summary()) != 0 {
		t.Errorf("rejected event must not be counted, got %v", a.Summary())
	}
}

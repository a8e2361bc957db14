package service

import (
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Tharun0024/gen-ai-25/model"
)

func TestMessageLogAppendAndAll(t *testing.T) {
	log := NewMessageLog()

	if log.Len() != 0 {
		t.Errorf("Expected empty log, got %d", log.Len())
	}

	first := log.Append(model.SenderUser, "hello")
	second := log.Append(model.SenderAssistant, "hi there")

	all := log.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Error("Expected messages in append order")
	}
	if all[0].Sender != model.SenderUser || all[1].Sender != model.SenderAssistant {
		t.Errorf("Unexpected senders %s, %s", all[0].Sender, all[1].Sender)
	}
	if all[1].Text != "hi there" {
		t.Errorf("Expected text 'hi there', got '%s'", all[1].Text)
	}
	if all[0].Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestMessageLogAllReturnsCopy(t *testing.T) {
	log := NewMessageLog()
	log.Append(model.SenderUser, "original")

	all := log.All()
	all[0].Text = "tampered"

	if log.All()[0].Text != "original" {
		t.Error("Expected log to be unaffected by caller mutation")
	}
}

func TestMessageLogIDsUniqueWithinSameInstant(t *testing.T) {
	log := NewMessageLog()
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return frozen }

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		msg := log.Append(model.SenderUser, fmt.Sprintf("m%d", i))
		if seen[msg.ID] {
			t.Fatalf("Duplicate id %s at %d", msg.ID, i)
		}
		seen[msg.ID] = true
		if !msg.Timestamp.Equal(frozen) {
			t.Fatal("Expected frozen timestamp")
		}
	}
}

func TestMessageLogConcurrentAppend(t *testing.T) {
	log := NewMessageLog()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log.Append(model.SenderUser, fmt.Sprintf("msg %d", i))
		}(i)
	}
	wg.Wait()

	if log.Len() != 20 {
		t.Errorf("Expected 20 messages, got %d", log.Len())
	}
	ids := make(map[string]bool)
	for _, m := range log.All() {
		ids[m.ID] = true
	}
	if len(ids) != 20 {
		t.Errorf("Expected 20 distinct ids, got %d", len(ids))
	}
}

func TestMessageLogConcurrentAppendKeepsOrder(t *testing.T) {
	log := NewMessageLog()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				log.Append(model.SenderUser, fmt.Sprintf("g%d m%d", g, i))
			}
		}(g)
	}
	wg.Wait()

	all := log.All()
	if len(all) != 400 {
		t.Fatalf("Expected 400 messages, got %d", len(all))
	}
	var prevID int64
	for i, m := range all {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			t.Fatalf("Expected numeric id, got %q", m.ID)
		}
		if i > 0 {
			if id <= prevID {
				t.Fatalf("id at %d (%d) not greater than previous (%d)", i, id, prevID)
			}
			if m.Timestamp.Before(all[i-1].Timestamp) {
				t.Fatalf("timestamp at %d is earlier than the one before it", i)
			}
		}
		prevID = id
	}
}

func TestMessageLogSince(t *testing.T) {
	log := NewMessageLog()
	log.Append(model.SenderAssistant, "a")
	log.Append(model.SenderAssistant, "b")
	log.Append(model.SenderAssistant, "c")

	tail := log.Since(1)
	if len(tail) != 2 || tail[0].Text != "b" || tail[1].Text != "c" {
		t.Errorf("Unexpected tail %+v", tail)
	}
	if len(log.Since(3)) != 0 {
		t.Error("Expected empty tail at end of log")
	}
	if len(log.Since(-1)) != 3 {
		t.Error("Expected negative offset to return everything")
	}
}

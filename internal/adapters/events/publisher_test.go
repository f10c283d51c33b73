package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Karaoke/internal/core"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakePublisher) Publish(subj string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subj)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestPublishUsesKindSubject(t *testing.T) {
	fake := &fakePublisher{}
	p := newPublisher(fake, "karaoke.sessions")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p.Publish(core.SessionEvent{Kind: core.KindReset, Code: "222222", PrevCode: "111111", Conn: "c1", At: at})

	if len(fake.subjects) != 1 || fake.subjects[0] != "karaoke.sessions.reset" {
		t.Fatalf("subjects = %v", fake.subjects)
	}
	var got core.SessionEvent
	if err := json.Unmarshal(fake.payloads[0], &got); err != nil {
		t.Fatal(err)
	}
	if got.Code != "222222" || got.PrevCode != "111111" || !got.At.Equal(at) {
		t.Fatalf("payload = %+v", got)
	}
}

func TestPublishErrorIsSwallowed(t *testing.T) {
	p := newPublisher(&fakePublisher{err: errors.New("nats: connection closed")}, "s")
	p.Publish(core.SessionEvent{Kind: core.KindCreated, Code: "123456"})
	p.Close()
}

func TestNewWithoutURLIsNop(t *testing.T) {
	sink, closeFn, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(Nop); !ok {
		t.Fatalf("sink = %T, want Nop", sink)
	}
	sink.Publish(core.SessionEvent{Kind: core.KindCreated})
	closeFn()
}

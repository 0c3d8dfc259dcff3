package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ankit/oppgenie/internal/models"
)

type fakeStore struct {
	mu         sync.Mutex
	msgs       []models.ChatMessage
	appendErrs []error // consumed per call; nil means success
	listErr    error
}

func (f *fakeStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.appendErrs) > 0 {
		err := f.appendErrs[0]
		f.appendErrs = f.appendErrs[1:]
		if err != nil {
			return err
		}
	}
	msg.ID = uuid.NewString()
	msg.Timestamp = time.Now()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ChatMessage, len(f.msgs))
	copy(out, f.msgs)
	return out, nil
}

func (f *fakeStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.msgs))
	f.msgs = nil
	return n, nil
}

func (f *fakeStore) Stats(ctx context.Context) (Analytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var a Analytics
	users := make(map[uuid.UUID]struct{})
	for _, m := range f.msgs {
		a.TotalMessages++
		if m.Role == models.RoleUser {
			a.UserMessages++
		}
		users[m.UserID] = struct{}{}
	}
	a.ActiveUsers = int64(len(users))
	return a, nil
}

// fakeSubscriber replays a scripted sequence of subscription runs. Each run
// fires notify the given number of times, then returns its error.
type fakeSubscriber struct {
	mu   sync.Mutex
	runs []subRun
}

type subRun struct {
	signals int
	err     error
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, userID uuid.UUID, notify func()) error {
	f.mu.Lock()
	if len(f.runs) == 0 {
		f.mu.Unlock()
		<-ctx.Done()
		return ctx.Err()
	}
	run := f.runs[0]
	f.runs = f.runs[1:]
	f.mu.Unlock()

	for i := 0; i < run.signals; i++ {
		notify()
	}
	if run.err != nil {
		return run.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func fastTransport(store MessageStore, sub Subscriber) *Transport {
	t := NewTransport(store, sub)
	t.appendBase = time.Millisecond
	t.subscribeBase = time.Millisecond
	return t
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	store := &fakeStore{appendErrs: []error{errors.New("flaky"), errors.New("flaky"), nil}}
	tr := fastTransport(store, &fakeSubscriber{})

	msg, err := tr.Send(context.Background(), uuid.New(), models.RoleUser, "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == "" || msg.Timestamp.IsZero() {
		t.Fatal("server-assigned fields missing")
	}
	if len(store.msgs) != 1 {
		t.Fatalf("stored %d messages, want 1", len(store.msgs))
	}
}

func TestSendExhaustionIsSingleFailure(t *testing.T) {
	boom := errors.New("down")
	store := &fakeStore{appendErrs: []error{boom, boom, boom, nil}}
	tr := fastTransport(store, &fakeSubscriber{})

	_, err := tr.Send(context.Background(), uuid.New(), models.RoleUser, "hello")
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}
	// The fourth, would-succeed attempt must never run.
	if len(store.msgs) != 0 {
		t.Fatalf("stored %d messages after exhaustion", len(store.msgs))
	}
}

func TestSendSanitizesContent(t *testing.T) {
	store := &fakeStore{}
	tr := fastTransport(store, &fakeSubscriber{})

	msg, err := tr.Send(context.Background(), uuid.New(), models.RoleUser,
		`hi <script>alert(1)</script>there`)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Content != "hi there" {
		t.Fatalf("content = %q", msg.Content)
	}

	if _, err := tr.Send(context.Background(), uuid.New(), models.RoleUser, "<script>only</script>"); err == nil {
		t.Fatal("expected empty-after-sanitize message to be rejected")
	}
}

func TestWatchDeliversWholeSnapshots(t *testing.T) {
	store := &fakeStore{}
	uid := uuid.New()
	store.msgs = []models.ChatMessage{
		{ID: "1", Role: models.RoleUser, Content: "a", UserID: uid},
		{ID: "2", Role: models.RoleAssistant, Content: "b", UserID: uid},
	}
	sub := &fakeSubscriber{runs: []subRun{{signals: 1}}}
	tr := fastTransport(store, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := tr.Watch(ctx, uid)
	select {
	case snap := <-session.Snapshots:
		if len(snap) != 2 {
			t.Fatalf("snapshot len = %d, want 2", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}
	if session.State() != SessionActive {
		t.Fatalf("state = %d, want active", session.State())
	}

	cancel()
	select {
	case _, ok := <-session.Failures:
		if ok {
			t.Fatal("cancellation should close without a failure")
		}
	case <-time.After(time.Second):
		t.Fatal("failures channel never closed")
	}
}

func TestWatchReconnectsOnTransientError(t *testing.T) {
	store := &fakeStore{msgs: []models.ChatMessage{{ID: "1"}}}
	sub := &fakeSubscriber{runs: []subRun{
		{signals: 0, err: errors.New("connection reset")},
		{signals: 1},
	}}
	tr := fastTransport(store, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := tr.Watch(ctx, uuid.New())
	select {
	case snap := <-session.Snapshots:
		if len(snap) != 1 {
			t.Fatalf("snapshot len = %d", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after reconnect")
	}
}

func TestWatchFatalErrorEndsSession(t *testing.T) {
	sub := &fakeSubscriber{runs: []subRun{
		{signals: 0, err: errors.New("permission denied for table messages")},
	}}
	tr := fastTransport(&fakeStore{}, sub)

	session := tr.Watch(context.Background(), uuid.New())
	select {
	case err := <-session.Failures:
		if !errors.Is(err, ErrSessionDenied) {
			t.Fatalf("err = %v, want ErrSessionDenied", err)
		}
	case <-time.After(time.Second):
		t.Fatal("no terminal failure delivered")
	}
}

func TestWatchExhaustsRetryBudget(t *testing.T) {
	transient := errors.New("connection reset")
	sub := &fakeSubscriber{runs: []subRun{
		{err: transient}, {err: transient}, {err: transient}, {err: transient},
	}}
	tr := fastTransport(&fakeStore{}, sub)

	session := tr.Watch(context.Background(), uuid.New())
	select {
	case err := <-session.Failures:
		if !errors.Is(err, ErrLiveUpdates) {
			t.Fatalf("err = %v, want ErrLiveUpdates", err)
		}
	case <-time.After(time.Second):
		t.Fatal("no terminal failure delivered")
	}

	// Channels close once the supervisor has shut down.
	for range session.Failures {
	}
	if session.State() != SessionClosed {
		t.Fatalf("state = %d, want closed", session.State())
	}
}

func TestClearReportsDeletedCount(t *testing.T) {
	store := &fakeStore{msgs: []models.ChatMessage{{ID: "1"}, {ID: "2"}}}
	tr := fastTransport(store, &fakeSubscriber{})

	n, err := tr.Clear(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted = %d, want 2", n)
	}

	n, err = tr.Clear(context.Background(), uuid.New())
	if err != nil || n != 0 {
		t.Fatalf("second clear: n=%d err=%v", n, err)
	}
}

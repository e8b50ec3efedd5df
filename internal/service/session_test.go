package service

import (
	"context"
	"strings"
	"testing"

	"github.com/centsible/centsible-go/internal/model"
	"github.com/centsible/centsible-go/internal/testutil"
)

var testHashKey = []byte("session-test-key-32-bytes-long!!")

func newTestSessionService(t *testing.T) (*SessionService, *model.User, *testutil.SessionStore) {
	t.Helper()

	users, sessions := testutil.NewStores()
	user := &model.User{Email: "user@example.com", AuthHash: "x"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}

	return NewSessionService(sessions, users, testHashKey), user, sessions
}

func TestStartAndResolve(t *testing.T) {
	svc, user, _ := newTestSessionService(t)

	meta := model.RequestMetadata{IPAddress: "192.0.2.1", UserAgent: "test-agent"}
	session, carrier, err := svc.Start(context.Background(), user, meta)
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Start() session has empty id")
	}
	if carrier == "" {
		t.Fatal("Start() returned empty carrier")
	}
	if strings.Contains(carrier, session.ID) {
		t.Error("carrier exposes the raw session id")
	}
	if session.IPAddress != "192.0.2.1" || session.UserAgent != "test-agent" {
		t.Errorf("Start() did not record request metadata: %+v", session)
	}

	resolvedUser, resolvedSession := svc.Resolve(context.Background(), carrier)
	if resolvedUser == nil || resolvedSession == nil {
		t.Fatal("Resolve() returned nil for a fresh carrier")
	}
	if resolvedUser.ID != user.ID {
		t.Errorf("Resolve() user id = %d, want %d", resolvedUser.ID, user.ID)
	}
	if resolvedSession.ID != session.ID {
		t.Errorf("Resolve() session id = %q, want %q", resolvedSession.ID, session.ID)
	}
}

func TestResolveAfterTerminate(t *testing.T) {
	svc, user, _ := newTestSessionService(t)

	session, carrier, err := svc.Start(context.Background(), user, model.RequestMetadata{})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	if err := svc.Terminate(context.Background(), session); err != nil {
		t.Fatalf("Terminate() unexpected error: %v", err)
	}

	if u, s := svc.Resolve(context.Background(), carrier); u != nil || s != nil {
		t.Error("Resolve() returned a user for a terminated session")
	}
}

func TestResolveTamperedCarrier(t *testing.T) {
	svc, user, _ := newTestSessionService(t)

	_, carrier, err := svc.Start(context.Background(), user, model.RequestMetadata{})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	tampered := carrier[:len(carrier)-2] + "zz"
	if u, s := svc.Resolve(context.Background(), tampered); u != nil || s != nil {
		t.Error("Resolve() accepted a tampered carrier")
	}
}

func TestResolveGarbageAndEmpty(t *testing.T) {
	svc, _, _ := newTestSessionService(t)

	if u, s := svc.Resolve(context.Background(), ""); u != nil || s != nil {
		t.Error("Resolve() accepted an empty carrier")
	}
	if u, s := svc.Resolve(context.Background(), "garbage"); u != nil || s != nil {
		t.Error("Resolve() accepted a garbage carrier")
	}
}

func TestResolveWrongKey(t *testing.T) {
	svc, user, sessions := newTestSessionService(t)

	_, carrier, err := svc.Start(context.Background(), user, model.RequestMetadata{})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	users, _ := testutil.NewStores()
	otherSvc := NewSessionService(sessions, users, []byte("a-completely-different-hash-key!"))
	if u, s := otherSvc.Resolve(context.Background(), carrier); u != nil || s != nil {
		t.Error("Resolve() accepted a carrier signed with a different key")
	}
}

func TestTerminateAllFor(t *testing.T) {
	svc, user, sessions := newTestSessionService(t)

	var carriers []string
	for i := 0; i < 3; i++ {
		_, carrier, err := svc.Start(context.Background(), user, model.RequestMetadata{})
		if err != nil {
			t.Fatalf("Start() unexpected error: %v", err)
		}
		carriers = append(carriers, carrier)
	}

	if err := svc.TerminateAllFor(context.Background(), user.ID); err != nil {
		t.Fatalf("TerminateAllFor() unexpected error: %v", err)
	}

	if got := sessions.CountForUser(user.ID); got != 0 {
		t.Errorf("sessions after TerminateAllFor = %d, want 0", got)
	}
	for _, carrier := range carriers {
		if u, _ := svc.Resolve(context.Background(), carrier); u != nil {
			t.Error("carrier issued before TerminateAllFor still resolves")
		}
	}
}

func TestResolveOrphanedSession(t *testing.T) {
	users, sessions := testutil.NewStores()
	user := &model.User{Email: "user@example.com", AuthHash: "x"}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("creating user: %v", err)
	}
	svc := NewSessionService(sessions, users, testHashKey)

	_, carrier, err := svc.Start(context.Background(), user, model.RequestMetadata{})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	// Delete the user out from under the session.
	if err := users.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}

	if u, s := svc.Resolve(context.Background(), carrier); u != nil || s != nil {
		t.Error("Resolve() returned a user for an orphaned session")
	}
}

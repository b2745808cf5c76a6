package services

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/auth"
	sc "github.com/dberzins/inkwell/internal/server/config"
	"github.com/dberzins/inkwell/internal/server/models"
)

func newSessionService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *SessionService {
	t.Helper()
	cfg := &sc.Config{
		SecretKey:               "k",
		SessionValidityDuration: time.Hour,
	}
	return NewSessionService(db, rm, cfg)
}

func signedToken(t *testing.T, sessionID string) string {
	t.Helper()
	token, err := auth.GenerateToken(sessionID, []byte("k"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}
	return token
}

func TestSessionStart_SuccessAndCreateErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	origID := newSessionID
	t.Cleanup(func() { newSessionID = origID })
	newSessionID = func() string { return "sess-1" }

	rm := &fakeRepoManager{s: &fakeSessionsRepo{}}
	s := newSessionService(t, db, rm)

	token, err := s.Start(context.Background(), 1)
	if err != nil || token == "" {
		t.Fatalf("Start: got (%q, %v)", token, err)
	}
	id, err := auth.GetSessionIDFromToken(token, []byte("k"))
	if err != nil || id != "sess-1" {
		t.Fatalf("token does not carry session id: (%q, %v)", id, err)
	}

	rmErr := &fakeRepoManager{s: &fakeSessionsRepo{createErr: errBoom{}}}
	sErr := newSessionService(t, db, rmErr)
	if _, err := sErr.Start(context.Background(), 1); err == nil ||
		!regexp.MustCompile(`error creating session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}
}

func TestSessionEnd(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeSessionsRepo{}
	rm := &fakeRepoManager{s: repo}
	s := newSessionService(t, db, rm)

	if err := s.End(context.Background(), signedToken(t, "sess-1")); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "sess-1" {
		t.Fatalf("session not revoked: %v", repo.deleted)
	}

	// invalid token is a no-op
	if err := s.End(context.Background(), "garbage"); err != nil {
		t.Fatalf("End with bad token: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("unexpected delete on bad token")
	}

	// already revoked sessions are fine too
	rmNF := &fakeRepoManager{s: &fakeSessionsRepo{deleteErr: common.ErrorNotFound}}
	sNF := newSessionService(t, db, rmNF)
	if err := sNF.End(context.Background(), signedToken(t, "sess-2")); err != nil {
		t.Fatalf("End on missing session: %v", err)
	}

	rmErr := &fakeRepoManager{s: &fakeSessionsRepo{deleteErr: errBoom{}}}
	sErr := newSessionService(t, db, rmErr)
	if err := sErr.End(context.Background(), signedToken(t, "sess-3")); err == nil ||
		!regexp.MustCompile(`error deleting session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

func TestCaller_Anonymous(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	// empty token
	s := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{}})
	if u, err := s.Caller(context.Background(), ""); u != nil || err != nil {
		t.Fatalf("empty token: got (%v, %v)", u, err)
	}

	// malformed token
	if u, err := s.Caller(context.Background(), "garbage"); u != nil || err != nil {
		t.Fatalf("bad token: got (%v, %v)", u, err)
	}

	// session row gone
	rmNF := &fakeRepoManager{s: &fakeSessionsRepo{findErr: common.ErrorNotFound}}
	sNF := newSessionService(t, db, rmNF)
	if u, err := sNF.Caller(context.Background(), signedToken(t, "sess-1")); u != nil || err != nil {
		t.Fatalf("missing session: got (%v, %v)", u, err)
	}

	// user behind the session gone
	rmNU := &fakeRepoManager{
		s: &fakeSessionsRepo{findOut: &models.Session{ID: "sess-1", UserID: 9, ExpiresAt: time.Now().Add(time.Hour)}},
		u: &fakeUsersRepo{byIDErr: common.ErrorNotFound},
	}
	sNU := newSessionService(t, db, rmNU)
	if u, err := sNU.Caller(context.Background(), signedToken(t, "sess-1")); u != nil || err != nil {
		t.Fatalf("dangling user: got (%v, %v)", u, err)
	}
}

func TestCaller_ExpiredSessionIsRevoked(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeSessionsRepo{
		findOut: &models.Session{ID: "sess-1", UserID: 9, ExpiresAt: time.Now().Add(-time.Minute)},
	}
	rm := &fakeRepoManager{s: repo, u: &fakeUsersRepo{byIDOut: &models.User{ID: 9}}}
	s := newSessionService(t, db, rm)

	u, err := s.Caller(context.Background(), signedToken(t, "sess-1"))
	if u != nil || err != nil {
		t.Fatalf("expired session: got (%v, %v)", u, err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "sess-1" {
		t.Fatalf("expired session not revoked: %v", repo.deleted)
	}
}

func TestCaller_SuccessAndStorageErr(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rmOK := &fakeRepoManager{
		s: &fakeSessionsRepo{findOut: &models.Session{ID: "sess-1", UserID: 9, ExpiresAt: time.Now().Add(time.Hour)}},
		u: &fakeUsersRepo{byIDOut: &models.User{ID: 9, Name: "Ann"}},
	}
	sOK := newSessionService(t, db, rmOK)
	u, err := sOK.Caller(context.Background(), signedToken(t, "sess-1"))
	if err != nil || u == nil || u.ID != 9 {
		t.Fatalf("Caller success: got (%v, %v)", u, err)
	}

	// storage failure is the only non-anonymous failure mode
	rmErr := &fakeRepoManager{s: &fakeSessionsRepo{findErr: errBoom{}}}
	sErr := newSessionService(t, db, rmErr)
	if _, err := sErr.Caller(context.Background(), signedToken(t, "sess-1")); err == nil ||
		!regexp.MustCompile(`error finding session: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped find error, got %v", err)
	}

	rmUErr := &fakeRepoManager{
		s: &fakeSessionsRepo{findOut: &models.Session{ID: "sess-1", UserID: 9, ExpiresAt: time.Now().Add(time.Hour)}},
		u: &fakeUsersRepo{byIDErr: errBoom{}},
	}
	sUErr := newSessionService(t, db, rmUErr)
	if _, err := sUErr.Caller(context.Background(), signedToken(t, "sess-1")); err == nil ||
		!regexp.MustCompile(`error resolving caller: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped user error, got %v", err)
	}
}

func TestFlash(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeSessionsRepo{}
	s := newSessionService(t, db, &fakeRepoManager{s: repo})

	if err := s.Flash(context.Background(), signedToken(t, "sess-1"), "Logged in!"); err != nil {
		t.Fatalf("Flash error: %v", err)
	}
	if len(repo.appended) != 1 || repo.appended[0] != "Logged in!" {
		t.Fatalf("flash not queued: %v", repo.appended)
	}

	// invalid token and missing session are silent no-ops
	if err := s.Flash(context.Background(), "garbage", "msg"); err != nil {
		t.Fatalf("Flash with bad token: %v", err)
	}
	sNF := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{appendErr: common.ErrorNotFound}})
	if err := sNF.Flash(context.Background(), signedToken(t, "sess-2"), "msg"); err != nil {
		t.Fatalf("Flash on missing session: %v", err)
	}

	sErr := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{appendErr: errBoom{}}})
	if err := sErr.Flash(context.Background(), signedToken(t, "sess-3"), "msg"); err == nil ||
		!regexp.MustCompile(`error queueing flash: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped append error, got %v", err)
	}
}

func TestDrainFlashes_OneShot(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeSessionsRepo{drainOut: []string{"first", "second"}}
	s := newSessionService(t, db, &fakeRepoManager{s: repo})

	token := signedToken(t, "sess-1")

	got, err := s.DrainFlashes(context.Background(), token)
	if err != nil || len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("first drain: got (%v, %v)", got, err)
	}

	got, err = s.DrainFlashes(context.Background(), token)
	if err != nil || len(got) != 0 {
		t.Fatalf("second drain should be empty: got (%v, %v)", got, err)
	}

	// invalid token or vanished session yields nothing
	if got, err := s.DrainFlashes(context.Background(), "garbage"); got != nil || err != nil {
		t.Fatalf("bad token drain: got (%v, %v)", got, err)
	}
	sNF := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{drainErr: common.ErrorNotFound}})
	if got, err := sNF.DrainFlashes(context.Background(), token); got != nil || err != nil {
		t.Fatalf("missing session drain: got (%v, %v)", got, err)
	}

	sErr := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{drainErr: errBoom{}}})
	if _, err := sErr.DrainFlashes(context.Background(), token); err == nil ||
		!regexp.MustCompile(`error draining flashes: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped drain error, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{expiredN: 3}})
	n, err := s.Sweep(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Sweep: got (%d, %v)", n, err)
	}

	sErr := newSessionService(t, db, &fakeRepoManager{s: &fakeSessionsRepo{expiredErr: errBoom{}}})
	if _, err := sErr.Sweep(context.Background()); err == nil ||
		!regexp.MustCompile(`error sweeping sessions: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped sweep error, got %v", err)
	}
}

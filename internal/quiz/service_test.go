package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testBank() *questions.Bank {
	return questions.NewBank([]questions.Question{
		{Category: "Science", Prompt: "Symbol for gold?", Choices: []string{"Ag", "Au", "Gd"}, AnswerKey: "Au"},
		{Category: "History", Prompt: "Berlin Wall fell in?", Choices: []string{"1989", "1991"}, AnswerKey: "1989"},
	}, questions.WithCategories("Empty"))
}

type fixture struct {
	svc   *Service
	store *ledger.MemoryStore
	clock *fakeClock
}

func newFixture(t *testing.T, cfg Config, opts ...ledger.MemoryOption) *fixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]ledger.MemoryOption{ledger.WithOpeningBalance(100)}, opts...)
	st := ledger.NewMemoryStore(opts...)
	seq := 0
	var seqMu sync.Mutex
	svc := NewService(st, testBank(), cfg,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return fmt.Sprintf("sess-%d", seq)
		}),
	)
	return &fixture{svc: svc, store: st, clock: clock}
}

// issue drives a fresh round for userID up to question_issued.
func (f *fixture) issue(t *testing.T, userID, category string, wager int64) string {
	t.Helper()
	ctx := context.Background()
	open, err := f.svc.OpenCategory(ctx, userID, category)
	if err != nil {
		t.Fatalf("open category: %v", err)
	}
	dec, err := f.svc.SubmitWager(ctx, userID, open.SessionID, wager)
	if err != nil {
		t.Fatalf("submit wager: %v", err)
	}
	if !dec.Approved {
		t.Fatalf("wager %d rejected: %s", wager, dec.Reason)
	}
	if _, err := f.svc.GetQuestion(ctx, userID, open.SessionID); err != nil {
		t.Fatalf("get question: %v", err)
	}
	return open.SessionID
}

func TestCorrectAnswerCreditsWager(t *testing.T) {
	f := newFixture(t, Config{})
	sid := f.issue(t, "alice", "Science", 20)

	res, err := f.svc.SubmitAnswer(context.Background(), "alice", sid, Answer{Choice: "Au"})
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	want := CommitResult{
		SessionID:           sid,
		IsCorrect:           true,
		CorrectChoice:       "Au",
		NewBalance:          120,
		NewGamesPlayed:      1,
		NewCorrectAnswers:   1,
		NewIncorrectAnswers: 0,
	}
	if *res != want {
		t.Fatalf("result = %+v, want %+v", *res, want)
	}
}

func TestIncorrectAnswerDebitsWager(t *testing.T) {
	f := newFixture(t, Config{})
	sid := f.issue(t, "alice", "Science", 30)

	idx := 0
	res, err := f.svc.SubmitAnswer(context.Background(), "alice", sid, Answer{Index: &idx})
	if err != nil {
		t.Fatalf("submit answer: %v", err)
	}
	if res.IsCorrect || res.NewBalance != 70 || res.NewIncorrectAnswers != 1 || res.NewGamesPlayed != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestWagerAboveBalanceIsRejected(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	open, err := f.svc.OpenCategory(ctx, "alice", "Science")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	dec, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, 150)
	if err != nil {
		t.Fatalf("submit wager: %v", err)
	}
	if dec.Approved || dec.Reason != "insufficient_balance" {
		t.Fatalf("decision = %+v, want insufficient_balance", dec)
	}
	status, err := f.svc.SessionStatus(ctx, "alice", open.SessionID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status != StatusCategorySelected {
		t.Fatalf("status = %s, want %s", status, StatusCategorySelected)
	}
	if _, err := f.svc.GetQuestion(ctx, "alice", open.SessionID); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("expected ErrInvalidSessionState, got %v", err)
	}

	dec, err = f.svc.SubmitWager(ctx, "alice", open.SessionID, 100)
	if err != nil || !dec.Approved {
		t.Fatalf("resubmitted wager: dec=%+v err=%v", dec, err)
	}
	l, _ := f.store.Read(ctx, "alice")
	if l.Balance != 100 || l.GamesPlayed != 0 {
		t.Fatalf("wager check mutated ledger: %+v", l)
	}
}

func TestWagerGating(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		amount int64
		want   Decision
	}{
		{name: "zero", amount: 0, want: Decision{Reason: "invalid_wager_amount"}},
		{name: "negative", amount: -5, want: Decision{Reason: "invalid_wager_amount"}},
		{name: "above balance", amount: 101, want: Decision{Reason: "insufficient_balance"}},
		{name: "exact balance", amount: 100, want: Decision{Approved: true}},
		{name: "debt allowed", cfg: Config{AllowNegativeBalance: true}, amount: 500, want: Decision{Approved: true}},
		{name: "debt allowed still rejects zero", cfg: Config{AllowNegativeBalance: true}, amount: 0, want: Decision{Reason: "invalid_wager_amount"}},
		{name: "above max wager", cfg: Config{MaxWager: 50}, amount: 60, want: Decision{Reason: "invalid_wager_amount"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.cfg)
			ctx := context.Background()
			open, err := f.svc.OpenCategory(ctx, "alice", "Science")
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			got, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, tt.amount)
			if err != nil {
				t.Fatalf("submit wager: %v", err)
			}
			if got != tt.want {
				t.Fatalf("decision = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: `20`, want: 20},
		{raw: `"35"`, want: 35},
		{raw: `-4`, want: -4},
		{raw: `"ten"`, wantErr: true},
		{raw: `12.5`, wantErr: true},
		{raw: `null`, wantErr: true},
		{raw: ``, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseAmount([]byte(tt.raw))
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidWagerAmount) {
				t.Fatalf("ParseAmount(%q) err = %v, want ErrInvalidWagerAmount", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParseAmount(%q) = %d, %v; want %d", tt.raw, got, err, tt.want)
		}
	}
}

func TestSubmitAnswerIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sid := f.issue(t, "alice", "Science", 20)

	first, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Ag"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Ag"})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if *first != *second {
		t.Fatalf("results differ: %+v vs %+v", *first, *second)
	}
	l, _ := f.store.Read(ctx, "alice")
	if l.GamesPlayed != 1 || l.Balance != 80 {
		t.Fatalf("ledger applied more than once: %+v", l)
	}
}

func TestConcurrentSubmitAnswerCommitsOnce(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sid := f.issue(t, "alice", "Science", 20)

	const callers = 8
	results := make([]*CommitResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"})
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if *results[i] != *results[0] {
			t.Fatalf("caller %d result %+v differs from %+v", i, *results[i], *results[0])
		}
	}
	l, _ := f.store.Read(ctx, "alice")
	if l.GamesPlayed != 1 || l.Balance != 120 || l.CorrectAnswers != 1 {
		t.Fatalf("ledger mutated more than once: %+v", l)
	}
}

func TestCompletedRoundsConserveCounters(t *testing.T) {
	f := newFixture(t, Config{AllowNegativeBalance: true})
	ctx := context.Background()
	const rounds = 25
	for i := 0; i < rounds; i++ {
		sid := f.issue(t, "alice", "Science", 10)
		choice := "Ag"
		if i%4 == 0 {
			choice = "Au"
		}
		if _, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: choice}); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}
	}
	l, err := f.svc.GetStatistics(ctx, "alice")
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	if l.GamesPlayed != rounds || l.CorrectAnswers+l.IncorrectAnswers != rounds {
		t.Fatalf("counters diverged: %+v", l)
	}
	if want := int64(100 + 10*l.CorrectAnswers - 10*l.IncorrectAnswers); l.Balance != want {
		t.Fatalf("balance = %d, want %d", l.Balance, want)
	}
}

func TestInvalidChoiceKeepsQuestionIssued(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sid := f.issue(t, "alice", "Science", 20)

	bad := 7
	for _, ans := range []Answer{{Choice: "Fe"}, {Choice: "au"}, {Index: &bad}} {
		if _, err := f.svc.SubmitAnswer(ctx, "alice", sid, ans); !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("answer %+v: expected ErrInvalidChoice, got %v", ans, err)
		}
	}
	status, _ := f.svc.SessionStatus(ctx, "alice", sid)
	if status != StatusQuestionIssued {
		t.Fatalf("status = %s, want %s", status, StatusQuestionIssued)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestLedgerFaultKeepsSessionRetryable(t *testing.T) {
	var failMu sync.Mutex
	fail := true
	f := newFixture(t, Config{}, ledger.WithCommitHook(func(string, ledger.Ledger) error {
		failMu.Lock()
		defer failMu.Unlock()
		if fail {
			return errors.New("connection reset")
		}
		return nil
	}))
	ctx := context.Background()
	sid := f.issue(t, "alice", "Science", 20)

	_, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"})
	if !errors.Is(err, ledger.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if Code(err) != "ledger_unavailable" {
		t.Fatalf("code = %q", Code(err))
	}
	l, _ := f.store.Read(ctx, "alice")
	if l.Balance != 100 || l.GamesPlayed != 0 || l.CorrectAnswers != 0 || l.IncorrectAnswers != 0 {
		t.Fatalf("fault leaked into ledger: %+v", l)
	}
	status, _ := f.svc.SessionStatus(ctx, "alice", sid)
	if status != StatusQuestionIssued {
		t.Fatalf("status = %s, want %s", status, StatusQuestionIssued)
	}

	failMu.Lock()
	fail = false
	failMu.Unlock()
	res, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.NewBalance != 120 || res.NewGamesPlayed != 1 {
		t.Fatalf("unexpected retry result: %+v", res)
	}
}

func TestTransitionsOutOfOrder(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	open, _ := f.svc.OpenCategory(ctx, "alice", "Science")

	if _, err := f.svc.GetQuestion(ctx, "alice", open.SessionID); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("question before wager: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "alice", open.SessionID, Answer{Choice: "Au"}); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("answer before question: %v", err)
	}
	if _, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, 10); err != nil {
		t.Fatalf("wager: %v", err)
	}
	if _, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, 10); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("second wager: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "alice", open.SessionID, Answer{Choice: "Au"}); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("answer before question issued: %v", err)
	}
}

func TestUnknownAndForeignSessions(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	sid := f.issue(t, "alice", "Science", 10)

	if _, err := f.svc.SubmitWager(ctx, "alice", "nope", 10); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("unknown session: %v", err)
	}
	if _, err := f.svc.GetQuestion(ctx, "bob", sid); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("foreign get question: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "bob", sid, Answer{Choice: "Au"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("foreign answer: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"}); err != nil {
		t.Fatalf("owner answer: %v", err)
	}
	if _, err := f.svc.SubmitAnswer(ctx, "bob", sid, Answer{Choice: "Au"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("foreign replay: %v", err)
	}
}

func TestOpenCategoryAbandonsPreviousRound(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	old := f.issue(t, "alice", "Science", 40)

	next, err := f.svc.OpenCategory(ctx, "alice", "History")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if next.SessionID == old {
		t.Fatal("expected a fresh session id")
	}
	if _, err := f.svc.SubmitAnswer(ctx, "alice", old, Answer{Choice: "Au"}); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("abandoned session answer: %v", err)
	}
	l, _ := f.store.Read(ctx, "alice")
	if l.Balance != 100 || l.GamesPlayed != 0 {
		t.Fatalf("abandoned round touched ledger: %+v", l)
	}
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	open, _ := f.svc.OpenCategory(ctx, "alice", "Science")

	if err := f.svc.CloseSession(ctx, "alice", open.SessionID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.svc.CloseSession(ctx, "alice", open.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("second close: %v", err)
	}

	sid := f.issue(t, "alice", "Science", 10)
	if _, err := f.svc.SubmitAnswer(ctx, "alice", sid, Answer{Choice: "Au"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if err := f.svc.CloseSession(ctx, "alice", sid); !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("close graded: %v", err)
	}
}

func TestIdleSessionExpires(t *testing.T) {
	f := newFixture(t, Config{SessionTTL: time.Minute})
	ctx := context.Background()
	open, _ := f.svc.OpenCategory(ctx, "alice", "Science")

	f.clock.Advance(30 * time.Second)
	if _, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, 10); err != nil {
		t.Fatalf("wager within ttl: %v", err)
	}
	f.clock.Advance(61 * time.Second)
	if _, err := f.svc.GetQuestion(ctx, "alice", open.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected expired session, got %v", err)
	}
}

func TestSweepEvictsExpiredRoundsAndResults(t *testing.T) {
	f := newFixture(t, Config{SessionTTL: time.Minute, ResultRetention: 2 * time.Minute})
	ctx := context.Background()
	graded := f.issue(t, "alice", "Science", 10)
	if _, err := f.svc.SubmitAnswer(ctx, "alice", graded, Answer{Choice: "Au"}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	idle, _ := f.svc.OpenCategory(ctx, "bob", "History")

	f.clock.Advance(90 * time.Second)
	f.svc.sweep(f.clock.Now())
	if _, err := f.svc.SessionStatus(ctx, "bob", idle.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("idle session survived sweep: %v", err)
	}
	if st, err := f.svc.SessionStatus(ctx, "alice", graded); err != nil || st != StatusGraded {
		t.Fatalf("graded result evicted too early: %s %v", st, err)
	}

	f.clock.Advance(time.Minute)
	f.svc.sweep(f.clock.Now())
	if _, err := f.svc.SessionStatus(ctx, "alice", graded); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("graded result survived retention: %v", err)
	}
}

func TestQuestionProviderErrors(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	for _, tc := range []struct {
		category string
		want     error
	}{
		{category: "Cooking", want: questions.ErrCategoryNotFound},
		{category: "Empty", want: questions.ErrNoQuestionsAvailable},
	} {
		open, _ := f.svc.OpenCategory(ctx, "alice", tc.category)
		if _, err := f.svc.SubmitWager(ctx, "alice", open.SessionID, 5); err != nil {
			t.Fatalf("wager: %v", err)
		}
		if _, err := f.svc.GetQuestion(ctx, "alice", open.SessionID); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.category, tc.want, err)
		}
		if status, _ := f.svc.SessionStatus(ctx, "alice", open.SessionID); status != StatusWagerApproved {
			t.Fatalf("%s: status = %s", tc.category, status)
		}
	}
}

func TestGetQuestionHidesAnswerAndIsStable(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	open, _ := f.svc.OpenCategory(ctx, "alice", "History")
	_, _ = f.svc.SubmitWager(ctx, "alice", open.SessionID, 5)

	first, err := f.svc.GetQuestion(ctx, "alice", open.SessionID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	second, err := f.svc.GetQuestion(ctx, "alice", open.SessionID)
	if err != nil {
		t.Fatalf("get question again: %v", err)
	}
	if first.Prompt != second.Prompt || len(first.Choices) != 2 || first.Wager != 5 {
		t.Fatalf("unexpected questions: %+v %+v", first, second)
	}
}

func TestOpenCategoryRequiresInput(t *testing.T) {
	f := newFixture(t, Config{})
	if _, err := f.svc.OpenCategory(context.Background(), "", "Science"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing user: %v", err)
	}
	if _, err := f.svc.OpenCategory(context.Background(), "alice", "  "); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("missing category: %v", err)
	}
}

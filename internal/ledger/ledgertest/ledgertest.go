// Package ledgertest holds behavior checks shared by every ledger.Store
// backend.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"trivia-wager/internal/ledger"
)

// OpeningBalance is the balance factories must configure for RunStore.
const OpeningBalance = 100

// Factory returns a fresh, empty store opened with OpeningBalance.
type Factory func(t *testing.T) ledger.Store

func counters(l ledger.Ledger) [4]int64 {
	return [4]int64{l.Balance, l.GamesPlayed, l.CorrectAnswers, l.IncorrectAnswers}
}

// RunStore exercises the Store contract against a backend.
func RunStore(t *testing.T, newStore Factory) {
	t.Run("read creates opening ledger", func(t *testing.T) {
		st := newStore(t)
		got, err := st.Read(context.Background(), "alice")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got.UserID != "alice" || counters(got) != [4]int64{OpeningBalance, 0, 0, 0} {
			t.Fatalf("unexpected opening ledger: %+v", got)
		}
	})

	t.Run("commit applies every field", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		got, err := st.Commit(ctx, "alice", ledger.OutcomeDelta("s1", true, 20))
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if counters(got) != [4]int64{120, 1, 1, 0} {
			t.Fatalf("after correct: %+v", got)
		}
		got, err = st.Commit(ctx, "alice", ledger.OutcomeDelta("s2", false, -50))
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if counters(got) != [4]int64{70, 2, 1, 1} {
			t.Fatalf("after incorrect: %+v", got)
		}
		read, err := st.Read(ctx, "alice")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if counters(read) != counters(got) {
			t.Fatalf("read %+v disagrees with commit %+v", read, got)
		}
	})

	t.Run("repeated ref returns original snapshot", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		first, err := st.Commit(ctx, "alice", ledger.OutcomeDelta("s1", true, 20))
		if err != nil {
			t.Fatalf("commit: %v", err)
		}
		if _, err := st.Commit(ctx, "alice", ledger.OutcomeDelta("s2", true, 5)); err != nil {
			t.Fatalf("commit s2: %v", err)
		}
		again, err := st.Commit(ctx, "alice", ledger.OutcomeDelta("s1", true, 20))
		if err != nil {
			t.Fatalf("repeat commit: %v", err)
		}
		if counters(again) != counters(first) {
			t.Fatalf("repeat returned %+v, want %+v", again, first)
		}
		cur, _ := st.Read(ctx, "alice")
		if counters(cur) != [4]int64{125, 2, 2, 0} {
			t.Fatalf("ledger mutated by repeat: %+v", cur)
		}
	})

	t.Run("refs are scoped per user", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		if _, err := st.Commit(ctx, "alice", ledger.OutcomeDelta("shared", true, 10)); err != nil {
			t.Fatalf("commit alice: %v", err)
		}
		got, err := st.Commit(ctx, "bob", ledger.OutcomeDelta("shared", false, -10))
		if err != nil {
			t.Fatalf("commit bob: %v", err)
		}
		if counters(got) != [4]int64{90, 1, 0, 1} {
			t.Fatalf("bob ledger: %+v", got)
		}
	})

	t.Run("invalid delta is rejected", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Commit(context.Background(), "alice", ledger.Delta{Ref: "x", BalanceDelta: 10})
		if !errors.Is(err, ledger.ErrInvalidDelta) {
			t.Fatalf("expected ErrInvalidDelta, got %v", err)
		}
	})

	t.Run("concurrent commits conserve counters", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()
		const n = 40
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				correct := i%2 == 0
				delta := int64(-3)
				if correct {
					delta = 5
				}
				if _, err := st.Commit(ctx, "alice", ledger.OutcomeDelta(fmt.Sprintf("c%d", i), correct, delta)); err != nil {
					t.Errorf("commit %d: %v", i, err)
				}
			}(i)
		}
		wg.Wait()
		got, err := st.Read(ctx, "alice")
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if counters(got) != [4]int64{OpeningBalance + 20*5 - 20*3, n, n / 2, n / 2} {
			t.Fatalf("unexpected ledger: %+v", got)
		}
	})

	t.Run("top orders by balance", func(t *testing.T) {
		st := newStore(t)
		r, ok := st.(ledger.Ranker)
		if !ok {
			t.Skip("store does not rank")
		}
		ctx := context.Background()
		_, _ = st.Commit(ctx, "bob", ledger.OutcomeDelta("b1", true, 50))
		_, _ = st.Commit(ctx, "carol", ledger.OutcomeDelta("c1", false, -30))
		_, _ = st.Read(ctx, "alice")

		rows, err := r.Top(ctx, 2)
		if err != nil {
			t.Fatalf("top: %v", err)
		}
		if len(rows) != 2 || rows[0].UserID != "bob" || rows[0].Rank != 1 || rows[1].UserID != "alice" || rows[1].Rank != 2 {
			t.Fatalf("unexpected standings: %+v", rows)
		}
	})
}

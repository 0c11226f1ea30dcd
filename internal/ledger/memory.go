package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// CommitHook runs after a commit's next state is computed and before it is
// published. A non-nil error aborts the commit with no visible change.
type CommitHook func(userID string, next Ledger) error

type MemoryOption func(*MemoryStore)

func WithOpeningBalance(balance int64) MemoryOption {
	return func(s *MemoryStore) { s.opening = balance }
}

func WithCommitHook(h CommitHook) MemoryOption {
	return func(s *MemoryStore) { s.hook = h }
}

// MemoryStore keeps ledgers in process. Each account has its own lock; the
// store-wide lock only guards the account index.
type MemoryStore struct {
	opening int64
	hook    CommitHook
	now     func() time.Time

	mu       sync.RWMutex
	accounts map[string]*account
}

type account struct {
	mu      sync.Mutex
	ledger  Ledger
	commits map[string]Ledger
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		now:      time.Now,
		accounts: map[string]*account{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) account(userID string) *account {
	s.mu.RLock()
	acc := s.accounts[userID]
	s.mu.RUnlock()
	if acc != nil {
		return acc
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc = s.accounts[userID]; acc == nil {
		acc = &account{
			ledger: Ledger{
				UserID:    userID,
				Balance:   s.opening,
				UpdatedAt: s.now().UTC(),
			},
			commits: map[string]Ledger{},
		}
		s.accounts[userID] = acc
	}
	return acc
}

func (s *MemoryStore) Read(ctx context.Context, userID string) (Ledger, error) {
	if err := ctx.Err(); err != nil {
		return Ledger{}, Unavailable(err)
	}
	acc := s.account(userID)
	acc.mu.Lock()
	defer acc.mu.Unlock()
	return acc.ledger, nil
}

func (s *MemoryStore) Commit(ctx context.Context, userID string, d Delta) (Ledger, error) {
	if err := d.Validate(); err != nil {
		return Ledger{}, err
	}
	if err := ctx.Err(); err != nil {
		return Ledger{}, Unavailable(err)
	}
	acc := s.account(userID)
	acc.mu.Lock()
	defer acc.mu.Unlock()

	if prev, ok := acc.commits[d.Ref]; ok {
		return prev, nil
	}
	next := acc.ledger.Apply(d)
	next.UpdatedAt = s.now().UTC()
	if s.hook != nil {
		if err := s.hook(userID, next); err != nil {
			return Ledger{}, Unavailable(err)
		}
	}
	acc.ledger = next
	acc.commits[d.Ref] = next
	return next, nil
}

func (s *MemoryStore) Top(ctx context.Context, limit int) ([]Standing, error) {
	if err := ctx.Err(); err != nil {
		return nil, Unavailable(err)
	}
	if limit <= 0 {
		limit = 50
	}
	s.mu.RLock()
	accs := make([]*account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		accs = append(accs, acc)
	}
	s.mu.RUnlock()

	rows := make([]Ledger, 0, len(accs))
	for _, acc := range accs {
		acc.mu.Lock()
		rows = append(rows, acc.ledger)
		acc.mu.Unlock()
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Balance == rows[j].Balance {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].Balance > rows[j].Balance
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]Standing, 0, len(rows))
	for i, r := range rows {
		out = append(out, Standing{Rank: i + 1, Ledger: r})
	}
	return out, nil
}

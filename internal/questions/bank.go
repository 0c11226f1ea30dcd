package questions

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

//go:embed default_questions.json
var defaultQuestionsJSON []byte

type BankOption func(*Bank)

// WithShuffledChoices returns each issued question with its choices in random order.
func WithShuffledChoices() BankOption {
	return func(b *Bank) { b.shuffle = true }
}

// WithRand fixes the random source, mainly for tests.
func WithRand(rnd *rand.Rand) BankOption {
	return func(b *Bank) { b.rnd = rnd }
}

// WithCategories registers categories up front so a category with no
// questions reports ErrNoQuestionsAvailable instead of ErrCategoryNotFound.
func WithCategories(names ...string) BankOption {
	return func(b *Bank) {
		for _, n := range names {
			if _, ok := b.byCategory[n]; !ok {
				b.byCategory[n] = nil
			}
		}
	}
}

// Bank is an in-memory Provider that picks a random question per category.
type Bank struct {
	byCategory map[string][]Question
	shuffle    bool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBank(items []Question, opts ...BankOption) *Bank {
	b := &Bank{
		byCategory: map[string][]Question{},
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, q := range items {
		b.byCategory[q.Category] = append(b.byCategory[q.Category], q)
	}
	return b
}

// Default returns the bank compiled into the binary.
func Default(opts ...BankOption) (*Bank, error) {
	items, err := Parse(bytes.NewReader(defaultQuestionsJSON))
	if err != nil {
		return nil, err
	}
	return NewBank(items, opts...), nil
}

// LoadFile reads a JSON question file, or the built-in bank when path is empty.
func LoadFile(path string, opts ...BankOption) (*Bank, error) {
	if strings.TrimSpace(path) == "" {
		return Default(opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open questions file: %w", err)
	}
	defer f.Close()
	items, err := Parse(f)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("questions", len(items)).Msg("question bank loaded")
	return NewBank(items, opts...), nil
}

type rawQuestion struct {
	Category string          `json:"category"`
	Question string          `json:"question"`
	Choices  []string        `json:"choices"`
	Answer   json.RawMessage `json:"answer"`
}

// Parse decodes a JSON array of questions. Records without a category, prompt,
// choices, or an answer matching one of the choices are skipped.
func Parse(r io.Reader) ([]Question, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("questions json must be a list: %w", err)
	}
	out := make([]Question, 0, len(raw))
	for i, item := range raw {
		var rq rawQuestion
		if err := json.Unmarshal(item, &rq); err != nil {
			log.Debug().Int("index", i).Err(err).Msg("skip malformed question")
			continue
		}
		q, ok := rq.clean()
		if !ok {
			log.Debug().Int("index", i).Msg("skip incomplete question")
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no valid questions found: %w", ErrNoQuestionsAvailable)
	}
	return out, nil
}

func (rq rawQuestion) clean() (Question, bool) {
	q := Question{
		Category: strings.TrimSpace(rq.Category),
		Prompt:   strings.TrimSpace(rq.Question),
	}
	if q.Category == "" || q.Prompt == "" || len(rq.Choices) == 0 {
		return Question{}, false
	}
	q.Choices = append([]string(nil), rq.Choices...)

	var text string
	if err := json.Unmarshal(rq.Answer, &text); err == nil {
		if q.HasChoice(text) {
			q.AnswerKey = text
			return q, true
		}
		// "2" style answers index into the choices.
		if idx, err := strconv.Atoi(strings.TrimSpace(text)); err == nil && idx >= 0 && idx < len(q.Choices) {
			q.AnswerKey = q.Choices[idx]
			return q, true
		}
		return Question{}, false
	}
	var idx int
	if err := json.Unmarshal(rq.Answer, &idx); err == nil && idx >= 0 && idx < len(q.Choices) {
		q.AnswerKey = q.Choices[idx]
		return q, true
	}
	return Question{}, false
}

func (b *Bank) FetchQuestion(ctx context.Context, category string) (Question, error) {
	if err := ctx.Err(); err != nil {
		return Question{}, err
	}
	category = strings.TrimSpace(category)
	items, ok := b.byCategory[category]
	if !ok {
		return Question{}, ErrCategoryNotFound
	}
	if len(items) == 0 {
		return Question{}, ErrNoQuestionsAvailable
	}

	b.mu.Lock()
	picked := items[b.rnd.Intn(len(items))]
	choices := append([]string(nil), picked.Choices...)
	if b.shuffle {
		b.rnd.Shuffle(len(choices), func(i, j int) { choices[i], choices[j] = choices[j], choices[i] })
	}
	b.mu.Unlock()

	picked.Choices = choices
	return picked, nil
}

func (b *Bank) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(b.byCategory))
	for c := range b.byCategory {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

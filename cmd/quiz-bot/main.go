package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-wager/internal/config"

	"github.com/pterm/pterm"
)

type roundReport struct {
	Category string
	Wager    int64
	Prompt   string
	Picked   string
	Correct  bool
	Balance  int64
	Skipped  string
}

type bot struct {
	api   *client
	rnd   *rand.Rand
	wager int64
}

// playRound runs one full round: open, wager, question, answer. A rejected
// wager closes the session and reports the reason in Skipped.
func (b *bot) playRound(ctx context.Context, categories []string) (roundReport, error) {
	category := categories[b.rnd.Intn(len(categories))]
	rep := roundReport{Category: category, Wager: b.wager}

	open, err := b.api.openSession(ctx, category)
	if err != nil {
		return rep, fmt.Errorf("open session: %w", err)
	}
	decision, err := b.api.wager(ctx, open.SessionID, b.wager)
	if err != nil {
		return rep, fmt.Errorf("wager: %w", err)
	}
	if !decision.Approved {
		rep.Skipped = decision.Reason
		_ = b.api.closeSession(ctx, open.SessionID)
		return rep, nil
	}
	q, err := b.api.question(ctx, open.SessionID)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.Code == "no_questions_available" {
			rep.Skipped = apiErr.Code
			_ = b.api.closeSession(ctx, open.SessionID)
			return rep, nil
		}
		return rep, fmt.Errorf("question: %w", err)
	}
	pick := b.rnd.Intn(len(q.Choices))
	rep.Prompt = q.Prompt
	rep.Picked = q.Choices[pick]
	res, err := b.api.answer(ctx, open.SessionID, pick)
	if err != nil {
		return rep, fmt.Errorf("answer: %w", err)
	}
	rep.Correct = res.IsCorrect
	rep.Balance = res.NewBalance
	return rep, nil
}

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := &bot{
		api:   newClient(cfg.ServerURL, cfg.UserID),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		wager: cfg.Wager,
	}
	pterm.DefaultHeader.Println("trivia bot")
	pterm.Info.Printfln("server %s as %s", pterm.Cyan(cfg.ServerURL), pterm.Cyan(cfg.UserID))

	categories, err := b.api.categories(ctx)
	if err != nil || len(categories) == 0 {
		pterm.Error.Printfln("no categories: %v", err)
		os.Exit(1)
	}

	rows := pterm.TableData{{"#", "category", "wager", "answer", "result", "balance"}}
	for i := 1; i <= cfg.Rounds; i++ {
		spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("round %d/%d", i, cfg.Rounds))
		rep, err := b.playRound(ctx, categories)
		if err != nil {
			spinner.Fail(err.Error())
			os.Exit(1)
		}
		switch {
		case rep.Skipped != "":
			spinner.Warning("skipped: " + rep.Skipped)
			rows = append(rows, []string{fmt.Sprint(i), rep.Category, fmt.Sprint(rep.Wager), "-", rep.Skipped, "-"})
			continue
		case rep.Correct:
			spinner.Success(rep.Prompt)
		default:
			spinner.Warning(rep.Prompt)
		}
		result := pterm.Red("wrong")
		if rep.Correct {
			result = pterm.Green("right")
		}
		rows = append(rows, []string{fmt.Sprint(i), rep.Category, fmt.Sprint(rep.Wager), rep.Picked, result, fmt.Sprint(rep.Balance)})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	stats, err := b.api.statistics(ctx)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Success.Printfln("balance %d after %d games (%d right, %d wrong)",
		stats.Balance, stats.GamesPlayed, stats.CorrectAnswers, stats.IncorrectAnswers)
}

package quiz

import (
	"context"

	"trivia-wager/internal/ledger"
	"trivia-wager/internal/questions"

	"github.com/rs/zerolog/log"
)

// SubmitAnswer grades the answer and commits the outcome as one ledger
// transaction keyed by the session id. Repeating the call for a graded session
// returns the original result. If the commit fails the session stays in
// question_issued and the same call may be retried.
func (s *Service) SubmitAnswer(ctx context.Context, userID, sessionID string, ans Answer) (*CommitResult, error) {
	u := s.lockUser(userID)
	defer u.mu.Unlock()

	now := s.now()
	sess, err := s.activeLocked(u, sessionID, now)
	if err != nil {
		if cached, ok := s.gradedResult(userID, sessionID); ok {
			metricCommitReplays.Add(1)
			return &cached, nil
		}
		return nil, err
	}
	if sess.Status != StatusQuestionIssued {
		return nil, ErrInvalidSessionState
	}
	choice, err := resolveChoice(sess.Question, ans)
	if err != nil {
		sess.LastActivityAt = now
		return nil, err
	}

	g := grade(sess, choice)
	l, err := s.ledger.Commit(ctx, userID, ledger.OutcomeDelta(sess.ID, g.IsCorrect, g.WagerDelta))
	if err != nil {
		metricCommitErrors.Add(1)
		sess.LastActivityAt = now
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("session_id", sess.ID).
			Int64("wager_delta", g.WagerDelta).
			Msg("ledger commit failed")
		return nil, ledger.Unavailable(err)
	}

	res := CommitResult{
		SessionID:           sess.ID,
		IsCorrect:           g.IsCorrect,
		CorrectChoice:       sess.Question.AnswerKey,
		NewBalance:          l.Balance,
		NewGamesPlayed:      l.GamesPlayed,
		NewCorrectAnswers:   l.CorrectAnswers,
		NewIncorrectAnswers: l.IncorrectAnswers,
	}
	sess.Status = StatusGraded
	u.active = nil
	s.mu.Lock()
	s.graded[sess.ID] = gradedResult{userID: userID, result: res, expiresAt: now.Add(s.retention)}
	s.mu.Unlock()

	metricAnswersCommitted.Add(1)
	log.Info().
		Str("user_id", userID).
		Str("session_id", sess.ID).
		Bool("correct", g.IsCorrect).
		Int64("wager_delta", g.WagerDelta).
		Int64("balance", l.Balance).
		Msg("quiz round committed")
	return &res, nil
}

func (s *Service) gradedResult(userID, sessionID string) (CommitResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.graded[sessionID]
	if !ok || g.userID != userID {
		return CommitResult{}, false
	}
	return g.result, true
}

func resolveChoice(q *questions.Question, ans Answer) (string, error) {
	if ans.Index != nil {
		i := *ans.Index
		if i < 0 || i >= len(q.Choices) {
			return "", ErrInvalidChoice
		}
		return q.Choices[i], nil
	}
	if !q.HasChoice(ans.Choice) {
		return "", ErrInvalidChoice
	}
	return ans.Choice, nil
}

func grade(sess *Session, choice string) Grade {
	if choice == sess.Question.AnswerKey {
		return Grade{IsCorrect: true, WagerDelta: sess.Wager}
	}
	return Grade{IsCorrect: false, WagerDelta: -sess.Wager}
}

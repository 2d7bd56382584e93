package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (s *Store) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	bankIDs, err := json.Marshal(nonNil(data.BankIDs))
	if err != nil {
		return fmt.Errorf("marshal bank ids: %w", err)
	}

	insert := s.sb().Insert("session_events").
		Columns("sequence", "ts", "session_id", "action", "mode", "bank_ids",
			"questions_served", "correct_answers", "duration_secs").
		Values(seqNum, toMillis(time.Now()), data.SessionID, data.Action, data.Mode, string(bankIDs),
			data.QuestionsServed, data.CorrectAnswers, data.DurationSecs)
	if err := s.exec(ctx, s.db, insert); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (s *Store) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := s.sb().Insert("answer_events").
		Columns("sequence", "ts", "session_id", "question_id", "selected_answer", "correct", "grade").
		Values(seqNum, toMillis(time.Now()), data.SessionID, data.QuestionID, data.SelectedAnswer, data.Correct, data.Grade)
	if err := s.exec(ctx, s.db, insert); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (s *Store) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	preds := []*entsql.Predicate{entsql.EQ("action", "end")}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("ts", toMillis(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("ts", toMillis(opts.To)))
	}

	sel := s.sb().Select("session_id", "mode", "bank_ids", "sequence", "ts",
		"questions_served", "correct_answers", "duration_secs").
		From(s.sb().Table("session_events")).
		Where(entsql.And(preds...)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var (
			r       SessionSummaryRecord
			bankIDs string
			ts      int64
		)
		if err := rows.Scan(&r.SessionID, &r.Mode, &bankIDs, &r.Sequence, &ts,
			&r.QuestionsServed, &r.CorrectAnswers, &r.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		if err := json.Unmarshal([]byte(bankIDs), &r.BankIDs); err != nil {
			return nil, fmt.Errorf("unmarshal bank ids: %w", err)
		}
		r.Timestamp = fromMillis(ts)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) AnswerAccuracy(ctx context.Context, questionID string) (float64, int, error) {
	query, args := s.sb().Select("correct").
		From(s.sb().Table("answer_events")).
		Where(entsql.EQ("question_id", questionID)).
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("query answer accuracy: %w", err)
	}
	defer rows.Close()

	total, correct := 0, 0
	for rows.Next() {
		var ok bool
		if err := rows.Scan(&ok); err != nil {
			return 0, 0, fmt.Errorf("scan answer: %w", err)
		}
		total++
		if ok {
			correct++
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(total), total, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

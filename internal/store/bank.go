package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/quizquest/internal/question"
)

func (s *Store) SaveBank(ctx context.Context, b question.Bank) error {
	position, err := s.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		insert := s.sb().Insert("banks").
			Columns("id", "name", "position").
			Values(b.ID, b.Name, position).
			OnConflict(entsql.ConflictColumns("id"), entsql.ResolveWithNewValues())
		if err := s.exec(ctx, tx, insert); err != nil {
			return fmt.Errorf("save bank: %w", err)
		}

		del := s.sb().Delete("questions").Where(entsql.EQ("bank_id", b.ID))
		if err := s.exec(ctx, tx, del); err != nil {
			return fmt.Errorf("replace questions: %w", err)
		}

		if len(b.Questions) == 0 {
			return nil
		}
		ins := s.sb().Insert("questions").Columns("bank_id", "id", "position", "data")
		for i, q := range b.Questions {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("marshal question %q: %w", q.ID, err)
			}
			ins = ins.Values(b.ID, q.ID, i, string(data))
		}
		if err := s.exec(ctx, tx, ins); err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
		return nil
	})
}

func (s *Store) DeleteBank(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.exec(ctx, tx, s.sb().Delete("questions").Where(entsql.EQ("bank_id", id))); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := s.exec(ctx, tx, s.sb().Delete("banks").Where(entsql.EQ("id", id))); err != nil {
			return fmt.Errorf("delete bank: %w", err)
		}
		return nil
	})
}

func (s *Store) Banks(ctx context.Context) ([]question.Bank, error) {
	query, args := s.sb().Select("id", "name").
		From(s.sb().Table("banks")).
		OrderBy("position").
		Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query banks: %w", err)
	}
	defer rows.Close()

	var banks []question.Bank
	for rows.Next() {
		var b question.Bank
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

func (s *Store) Bank(ctx context.Context, id string) (*question.Bank, error) {
	query, args := s.sb().Select("id", "name").
		From(s.sb().Table("banks")).
		Where(entsql.EQ("id", id)).
		Query()

	var b question.Bank
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", question.ErrBankNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query bank: %w", err)
	}

	b.Questions, err = s.questions(ctx, id)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) Questions(ctx context.Context, bankID string) ([]question.Question, error) {
	b, err := s.Bank(ctx, bankID)
	if err != nil {
		return nil, err
	}
	return b.Questions, nil
}

func (s *Store) questions(ctx context.Context, bankID string) ([]question.Question, error) {
	query, args := s.sb().Select("data").
		From(s.sb().Table("questions")).
		Where(entsql.EQ("bank_id", bankID)).
		OrderBy("position").
		Query()

	blobs, err := queryStrings(ctx, s.db, query, args)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}

	out := make([]question.Question, 0, len(blobs))
	for _, b := range blobs {
		var q question.Question
		if err := json.Unmarshal([]byte(b), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	return out, nil
}

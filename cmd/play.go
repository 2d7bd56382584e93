package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/quizquest/internal/battle"
	"github.com/abhisek/quizquest/internal/question"
	"github.com/abhisek/quizquest/internal/quiz"
	"github.com/abhisek/quizquest/internal/skills"
	"github.com/abhisek/quizquest/internal/store"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	Long: "Play a quiz in the terminal. Type an option number (or several, comma separated) " +
		"or the answer itself; q exits and keeps your mistakes for a retry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, err := openRepo(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		policy, err := skills.NewPolicy(appConfig.Skills)
		if err != nil {
			return err
		}
		b := battle.New(policy, battle.WithConfig(appConfig.Battle), battle.WithLogger(logger))
		b.Start()
		defer b.Close()

		engine := quiz.New(quiz.Deps{Repo: repo}, quiz.WithListener(b), quiz.WithLogger(logger))

		started, err := startSession(ctx, cmd, engine, repo)
		if err != nil || !started {
			return err
		}
		return playLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), engine, b)
	},
}

func init() {
	playCmd.Flags().StringSlice("bank", nil, "Bank IDs to draw from (default: all banks)")
	playCmd.Flags().String("mode", string(quiz.KindRandom), "random, mistake, retry_session or challenge")
	playCmd.Flags().Int("count", 0, "Number of questions (default: quiz.default_count)")
	playCmd.Flags().Bool("resume", false, "Resume the saved session if there is one")
}

// startSession resumes or starts a quiz. It reports false when there is
// nothing to play.
func startSession(ctx context.Context, cmd *cobra.Command, e *quiz.Engine, repo store.Repository) (bool, error) {
	out := cmd.OutOrStdout()

	if resume, _ := cmd.Flags().GetBool("resume"); resume {
		if p, ok := e.PendingResume(ctx); ok {
			if err := e.RestoreSession(ctx); err != nil {
				return false, err
			}
			fmt.Fprintf(out, "Resuming at question %d of %d.\n", p.CurrentIndex+1, len(p.QuestionIDs))
			return true, nil
		}
		fmt.Fprintln(out, "No saved session; starting a new one.")
	}

	bankIDs, _ := cmd.Flags().GetStringSlice("bank")
	if len(bankIDs) == 0 {
		banks, err := repo.Banks(ctx)
		if err != nil {
			return false, err
		}
		for _, b := range banks {
			bankIDs = append(bankIDs, b.ID)
		}
	}

	mode, err := parseMode(ctx, cmd, repo, bankIDs)
	if err != nil {
		return false, err
	}

	err = e.StartQuiz(ctx, bankIDs, mode)
	if w, ok := quiz.AsWarning(err); ok {
		fmt.Fprintln(out, w.Message)
		return false, nil
	}
	return err == nil, err
}

func parseMode(ctx context.Context, cmd *cobra.Command, repo store.Repository, bankIDs []string) (quiz.Mode, error) {
	name, _ := cmd.Flags().GetString("mode")
	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		count = appConfig.Quiz.DefaultCount
	}

	switch quiz.ModeKind(name) {
	case quiz.KindRandom:
		return quiz.Random{Count: count}, nil
	case quiz.KindMistake:
		return quiz.Mistake{Count: count}, nil
	case quiz.KindRetrySession:
		recent, err := repo.RecentMistakeSessions(ctx)
		if err != nil {
			return nil, err
		}
		if len(recent) == 0 {
			return quiz.RetrySession{}, nil
		}
		ids := make([]string, 0, len(recent[0].Mistakes))
		for _, m := range recent[0].Mistakes {
			ids = append(ids, m.QuestionID)
		}
		return quiz.RetrySession{QuestionIDs: ids}, nil
	case quiz.KindChallenge:
		if len(bankIDs) != 1 {
			return nil, errors.New("challenge mode needs exactly one --bank")
		}
		return quiz.Challenge{ChallengeID: uuid.NewString(), BankID: bankIDs[0]}, nil
	}
	return nil, fmt.Errorf("%w: %q", quiz.ErrInvalidMode, name)
}

func playLoop(ctx context.Context, in io.Reader, out io.Writer, e *quiz.Engine, b *battle.Battle) error {
	scanner := bufio.NewScanner(in)
	for {
		st := e.State()
		if st.IsFinished {
			break
		}
		q, ok := st.CurrentQuestion()
		if !ok {
			break
		}

		if !st.Answered {
			printQuestion(out, st, q)
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "q" || line == "quit" {
				break
			}

			correct, err := e.Answer(ctx, selection(q, line))
			if err != nil {
				return err
			}
			printVerdict(out, q, correct)
			printBattle(out, b.Snapshot())
		}

		if err := e.NextQuestion(ctx); err != nil {
			return err
		}
	}

	sum := e.Summary()
	if sum.Answered > 0 {
		fmt.Fprintf(out, "\n%d/%d correct (%.0f%%) in %s\n",
			sum.Correct, sum.Answered, sum.Accuracy*100, sum.Duration.Round(time.Second))
	}
	return e.ExitQuiz(ctx)
}

// selection maps option numbers to option text for choice questions.
func selection(q question.Question, line string) string {
	if !q.EffectiveType().IsChoice() || len(q.Options) == 0 {
		return line
	}
	parts := strings.Split(line, ",")
	picked := make([]string, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 || n > len(q.Options) {
			return line
		}
		picked = append(picked, q.Options[n-1])
	}
	return strings.Join(picked, ",")
}

func printQuestion(out io.Writer, st quiz.State, q question.Question) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n", st.CurrentQuestionIndex+1, st.TotalQuestions, q.Question)
	for i, opt := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
	if q.Hint != "" {
		fmt.Fprintf(out, "  hint: %s\n", q.Hint)
	}
	fmt.Fprint(out, "> ")
}

func printVerdict(out io.Writer, q question.Question, correct bool) {
	if correct {
		fmt.Fprintln(out, "Correct!")
	} else {
		fmt.Fprintf(out, "Wrong. Answer: %s\n", q.Answer)
	}
	if q.Explanation != "" {
		fmt.Fprintln(out, q.Explanation)
	}
}

func printBattle(out io.Writer, s battle.State) {
	if !s.IsActive {
		return
	}
	monster := "?"
	if s.CurrentMonster != nil {
		monster = fmt.Sprintf("%s Lv%d", s.CurrentMonster.Name, s.CurrentMonster.Level)
	}
	fmt.Fprintf(out, "  Hero %d/%d | %s %d/%d | streak %d",
		s.HeroHP, s.HeroMaxHP, monster, s.MonsterHP, s.MonsterMaxHP, s.Streak)
	if s.PendingSkill != nil {
		fmt.Fprintf(out, " | %s!", s.PendingSkill.Name)
	}
	fmt.Fprintln(out)
	if s.CurrentDialogue != "" {
		fmt.Fprintf(out, "  %q\n", s.CurrentDialogue)
	}
}

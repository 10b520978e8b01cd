package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/confirm"
	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var errAborted = errors.New("aborted by user")

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the challenge status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			status, err := c.api.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func (c *cli) progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show the seven day slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			progress, err := c.api.Progress(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dia atual: %s  Pontuação: %d\n", dayLabel(progress.CurrentDay), progress.TotalPoints)

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DIA\tDATA\tPONTOS\tESTADO")
			for _, d := range progress.Days {
				state := "bloqueado"
				switch {
				case !d.Locked:
					state = "aberto"
				case d.Scored:
					state = "concluído"
				}
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", d.Day, d.Date, d.Points, state)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) canCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "can-complete",
		Short: "Check whether today's tasks can be recorded",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			ok, reason, err := c.api.CanComplete(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "can_complete=%t reason=%s\n", ok, reason)
			return nil
		},
	}
}

func (c *cli) startCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Opt in to the challenge; day 1 is tomorrow",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := c.askConfirmation(cmd.Context(), cmd.OutOrStdout(), confirm.Prompt{
					Title:   "Começar o desafio?",
					Message: "O dia 1 começa amanhã e não é possível reiniciar.",
				})
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			status, err := c.api.Start(ctx)
			if err != nil {
				return err
			}
			c.logger.Debug("challenge started", zap.Timep("start_date", status.StartDate))
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Close the challenge once every day is done",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := c.askConfirmation(cmd.Context(), cmd.OutOrStdout(), confirm.Prompt{
					Title:   "Concluir o desafio?",
					Message: "Depois de concluído nenhum dia pode ser alterado.",
				})
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}

			ctx, cancel := c.context(cmd)
			defer cancel()

			status, err := c.api.Complete(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) recordCmd() *cobra.Command {
	var (
		tasks   domain.Tasks
		version int
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record today's tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			rec, err := c.api.RecordProgress(ctx, tasks, version)
			if err != nil {
				return err
			}
			c.logger.Debug("progress recorded", zap.Int("dia_desafio", rec.ChallengeDay), zap.Int("version", rec.Version))

			fmt.Fprintf(cmd.OutOrStdout(), "Dia %d: %d/%d tarefas, %d pontos (versão %d)\n",
				rec.ChallengeDay, rec.Tasks.Completed(), domain.TaskCategories, rec.Points, rec.Version)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&tasks.Hydration, "hidratacao", false, "hydration done")
	f.BoolVar(&tasks.Sleep, "sono", false, "sleep done")
	f.BoolVar(&tasks.Diet, "alimentacao", false, "diet done")
	f.BoolVar(&tasks.Exercise, "exercicio", false, "exercise done")
	f.BoolVar(&tasks.PhotoLog, "registro-foto", false, "photo log done")
	f.IntVar(&version, "version", 0, "version of today's record last seen (0 skips the check)")
	return cmd
}

func (c *cli) rankingCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the ranking",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			entries, err := c.api.Ranking(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNOME\tPONTOS\tSEQUÊNCIA\tDIA")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", e.Rank, e.DisplayName, e.TotalPoints, e.Streak, dayLabel(e.CurrentDay))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			p, err := c.api.Profile(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Nome: %s\n", p.DisplayName)
			fmt.Fprintf(out, "Peso inicial: %s\n", p.InitialWeightLabel)
			fmt.Fprintf(out, "Peso atual: %s\n", p.CurrentWeightLabel)
			if p.ChallengeStartDate != "" {
				fmt.Fprintf(out, "Início do desafio: %s\n", p.ChallengeStartDate)
			}
			return nil
		},
	}
}

// dayCmd runs the day calculator locally, without calling the API.
func dayCmd() *cobra.Command {
	var start, at string

	cmd := &cobra.Command{
		Use:         "day",
		Short:       "Compute the challenge day for a start date",
		Annotations: map[string]string{"offline": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			startDate, err := domain.ParseDateKey(start)
			if err != nil {
				return fmt.Errorf("invalid --start %q (use YYYY-MM-DD)", start)
			}

			now := time.Now()
			if at != "" {
				if now, err = domain.ParseDateKey(at); err != nil {
					return fmt.Errorf("invalid --at %q (use YYYY-MM-DD)", at)
				}
			}

			// same clamping as current_day in the API
			label := dayLabel(domain.ChallengeDay(&startDate, nil, now))
			if domain.DaysBetween(startDate, now) < 0 {
				label += fmt.Sprintf(" (começa em %s)", domain.DateKey(startDate))
			}
			fmt.Fprintln(cmd.OutOrStdout(), label)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "challenge start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&at, "at", "", "date to evaluate, defaults to today in UTC-3")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

// askConfirmation shows the prompt and resolves it with the next line read
// from stdin. Anything but "s", "sim", "y" or "yes" cancels, and so does EOF.
func (c *cli) askConfirmation(ctx context.Context, out io.Writer, prompt confirm.Prompt) (bool, error) {
	coord := confirm.NewCoordinator()
	result := coord.Ask(prompt)

	shown, _ := coord.Pending()
	fmt.Fprintf(out, "%s\n%s [%s/%s]: ", shown.Title, shown.Message, shown.ConfirmLabel, shown.CancelLabel)

	select {
	case line, ok := <-c.lines():
		coord.Resolve(ok && isYes(line))
	case <-ctx.Done():
	}

	return coord.Wait(ctx, result)
}

// lines starts the single stdin reader. An abandoned prompt leaves unread
// input for the next one.
func (c *cli) lines() <-chan string {
	c.readOnce.Do(func() {
		c.input = make(chan string)
		go func() {
			defer close(c.input)
			sc := bufio.NewScanner(c.in)
			for sc.Scan() {
				c.input <- sc.Text()
			}
		}()
	})
	return c.input
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

func printStatus(out io.Writer, s *domain.ChallengeStatus) {
	if !s.Started {
		fmt.Fprintln(out, "Desafio não iniciado.")
		return
	}
	fmt.Fprintf(out, "Início: %s\n", domain.DateKey(*s.StartDate))
	fmt.Fprintf(out, "Dia atual: %s\n", dayLabel(s.CurrentDay))
	fmt.Fprintf(out, "Pode completar tarefas: %t (%s)\n", s.CanCompleteTasks, s.Gate)
	fmt.Fprintf(out, "Dias restantes: %d\n", s.DaysRemaining)
	if s.Completed {
		fmt.Fprintln(out, "Desafio concluído.")
	}
}

func dayLabel(day int) string {
	switch {
	case day <= 0:
		return "-"
	case day >= domain.ChallengeDayCompleted:
		return "concluído"
	default:
		return fmt.Sprintf("%d/%d", day, domain.ChallengeLength)
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdWeeks() *cli.Command {
	var (
		start string
		end   string
		now   string
	)

	return &cli.Command{
		Name:  "weeks",
		Usage: "Print the Monday to Sunday weeks of a training period",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Usage:       "First day of the period (YYYY-MM-DD)",
				Required:    true,
				Destination: &start,
			},
			&cli.StringFlag{
				Name:        "end",
				Usage:       "Last day of the period (YYYY-MM-DD)",
				Required:    true,
				Destination: &end,
			},
			&cli.StringFlag{
				Name:        "now",
				Usage:       "Day used to mark the current week (default: today)",
				Destination: &now,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			weeks, err := model.GenerateCalendarWeeks(start, end)
			if err != nil {
				return err
			}

			today := time.Now()
			if now != "" {
				if today, err = model.ParseDate(now); err != nil {
					return goerr.Wrap(err, "invalid --now")
				}
			}

			return renderWeeks(os.Stdout, weeks, today)
		},
	}
}

// renderWeeks writes weeks as a table and marks the one containing now
func renderWeeks(w io.Writer, weeks []model.WeekRange, now time.Time) error {
	if len(weeks) == 0 {
		_, err := fmt.Fprintln(w, color.YellowString("No weeks in the given period"))
		return err
	}

	current := color.New(color.FgGreen, color.Bold).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Week", "ID", "Start", "End", "Label", ""})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, week := range weeks {
		row := []string{
			fmt.Sprintf("%d", week.WeekNumber),
			week.ID,
			model.FormatDate(week.StartDate),
			model.FormatDate(week.LastDay()),
			week.Label,
			"",
		}
		if week.Contains(now) {
			for i := range row[:5] {
				row[i] = current(row[i])
			}
			row[5] = current("current")
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return goerr.Wrap(err, "failed to build week table")
	}
	if err := table.Render(); err != nil {
		return goerr.Wrap(err, "failed to render week table")
	}

	_, err := fmt.Fprintf(w, "%d weeks\n", len(weeks))
	return err
}

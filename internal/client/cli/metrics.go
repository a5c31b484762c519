package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// Metrics prints the metric set for a date (default: the open date or today).
func (a *App) Metrics(ctx context.Context, args []string) error {
	date, err := a.metricsDate(args)
	if err != nil {
		return nil
	}

	m, err := a.gw.GetMetrics(ctx, date)
	if err != nil {
		fmt.Printf("Metrics failed: %v\n", err)
		return err
	}
	if m == nil {
		fmt.Printf("No metrics recorded for %s.\n", date)
		return nil
	}

	fmt.Printf("--- metrics %s ---\n", date)
	printClock("asleep by", m.AsleepBy)
	printClock("awoke at", m.AwokeAt)
	printClock("out of bed", m.OutOfBedAt)
	printRating("sleep quality", m.SleepQuality)
	printRating("physical activity", m.PhysicalActivity)
	printRating("overall mood", m.OverallMood)
	printHours("paid productivity", m.PaidProductivity)
	printHours("personal productivity", m.PersonalProductivity)
	if m.Complete() {
		fmt.Println("(complete)")
	}
	return nil
}

// Fill interactively edits the metric set for a date and saves it. A save
// triggers the completion chain over the trailing week.
func (a *App) Fill(ctx context.Context, args []string) error {
	date, err := a.metricsDate(args)
	if err != nil {
		return nil
	}
	return a.fillMetricsFor(ctx, date)
}

func (a *App) metricsDate(args []string) (models.Date, error) {
	if len(args) > 0 {
		date, err := models.ParseDate(args[0])
		if err != nil {
			fmt.Println("Usage: metrics [YYYY-MM-DD] / fill [YYYY-MM-DD]")
			return "", err
		}
		return date, nil
	}
	if d := a.engine.Date(); d != "" {
		return d, nil
	}
	return models.Today(), nil
}

func (a *App) fillMetricsFor(ctx context.Context, date models.Date) error {
	current, err := a.gw.GetMetrics(ctx, date)
	if err != nil {
		fmt.Printf("Metrics failed: %v\n", err)
		return err
	}
	if current == nil {
		current = &models.MetricSet{Date: date}
	}

	fmt.Printf("--- fill metrics %s --- (empty input keeps the current value)\n", date)
	m := *current
	m.AsleepBy = a.promptClock("Asleep by (HH:MM)", date, m.AsleepBy)
	m.AwokeAt = a.promptClock("Awoke at (HH:MM)", date, m.AwokeAt)
	m.OutOfBedAt = a.promptClock("Out of bed at (HH:MM)", date, m.OutOfBedAt)
	m.SleepQuality = a.promptRating("Sleep quality (1-7)", m.SleepQuality)
	m.PhysicalActivity = a.promptRating("Physical activity (1-7)", m.PhysicalActivity)
	m.OverallMood = a.promptRating("Overall mood (1-7)", m.OverallMood)
	m.PaidProductivity = a.promptHours("Paid productivity (hours)", m.PaidProductivity)
	m.PersonalProductivity = a.promptHours("Personal productivity (hours)", m.PersonalProductivity)

	saved, err := a.gw.UpsertMetrics(ctx, m)
	if err != nil {
		fmt.Printf("Save failed: %v\n", err)
		return err
	}
	fmt.Printf("Saved metrics for %s.\n", saved.Date)

	a.chainer.OnMetricsSaved(ctx, saved.Date)
	return nil
}

func (a *App) promptClock(label string, date models.Date, current *time.Time) *time.Time {
	suffix := ""
	if current != nil {
		suffix = fmt.Sprintf(" [%s]", current.Local().Format("15:04"))
	}
	input, err := GetSimpleText(a.reader, label+suffix+":", os.Stdout)
	if err != nil || input == "" {
		return current
	}

	clock, err := time.Parse("15:04", input)
	if err != nil {
		fmt.Println("Not a valid time, keeping the current value.")
		return current
	}
	t := date.At(clock.Hour(), clock.Minute(), 0, time.Local)
	return &t
}

func (a *App) promptRating(label string, current *int) *int {
	suffix := ""
	if current != nil {
		suffix = fmt.Sprintf(" [%d]", *current)
	}
	input, err := GetSimpleText(a.reader, label+suffix+":", os.Stdout)
	if err != nil || input == "" {
		return current
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < models.RatingMin || n > models.RatingMax {
		fmt.Println("Ratings are 1..7, keeping the current value.")
		return current
	}
	return &n
}

func (a *App) promptHours(label string, current *float64) *float64 {
	suffix := ""
	if current != nil {
		suffix = fmt.Sprintf(" [%.1f]", *current)
	}
	input, err := GetSimpleText(a.reader, label+suffix+":", os.Stdout)
	if err != nil || input == "" {
		return current
	}

	f, err := strconv.ParseFloat(input, 64)
	if err != nil || f < 0 {
		fmt.Println("Not a valid number of hours, keeping the current value.")
		return current
	}
	return &f
}

func printClock(label string, v *time.Time) {
	if v == nil {
		fmt.Printf("%-22s -\n", label)
		return
	}
	fmt.Printf("%-22s %s\n", label, v.Local().Format("15:04"))
}

func printRating(label string, v *int) {
	if v == nil {
		fmt.Printf("%-22s -\n", label)
		return
	}
	fmt.Printf("%-22s %d/7\n", label, *v)
}

func printHours(label string, v *float64) {
	if v == nil {
		fmt.Printf("%-22s -\n", label)
		return
	}
	fmt.Printf("%-22s %.1fh\n", label, *v)
}

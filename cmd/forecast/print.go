package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/export"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/recommend"
)

const displayDate = "02.01.2006"

func printForecasts(w io.Writer, forecasts []domain.ForecastResult) {
	if len(forecasts) == 0 {
		fmt.Fprintln(w, "No forecasts.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tARTICLE\tNAME\tORDER DATE\tQTY\tPLACE BY\tCONFIDENCE")
	for _, f := range forecasts {
		fmt.Fprintf(tw, "%d %s\t%s\t%s\t%s\t%.0f\t%s\t%.0f%%\n",
			f.Priority, domain.PriorityLabel(f.Priority),
			f.UnifiedArticle, f.ProductName,
			f.NextOrderDate.Format(displayDate),
			export.RoundQuantity(f.RecommendedQuantity),
			f.OptimalOrderPlacementDate.Format(displayDate),
			f.Confidence)
	}
	tw.Flush()
}

func printBatches(w io.Writer, batches [][]domain.ForecastResult) {
	if len(batches) == 0 {
		fmt.Fprintln(w, "No batches.")
		return
	}
	for i, batch := range batches {
		fmt.Fprintf(w, "Batch %d, from %s (%d orders)\n", i+1, batch[0].OptimalOrderPlacementDate.Format(displayDate), len(batch))
		printForecasts(w, batch)
		fmt.Fprintln(w)
	}
}

func printCalendar(w io.Writer, calendar map[time.Time][]domain.ForecastResult) {
	days := recommend.CalendarDays(calendar)
	if len(days) == 0 {
		fmt.Fprintln(w, "Calendar is empty.")
		return
	}
	for _, day := range days {
		fmt.Fprintf(w, "%s\n", day.Format(displayDate))
		for _, f := range calendar[day] {
			fmt.Fprintf(w, "  [%d] %s %s x%.0f\n", f.Priority, f.UnifiedArticle, f.ProductName, export.RoundQuantity(f.RecommendedQuantity))
		}
	}
}

func printGroups(w io.Writer, groups []domain.MappingGroup) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tARTICLE\tPRIMARY NAME\tNAMES\tARTICLES")
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
			g.ID, g.Name, g.UnifiedArticle, g.PrimaryName, len(g.NameVariations), len(g.ArticleVariations))
	}
	tw.Flush()
}

func printSettings(w io.Writer, s config.ForecastSettings) {
	rows := []struct {
		name  string
		value interface{}
	}{
		{"DaysAhead", s.DaysAhead},
		{"MinConfidenceThreshold", s.MinConfidenceThreshold},
		{"SafetyFactorForOrderPlacement", s.SafetyFactorForOrderPlacement},
		{"StableVolumeThreshold", s.StableVolumeThreshold},
		{"DefaultSeasonalityCoefficient", s.DefaultSeasonalityCoefficient},
		{"SimilarityThreshold", s.SimilarityThreshold},
		{"DefaultDeliveryDays", s.DefaultDeliveryDays},
		{"MaxProjections", s.MaxProjections},
		{"DefaultOrderInterval", s.DefaultOrderInterval},
		{"BatchWindowDays", s.BatchWindowDays},
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%v\t%s\n", r.name, r.value, config.Describe(r.name))
	}
	tw.Flush()
}

func printPaths(w io.Writer, paths []string) {
	if len(paths) == 0 {
		fmt.Fprintln(w, "No workbooks found.")
		return
	}
	for _, p := range paths {
		fmt.Fprintln(w, p)
	}
}

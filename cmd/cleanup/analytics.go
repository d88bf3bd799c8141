package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

var (
	analyticsPeriod string
	analyticsTZ     string
	analyticsLang   string
)

func newAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show collection totals per day, month or year",
		Args:  cobra.NoArgs,
		RunE:  runAnalytics,
	}
	addClientFlags(cmd)
	cmd.Flags().StringVar(&analyticsPeriod, "period", string(cleanup.PeriodDay), "Bucket size: day, month or year")
	cmd.Flags().StringVar(&analyticsTZ, "tz", "", "IANA timezone for buckets (default from config)")
	cmd.Flags().StringVar(&analyticsLang, "lang", "en", "Title language: en or id")
	return cmd
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	period, err := cleanup.ParsePeriod(analyticsPeriod)
	if err != nil {
		return err
	}

	client, cfg, err := resolveClient()
	if err != nil {
		return err
	}
	tz := analyticsTZ
	if tz == "" {
		tz = cfg.Analytics.Timezone
	}

	fetcher := cleanup.NewAnalyticsFetcher(client, tz, commandLogger(cmd))
	if period == fetcher.Period() {
		err = fetcher.Refresh(cmd.Context())
	} else {
		err = fetcher.SetPeriod(cmd.Context(), period)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	rows := fetcher.Rows()
	if jsonOutput {
		if rows == nil {
			rows = []cleanup.AnalyticsRow{}
		}
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No submissions yet.")
		return nil
	}
	for _, row := range rows {
		renderCard(out, cleanup.BuildCard(row, period, analyticsLang))
	}
	return nil
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#87CEEB")).
			Padding(0, 1).
			MarginBottom(1)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Underline(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")).Bold(true)
)

func renderCard(w io.Writer, c cleanup.Card) {
	var b strings.Builder
	line := func(label string, value any) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(fmt.Sprint(value)))
	}

	b.WriteString(titleStyle.Render(c.Title) + "\n")

	b.WriteString(sectionStyle.Render("Collection") + "\n")
	line("Reports", c.LocationReports)
	line("Homestay bags", c.BagsHomestays)
	line("Homestay kg", c.KgHomestays)
	line("Location bags", c.BagsLocations)
	line("Location kg", c.KgLocations)

	b.WriteString(sectionStyle.Render("Sorting") + "\n")
	line("Reports", c.SortingReports)
	line("Bags", c.SortedBags)
	line("Kg", c.SortedKg)

	if c.ShowDestinations {
		b.WriteString(sectionStyle.Render("Destinations") + "\n")
		line("Reports", c.DestinationReports)
		line("Bags", c.DestinationBags)
		line("Landfill", c.Landfill)
		line("Bank sampah", c.BankSampah)
		line("Kri", c.Kri)
	}

	fmt.Fprintln(w, cardStyle.Render(strings.TrimRight(b.String(), "\n")))
}

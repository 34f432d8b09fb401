// Package dashboard renders batch results for terminals: the recommendation
// table, the alert sidebar and the empty-batch messages.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/classifier"
	"github.com/wonny/ivtracker/internal/contracts"
)

// Alert is one STRONG_BUY notification
type Alert struct {
	Symbol         string `json:"symbol"`
	Message        string `json:"message"`
	CurrentPrice   string `json:"current_price"`
	IntrinsicValue string `json:"intrinsic_value"`
}

// Alerts builds alerts for the STRONG_BUY rows, in row order
func Alerts(rows contracts.ResultRows) []Alert {
	strong := rows.StrongBuys()
	alerts := make([]Alert, 0, len(strong))
	for _, r := range strong {
		alerts = append(alerts, Alert{
			Symbol:         r.Symbol,
			Message:        classifier.Explain(r),
			CurrentPrice:   r.CurrentPrice.StringFixed(2),
			IntrinsicValue: r.IntrinsicValue.StringFixed(2),
		})
	}
	return alerts
}

// RenderTable writes the recommendation table
func RenderTable(w io.Writer, rows contracts.ResultRows) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Ticker\tCurrent Price\tIntrinsic Value\tSentiment\tRecommendation")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Symbol,
			r.CurrentPrice.StringFixed(2),
			r.IntrinsicValue.StringFixed(2),
			r.Sentiment,
			r.Recommendation.Display(),
		)
	}
	return tw.Flush()
}

// RenderAlerts writes the alert sidebar
func RenderAlerts(w io.Writer, alerts []Alert) error {
	if _, err := fmt.Fprintln(w, "Alerts"); err != nil {
		return err
	}
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, "  No strong buy signals right now.")
		return err
	}
	for _, a := range alerts {
		if _, err := fmt.Fprintf(w, "  %s\n", a.Message); err != nil {
			return err
		}
	}
	return nil
}

// EmptyMessage explains why a batch has no rows
func EmptyMessage(err error) string {
	switch {
	case errors.Is(err, batch.ErrNoSymbols):
		return "No tickers configured. Set TICKERS, UNIVERSE_FILE or UNIVERSE_SOURCE."
	case errors.Is(err, batch.ErrEmptyBatchResult):
		return "No data available. The quote provider may be rate limiting; retry in a few minutes."
	case err != nil:
		return fmt.Sprintf("Failed to load recommendations: %v", err)
	default:
		return ""
	}
}

package sheets

import (
	"context"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
)

// Report is one classified statement ready for publishing.
type Report struct {
	// Title names the source statement. It heads the summary tab.
	Title string
	Table model.Table
	// SummaryRows are written to the summary tab below the title. Nil skips the tab.
	SummaryRows [][]any
}

// Publisher writes reports to a spreadsheet and returns its ID.
type Publisher interface {
	Publish(ctx context.Context, report Report) (string, error)
}

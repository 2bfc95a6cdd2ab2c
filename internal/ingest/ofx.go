package ingest

import (
	"context"
	"io"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/Veraticus/the-spice-must-tally/internal/ofx"
)

// OFXReader reads OFX/QFX downloads. The table has synthesized columns and no header
// row of its own, so Options are ignored.
type OFXReader struct {
	parser *ofx.Parser
}

// NewOFXReader creates an OFX reader.
func NewOFXReader() *OFXReader {
	return &OFXReader{parser: ofx.NewParser()}
}

// Format returns the reader name.
func (o *OFXReader) Format() string { return "ofx" }

// Extensions returns the file extensions handled by the reader.
func (o *OFXReader) Extensions() []string { return []string{".ofx", ".qfx"} }

// Read parses an OFX statement.
func (o *OFXReader) Read(ctx context.Context, r io.Reader, _ Options) (model.Table, error) {
	return o.parser.ParseFile(ctx, r)
}

// OFXFields returns the column mapping of tables produced by OFXReader.
func OFXFields() classification.Fields {
	return classification.Fields{
		Serial:     ofx.ColumnSerial,
		Remarks:    ofx.ColumnRemarks,
		Withdrawal: ofx.ColumnWithdrawal,
		Deposit:    ofx.ColumnDeposit,
	}
}

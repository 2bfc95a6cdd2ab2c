// Package ofx turns OFX/QFX statement downloads into statement tables.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/aclindsa/ofxgo"
)

// Column names synthesized for OFX statements.
const (
	ColumnSerial     = "S.N."
	ColumnDate       = "Date"
	ColumnRemarks    = "Transaction Remarks"
	ColumnWithdrawal = "Withdrawal Amt"
	ColumnDeposit    = "Deposit Amt"
	ColumnType       = "Type"
)

// Columns lists the synthesized columns in table order.
var Columns = []string{ColumnSerial, ColumnDate, ColumnRemarks, ColumnWithdrawal, ColumnDeposit, ColumnType}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML exports sometimes drop the closing bracket of a bare opening tag.
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file into a statement table. Every transaction of every
// bank and credit card statement becomes one row, numbered from 1. Debits land in the
// withdrawal column as positive amounts, credits in the deposit column.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (model.Table, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return model.Table{}, err
	}

	table := model.Table{Columns: append([]string(nil), Columns...)}
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			for _, tx := range stmt.BankTranList.Transactions {
				table.Rows = append(table.Rows, convertTransaction(tx, len(table.Rows)+1))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			for _, tx := range stmt.BankTranList.Transactions {
				table.Rows = append(table.Rows, convertTransaction(tx, len(table.Rows)+1))
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return model.Table{}, err
	}

	slog.Debug("Parsed OFX file",
		"total_transactions", len(table.Rows),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return table, nil
}

// convertTransaction converts an OFX transaction into a statement row.
func convertTransaction(tx ofxgo.Transaction, serial int) model.Row {
	withdrawal, deposit := model.Missing(), model.Missing()
	amount := new(big.Rat).Abs(&tx.TrnAmt.Rat).FloatString(2)
	if tx.TrnAmt.Sign() < 0 {
		withdrawal = model.Text(amount)
	} else {
		deposit = model.Text(amount)
	}

	date := model.Missing()
	if !tx.DtPosted.IsZero() {
		date = model.Text(tx.DtPosted.Format("2006-01-02"))
	}

	return model.Row{
		ColumnSerial:     model.Text(strconv.Itoa(serial)),
		ColumnDate:       date,
		ColumnRemarks:    model.Text(remarks(tx)),
		ColumnWithdrawal: withdrawal,
		ColumnDeposit:    deposit,
		ColumnType:       model.Text(tx.TrnType.String()),
	}
}

// remarks joins the descriptive fields of a transaction so keywords can match any of them.
func remarks(tx ofxgo.Transaction) string {
	parts := make([]string, 0, 3)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, p := range parts {
			if strings.EqualFold(p, s) {
				return
			}
		}
		parts = append(parts, s)
	}

	add(string(tx.Name))
	if tx.Payee != nil {
		add(string(tx.Payee.Name))
	}
	add(string(tx.Memo))
	return strings.Join(parts, " ")
}

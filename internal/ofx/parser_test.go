package ofx

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
		},
		{
			name:          "leading blank lines",
			ofxData:       "\n\n  " + sampleBankOFX,
			expectedCount: 3,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()

			table, err := parser.ParseFile(context.Background(), strings.NewReader(tt.ofxData))

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Columns, table.Columns)
			assert.Len(t, table.Rows, tt.expectedCount)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()

	table, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, model.Row{
		ColumnSerial:     model.Text("1"),
		ColumnDate:       model.Text("2024-01-15"),
		ColumnRemarks:    model.Text("STARBUCKS STORE #1234"),
		ColumnWithdrawal: model.Text("25.50"),
		ColumnDeposit:    model.Missing(),
		ColumnType:       model.Text("DEBIT"),
	}, table.Rows[0])

	assert.Equal(t, model.Text("2"), table.Rows[1][ColumnSerial])
	assert.Equal(t, model.Text("Whole Foods Market"), table.Rows[1][ColumnRemarks])
	assert.Equal(t, model.Text("125.00"), table.Rows[1][ColumnWithdrawal])

	check := table.Rows[2]
	assert.Equal(t, model.Text("CHECK #1234"), check[ColumnRemarks])
	assert.Equal(t, model.Text("500.00"), check[ColumnWithdrawal])
	assert.Equal(t, model.Text("CHECK"), check[ColumnType])
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()

	table, err := parser.ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, model.Text("AMAZON.COM*RT4Y7HG2"), table.Rows[0][ColumnRemarks])
	assert.Equal(t, model.Text("45.99"), table.Rows[0][ColumnWithdrawal])
	assert.Equal(t, model.Text("NETFLIX.COM"), table.Rows[1][ColumnRemarks])
	assert.Equal(t, model.Text("15.00"), table.Rows[1][ColumnWithdrawal])
}

func TestParseFile_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertTransaction_Deposit(t *testing.T) {
	tx := ofxgo.Transaction{
		TrnType: ofxgo.TrnTypeCredit,
		TrnAmt:  mustAmount(t, "1500.5"),
		Name:    "SALARY",
	}

	row := convertTransaction(tx, 7)
	assert.Equal(t, model.Text("7"), row[ColumnSerial])
	assert.Equal(t, model.Missing(), row[ColumnDate])
	assert.Equal(t, model.Missing(), row[ColumnWithdrawal])
	assert.Equal(t, model.Text("1500.50"), row[ColumnDeposit])
	assert.Equal(t, model.Text("CREDIT"), row[ColumnType])
}

func TestRemarks(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		tx       ofxgo.Transaction
	}{
		{
			name:     "name only",
			tx:       ofxgo.Transaction{Name: "  NETFLIX.COM  "},
			expected: "NETFLIX.COM",
		},
		{
			name:     "name and memo",
			tx:       ofxgo.Transaction{Name: "UPI", Memo: "naimish.dg@okaxis"},
			expected: "UPI naimish.dg@okaxis",
		},
		{
			name:     "payee replaces blank name",
			tx:       ofxgo.Transaction{Payee: &ofxgo.Payee{Name: "Cab Co"}},
			expected: "Cab Co",
		},
		{
			name:     "duplicate memo dropped",
			tx:       ofxgo.Transaction{Name: "DEBIT", Memo: "debit"},
			expected: "DEBIT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, remarks(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	got := parser.preprocessOFX("\n  <SEVERITY>Info</SEVERITY>\n<CODE\n")
	assert.Equal(t, "<SEVERITY>INFO</SEVERITY>\n<CODE>\n", got)
}

func mustAmount(t *testing.T, s string) ofxgo.Amount {
	t.Helper()
	var a ofxgo.Amount
	_, ok := a.SetString(s)
	require.True(t, ok)
	return a
}

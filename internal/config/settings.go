package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/common"
	"github.com/Veraticus/the-spice-must-tally/internal/model"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath     = "database.path"
	KeyUser             = "user"
	KeyTaxonomyFile     = "taxonomy.file"
	KeyHeaderRow        = "statement.header_row"
	KeySheet            = "statement.sheet"
	KeySerialColumn     = "columns.serial"
	KeyRemarksColumn    = "columns.remarks"
	KeyWithdrawalColumn = "columns.withdrawal"
	KeyDepositColumn    = "columns.deposit"
	KeyOutputType       = "output.type"
	KeyOutputCategory   = "output.category"
	KeyOutputSubcat     = "output.subcategory"
	KeyOutputRemarks    = "output.remarks"
	KeyWorkers          = "batch.workers"
)

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/tally/tally.db"

// DefaultUser owns the taxonomy when no user is configured.
const DefaultUser = "default"

// Settings is the typed view of the configuration used by the commands.
type Settings struct {
	Output       model.OutputColumns
	Columns      classification.Fields
	DatabasePath string
	User         string
	TaxonomyFile string
	Sheet        string
	HeaderRow    int
	Workers      int
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	out := model.DefaultOutputColumns()

	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyUser, DefaultUser)
	v.SetDefault(KeyHeaderRow, 1)
	v.SetDefault(KeySerialColumn, "S.N.")
	v.SetDefault(KeyRemarksColumn, "Transaction Remarks")
	v.SetDefault(KeyWithdrawalColumn, "Withdrawal Amt (INR)")
	v.SetDefault(KeyDepositColumn, "Deposit Amt (INR)")
	v.SetDefault(KeyOutputType, out.Type)
	v.SetDefault(KeyOutputCategory, out.Category)
	v.SetDefault(KeyOutputSubcat, out.Subcategory)
	v.SetDefault(KeyOutputRemarks, out.Remarks)
	v.SetDefault(KeyWorkers, runtime.NumCPU())
}

// LoadSettings reads Settings from the global viper instance.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(viper.GetViper())
}

// LoadSettingsFrom reads and validates Settings from v. Paths are expanded.
func LoadSettingsFrom(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	s := &Settings{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		User:         strings.TrimSpace(v.GetString(KeyUser)),
		TaxonomyFile: ExpandPath(v.GetString(KeyTaxonomyFile)),
		Sheet:        v.GetString(KeySheet),
		HeaderRow:    v.GetInt(KeyHeaderRow),
		Workers:      v.GetInt(KeyWorkers),
		Columns: classification.Fields{
			Serial:     v.GetString(KeySerialColumn),
			Remarks:    v.GetString(KeyRemarksColumn),
			Withdrawal: v.GetString(KeyWithdrawalColumn),
			Deposit:    v.GetString(KeyDepositColumn),
		},
		Output: model.OutputColumns{
			Type:        v.GetString(KeyOutputType),
			Category:    v.GetString(KeyOutputCategory),
			Subcategory: v.GetString(KeyOutputSubcat),
			Remarks:     v.GetString(KeyOutputRemarks),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values the commands cannot work with.
func (s *Settings) Validate() error {
	switch {
	case s.DatabasePath == "":
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	case s.User == "":
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyUser)
	case s.HeaderRow < 1:
		return fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyHeaderRow, s.HeaderRow)
	case s.Workers < 1:
		return fmt.Errorf("%w: %s must be at least 1, got %d", common.ErrInvalidConfig, KeyWorkers, s.Workers)
	case s.Output.Type == "":
		return fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyOutputType)
	}

	seen := make(map[string]bool, 4)
	for _, name := range s.Output.Names() {
		if name == "" {
			continue
		}
		if seen[name] {
			return fmt.Errorf("%w: output column %q is used twice", common.ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	return nil
}

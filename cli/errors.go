package cli

import "github.com/gear6io/floe/pkg/errors"

// CLI error codes
var (
	ErrConfigLoadFailed  = errors.MustNewCode("cli.config_load_failed")
	ErrLedgerUnavailable = errors.MustNewCode("cli.ledger_unavailable")
	ErrRunFailed         = errors.MustNewCode("cli.run_failed")
	ErrBadEntry          = errors.MustNewCode("cli.bad_entry")
)

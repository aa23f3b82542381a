package transfer

import (
	"encoding/json"
	"log/slog"

	"github.com/featherpost/dashboard-core/internal/models"
)

// accountListEnvelope declares the two envelope shapes the backend is known
// to return for the team account list. Exactly one of the fields is set.
type accountListEnvelope struct {
	Accounts []*models.Account `json:"accounts"`
	Data     []*models.Account `json:"data"`
}

// DecodeAccountList decodes a team account list envelope. An unrecognized
// shape is logged and decoded as an empty list rather than silently probing
// for more field names.
func DecodeAccountList(body []byte) ([]*models.Account, error) {
	var env accountListEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	switch {
	case env.Accounts != nil:
		return env.Accounts, nil
	case env.Data != nil:
		return env.Data, nil
	default:
		slog.Info("account list envelope has no recognized shape, treating as empty")
		return []*models.Account{}, nil
	}
}

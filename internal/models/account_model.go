package models

import "time"

type TeamStatus string

const (
	TeamStatusUnknown    TeamStatus = "unknown"
	TeamStatusInTeam     TeamStatus = "inTeam"
	TeamStatusIndividual TeamStatus = "individual"
)

type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TeamID      string `json:"team_id,omitempty"`
}

// IsTeamScoped reports whether the account belongs to a team. An account
// without a team id is implicitly individual scope.
func (a *Account) IsTeamScoped() bool {
	return a != nil && a.TeamID != ""
}

// SelectedAccount is the minimal projection persisted so a reload can restore
// the user's selection before the full account list has re-loaded.
type SelectedAccount struct {
	ID          string    `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	TeamID      string    `db:"team_id" json:"team_id"`
	SavedAt     time.Time `db:"saved_at" json:"saved_at"`
}

func ProjectAccount(a *Account) *SelectedAccount {
	if a == nil {
		return nil
	}
	return &SelectedAccount{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		TeamID:      a.TeamID,
		SavedAt:     time.Now(),
	}
}

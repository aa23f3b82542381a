package transfer

import "encoding/json"

// ProfileResponse is the authenticated-user payload used to derive team
// status. The backend has shipped both snake_case and camelCase spellings of
// the team id, so both are declared here rather than probed dynamically.
type ProfileResponse struct {
	TeamID          string            `json:"team_id"`
	TeamIDAlt       string            `json:"teamId"`
	TeamMemberships []json.RawMessage `json:"teamMemberships"`
}

// InTeam reports whether the profile carries a team identifier or a non-empty
// membership list.
func (p *ProfileResponse) InTeam() bool {
	if p == nil {
		return false
	}
	return p.TeamID != "" || p.TeamIDAlt != "" || len(p.TeamMemberships) > 0
}

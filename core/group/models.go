package group

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/openlab-uninorte/aula/core"
)

// Group is a named roster of students within a category. Roster entries are
// free-form display strings and may embed an email, e.g. "Alice (alice@uni.edu)".
type Group struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	CategoryID string   `json:"category_id"`
	Members    []string `json:"members"`
}

// HasMember reports whether member matches a roster entry, using the same
// containment rules as RequiredPeers.
func (g Group) HasMember(name, email string) bool {
	for _, m := range g.Members {
		if matchesMember(m, name, email) {
			return true
		}
	}
	return false
}

// RequiredPeers returns the roster members a given evaluator must rate:
// every member except the evaluator themselves. Because roster entries are
// free-form "Name (email)" strings, the evaluator is recognized by
// case-insensitive substring containment of their display name, email or
// email local-part, not by equality. Inherited matching behavior; callers
// rely on it for mixed name/email rosters.
func (g Group) RequiredPeers(evaluatorName, evaluatorEmail string) []string {
	peers := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if matchesMember(m, evaluatorName, evaluatorEmail) {
			continue
		}
		peers = append(peers, m)
	}
	return peers
}

func matchesMember(member, name, email string) bool {
	lm := strings.ToLower(member)
	name = core.CleanString(name, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if name != "" && strings.Contains(lm, name) {
		return true
	}
	if email != "" {
		if strings.Contains(lm, email) {
			return true
		}
		if at := strings.IndexByte(email, '@'); at > 0 && strings.Contains(lm, email[:at]) {
			return true
		}
	}
	return false
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name       string   `json:"name" validate:"required"`
	CategoryID string   `json:"category_id" validate:"required"`
	Members    []string `json:"members"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	for i, m := range ng.Members {
		ng.Members[i] = core.CleanString(m)
	}
	return validate.Struct(ng)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name    string   `json:"name" validate:"required"`
	Members []string `json:"members"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	ug.Name = core.CleanString(ug.Name)
	for i, m := range ug.Members {
		ug.Members[i] = core.CleanString(m)
	}
	return validate.Struct(ug)
}

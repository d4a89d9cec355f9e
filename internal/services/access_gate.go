package services

import (
	"fmt"
	"strings"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/apierr"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/config"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/types"
)

// AccessGate classifies a verified email into a role against the immutable
// allowlist/domain policy. Classification happens on every request; roles
// are never persisted.
type AccessGate struct {
	teacherEmails     map[string]struct{}
	studentTestEmails map[string]struct{}
	institutionDomain string
}

func NewAccessGate(policy config.Policy) *AccessGate {
	gate := &AccessGate{
		teacherEmails:     map[string]struct{}{},
		studentTestEmails: map[string]struct{}{},
		institutionDomain: strings.ToLower(strings.TrimSpace(policy.InstitutionDomain)),
	}
	for _, e := range policy.TeacherEmails {
		gate.teacherEmails[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	for _, e := range policy.StudentTestEmails {
		gate.studentTestEmails[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return gate
}

// ClassifyRole: teacher allowlist wins; the student test allowlist is exempt
// from the domain restriction; otherwise a configured institutional domain
// must match. All comparisons are case-insensitive.
func (g *AccessGate) ClassifyRole(email string) (types.Role, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apierr.New(apierr.CodeUnauthenticated, fmt.Errorf("identity has no email"))
	}
	if _, ok := g.teacherEmails[email]; ok {
		return types.RoleTeacher, nil
	}
	if _, ok := g.studentTestEmails[email]; ok {
		return types.RoleStudent, nil
	}
	if g.institutionDomain != "" {
		at := strings.LastIndex(email, "@")
		if at < 0 || email[at+1:] != g.institutionDomain {
			return "", apierr.Newf(apierr.CodeForbiddenDomain, "email domain is not allowed")
		}
	}
	return types.RoleStudent, nil
}

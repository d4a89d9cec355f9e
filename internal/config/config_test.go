package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicyMissingFile(t *testing.T) {
	policy, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadPolicy on missing file returned error: %v", err)
	}
	if len(policy.TeacherEmails) != 0 || policy.InstitutionDomain != "" {
		t.Fatalf("missing file should yield empty policy, got %+v", policy)
	}
}

func TestLoadPolicyParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	body := `
teacher_emails:
  - profe@uni.edu
student_test_emails:
  - tester@gmail.com
institution_domain: uni.edu
min_ideas: 5
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if len(policy.TeacherEmails) != 1 || policy.TeacherEmails[0] != "profe@uni.edu" {
		t.Fatalf("teacher emails = %v", policy.TeacherEmails)
	}
	if policy.InstitutionDomain != "uni.edu" {
		t.Fatalf("institution domain = %q", policy.InstitutionDomain)
	}
	if policy.MinIdeas != 5 {
		t.Fatalf("min ideas = %d", policy.MinIdeas)
	}
}

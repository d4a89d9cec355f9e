package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/logger"
	"github.com/01-Alan-Lim/opt-ia-3-sub001/internal/utils"
)

// Policy is the immutable allowlist/domain configuration loaded once at
// process start and injected into the access gate (never read from
// environment globals after startup).
type Policy struct {
	TeacherEmails     []string `yaml:"teacher_emails"`
	StudentTestEmails []string `yaml:"student_test_emails"`
	InstitutionDomain string   `yaml:"institution_domain"`
	MinIdeas          int      `yaml:"min_ideas"`
}

type Config struct {
	JWTSecretKey string
	MinIdeas     int
	HistoryLimit int
	Policy       Policy
}

func Load(log *logger.Logger) (Config, error) {
	cfg := Config{
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		MinIdeas:     utils.GetEnvAsInt("MIN_IDEAS", 3, log),
		HistoryLimit: utils.GetEnvAsInt("CHAT_HISTORY_LIMIT", 12, log),
	}

	policyPath := utils.GetEnv("POLICY_FILE", "policy.yaml", log)
	policy, err := LoadPolicy(policyPath)
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy
	if cfg.Policy.MinIdeas > 0 {
		cfg.MinIdeas = cfg.Policy.MinIdeas
	}
	if cfg.MinIdeas < 0 {
		cfg.MinIdeas = 0
	}
	return cfg, nil
}

// LoadPolicy reads the YAML policy file. A missing file is not an error:
// it yields an empty policy (no allowlists, no domain restriction).
func LoadPolicy(path string) (Policy, error) {
	var policy Policy
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, nil
		}
		return policy, fmt.Errorf("Failed to read policy file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return policy, fmt.Errorf("Failed to parse policy file %s: %w", path, err)
	}
	policy.InstitutionDomain = strings.TrimSpace(policy.InstitutionDomain)
	return policy, nil
}

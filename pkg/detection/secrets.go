package detection

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	"github.com/zricethezav/gitleaks/v8/report"

	"github.com/chillbot-io/openlabels/pkg/types"
)

// secretsGitleaksConfig extends gitleaks' own default ruleset (AWS,
// GitHub, GitLab, Slack, Stripe, Google, private keys, ...) with the
// shapes spec.md names that gitleaks doesn't ship by default: JWTs,
// bare database connection strings with embedded credentials, and a
// low-confidence generic password catch-all.
const secretsGitleaksConfig = `
[extend]
useDefault = true

[[rules]]
id = "jwt"
description = "JSON Web Token"
regex = '''\beyJ[a-zA-Z0-9\-_]+\.eyJ[a-zA-Z0-9\-_]+\.[a-zA-Z0-9\-_]+\b'''
tags = ["jwt"]

[[rules]]
id = "database-url"
description = "Database connection string with embedded credentials"
regex = '''(?i)(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis)://[^:\s]+:[^@\s]+@[^\s"'<>]+'''
tags = ["database"]

[[rules]]
id = "generic-password"
description = "Generic contextual password assignment"
regex = '''(?i)(?:password|passwd|pwd)["'` + "`" + `\s:=]+["']([^"']{8,})["']'''
tags = ["password"]
`

// secretsRuleEntityType maps a gitleaks rule id to the entity type this
// engine reports, following gitleaks.go's mapRuleToType but against our
// own entity vocabulary rather than the teacher's PIType enum.
func secretsRuleEntityType(ruleID string) string {
	switch ruleID {
	case "jwt":
		return "JWT"
	case "database-url":
		return "DATABASE_URL"
	case "generic-password":
		return "PASSWORD"
	case "private-key", "pkcs8-private-key", "rsa-private-key", "ssh-private-key", "pgp-private-key":
		return "PRIVATE_KEY"
	}
	lower := strings.ToLower(ruleID)
	switch {
	case strings.Contains(lower, "aws"):
		return "AWS_KEY"
	case strings.Contains(lower, "azure"):
		return "AZURE_KEY"
	case strings.Contains(lower, "gcp") || strings.Contains(lower, "google"):
		return "GCP_KEY"
	default:
		return "API_KEY"
	}
}

// secretsRuleConfidence gives a per-rule base confidence: fixed-prefix
// cloud/SaaS rules are near-certain since the prefix makes a false
// positive vanishingly unlikely; the generic catch-all is low confidence
// since the same shape appears constantly in ordinary config text.
func secretsRuleConfidence(ruleID string) float64 {
	switch ruleID {
	case "generic-password":
		return 0.4
	case "jwt":
		return 0.9 // downgraded further below if the token fails structural validation
	case "database-url":
		return 0.93
	default:
		return 0.95
	}
}

// SecretsDetector finds cloud/SaaS credentials, JWTs, PEM private-key
// headers, and database URLs with embedded credentials (spec §4.3),
// wrapping gitleaks' rule engine rather than hand-rolling every
// fixed-prefix pattern ourselves.
type SecretsDetector struct {
	detector *detect.Detector
}

// NewSecretsDetector builds a SecretsDetector from the generated rule
// config, mirroring gitleaks.go's NewGitleaksDetectorWithDefaults.
func NewSecretsDetector() (*SecretsDetector, error) {
	tmpFile, err := os.CreateTemp("", "openlabels-gitleaks-*.toml")
	if err != nil {
		return nil, fmt.Errorf("secrets detector: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(secretsGitleaksConfig); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("secrets detector: %w", err)
	}
	tmpFile.Close()

	v := viper.New()
	v.SetConfigFile(tmpFile.Name())
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("secrets detector: reading gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("secrets detector: unmarshaling gitleaks config: %w", err)
	}
	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("secrets detector: translating gitleaks config: %w", err)
	}

	gl := detect.NewDetector(cfg)
	gl.Verbose = false
	gl.Redact = 0

	return &SecretsDetector{detector: gl}, nil
}

func (d *SecretsDetector) Name() string     { return "secrets" }
func (d *SecretsDetector) Tier() types.Tier { return types.TierPattern }

func (d *SecretsDetector) Detect(text string) ([]types.Span, error) {
	findings := d.detector.Detect(detect.Fragment{Raw: text})

	lineOffsets := buildLineOffsets(text)

	var out []types.Span
	for _, f := range findings {
		value := f.Secret
		if value == "" {
			value = f.Match
		}
		if value == "" {
			continue
		}
		start, end, ok := locateFinding(text, lineOffsets, f, value)
		if !ok {
			continue
		}
		entityType := secretsRuleEntityType(f.RuleID)
		confidence := secretsRuleConfidence(f.RuleID)
		if entityType == "JWT" && !isStructurallyValidJWT(value) {
			continue
		}
		span, err := types.NewSpan(start, end, value, entityType, confidence, d.Name(), d.Tier())
		if err != nil {
			continue
		}
		out = append(out, span)
	}
	return out, nil
}

// buildLineOffsets returns the byte offset each line (split on '\n')
// starts at within text, used to translate gitleaks' line-relative
// findings back into text-absolute spans.
func buildLineOffsets(text string) []int {
	offsets := []int{0}
	for i, r := range text {
		if r == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// locateFinding resolves a gitleaks finding to an absolute [start, end)
// span. Rather than trust gitleaks' column numbers (which some rule
// sets report inconsistently across raw-fragment vs file-based scans),
// it searches for the matched value within the reported line and the
// lines immediately around it.
func locateFinding(text string, lineOffsets []int, f report.Finding, value string) (int, int, bool) {
	line := f.StartLine
	if line < 0 {
		line = 0
	}
	if line >= len(lineOffsets) {
		line = len(lineOffsets) - 1
	}
	lineStart := lineOffsets[line]
	lineEnd := len(text)
	if line+1 < len(lineOffsets) {
		lineEnd = lineOffsets[line+1]
	}
	if idx := strings.Index(text[lineStart:lineEnd], value); idx >= 0 {
		start := lineStart + idx
		return start, start + len(value), true
	}
	if idx := strings.Index(text, value); idx >= 0 {
		return idx, idx + len(value), true
	}
	return 0, 0, false
}

// isStructurallyValidJWT checks that a candidate JWT has three
// dot-separated parts and that the header and payload segments are
// valid base64url, without verifying any signature.
func isStructurallyValidJWT(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts[:2] {
		if _, err := base64.RawURLEncoding.DecodeString(part); err != nil {
			if _, err2 := base64.URLEncoding.DecodeString(padBase64(part)); err2 != nil {
				return false
			}
		}
	}
	return true
}

func padBase64(s string) string {
	if m := len(s) % 4; m != 0 {
		return s + strings.Repeat("=", 4-m)
	}
	return s
}

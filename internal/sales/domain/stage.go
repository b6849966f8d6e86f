package domain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stage is the canonical workflow stage derived from the free-text CRM status.
type Stage string

const (
	StagePreEntry             Stage = "PreEntry"
	StageValidation           Stage = "Validation"
	StageContract             Stage = "Contract"
	StageDeliveryConfirmation Stage = "DeliveryConfirmation"
	StageProduction           Stage = "Production"
	StageDeliveredOK          Stage = "DeliveredOK"
)

// Stages lists every canonical stage in workflow order.
var Stages = []Stage{
	StagePreEntry,
	StageValidation,
	StageContract,
	StageDeliveryConfirmation,
	StageProduction,
	StageDeliveredOK,
}

var knownStages = map[Stage]struct{}{
	StagePreEntry:             {},
	StageValidation:           {},
	StageContract:             {},
	StageDeliveryConfirmation: {},
	StageProduction:           {},
	StageDeliveredOK:          {},
}

// IsKnownStage reports whether the string names a canonical stage.
func IsKnownStage(stage string) bool {
	_, ok := knownStages[Stage(stage)]
	return ok
}

// StageRule maps CRM status keywords to a canonical stage. Rules are
// evaluated in order, most specific first, so precedence lives in data
// rather than nested conditionals. A rule matches when the normalized status
// contains any keyword from Any, or every keyword from All.
type StageRule struct {
	Stage Stage    `yaml:"stage"`
	Any   []string `yaml:"any,omitempty"`
	All   []string `yaml:"all,omitempty"`
}

func (r StageRule) matches(normalized string) bool {
	for _, kw := range r.Any {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	if len(r.All) == 0 {
		return false
	}
	for _, kw := range r.All {
		if !strings.Contains(normalized, kw) {
			return false
		}
	}
	return true
}

// defaultStageRules is the ordered rule table observed in production CRM
// statuses. Keywords are matched against the lowercased, diacritic-stripped
// status, so "producción" and "produccion" hit the same rule.
var defaultStageRules = []StageRule{
	{Stage: StageDeliveredOK, Any: []string{"entrega ok", "entregado", "finalizado", "completado"}},
	{Stage: StageProduction, Any: []string{"produccion", "fabrica"}},
	{Stage: StageDeliveryConfirmation, All: []string{"confirmaci", "entrega"}},
	{Stage: StageContract, Any: []string{"contrato", "firmado", "aprobado"}},
	{Stage: StageValidation, Any: []string{"validaci", "revision", "pendiente"}},
	{Stage: StagePreEntry, Any: []string{"ingreso", "preingreso", "nuevo"}},
}

// Classifier maps free-text CRM statuses to canonical stages using an
// ordered rule table. The zero value is not usable; construct with
// NewClassifier or NewClassifierFromYAML.
type Classifier struct {
	rules []StageRule
}

// NewClassifier returns a classifier with the built-in rule table.
func NewClassifier() Classifier {
	return Classifier{rules: defaultStageRules}
}

// NewClassifierWithRules returns a classifier with a custom ordered table.
func NewClassifierWithRules(rules []StageRule) (Classifier, error) {
	for i, rule := range rules {
		if _, ok := knownStages[rule.Stage]; !ok {
			return Classifier{}, fmt.Errorf("rule %d: unknown stage %q", i, rule.Stage)
		}
		if len(rule.Any) == 0 && len(rule.All) == 0 {
			return Classifier{}, fmt.Errorf("rule %d: no keywords", i)
		}
	}
	return Classifier{rules: rules}, nil
}

type ruleFile struct {
	Rules []StageRule `yaml:"rules"`
}

// NewClassifierFromYAML loads an ordered rule table from a YAML file so
// deployments can adjust keyword precedence without a rebuild.
func NewClassifierFromYAML(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Classifier{}, fmt.Errorf("read status rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Classifier{}, fmt.Errorf("parse status rules: %w", err)
	}
	if len(file.Rules) == 0 {
		return Classifier{}, fmt.Errorf("status rules file %s contains no rules", path)
	}

	return NewClassifierWithRules(file.Rules)
}

// Classify maps a raw CRM status to exactly one canonical stage. It is total:
// empty and unrecognized statuses fall through to PreEntry, never "unknown".
func (c Classifier) Classify(rawStatus string) Stage {
	normalized := normalizeStatus(rawStatus)
	for _, rule := range c.rules {
		if rule.matches(normalized) {
			return rule.Stage
		}
	}
	return StagePreEntry
}

// ClassifyStatus classifies with the built-in rule table.
func ClassifyStatus(rawStatus string) Stage {
	return NewClassifier().Classify(rawStatus)
}

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u", "Ñ", "n",
)

func normalizeStatus(raw string) string {
	return diacriticReplacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
}

// IsRejectedStatus reports whether the raw status carries a rejection marker.
// Rejection is a signal for the approval-rate statistic only; it does not
// participate in stage classification, so rejected records still classify
// by the rule table (usually to PreEntry).
func IsRejectedStatus(rawStatus string) bool {
	return strings.Contains(normalizeStatus(rawStatus), "rechaz")
}

package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"allure-reporter/internal/config"
)

func TestParseLabelKind(t *testing.T) {
	kind, ok := ParseLabelKind("ParentSuite")
	assert.True(t, ok)
	assert.Equal(t, LabelParentSuite, kind)

	kind, ok = ParseLabelKind(" EPIC ")
	assert.True(t, ok)
	assert.Equal(t, LabelEpic, kind)

	_, ok = ParseLabelKind("layer")
	assert.False(t, ok)
}

func TestPackageName(t *testing.T) {
	tests := map[string]string{
		"":                              "",
		"sign_in.yaml":                  "",
		"scenarios/sign_in.yaml":        "scenarios",
		"./scenarios/login/sign_in.yml": "scenarios.login",
		"/abs/scenarios/x.yaml":         "abs.scenarios",
	}
	for in, want := range tests {
		assert.Equal(t, want, packageName(in), in)
	}
}

func TestSelectorsMatch(t *testing.T) {
	labels := []Label{Feature("Refunds"), Epic("Checkout")}

	assert.True(t, SelectorsMatch(nil, labels))
	assert.True(t, SelectorsMatch([]config.Label{{Name: "Feature", Value: "Refunds"}}, labels))
	assert.True(t, SelectorsMatch([]config.Label{{Name: "feature", Value: "Refunds"}, {Name: "epic", Value: "Checkout"}}, labels))
	assert.False(t, SelectorsMatch([]config.Label{{Name: "feature", Value: "refunds"}}, labels), "values are case sensitive")
	assert.False(t, SelectorsMatch([]config.Label{{Name: "story", Value: "x"}}, labels))
}

func TestLabelSetDeduplicates(t *testing.T) {
	s := newLabelSet()
	s.add("tag", "a")
	s.add("tag", "b")
	s.add("tag", "a")
	assert.True(t, s.addKnown("Epic", "x"))
	assert.False(t, s.addKnown("layer", "x"))

	assert.Len(t, s.labels, 3)
	assert.Equal(t, "epic", s.labels[2].Name)
}

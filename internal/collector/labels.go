package collector

import (
	"path/filepath"
	"strings"

	"allure-reporter/internal/allure"
	"allure-reporter/internal/config"
)

// LabelKind is one of the label names Allure understands.
type LabelKind string

const (
	LabelEpic        LabelKind = allure.LabelEpic
	LabelFeature     LabelKind = allure.LabelFeature
	LabelStory       LabelKind = allure.LabelStory
	LabelTag         LabelKind = allure.LabelTag
	LabelSeverity    LabelKind = allure.LabelSeverity
	LabelOwner       LabelKind = allure.LabelOwner
	LabelSuite       LabelKind = allure.LabelSuite
	LabelParentSuite LabelKind = allure.LabelParentSuite
	LabelSubSuite    LabelKind = allure.LabelSubSuite
	LabelPackage     LabelKind = allure.LabelPackage
	LabelFramework   LabelKind = allure.LabelFramework
	LabelHost        LabelKind = allure.LabelHost
	LabelThread      LabelKind = allure.LabelThread
	LabelLanguage    LabelKind = allure.LabelLanguage
	LabelCustom      LabelKind = "custom"
)

var labelKinds = map[string]LabelKind{}

func init() {
	for _, k := range []LabelKind{
		LabelEpic, LabelFeature, LabelStory, LabelTag, LabelSeverity, LabelOwner,
		LabelSuite, LabelParentSuite, LabelSubSuite, LabelPackage, LabelFramework,
		LabelHost, LabelThread, LabelLanguage, LabelCustom,
	} {
		labelKinds[strings.ToLower(string(k))] = k
	}
}

// ParseLabelKind resolves name case-insensitively to a known kind.
func ParseLabelKind(name string) (LabelKind, bool) {
	k, ok := labelKinds[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}

// Label is a scenario label as declared by the host.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Epic, Feature and Story build the behaviour labels.
func Epic(value string) Label    { return Label{Name: string(LabelEpic), Value: value} }
func Feature(value string) Label { return Label{Name: string(LabelFeature), Value: value} }
func Story(value string) Label   { return Label{Name: string(LabelStory), Value: value} }

// labelSet is an ordered set of labels deduplicated by name and value.
type labelSet struct {
	seen   map[allure.Label]struct{}
	labels []allure.Label
}

func newLabelSet() *labelSet {
	return &labelSet{seen: make(map[allure.Label]struct{})}
}

func (s *labelSet) add(name, value string) {
	l := allure.Label{Name: name, Value: value}
	if _, ok := s.seen[l]; ok {
		return
	}
	s.seen[l] = struct{}{}
	s.labels = append(s.labels, l)
}

// addKnown adds a label whose name must be a known kind; others are
// reported as false.
func (s *labelSet) addKnown(name, value string) bool {
	kind, ok := ParseLabelKind(name)
	if !ok {
		return false
	}
	s.add(string(kind), value)
	return true
}

// packageName turns a scenario path into a dotted package name, e.g.
// scenarios/login/sign_in.yaml becomes scenarios.login.
func packageName(path string) string {
	if path == "" {
		return ""
	}
	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	dir = strings.TrimPrefix(filepath.ToSlash(dir), "/")
	dir = strings.TrimPrefix(dir, "./")
	return strings.ReplaceAll(dir, "/", ".")
}

// SelectorsMatch reports whether every selector is carried by labels. Names
// compare case-insensitively, values exactly.
func SelectorsMatch(selectors []config.Label, labels []Label) bool {
	if len(selectors) == 0 {
		return true
	}
	have := make(map[[2]string]struct{}, len(labels))
	for _, l := range labels {
		have[[2]string{strings.ToLower(l.Name), l.Value}] = struct{}{}
	}
	for _, s := range selectors {
		if _, ok := have[[2]string{strings.ToLower(s.Name), s.Value}]; !ok {
			return false
		}
	}
	return true
}

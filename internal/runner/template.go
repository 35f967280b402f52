package runner

import (
	"bytes"
	"fmt"
	"maps"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"allure-reporter/pkg/logging"
)

// ScenarioContext holds the outputs stored by earlier steps of one attempt.
type ScenarioContext struct {
	storedResults map[string]any
	mu            sync.RWMutex
}

// NewScenarioContext creates an empty scenario context
func NewScenarioContext() *ScenarioContext {
	return &ScenarioContext{storedResults: make(map[string]any)}
}

// StoreResult stores a step output under the given variable name
func (sc *ScenarioContext) StoreResult(name string, value any) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.storedResults[name] = value
	logging.Debug(subsystem, "Stored result for variable '%s': %v", name, value)
}

// GetStoredResult retrieves a stored output by variable name
func (sc *ScenarioContext) GetStoredResult(name string) (any, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	v, ok := sc.storedResults[name]
	return v, ok
}

// GetAllStoredResults returns a copy of all stored outputs
func (sc *ScenarioContext) GetAllStoredResults() map[string]any {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return maps.Clone(sc.storedResults)
}

// TemplateProcessor renders step commands with text/template and the sprig
// function set. Stored outputs are available at the top level, next to
// .scenario, .attempt and .params.
type TemplateProcessor struct {
	context  *ScenarioContext
	scenario Scenario
	attempt  int
}

// NewTemplateProcessor creates a processor for one attempt of a scenario
func NewTemplateProcessor(ctx *ScenarioContext, scenario Scenario, attempt int) *TemplateProcessor {
	return &TemplateProcessor{context: ctx, scenario: scenario, attempt: attempt}
}

func (p *TemplateProcessor) data() map[string]any {
	data := p.context.GetAllStoredResults()
	params := make(map[string]string, len(p.scenario.Parameters))
	for _, param := range p.scenario.Parameters {
		params[param.Name] = param.Value
	}
	data["scenario"] = p.scenario.Name
	data["attempt"] = p.attempt
	data["params"] = params
	return data
}

// Render resolves template actions in s. Strings without actions are
// returned unchanged.
func (p *TemplateProcessor) Render(name, s string) (string, error) {
	if !strings.Contains(s, "{{") {
		return s, nil
	}
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(s)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p.data()); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

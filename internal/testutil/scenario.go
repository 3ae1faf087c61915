package testutil

import "testing"

// Scenario is a named behaviour exercised by a test.
type Scenario struct {
	Name     string
	Behavior string
	Test     func(t *testing.T)
}

// RunScenarios runs each scenario as a subtest, logging its behaviour first.
func RunScenarios(t *testing.T, scenarios []Scenario) {
	t.Helper()
	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			t.Logf("SCENARIO: %s", sc.Behavior)
			sc.Test(t)
		})
	}
}

func Given(t *testing.T, context string) {
	t.Helper()
	t.Logf("GIVEN: %s", context)
}

func When(t *testing.T, action string) {
	t.Helper()
	t.Logf("WHEN: %s", action)
}

func Then(t *testing.T, expectation string) {
	t.Helper()
	t.Logf("THEN: %s", expectation)
}

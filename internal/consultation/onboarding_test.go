package consultation_test

import (
	"context"
	"strings"
	"testing"

	"medibot-ai/internal/consultation"
)

func newStartedConsultation(t *testing.T) (*consultation.Store, *consultation.Consultation) {
	t.Helper()
	ctx := context.Background()

	store := consultation.NewStore(nil)
	c, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Greeting entry: no user input, fires once on the empty thread.
	still, err := store.HandleOnboarding(ctx, c, "")
	if err != nil {
		t.Fatalf("greeting failed: %v", err)
	}
	if !still {
		t.Fatalf("expected onboarding to still be in progress after greeting")
	}
	return store, c
}

func lastContent(c *consultation.Consultation) string {
	return c.Messages[len(c.Messages)-1].Content
}

func TestGreetingAdvancesToName(t *testing.T) {
	_, c := newStartedConsultation(t)

	if c.OnboardingStep != 2 {
		t.Fatalf("expected step 2 after greeting, got %d", c.OnboardingStep)
	}
	if len(c.Messages) != 1 || !strings.Contains(lastContent(c), "full name") {
		t.Fatalf("expected a single greeting asking for the full name, got %v", c.Messages)
	}
}

func TestNameStepValidation(t *testing.T) {
	ctx := context.Background()
	store, c := newStartedConsultation(t)

	// Single character is rejected and the step does not move.
	if _, err := store.HandleOnboarding(ctx, c, "J"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 2 {
		t.Errorf("expected step to stay at 2, got %d", c.OnboardingStep)
	}
	if lastContent(c) != "Please enter a valid full name." {
		t.Errorf("unexpected validation message: %q", lastContent(c))
	}
	if c.PatientName != "" {
		t.Errorf("patient name must stay unset on invalid input")
	}

	// Repeating the same invalid input re-emits the same message.
	if _, err := store.HandleOnboarding(ctx, c, "J"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 2 || lastContent(c) != "Please enter a valid full name." {
		t.Errorf("repeated invalid input should re-emit the same prompt at the same step")
	}

	// Two characters is the minimum valid length; input is trimmed.
	if _, err := store.HandleOnboarding(ctx, c, "  Jordan  "); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 3 {
		t.Errorf("expected step 3 after a valid name, got %d", c.OnboardingStep)
	}
	if c.PatientName != "Jordan" {
		t.Errorf("expected trimmed name %q, got %q", "Jordan", c.PatientName)
	}
}

func TestAgeStepValidation(t *testing.T) {
	ctx := context.Background()
	store, c := newStartedConsultation(t)
	if _, err := store.HandleOnboarding(ctx, c, "Jordan"); err != nil {
		t.Fatalf("name step failed: %v", err)
	}

	tests := []struct {
		input   string
		advance bool
		message string
	}{
		{"abc", false, "Please enter a valid age (e.g., 25)."},
		{"12x", false, "Please enter a valid age (e.g., 25)."},
		{"0", false, "Please enter a realistic age (e.g., between 1 and 110)."},
		{"200", false, "Please enter a realistic age (e.g., between 1 and 110)."},
	}
	for _, tt := range tests {
		if _, err := store.HandleOnboarding(ctx, c, tt.input); err != nil {
			t.Fatalf("HandleOnboarding(%q) failed: %v", tt.input, err)
		}
		if c.OnboardingStep != 3 {
			t.Errorf("input %q: expected step to stay at 3, got %d", tt.input, c.OnboardingStep)
		}
		if lastContent(c) != tt.message {
			t.Errorf("input %q: expected %q, got %q", tt.input, tt.message, lastContent(c))
		}
		if c.PatientAge != "" {
			t.Errorf("input %q: age must stay unset", tt.input)
		}
	}

	if _, err := store.HandleOnboarding(ctx, c, "34"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 4 || c.PatientAge != "34" {
		t.Errorf("expected step 4 and age %q, got step %d age %q", "34", c.OnboardingStep, c.PatientAge)
	}
}

func TestSkinTypeStepIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store, c := newStartedConsultation(t)
	for _, input := range []string{"Jordan", "34"} {
		if _, err := store.HandleOnboarding(ctx, c, input); err != nil {
			t.Fatalf("setup step %q failed: %v", input, err)
		}
	}

	if _, err := store.HandleOnboarding(ctx, c, "wet"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 4 || c.SkinType != "" {
		t.Errorf("invalid skin type should not advance or store a value")
	}

	if _, err := store.HandleOnboarding(ctx, c, "OILY"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 5 {
		t.Errorf("expected step 5, got %d", c.OnboardingStep)
	}
	if c.SkinType != "Oily" {
		t.Errorf("expected capitalized %q, got %q", "Oily", c.SkinType)
	}
}

func TestProblemStepSynonymsAndSummary(t *testing.T) {
	ctx := context.Background()
	store, c := newStartedConsultation(t)
	for _, input := range []string{"Jordan", "34", "oily"} {
		if _, err := store.HandleOnboarding(ctx, c, input); err != nil {
			t.Fatalf("setup step %q failed: %v", input, err)
		}
	}

	if _, err := store.HandleOnboarding(ctx, c, "something else"); err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if c.OnboardingStep != 5 || c.ProblemType != "" {
		t.Errorf("invalid problem type should not advance")
	}

	still, err := store.HandleOnboarding(ctx, c, "fungal")
	if err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if still {
		t.Errorf("expected onboarding to be finished")
	}
	if c.OnboardingStep != consultation.StepDone {
		t.Errorf("expected terminal step, got %d", c.OnboardingStep)
	}
	if c.ProblemType != "Infection / Fungal" {
		t.Errorf("expected mapped label %q, got %q", "Infection / Fungal", c.ProblemType)
	}

	summary := lastContent(c)
	for _, want := range []string{"Jordan", "34", "Oily", "Infection / Fungal"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q: %q", want, summary)
		}
	}
}

func TestOnboardingIsTerminalAfterCompletion(t *testing.T) {
	ctx := context.Background()
	store, c := newStartedConsultation(t)
	for _, input := range []string{"Jordan", "34", "oily", "acne"} {
		if _, err := store.HandleOnboarding(ctx, c, input); err != nil {
			t.Fatalf("setup step %q failed: %v", input, err)
		}
	}

	msgCount := len(c.Messages)
	still, err := store.HandleOnboarding(ctx, c, "anything")
	if err != nil {
		t.Fatalf("HandleOnboarding failed: %v", err)
	}
	if still {
		t.Errorf("expected finished onboarding to report done")
	}
	if len(c.Messages) != msgCount {
		t.Errorf("terminal step must be a no-op, message count changed")
	}
	if c.OnboardingStep != consultation.StepDone {
		t.Errorf("terminal step must not change, got %d", c.OnboardingStep)
	}
}

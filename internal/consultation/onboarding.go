package consultation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// StepDone is the terminal onboarding state. Once reached, all four patient
// fields are set and free chat is enabled.
const StepDone = 999

// Intake steps, collected in order. The step number names the value being
// asked for next, except stepGreeting which fires once on an empty thread.
const (
	stepGreeting = 1
	stepName     = 2
	stepAge      = 3
	stepSkinType = 4
	stepProblem  = 5
)

var skinTypes = map[string]bool{
	"normal": true,
	"oily":   true,
	"dry":    true,
}

// problemTypes maps accepted answers (lowercased) to the stored label.
var problemTypes = map[string]string{
	"acne":         "Acne / Pimples",
	"pimples":      "Acne / Pimples",
	"rash":         "Rashes / Redness",
	"rashes":       "Rashes / Redness",
	"pigmentation": "Pigmentation",
	"pigment":      "Pigmentation",
	"infection":    "Infection / Fungal",
	"fungal":       "Infection / Fungal",
	"wound":        "Wound / Cut",
	"other":        "Other",
}

// HandleOnboarding advances the intake dialogue of c by one turn. Steps only
// move forward; invalid input re-emits the prompt for the same step. Every
// branch appends exactly one assistant message and persists the consultation
// before returning.
//
// userInput is ignored at step 1: the greeting fires on an empty thread
// without any user turn, and the caller must not record an input for it.
//
// It returns true while onboarding is still in progress and false once the
// consultation has reached the terminal step.
func (s *Store) HandleOnboarding(ctx context.Context, c *Consultation, userInput string) (bool, error) {
	switch c.OnboardingStep {
	case stepGreeting:
		c.AddMessage(RoleAssistant, "Welcome! Before we begin, may I know your full name?")
		c.OnboardingStep = stepName
		return true, s.Save(ctx, c)

	case stepName:
		name := strings.TrimSpace(userInput)
		if len(name) < 2 {
			c.AddMessage(RoleAssistant, "Please enter a valid full name.")
			return true, s.Save(ctx, c)
		}
		c.PatientName = name
		c.OnboardingStep = stepAge
		c.AddMessage(RoleAssistant, fmt.Sprintf(
			"Nice to meet you, %s! 😊\n\nHow old are you?", c.PatientName))
		return true, s.Save(ctx, c)

	case stepAge:
		if !isDigits(userInput) {
			c.AddMessage(RoleAssistant, "Please enter a valid age (e.g., 25).")
			return true, s.Save(ctx, c)
		}
		age, err := strconv.Atoi(userInput)
		if err != nil || age <= 0 || age > 110 {
			c.AddMessage(RoleAssistant, "Please enter a realistic age (e.g., between 1 and 110).")
			return true, s.Save(ctx, c)
		}
		c.PatientAge = strconv.Itoa(age)
		c.OnboardingStep = stepSkinType
		c.AddMessage(RoleAssistant, "Great! What is your skin type?")
		return true, s.Save(ctx, c)

	case stepSkinType:
		if !skinTypes[strings.ToLower(userInput)] {
			c.AddMessage(RoleAssistant, "Please choose your skin type using the buttons: Normal / Oily / Dry.")
			return true, s.Save(ctx, c)
		}
		c.SkinType = capitalize(userInput)
		c.OnboardingStep = stepProblem
		c.AddMessage(RoleAssistant, "Got it! What kind of skin issue are you facing?")
		return true, s.Save(ctx, c)

	case stepProblem:
		label, ok := problemTypes[strings.ToLower(userInput)]
		if !ok {
			c.AddMessage(RoleAssistant, "Please choose your problem type using the buttons.")
			return true, s.Save(ctx, c)
		}
		c.ProblemType = label
		c.OnboardingStep = StepDone
		c.AddMessage(RoleAssistant, fmt.Sprintf(
			"Thank you! 😊 You're all set.\n\n"+
				"Summary:\n"+
				"- Name: %s\n"+
				"- Age: %s\n"+
				"- Skin Type: %s\n"+
				"- Problem Type: %s\n\n"+
				"Now you can describe your issue in more detail or upload a clear picture "+
				"of the affected area so I can guide you better.",
			c.PatientName, c.PatientAge, c.SkinType, c.ProblemType))
		return false, s.Save(ctx, c)
	}

	// already completed
	return false, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

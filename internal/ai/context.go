// internal/ai/context.go
package ai

import (
	"fmt"
	"strings"

	"parentic-api/pkg/models"
)

// SystemPrompt is the fixed persona + behavioral guidelines injected at the
// top of every assembled prompt. Downstream prompt handling depends on the
// exact separators produced by BuildPrompt, so treat both as frozen text.
const SystemPrompt = `You are ParenticAI, a helpful and empathetic AI assistant specialized in parenting advice and support.

Your role is to:
- Provide evidence-based parenting guidance and tips
- Offer emotional support and understanding
- Suggest age-appropriate activities and solutions
- Help with child development questions
- Provide gentle, non-judgmental advice
- Consider individual family circumstances and children's personalities

Always be:
- Supportive and encouraging
- Practical and actionable in your advice
- Sensitive to different parenting styles and family structures
- Clear that you're an AI assistant and parents should consult professionals for serious concerns

If no specific child or family context is provided, give general parenting advice that can be adapted to different situations.`

const notSpecified = "Not specified"

// BuildContext formats a parent profile and its children into the text block
// injected under "Family Context". Pure function; returns "" when there is
// nothing to describe.
func BuildContext(parent *models.Parent, children []models.Child) string {
	var parts []string

	if parent != nil {
		parts = append(parts, "Parent Information:")
		parts = append(parts, "- Age: "+intOrPlaceholder(parent.Age))
		parts = append(parts, "- Location: "+strOrPlaceholder(parent.Location))
		parts = append(parts, "- Parenting Style: "+strOrPlaceholder(parent.ParentingStyle))
		parts = append(parts, "- Experience Level: "+strOrPlaceholder(parent.ExperienceLevel))
		parts = append(parts, "- Family Structure: "+strOrPlaceholder(parent.FamilyStructure))

		if parent.Concerns != nil && *parent.Concerns != "" {
			parts = append(parts, "- Main Concerns: "+*parent.Concerns)
		}
		if parent.Goals != nil && *parent.Goals != "" {
			parts = append(parts, "- Parenting Goals: "+*parent.Goals)
		}
	}

	if len(children) > 0 {
		parts = append(parts, "\nChildren Information:")
		for i, child := range children {
			parts = append(parts, fmt.Sprintf("Child %d: %s", i+1, child.Name))
			parts = append(parts, fmt.Sprintf("- Age: %d", child.Age))
			parts = append(parts, "- Gender: "+child.Gender)
			parts = append(parts, "- School Grade: "+strOrPlaceholder(child.SchoolGrade))

			if len(child.Hobbies) > 0 {
				parts = append(parts, "- Hobbies: "+strings.Join(child.Hobbies, ", "))
			}
			if len(child.Interests) > 0 {
				parts = append(parts, "- Interests: "+strings.Join(child.Interests, ", "))
			}
			if len(child.PersonalityTraits) > 0 {
				parts = append(parts, "- Personality Traits: "+strings.Join(child.PersonalityTraits, ", "))
			}
			if child.SpecialNeeds != nil && *child.SpecialNeeds != "" {
				parts = append(parts, "- Special Needs: "+*child.SpecialNeeds)
			}
			if child.Challenges != nil && *child.Challenges != "" {
				parts = append(parts, "- Current Challenges: "+*child.Challenges)
			}
			if child.Achievements != nil && *child.Achievements != "" {
				parts = append(parts, "- Recent Achievements: "+*child.Achievements)
			}

			parts = append(parts, "") // blank separator after each child
		}
	}

	return strings.Join(parts, "\n")
}

// BuildPrompt assembles the final prompt string. A whitespace-only context
// drops the "Family Context" section entirely.
func BuildPrompt(context, message string) string {
	if strings.TrimSpace(context) == "" {
		return SystemPrompt + "\n\nParent's Question: " + message + "\n\nResponse:"
	}
	return SystemPrompt + "\n\nFamily Context:\n" + context + "\n\nParent's Question: " + message + "\n\nResponse:"
}

func strOrPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return notSpecified
	}
	return *s
}

func intOrPlaceholder(n *int) string {
	if n == nil {
		return notSpecified
	}
	return fmt.Sprintf("%d", *n)
}

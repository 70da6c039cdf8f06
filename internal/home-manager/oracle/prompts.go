package oracle

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mikermcconnell/HomeHealth/internal/home-manager/scheduling"
	"github.com/mikermcconnell/HomeHealth/internal/models"
)

const promptFileEnvVar = "ORACLE_PROMPT_FILE"

// defaultSystemPrompt steers the model toward concrete calendar dates the
// scheduler can parse. Keep it in sync with the suggestion schema.
const defaultSystemPrompt = `You are a home maintenance planner. For every task template you receive, pick a realistic due date and a one-word category.

Rules:
- Return a due date for every template title, matching the title exactly.
- Dates are ISO 8601 calendar dates (YYYY-MM-DD), never in the past relative to the provided "today".
- Respect seasonal tags: "Late Spring" work lands in May, "Late Fall" work in October, adjusted for the household's climate.
- Safety-critical work (smoke alarms, HIGH priority) is due within the next few days.
- Spread the remaining tasks over the coming weeks so no single weekend is overloaded.`

// systemPrompt returns the built-in prompt, or the contents of the file
// named by ORACLE_PROMPT_FILE when that is set and readable.
func systemPrompt() string {
	path := os.Getenv(promptFileEnvVar)
	if path == "" {
		return defaultSystemPrompt
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Oracle: cannot read prompt override %s, using built-in prompt: %v", path, err)
		return defaultSystemPrompt
	}
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		return trimmed
	}
	log.Printf("Oracle: prompt override %s is empty, using built-in prompt", path)
	return defaultSystemPrompt
}

// buildUserPrompt serializes the batch request for the model.
func buildUserPrompt(req scheduling.BatchRequest) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode oracle prompt payload: %w", err)
	}
	return fmt.Sprintf("Household context and task templates:\n%s\n\nReturn one scheduling suggestion per template.", payload), nil
}

// brainstormSystemPrompt steers the project idea endpoint. Ideas stay in
// DIY or small-contractor scope so the list is actionable.
const brainstormSystemPrompt = `You are a home improvement consultant. Suggest five to eight concrete improvement projects a homeowner could start within a month.

Rules:
- Each idea has a short imperative title and a one-sentence description.
- Tailor ideas to the home type, region, and theme when provided.
- Stay within typical DIY or small-contractor scope; no structural work.`

// buildBrainstormPrompt describes the household and the requested theme.
func buildBrainstormPrompt(theme string, homeType models.HomeType, location string) string {
	var b strings.Builder
	b.WriteString("Suggest improvement project ideas")
	if theme != "" {
		fmt.Fprintf(&b, " on the theme %q", theme)
	}
	b.WriteString(".")
	if homeType != "" {
		fmt.Fprintf(&b, "\nHome type: %s", homeType)
	}
	if location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", location)
	}
	return b.String()
}

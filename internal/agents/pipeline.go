package agents

import (
	"context"
	"fmt"
	"strings"

	"bloodreport-backend/internal/bloodwork"
	"bloodreport-backend/internal/llm"
	"bloodreport-backend/internal/shared/telemetry"
)

// Input is everything the pipeline needs about one report.
type Input struct {
	Patient     bloodwork.PatientInfo
	Values      bloodwork.Values
	Assessment  bloodwork.Assessment
	Tips        []string
	RawText     string
	MaxTokens   int
	Temperature float32
}

// Section is one agent's contribution to the final result.
type Section struct {
	Agent  string `json:"agent"`
	Role   string `json:"role"`
	Title  string `json:"title"`
	Output string `json:"output"`
}

// Result is the assembled pipeline output.
type Result struct {
	Sections []Section `json:"sections"`
	Summary  string    `json:"summary"`
	Fallback bool      `json:"fallback,omitempty"`
}

// Pipeline runs each persona in order, feeding earlier outputs into later
// tasks. If any step fails, one combined-prompt fallback pass is attempted
// before the whole analysis is failed.
type Pipeline struct {
	client llm.Client
	defs   []Definition
}

// NewPipeline builds a pipeline over the given client and personas.
func NewPipeline(client llm.Client, defs []Definition) *Pipeline {
	return &Pipeline{client: client, defs: defs}
}

// Run executes the pipeline. The returned error, when non-nil, wraps the
// provider failure from the final fallback attempt.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	valuesBlock := bloodwork.FormatForPrompt(in.Values, in.Patient.Gender)
	patientLine := bloodwork.FormatPatient(in.Patient)
	emergencies := joinLines(in.Assessment.Emergencies)
	tips := joinLines(in.Tips)

	var result Result
	var previous strings.Builder

	for _, def := range p.defs {
		vars := map[string]string{
			"patient":     patientLine,
			"values":      valuesBlock,
			"previous":    strings.TrimSpace(previous.String()),
			"emergencies": emergencies,
			"tips":        tips,
		}
		resp, err := p.client.Complete(ctx, llm.Request{
			System:      def.SystemPrompt(),
			Prompt:      def.RenderTask(vars),
			MaxTokens:   in.MaxTokens,
			Temperature: in.Temperature,
		})
		if err != nil {
			telemetry.Warn("agents.step_failed", map[string]any{
				"agent": def.Key,
				"error": err.Error(),
			})
			return p.fallback(ctx, in, vars)
		}

		section := Section{
			Agent:  def.Key,
			Role:   def.Role,
			Title:  def.Title,
			Output: strings.TrimSpace(resp.Text),
		}
		result.Sections = append(result.Sections, section)
		fmt.Fprintf(&previous, "## %s\n%s\n\n", section.Title, section.Output)
	}

	if n := len(result.Sections); n > 0 {
		result.Summary = result.Sections[n-1].Output
	}
	return result, nil
}

// fallback collapses the whole pipeline into a single completion. It keeps
// the feature usable when the provider is flaky mid-pipeline.
func (p *Pipeline) fallback(ctx context.Context, in Input, vars map[string]string) (Result, error) {
	var prompt strings.Builder
	prompt.WriteString("Analyze the following blood test results and write a complete, patient-friendly report.\n\n")
	prompt.WriteString("Patient: " + vars["patient"] + "\n\n")
	prompt.WriteString("Blood values with reference ranges:\n" + vars["values"] + "\n\n")
	if vars["emergencies"] != "(none)" && vars["emergencies"] != "" {
		prompt.WriteString("Screening alerts:\n" + vars["emergencies"] + "\n\n")
	}
	prompt.WriteString("Cover: what each abnormal value means, health implications, diet and ")
	prompt.WriteString("lifestyle recommendations, and a follow-up plan. ")
	prompt.WriteString("Close with a reminder that this is not a medical diagnosis.")

	resp, err := p.client.Complete(ctx, llm.Request{
		System:      "You are a clinical analysis assistant who explains blood test results to patients in plain language.",
		Prompt:      prompt.String(),
		MaxTokens:   in.MaxTokens,
		Temperature: in.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("pipeline fallback: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	return Result{
		Sections: []Section{{
			Agent:  "fallback",
			Role:   "Clinical Analysis Assistant",
			Title:  "Combined Analysis",
			Output: text,
		}},
		Summary:  text,
		Fallback: true,
	}, nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(lines, "\n- ")
}

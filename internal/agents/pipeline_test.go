package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"bloodreport-backend/internal/bloodwork"
	"bloodreport-backend/internal/llm"
)

type scriptedClient struct {
	calls     int
	failUntil int // fail calls with index < failUntil
	responses []string
	prompts   []llm.Request
}

func (s *scriptedClient) Provider() string { return "scripted" }

func (s *scriptedClient) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	idx := s.calls
	s.calls++
	s.prompts = append(s.prompts, req)
	if idx < s.failUntil {
		return llm.Response{}, llm.NewUpstream("scripted", true, errors.New("boom"))
	}
	text := fmt.Sprintf("response %d", idx)
	if idx < len(s.responses) {
		text = s.responses[idx]
	}
	return llm.Response{Text: text, Model: "scripted"}, nil
}

func TestLoadDefinitions(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatalf("LoadDefinitions: %v", err)
	}
	if len(defs) != 7 {
		t.Fatalf("got %d agents, want 7", len(defs))
	}
	if defs[0].Role != "Senior Blood Test Analyst" {
		t.Errorf("first role = %q", defs[0].Role)
	}
	last := defs[len(defs)-1]
	if last.Key != "report_writer" {
		t.Errorf("last key = %q, want report_writer", last.Key)
	}
	for _, d := range defs {
		if !strings.Contains(d.Task, "{{") {
			t.Errorf("agent %s task has no placeholders", d.Key)
		}
	}
}

func TestPipelineRunSequential(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatal(err)
	}
	client := &scriptedClient{}
	p := NewPipeline(client, defs)

	in := Input{
		Patient: bloodwork.PatientInfo{Gender: bloodwork.GenderMale, Age: 30},
		Values:  bloodwork.Values{"hemoglobin": 13.5},
	}
	in.Assessment = bloodwork.Assess(in.Values, in.Patient.Gender)

	result, err := p.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Sections) != len(defs) {
		t.Fatalf("sections = %d, want %d", len(result.Sections), len(defs))
	}
	if result.Fallback {
		t.Error("fallback should not be set on a clean run")
	}
	if result.Summary != fmt.Sprintf("response %d", len(defs)-1) {
		t.Errorf("summary = %q", result.Summary)
	}

	// Every prompt should carry the formatted values block.
	for i, req := range client.prompts {
		if req.System == "" {
			t.Errorf("prompt %d missing system persona", i)
		}
	}
	if !strings.Contains(client.prompts[0].Prompt, "Hemoglobin (Hb): 13.5") {
		t.Errorf("first prompt missing values block: %q", client.prompts[0].Prompt)
	}

	// Later agents receive earlier outputs.
	lastPrompt := client.prompts[len(client.prompts)-1].Prompt
	if !strings.Contains(lastPrompt, "response 0") {
		t.Errorf("final prompt does not include earlier output: %q", lastPrompt)
	}
}

func TestPipelineFallbackOnFailure(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatal(err)
	}
	// First call fails, second (the fallback) succeeds.
	client := &scriptedClient{failUntil: 1, responses: []string{"", "combined output"}}
	p := NewPipeline(client, defs)

	result, err := p.Run(context.Background(), Input{
		Values: bloodwork.Values{"glucose": 120},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Fallback {
		t.Fatal("expected fallback result")
	}
	if len(result.Sections) != 1 || result.Sections[0].Agent != "fallback" {
		t.Fatalf("sections = %+v", result.Sections)
	}
	if result.Summary != "combined output" {
		t.Errorf("summary = %q", result.Summary)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2 (failed step plus fallback)", client.calls)
	}
}

func TestPipelineFallbackAlsoFails(t *testing.T) {
	defs, err := LoadDefinitions()
	if err != nil {
		t.Fatal(err)
	}
	client := &scriptedClient{failUntil: 99}
	p := NewPipeline(client, defs)

	_, err = p.Run(context.Background(), Input{Values: bloodwork.Values{}})
	if err == nil {
		t.Fatal("expected error when fallback fails too")
	}
	if _, ok := llm.AsUpstream(err); !ok {
		t.Errorf("error should wrap UpstreamError: %v", err)
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2 (one step, one fallback)", client.calls)
	}
}

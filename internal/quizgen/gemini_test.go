package quizgen

import (
	"strings"
	"testing"
)

const samplePayload = `[
  {
    "question": "What force keeps planets in orbit?",
    "options": ["Gravity", "Magnetism", "Friction", "Inertia"],
    "correct": "Gravity",
    "justification": "The material describes gravity as the binding force."
  },
  {
    "question": "Who formulated the law of universal gravitation?",
    "options": ["Newton", "Einstein", "Kepler", "Galileo"],
    "correct": "Newton",
    "justification": "Stated in the second paragraph."
  }
]`

func TestParseDrafts(t *testing.T) {
	drafts, err := ParseDrafts(samplePayload)
	if err != nil {
		t.Fatalf("ParseDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
	if drafts[0].Prompt != "What force keeps planets in orbit?" {
		t.Errorf("prompt = %q", drafts[0].Prompt)
	}
	if drafts[0].Correct != "Gravity" {
		t.Errorf("correct = %q", drafts[0].Correct)
	}
	if len(drafts[1].Options) != 4 {
		t.Errorf("options = %d", len(drafts[1].Options))
	}
}

func TestParseDraftsFencedPayload(t *testing.T) {
	fenced := "```json\n" + samplePayload + "\n```"
	drafts, err := ParseDrafts(fenced)
	if err != nil {
		t.Fatalf("ParseDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
}

func TestParseDraftsProseAroundArray(t *testing.T) {
	noisy := "Here are your questions:\n" + samplePayload + "\nEnjoy!"
	drafts, err := ParseDrafts(noisy)
	if err != nil {
		t.Fatalf("ParseDrafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("drafts = %d, want 2", len(drafts))
	}
}

func TestParseDraftsToleratesOptionCountVariance(t *testing.T) {
	payload := `[{"question":"Q","options":["A","B","C","D","E"],"correct":"E","justification":"j"}]`
	drafts, err := ParseDrafts(payload)
	if err != nil {
		t.Fatalf("ParseDrafts: %v", err)
	}
	if len(drafts[0].Options) != 5 {
		t.Fatalf("options = %d, want 5", len(drafts[0].Options))
	}
}

func TestParseDraftsRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"not json":       "the model had a bad day",
		"empty array":    "[]",
		"empty question": `[{"question":"  ","options":["A","B"],"correct":"A"}]`,
		"one option":     `[{"question":"Q","options":["A"],"correct":"A"}]`,
		"wrong shape":    `{"questions":[]}`,
	}
	for name, payload := range cases {
		if _, err := ParseDrafts(payload); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestBuildPromptMentionsCountAndMaterial(t *testing.T) {
	p := buildPrompt("the material body", 7)
	for _, want := range []string{"exactly 7", "the material body", "JSON array"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

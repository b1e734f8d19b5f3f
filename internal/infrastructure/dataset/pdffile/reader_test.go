package pdffile

import "testing"

func TestParsePairsSplitsMarkedBlocks(t *testing.T) {
	text := `Kubernetes Study Sheet

Q: What is a Pod?
A: The smallest deployable unit in Kubernetes.

Question: How does a Deployment roll back?
It keeps a revision history.
Answer: Through kubectl rollout undo,
which restores a previous ReplicaSet.
`

	records := ParsePairs(text)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	if records[0].Question != "What is a Pod?" {
		t.Fatalf("unexpected first question: %q", records[0].Question)
	}
	if records[0].Answer != "The smallest deployable unit in Kubernetes." {
		t.Fatalf("unexpected first answer: %q", records[0].Answer)
	}

	second := records[1]
	if second.Question != "How does a Deployment roll back? It keeps a revision history." {
		t.Fatalf("continuation lines must join the question, got %q", second.Question)
	}
	if second.Answer != "Through kubectl rollout undo, which restores a previous ReplicaSet." {
		t.Fatalf("continuation lines must join the answer, got %q", second.Answer)
	}
	if second.ID == "" {
		t.Fatalf("expected derived record id")
	}
}

func TestParsePairsIgnoresUnmarkedText(t *testing.T) {
	records := ParsePairs("Just prose.\nNo markers anywhere.\n")
	if len(records) != 0 {
		t.Fatalf("expected no records, got %+v", records)
	}
}

func TestParsePairsDropsQuestionWithoutAnswer(t *testing.T) {
	records := ParsePairs("Q: Orphan question?\n\nQ: Paired?\nA: Yes.\n")
	if len(records) != 1 || records[0].Question != "Paired?" {
		t.Fatalf("expected only the paired record, got %+v", records)
	}
}

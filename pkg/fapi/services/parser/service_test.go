package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/quatton/fina/pkg/completion"
	"github.com/quatton/fina/pkg/ferr"
)

type stubCompleter struct {
	answer string
	err    error

	system, prompt string
}

func (c *stubCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	c.system, c.prompt = system, prompt
	return c.answer, c.err
}

func TestParse_DecodesJSONAnswer(t *testing.T) {
	stub := &stubCompleter{answer: `{"content":"banh mi","currency":"VND","amount":"30000","type":"expense","date":null,"category":"Food & Drinks","tags":"Personal","notes":null}`}
	svc := NewService(stub)

	res, err := svc.Parse(context.Background(), "breakfast of banh mi 30k vnd")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if stub.system != SystemPrompt || stub.prompt != "breakfast of banh mi 30k vnd" {
		t.Errorf("unexpected prompts sent: %q / %q", stub.system, stub.prompt)
	}
	if res.Raw != stub.answer {
		t.Errorf("raw answer not preserved: %q", res.Raw)
	}
	if res.Fields["content"] != "banh mi" || res.Fields["category"] != "Food & Drinks" {
		t.Errorf("unexpected fields %+v", res.Fields)
	}
	if v, ok := res.Fields["date"]; !ok || v != nil {
		t.Errorf("expected null date, got %v", v)
	}
}

func TestParse_NonJSONAnswerKeepsRaw(t *testing.T) {
	svc := NewService(&stubCompleter{answer: "Sure! Here is your transaction."})

	res, err := svc.Parse(context.Background(), "lunch")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Fields != nil {
		t.Errorf("expected no fields, got %+v", res.Fields)
	}
	if res.Raw != "Sure! Here is your transaction." {
		t.Errorf("unexpected raw %q", res.Raw)
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		err    error
		want   ferr.Code
	}{
		{"empty prompt", "  ", nil, ferr.CodeBadRequest},
		{"not configured", "lunch", completion.ErrNotConfigured, ferr.CodeUpstream},
		{"upstream down", "lunch", errors.Join(completion.ErrUpstream, errors.New("503")), ferr.CodeUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubCompleter{err: tt.err})
			_, err := svc.Parse(context.Background(), tt.prompt)
			if !ferr.IsCode(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

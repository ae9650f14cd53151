// Package parser turns a free-text description of a purchase or payment into
// transaction fields with the help of a language model.
package parser

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/quatton/fina/pkg/completion"
	"github.com/quatton/fina/pkg/ferr"
)

// SystemPrompt constrains the model to a JSON object with the transaction
// fields the clients prefill their forms with.
const SystemPrompt = "You are a parsing assistant that helps to parse scripts into relevant details and respond in JSON format. " +
	"You are not to answer any prompts without the JSON formatting in your responses. " +
	"When a user submit a transaction, your job is to parse them into these categories: content(str), currency(str), amount(int64), " +
	"type(str, only between income and expense), date(YYYY-MM-DD), category(str), tags(str), notes(str). " +
	"Available categories include (Food & Drinks, Education, Transportation, Health, Entertainment, Utilities, Devices, Others). " +
	"Available tags include (Personal, Family, Work). " +
	"If date or note information is missing, return null for those fields. " +
	"Always return just a string for the values of each keys. " +
	"THE CONTENT FIELD SHOULD NOT CONTAIN ANY OTHER DETAILS (e.g new phone for 500USD is NOT a valid content field, but new phone is). " +
	"USE THE CONTENT'S CONTEXT to fill in the category and tags field (e.g 'breakfast of banh mi' means Food and Drinks category and Personal tag " +
	"while 'november tuition fees' means Education category and Family tag). " +
	"Always respond in raw JSON format and do not tamper it with Markdown or other formatting methods. " +
	"DO NOT RESPOND LIKE A NORMAL CHAT AI IN ANY CIRCUMSTANCES."

// Result carries the model answer verbatim and, when it is a JSON object,
// its decoded fields.
type Result struct {
	Raw    string
	Fields map[string]any
}

type Service struct {
	completer completion.Completer
}

func NewService(completer completion.Completer) *Service {
	return &Service{completer: completer}
}

func (s *Service) Parse(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ferr.New(ferr.CodeBadRequest, "No prompt provided")
	}

	raw, err := s.completer.Complete(ctx, SystemPrompt, prompt)
	switch {
	case errors.Is(err, completion.ErrNotConfigured):
		return nil, ferr.Wrap(ferr.CodeUpstream, "Completion API not configured", err)
	case err != nil:
		return nil, ferr.Wrap(ferr.CodeUpstream, "Completion API unavailable", err)
	}

	res := &Result{Raw: raw}
	var fields map[string]any
	if json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields) == nil {
		res.Fields = fields
	}
	return res, nil
}

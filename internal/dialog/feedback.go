package dialog

import (
	"context"
	"errors"
	"strings"

	"chatlearn/internal/llm"
	"chatlearn/internal/store"
)

func (e *Engine) giveAnonymousFeedback(ctx context.Context, p Params) interface{} {
	if !p.Truthy("category") {
		return errResult("category is missing", 400)
	}
	category := strings.TrimSpace(p.Str("category"))
	createdAt := e.now()
	doc := store.Doc{
		"_id":         feedbackID(category, createdAt),
		"docType":     "anonymousFeedback",
		"category":    category,
		"description": p["feedback"],
		"createdAt":   createdAt,
	}
	res, errRes := e.putDoc(ctx, e.dbs.Feedback, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

// consultOpenAI forwards free-form user input to the completion API and
// returns the flattened answer. Upstream failures keep their own status.
func (e *Engine) consultOpenAI(ctx context.Context, p Params) interface{} {
	if e.ai == nil {
		return errResult("completion service is not configured", 500)
	}
	res, err := e.ai.Consult(ctx, p.Str("userInput"))
	if err != nil {
		var apiErr *llm.Error
		if errors.As(err, &apiErr) {
			errRes := &ErrResult{ErrMsg: apiErr.Msg}
			if apiErr.Status != 0 {
				errRes.HTTPStatus = &apiErr.Status
			}
			return errRes
		}
		return &ErrResult{ErrMsg: err.Error()}
	}
	return res
}

package dialog

import (
	"errors"

	"chatlearn/internal/store"
)

// ErrResult is the uniform failure shape every handler resolves to. A nil
// HTTPStatus serializes as null and tells the HTTP adapter to pick its own
// default.
type ErrResult struct {
	ErrMsg     string `json:"errMsg"`
	HTTPStatus *int   `json:"httpStatus"`
}

func errResult(msg string, status int) *ErrResult {
	return &ErrResult{ErrMsg: msg, HTTPStatus: &status}
}

// errFromStore normalizes a store/SDK failure: prefer the backend's own
// message, fall back to a fixed string; carry the backend status when known.
func errFromStore(err error) *ErrResult {
	msg := "There is an SDK error"
	var se *store.Error
	if errors.As(err, &se) && se.Msg != "" {
		msg = se.Msg
	} else if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	res := &ErrResult{ErrMsg: msg}
	if status := store.StatusOf(err); status != 0 {
		res.HTTPStatus = &status
	}
	return res
}

// isErr reports whether a handler result is the normalized error shape.
func isErr(result interface{}) (*ErrResult, bool) {
	e, ok := result.(*ErrResult)
	return e, ok
}

package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"chatlearn/internal/llm"
	"chatlearn/internal/store"
)

// Databases names the logical document databases the engine reads and
// writes. Topics holds read-mostly reference content, UserProfiles the
// per-user documents, SessionEvents the append-only audit trail, Feedback
// the anonymous feedback stream.
type Databases struct {
	Topics        string `json:"topics"`
	UserProfiles  string `json:"userProfiles"`
	SessionEvents string `json:"sessionEvents"`
	Feedback      string `json:"feedback"`
}

// Completer is the text-in/text-out completion collaborator.
type Completer interface {
	Consult(ctx context.Context, userInput string) (*llm.ConsultResult, error)
}

// SummaryCache caches the computed per-user exercise summary between
// requests. Implementations may be absent (nil cache disables caching).
type SummaryCache interface {
	Get(ctx context.Context, userBasicInfoID string) (map[string]interface{}, bool)
	Set(ctx context.Context, userBasicInfoID string, summary map[string]interface{})
}

// Engine owns the action registry for one tenant: it validates a request,
// routes it to the matching handler, and shapes the result. It keeps no
// state between calls; all memory lives in the document store.
type Engine struct {
	store store.Store
	dbs   Databases
	ai    Completer
	cache SummaryCache
	log   *zap.Logger
	clock *millisClock
}

// Option tweaks an Engine at construction.
type Option func(*Engine)

// WithCompleter wires the completion API collaborator.
func WithCompleter(c Completer) Option {
	return func(e *Engine) { e.ai = c }
}

// WithSummaryCache wires the exercise-summary cache.
func WithSummaryCache(c SummaryCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithWallClock replaces the millisecond wall clock (tests).
func WithWallClock(wall func() int64) Option {
	return func(e *Engine) { e.clock = newMillisClock(wall) }
}

// NewEngine builds an engine over the given store and database names.
func NewEngine(s store.Store, dbs Databases, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store: s,
		dbs:   dbs,
		log:   logger,
		clock: newMillisClock(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) now() int64 { return e.clock.Next() }

// Params is the flat request body: an action name plus action-specific
// fields.
type Params map[string]interface{}

// Has reports key presence, not truthiness.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Str returns the string value of a key, or "" for absent/non-string.
func (p Params) Str(key string) string {
	s, _ := p[key].(string)
	return s
}

// Truthy applies loose boolean coercion: false, nil, "", and 0 are false.
func (p Params) Truthy(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case nil:
		return false
	default:
		return true
	}
}

// Map returns a nested object value, or nil.
func (p Params) Map(key string) map[string]interface{} {
	m, _ := p[key].(map[string]interface{})
	return m
}

// Slice returns a nested array value, or nil.
func (p Params) Slice(key string) []interface{} {
	s, _ := p[key].([]interface{})
	return s
}

// Dispatch validates and routes one request. Every outcome is a value: a
// success payload or an *ErrResult. Unknown actions and missing required
// fields resolve to 400 without touching the store.
func (e *Engine) Dispatch(ctx context.Context, p Params) interface{} {
	if p == nil || !p.Has("action") {
		return errResult("action parameter is not provided", 400)
	}
	name := p.Str("action")
	spec, ok := actions[name]
	if !ok {
		return errResult("the action parameter is not valid", 400)
	}
	for _, field := range spec.required {
		if !p.Has(field) {
			return errResult(field+" is missing", 400)
		}
	}
	result := spec.handler(e, ctx, p)
	if errRes, failed := isErr(result); failed {
		e.log.Debug("action failed",
			zap.String("action", name),
			zap.String("errMsg", errRes.ErrMsg))
	}
	return result
}

// Actions lists the registered action names (diagnostics, tests).
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	return names
}

// numberValue applies loose numeric coercion: JSON numbers pass through,
// numeric strings parse. The bool result is false for everything else.
func numberValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// millisValue coerces a millisecond-timestamp field.
func millisValue(v interface{}) (int64, bool) {
	f, ok := numberValue(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// intValue parses a rating value: JSON number or numeric string, truncated
// toward zero.
func intValue(v interface{}) int {
	f, ok := numberValue(v)
	if !ok {
		return 0
	}
	return int(f)
}

// stringOf renders any scalar as its string form ("" for nil).
func stringOf(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

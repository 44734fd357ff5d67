package dialog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"chatlearn/internal/store"
)

func testDatabases() Databases {
	return Databases{
		Topics:        "topics",
		UserProfiles:  "user-profiles",
		SessionEvents: "user-session-events",
		Feedback:      "feedback",
	}
}

// newTestEngine wires an engine over the in-memory store with a
// deterministic millisecond clock starting at startMillis.
func newTestEngine(t *testing.T, startMillis int64) (*Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	tick := startMillis
	e := NewEngine(mem, testDatabases(), nil, WithWallClock(func() int64 {
		tick++
		return tick
	}))
	return e, mem
}

func mustPut(t *testing.T, s store.Store, db string, doc store.Doc) {
	t.Helper()
	if _, err := s.Put(context.Background(), db, doc); err != nil {
		t.Fatalf("seed %s/%v: %v", db, doc["_id"], err)
	}
}

func asErr(t *testing.T, result interface{}) *ErrResult {
	t.Helper()
	errRes, ok := result.(*ErrResult)
	if !ok {
		t.Fatalf("expected error result, got %T: %v", result, result)
	}
	return errRes
}

func resultOf(t *testing.T, result interface{}) map[string]interface{} {
	t.Helper()
	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map result, got %T: %v", result, result)
	}
	return m
}

func TestDispatchNoAction(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.Dispatch(context.Background(), Params{}))
	if errRes.ErrMsg != "action parameter is not provided" {
		t.Errorf("unexpected message: %q", errRes.ErrMsg)
	}
	if errRes.HTTPStatus == nil || *errRes.HTTPStatus != 400 {
		t.Errorf("expected status 400, got %v", errRes.HTTPStatus)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.Dispatch(context.Background(), Params{"action": "teleport"}))
	if errRes.ErrMsg != "the action parameter is not valid" {
		t.Errorf("unexpected message: %q", errRes.ErrMsg)
	}
}

func TestDispatchMissingRequiredField(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.Dispatch(context.Background(), Params{
		"action": "getUserBasicInfo",
	}))
	if errRes.ErrMsg != "userId is missing" {
		t.Errorf("unexpected message: %q", errRes.ErrMsg)
	}
	if errRes.HTTPStatus == nil || *errRes.HTTPStatus != 400 {
		t.Errorf("expected status 400, got %v", errRes.HTTPStatus)
	}
}

func TestDispatchPresentButEmptyFieldPassesValidation(t *testing.T) {
	// Required-field validation checks presence, not truthiness: an empty
	// string reaches the handler and fails downstream instead.
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.Dispatch(context.Background(), Params{
		"action": "getUserBasicInfo",
		"userId": "",
	}))
	if errRes.ErrMsg == "userId is missing" {
		t.Fatalf("present empty field should not fail required validation")
	}
	if errRes.HTTPStatus == nil || *errRes.HTTPStatus != 404 {
		t.Errorf("expected store 404, got %v", errRes.HTTPStatus)
	}
}

func TestActionsCoverRegistry(t *testing.T) {
	names := Actions()
	if len(names) != len(actions) {
		t.Fatalf("Actions() returned %d names, registry has %d", len(names), len(actions))
	}
}

func TestErrResultJSONShape(t *testing.T) {
	raw, err := json.Marshal(errResult("boom", 404))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `{"errMsg":"boom","httpStatus":404}` {
		t.Errorf("unexpected shape: %s", raw)
	}

	raw, err = json.Marshal(&ErrResult{ErrMsg: "boom"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"httpStatus":null`) {
		t.Errorf("nil status should serialize as null: %s", raw)
	}
}

func TestCreateAndGetUserBasicInfo(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	ctx := context.Background()

	created := resultOf(t, e.Dispatch(ctx, Params{
		"action":   "createUserBasicInfo",
		"userId":   "u1",
		"username": "Uma",
	}))
	put, ok := created["result"].(store.PutResult)
	if !ok || !put.OK {
		t.Fatalf("unexpected create result: %v", created)
	}
	if put.ID != "u1:userBasicInfo" {
		t.Errorf("unexpected id: %s", put.ID)
	}

	fetched := resultOf(t, e.Dispatch(ctx, Params{
		"action": "getUserBasicInfo",
		"userId": "u1",
	}))
	doc := fetched["result"].(store.Doc)
	if doc["username"] != "Uma" || doc["docType"] != "userBasicInfo" {
		t.Errorf("unexpected doc: %v", doc)
	}
}

func TestUpdateUserBasicInfoValidation(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	ctx := context.Background()

	cases := []struct {
		doc    map[string]interface{}
		reason string
	}{
		{nil, "missing or invalid doc object"},
		{map[string]interface{}{"_rev": "1-a"}, "missing or invalid doc._id"},
		{map[string]interface{}{"_id": "u1:userBasicInfo"}, "missing or invalid doc._rev"},
		{map[string]interface{}{"_id": "x", "_rev": "1-a", "createdAt": "yesterday"},
			"createdAt should be 13-digit numbers representing milliseconds timestamp"},
		{map[string]interface{}{"_id": "x", "_rev": "1-a", "updatedAt": "now"},
			"updatedAt should be 13-digit numbers representing milliseconds timestamp"},
		{map[string]interface{}{"_id": "x", "_rev": "1-a", "completedAt": "soon"},
			"completedAt should be 13-digit numbers representing milliseconds timestamp"},
	}
	for _, tc := range cases {
		errRes := asErr(t, e.Dispatch(ctx, Params{
			"action":        "updateUserBasicInfo",
			"userBasicInfo": tc.doc,
		}))
		if errRes.ErrMsg != tc.reason {
			t.Errorf("doc %v: got %q, want %q", tc.doc, errRes.ErrMsg, tc.reason)
		}
	}
}

func TestCreateUserSessionInfoRejectsBadTimestamp(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.Dispatch(context.Background(), Params{
		"action":           "createUserSessionInfo",
		"userId":           "u1",
		"sessionId":        "s1",
		"sessionStartedAt": "not-a-date",
	}))
	if errRes.ErrMsg != "sessionStartedAt is not ISO 8601 format" {
		t.Errorf("unexpected message: %q", errRes.ErrMsg)
	}
}

func TestGetLastUserSessionInfoExcludesCurrentSession(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	ctx := context.Background()
	mustPut(t, mem, "user-profiles", store.Doc{
		"_id": "u1-session:100", "docType": "userSessionInfo",
		"sessionId": "old", "createdAt": int64(100),
	})
	mustPut(t, mem, "user-profiles", store.Doc{
		"_id": "u1-session:200", "docType": "userSessionInfo",
		"sessionId": "current", "createdAt": int64(200),
	})

	res := resultOf(t, e.Dispatch(ctx, Params{
		"action":    "getLastUserSessionInfo",
		"userId":    "u1",
		"sessionId": "current",
	}))
	found := res["result"].(*store.FindResult)
	if len(found.Docs) != 1 || found.Docs[0]["sessionId"] != "old" {
		t.Fatalf("expected only the older session, got %v", found.Docs)
	}
}

package dialog

import (
	"context"
	"time"

	"chatlearn/internal/store"
)

func (e *Engine) getUserBasicInfo(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.UserProfiles, userBasicInfoID(p.Str("userId")))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

func (e *Engine) createUserBasicInfo(ctx context.Context, p Params) interface{} {
	doc := store.Doc{
		"_id":       userBasicInfoID(p.Str("userId")),
		"docType":   "userBasicInfo",
		"userId":    p.Str("userId"),
		"username":  p.Str("username"),
		"createdAt": e.now(),
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) updateUserBasicInfo(ctx context.Context, p Params) interface{} {
	doc := p.Map("userBasicInfo")
	if ok, reason := validateDocForUpdate(doc); !ok {
		return errResult(reason, 400)
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, store.Doc(doc))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

// getLastUserSessionInfo returns the most recent session other than the
// current one. When the caller supplies both userLanguage and
// userTimezone, the session's createdAt is additionally rendered as a
// wall-clock string in that timezone.
func (e *Engine) getLastUserSessionInfo(ctx context.Context, p Params) interface{} {
	res, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, sessionPartition(p.Str("userId")), store.Query{
		Selector: store.Selector{
			"$not": store.Selector{"sessionId": p.Str("sessionId")},
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	if p.Has("userLanguage") && p.Has("userTimezone") {
		for _, doc := range res.Docs {
			if millis, ok := millisValue(doc["createdAt"]); ok {
				doc["createdAtUserLocalTime"] = localTimeString(millis, p.Str("userTimezone"))
			}
		}
	}
	return map[string]interface{}{"result": res}
}

// localTimeString renders a millisecond timestamp in the given IANA
// timezone. The layout is fixed; locale-aware formatting is out of scope.
func localTimeString(millis int64, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return time.UnixMilli(millis).In(loc).Format("1/2/2006, 3:04:05 PM")
}

func (e *Engine) createUserSessionInfo(ctx context.Context, p Params) interface{} {
	startedAt, ok := parseISOTime(p.Str("sessionStartedAt"))
	if !ok {
		return errResult("sessionStartedAt is not ISO 8601 format", 400)
	}
	userID := p.Str("userId")
	startedAtMillis := startedAt.UnixMilli()
	doc := store.Doc{
		"_id":             sessionInfoID(userID, startedAtMillis),
		"docType":         "userSessionInfo",
		"sessionId":       p.Str("sessionId"),
		"userBasicInfoId": userBasicInfoID(userID),
		"createdAt":       startedAtMillis,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseISOTime(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e *Engine) createSessionEvent(ctx context.Context, p Params) interface{} {
	userID := p.Str("userId")
	sessionID := p.Str("sessionId")
	now := e.now()
	doc := store.Doc{
		"_id":                sessionEventID(userID, sessionID, now),
		"docType":            "userSessionEventLog",
		"userId":             userID,
		"sessionId":          sessionID,
		"sessionEventTypeId": p.Str("sessionEventTypeId"),
		"createdAt":          now,
	}
	optional := map[string]string{
		"context":                       "eventContext",
		"userExerciseInfoId":            "userExerciseInfoId",
		"userCaseStudyAssignmentInfoId": "userCaseStudyAssignmentInfoId",
		"questionId":                    "questionId",
		"userInput":                     "userInput",
	}
	for param, field := range optional {
		if p.Truthy(param) {
			doc[field] = p[param]
		} else {
			doc[field] = nil
		}
	}
	res, errRes := e.putDoc(ctx, e.dbs.SessionEvents, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

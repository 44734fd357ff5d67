package dialog

import (
	"context"

	"chatlearn/internal/store"
)

func (e *Engine) createUserExerciseInfo(ctx context.Context, p Params) interface{} {
	createdAt, ok := millisValue(p["createdAt"])
	if !ok {
		return errResult("createdAt should be a 13-digits timestamp", 400)
	}
	userID := userIDOf(p.Str("userBasicInfoId"))
	doc := store.Doc{
		"_id":                 exerciseInfoID(userID, createdAt),
		"docType":             "userExerciseInfo",
		"userBasicInfoId":     p.Str("userBasicInfoId"),
		"userSessionInfoId":   p.Str("userSessionInfoId"),
		"exerciseId":          p.Str("exerciseId"),
		"exerciseName":        p.Str("exerciseName"),
		"learningModuleRefId": p.Str("learningModuleRefId"),
		"learningModuleName":  p.Str("learningModuleName"),
		"topicConfigId":       p.Str("topicConfigId"),
		"topicName":           p.Str("topicName"),
		"createdAt":           createdAt,
		"isCompleted":         false,
		"completedAt":         nil,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) updateUserExerciseInfo(ctx context.Context, p Params) interface{} {
	doc := p.Map("userExerciseInfo")
	if ok, reason := validateDocForUpdate(doc); !ok {
		return errResult(reason, 400)
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, store.Doc(doc))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) setIsCompletedTrueToUserExerciseInfo(ctx context.Context, p Params) interface{} {
	completedAt, ok := millisValue(p["completedAt"])
	if !ok {
		return errResult("completedAt should be a 13-digits number representing milliseconds", 400)
	}
	doc, errRes := e.getDoc(ctx, e.dbs.UserProfiles, p.Str("docId"))
	if errRes != nil {
		return errRes
	}
	doc["isCompleted"] = true
	doc["completedAt"] = completedAt
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

// getCategorizedUserExerciseInfos splits one session's exercise activity
// into completed and incomplete. An exercise only counts as incomplete when
// no other record in the same session completed it. Incomplete entries get
// a resume menu labeled "<topic> > <exercise>".
func (e *Engine) getCategorizedUserExerciseInfos(ctx context.Context, p Params) interface{} {
	sessionInfoID := p.Str("userSessionInfoId")
	userID := userIDOfSessionInfoID(sessionInfoID)
	found, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, exerciseInfoPartition(userID), store.Query{
		Selector: store.Selector{"userSessionInfoId": sessionInfoID},
	})
	if errRes != nil {
		return errRes
	}
	docs := found.Docs
	completed := make([]store.Doc, 0)
	incomplete := make([]store.Doc, 0)
	completedIDs := make(map[string]bool)
	for _, doc := range docs {
		if truthy(doc["isCompleted"]) {
			completedIDs[stringOf(doc["exerciseId"])] = true
		}
	}
	for _, doc := range docs {
		if truthy(doc["isCompleted"]) {
			completed = append(completed, doc)
			continue
		}
		if completedIDs[stringOf(doc["exerciseId"])] {
			continue
		}
		doc["topicAndExerciseName"] = stringOf(doc["topicName"]) + " > " + stringOf(doc["exerciseName"])
		incomplete = append(incomplete, doc)
	}
	result := map[string]interface{}{
		"completedUserExerciseInfos":  completed,
		"incompleteUserExerciseInfos": incomplete,
		"customResponse":              nil,
	}
	if len(incomplete) > 0 {
		title := "Below is the list of incomplete exercises from the last session in chronical order, you can choose one to resume:"
		if len(incomplete) == 1 {
			title = "You can click on the exercise name to resume:"
		}
		result["customResponse"] = buildOptions(docsToMaps(incomplete), title, "topicAndExerciseName", "_id", "")
	}
	return map[string]interface{}{"result": result}
}

func (e *Engine) getIncompleteExercise(ctx context.Context, p Params) interface{} {
	partition := sessionEventPartition(p.Str("userId"), p.Str("lastSessionId"))
	res, errRes := e.partitionFind(ctx, e.dbs.SessionEvents, partition, store.Query{
		Selector: store.Selector{
			"sessionEventTypeId": "sessionEventType:doExercise",
			"userExerciseInfoId": p.Str("userExerciseInfoId"),
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

// checkIfUserCompletedModuleExercises compares a module's exercise list
// against the user's completed ones and offers the missing exercises as a
// validation menu. userHasCompletedTheLastExercise tracks the final
// exercise of the module specifically.
func (e *Engine) checkIfUserCompletedModuleExercises(ctx context.Context, p Params) interface{} {
	moduleRefID := p.Str("moduleRefId")
	partition := store.PartitionOf(moduleRefID)
	moduleExercises, errRes := e.partitionFind(ctx, e.dbs.Topics, partition, store.Query{
		Selector: store.Selector{
			"docType":                   "exercise",
			"learningModuleReferenceId": moduleRefID,
			"topicConfigId":             partition + ":topicConfig",
		},
		Fields: []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	userBasicInfoID := p.Str("userBasicInfoId")
	completed, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, exerciseInfoPartition(userIDOf(userBasicInfoID)), store.Query{
		Selector: store.Selector{
			"docType":            "userExerciseInfo",
			"topicConfigId":      p.Str("topicConfigId"),
			"learningModuleName": p.Str("moduleName"),
			"userBasicInfoId":    userBasicInfoID,
			"isCompleted":        true,
		},
		Fields: []string{"_id", "learningModuleRefId", "exerciseId", "isCompleted"},
	})
	if errRes != nil {
		return errRes
	}
	completedIDs := make(map[string]bool)
	for _, doc := range completed.Docs {
		completedIDs[stringOf(doc["exerciseId"])] = true
	}
	res := map[string]interface{}{
		"userBasicInfoId":                 userBasicInfoID,
		"topicConfigId":                   p.Str("topicConfigId"),
		"moduleRefId":                     moduleRefID,
		"moduleName":                      p.Str("moduleName"),
		"userHasCompletedModuleExercises": true,
		"userHasCompletedTheLastExercise": true,
		"incompleteExerciseIds":           []map[string]interface{}{},
		"customResponse":                  nil,
	}
	incompleteIDs := make([]map[string]interface{}, 0)
	for i, doc := range moduleExercises.Docs {
		if completedIDs[stringOf(doc["_id"])] {
			continue
		}
		res["userHasCompletedModuleExercises"] = false
		incompleteIDs = append(incompleteIDs, map[string]interface{}{
			"id":   doc["_id"],
			"name": doc["name"],
		})
		if i == len(moduleExercises.Docs)-1 {
			res["userHasCompletedTheLastExercise"] = false
		}
	}
	res["incompleteExerciseIds"] = incompleteIDs
	if len(incompleteIDs) > 0 {
		res["customResponse"] = buildOptions(incompleteIDs,
			"<b>You can validate your assessment by doing an exercise below:</b>", "name", "id", "")
	}
	return map[string]interface{}{"result": res}
}

// truthy mirrors Params.Truthy for document field values.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}

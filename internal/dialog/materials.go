package dialog

import (
	"context"

	"chatlearn/internal/store"
)

func (e *Engine) getAllTopics(ctx context.Context, p Params) interface{} {
	res, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{
		Selector: store.Selector{"docType": "topicConfig"},
	})
	if errRes != nil {
		return errRes
	}
	out := map[string]interface{}{"docs": res.Docs}
	if len(res.Docs) > 0 {
		out["customResponse"] = buildOptions(docsToMaps(res.Docs),
			"Please select a topic from the list below:", "name", "_id", "")
	}
	return out
}

// docsByScope fetches content documents attached to either a learning
// module or a topic. Unknown scopes fall through unrefined.
func (e *Engine) docsByScope(ctx context.Context, docType, scope, scopeRefID string) (map[string]interface{}, *ErrResult) {
	selector := store.Selector{"docType": docType}
	switch scope {
	case "module":
		selector["learningModuleReferenceId"] = scopeRefID
	case "topic":
		selector["topicConfigId"] = scopeRefID
	}
	res, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{Selector: selector})
	if errRes != nil {
		return nil, errRes
	}
	return map[string]interface{}{
		"docType":    docType,
		"scope":      scope,
		"scopeRefId": scopeRefID,
		"docs":       res.Docs,
	}, nil
}

func (e *Engine) getLearningMaterialsByModuleRefID(ctx context.Context, p Params) interface{} {
	out, errRes := e.docsByScope(ctx, "learningMaterial", "module", p.Str("moduleRefId"))
	if errRes != nil {
		return errRes
	}
	return out
}

func (e *Engine) getLearningMaterialsByTopicConfigID(ctx context.Context, p Params) interface{} {
	out, errRes := e.docsByScope(ctx, "learningMaterial", "topic", p.Str("topicConfigId"))
	if errRes != nil {
		return errRes
	}
	return out
}

// exercisesByScope adds a selection menu when there is more than one
// exercise to choose from.
func (e *Engine) exercisesByScope(ctx context.Context, scope, scopeRefID string) interface{} {
	out, errRes := e.docsByScope(ctx, "exercise", scope, scopeRefID)
	if errRes != nil {
		return errRes
	}
	docs := out["docs"].([]store.Doc)
	if len(docs) > 1 {
		out["customResponse"] = buildOptions(docsToMaps(docs),
			"You can select an exercise below:", "name", "_id", "")
	}
	return out
}

func (e *Engine) getExercisesByModuleRefID(ctx context.Context, p Params) interface{} {
	return e.exercisesByScope(ctx, "module", p.Str("moduleRefId"))
}

func (e *Engine) getExercisesByTopicConfigID(ctx context.Context, p Params) interface{} {
	return e.exercisesByScope(ctx, "topic", p.Str("topicConfigId"))
}

// getLearningMaterialsAndExercisesByScope fetches both content kinds in one
// query and splits them. Exercises get a menu whose values carry the
// "do exercise" command prefix, plus a way back to the topic.
func (e *Engine) getLearningMaterialsAndExercisesByScope(ctx context.Context, p Params) interface{} {
	scope := p.Str("scope")
	scopeRefID := p.Str("scopeRefId")
	selector := store.Selector{
		"docType": store.Selector{"$in": []string{"learningMaterial", "exercise"}},
	}
	if scope == "topic" {
		selector["topicConfigId"] = scopeRefID
	} else {
		selector["learningModuleReferenceId"] = scopeRefID
	}
	res, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{Selector: selector})
	if errRes != nil {
		return errRes
	}
	materials := map[string]interface{}{
		"docType": "learningMaterial", "scope": scope, "scopeRefId": scopeRefID,
		"docs": []store.Doc{},
	}
	exercises := map[string]interface{}{
		"docType": "exercise", "scope": scope, "scopeRefId": scopeRefID,
		"docs": []store.Doc{}, "customResponse": nil,
	}
	for _, doc := range res.Docs {
		if doc["docType"] == "exercise" {
			exercises["docs"] = append(exercises["docs"].([]store.Doc), doc)
		} else {
			materials["docs"] = append(materials["docs"].([]store.Doc), doc)
		}
	}
	exerciseDocs := exercises["docs"].([]store.Doc)
	if len(exerciseDocs) > 0 {
		menu := buildOptions(docsToMaps(exerciseDocs),
			"<b>You can select an exercise or return to the topic from the options below:</b>",
			"name", "_id", "do exercise ")
		exercises["customResponse"] = appendOptions(menu, []LabelValue{
			{Label: "Back to topic", Value: "back to topic"},
		})
	}
	return map[string]interface{}{
		"docType":    "material+exercise",
		"scope":      scope,
		"scopeRefId": scopeRefID,
		"results":    []interface{}{materials, exercises},
	}
}

func (e *Engine) getLearningMaterialsByParentID(ctx context.Context, p Params) interface{} {
	parentID := p.Str("parentId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(parentID), store.Query{
		Selector: store.Selector{
			"docType":  "learningMaterial",
			"parentId": parentID,
		},
		Fields: []string{"name", "description", "format", "sourceUrl"},
	})
	if errRes != nil {
		return errRes
	}
	return res
}

func (e *Engine) getLearningMaterialsByDocIDs(ctx context.Context, p Params) interface{} {
	ids := make([]string, 0)
	for _, v := range p.Slice("learningMaterialIds") {
		ids = append(ids, stringOf(v))
	}
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, p.Str("partitionKey"), store.Query{
		Selector: store.Selector{
			"_id":     store.Selector{"$in": ids},
			"docType": "learningMaterial",
		},
		Fields: []string{"_id", "name", "description", "format", "sourceUrl"},
	})
	if errRes != nil {
		return errRes
	}
	return res
}

func (e *Engine) getLearningMaterialByDocID(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.Topics, p.Str("docId"))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

func (e *Engine) getExerciseByID(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.Topics, p.Str("exerciseId"))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

// topicModuleOptions is the shared base menu of both topic entry menus:
// one option per learning module, values prefixed with the module-content
// command.
func topicModuleOptions(topic map[string]interface{}) (*CustomOptions, *ErrResult) {
	if _, ok := topic["learningModules"]; !ok {
		return nil, errResult("learningModules is missing from the jsonObject", 400)
	}
	menu := buildOptions(mapSlice(topic["learningModules"]),
		"Please select an option to proceed:", "name", "referenceId", "Get module content for")
	return menu, nil
}

func (e *Engine) createOptionsForTopic(ctx context.Context, p Params) interface{} {
	menu, errRes := topicModuleOptions(p.Map("jsonObject"))
	if errRes != nil {
		return errRes
	}
	return appendOptions(menu, []LabelValue{
		{Label: "List all learning materials", Value: "get all learning materials"},
		{Label: "List all exercises", Value: "get all exercises"},
	})
}

// createPersonalizedOptionsForTopic varies the trailing options with the
// user's survey state: after the pre-usage survey the self-assessment
// shortcut for this topic appears.
func (e *Engine) createPersonalizedOptionsForTopic(ctx context.Context, p Params) interface{} {
	menu, errRes := topicModuleOptions(p.Map("jsonObject"))
	if errRes != nil {
		return errRes
	}
	additional := []LabelValue{
		{Label: "List all learning materials", Value: "get all learning materials"},
		{Label: "List all exercises", Value: "get all exercises"},
		{Label: "See another topic", Value: "see another topic"},
	}
	if p.Truthy("hasDonePreUsageSurvey") {
		topicName := p.Str("topicName")
		additional = []LabelValue{
			{Label: "List all learning materials", Value: "get all learning materials"},
			{Label: "List all exercises", Value: "get all exercises"},
			{Label: "Do self assessment on " + topicName, Value: "do self assessment on " + topicName},
			{Label: "See another topic", Value: "see another topic"},
		}
	}
	return appendOptions(menu, additional)
}

func (e *Engine) createOptionsFromArray(ctx context.Context, p Params) interface{} {
	items := mapSlice(p["keyValueArray"])
	title := p.Str("optionTitle")
	if p.Truthy("isTitleBold") {
		title = "<b>" + title + "</b>"
	}
	menu := buildOptions(items, title, p.Str("labelField"), p.Str("valueField"), p.Str("valuePrefix"))
	return map[string]interface{}{"result": map[string]interface{}{"customResponse": menu}}
}

// mapSlice coerces a decoded JSON array into a slice of objects, skipping
// non-object entries.
func mapSlice(v interface{}) []map[string]interface{} {
	items, _ := v.([]interface{})
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

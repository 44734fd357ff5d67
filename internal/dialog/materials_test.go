package dialog

import (
	"context"
	"testing"

	"chatlearn/internal/store"
)

func seedContent(t *testing.T, mem *store.Memory) {
	t.Helper()
	mustPut(t, mem, "topics", store.Doc{
		"_id": "pm01:topicConfig", "docType": "topicConfig", "name": "Planning",
	})
	mustPut(t, mem, "topics", store.Doc{
		"_id": "pm01:learningMaterial:01", "docType": "learningMaterial", "name": "Reading",
		"topicConfigId": "pm01:topicConfig", "learningModuleReferenceId": "pm01:module-01",
		"parentId": "pm01:module-01", "format": "video", "sourceUrl": "https://example.com/v",
		"description": "Intro video",
	})
	mustPut(t, mem, "topics", store.Doc{
		"_id": "pm01:exercise:01", "docType": "exercise", "name": "Draft",
		"topicConfigId": "pm01:topicConfig", "learningModuleReferenceId": "pm01:module-01",
	})
	mustPut(t, mem, "topics", store.Doc{
		"_id": "pm01:exercise:02", "docType": "exercise", "name": "Review",
		"topicConfigId": "pm01:topicConfig", "learningModuleReferenceId": "pm01:module-01",
	})
}

func TestGetAllTopics(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	ctx := context.Background()

	out := e.getAllTopics(ctx, Params{}).(map[string]interface{})
	if len(out["docs"].([]store.Doc)) != 0 {
		t.Errorf("empty database should yield no docs")
	}
	if _, ok := out["customResponse"]; ok {
		t.Errorf("empty result should carry no menu")
	}

	seedContent(t, mem)
	out = e.getAllTopics(ctx, Params{}).(map[string]interface{})
	if len(out["docs"].([]store.Doc)) != 1 {
		t.Fatalf("docs: %v", out["docs"])
	}
	menu := out["customResponse"].(*CustomOptions)
	if menu.OptionResponse[0].Title != "Please select a topic from the list below:" {
		t.Errorf("title: %q", menu.OptionResponse[0].Title)
	}
}

func TestGetLearningMaterialsByTopicConfigID(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	seedContent(t, mem)
	out := e.getLearningMaterialsByTopicConfigID(context.Background(), Params{
		"topicConfigId": "pm01:topicConfig",
	}).(map[string]interface{})
	if out["docType"] != "learningMaterial" || out["scope"] != "topic" {
		t.Errorf("scope fields: %v", out)
	}
	if len(out["docs"].([]store.Doc)) != 1 {
		t.Errorf("docs: %v", out["docs"])
	}
}

func TestGetExercisesByModuleRefIDAddsMenuForMultiple(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	seedContent(t, mem)
	out := e.getExercisesByModuleRefID(context.Background(), Params{
		"moduleRefId": "pm01:module-01",
	}).(map[string]interface{})
	if len(out["docs"].([]store.Doc)) != 2 {
		t.Fatalf("docs: %v", out["docs"])
	}
	menu := out["customResponse"].(*CustomOptions)
	if menu.OptionResponse[0].Title != "You can select an exercise below:" {
		t.Errorf("title: %q", menu.OptionResponse[0].Title)
	}
}

func TestGetLearningMaterialsAndExercisesByScope(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	seedContent(t, mem)
	out := e.getLearningMaterialsAndExercisesByScope(context.Background(), Params{
		"scope":      "topic",
		"scopeRefId": "pm01:topicConfig",
	}).(map[string]interface{})
	if out["docType"] != "material+exercise" {
		t.Errorf("docType: %v", out["docType"])
	}
	results := out["results"].([]interface{})
	materials := results[0].(map[string]interface{})
	exercises := results[1].(map[string]interface{})
	if len(materials["docs"].([]store.Doc)) != 1 {
		t.Errorf("materials: %v", materials["docs"])
	}
	if len(exercises["docs"].([]store.Doc)) != 2 {
		t.Errorf("exercises: %v", exercises["docs"])
	}
	menu := exercises["customResponse"].(*CustomOptions)
	opts := menu.OptionResponse[0].Options
	if opts[0].Value.Input.Text != "do exercise  pm01:exercise:01" {
		t.Errorf("command value: %q", opts[0].Value.Input.Text)
	}
	last := opts[len(opts)-1]
	if last.Label != "Back to topic" || last.Value.Input.Text != "back to topic" {
		t.Errorf("trailing option: %+v", last)
	}
}

func TestGetLearningMaterialsByParentIDProjection(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	seedContent(t, mem)
	res := e.getLearningMaterialsByParentID(context.Background(), Params{
		"parentId": "pm01:module-01",
	}).(*store.FindResult)
	if len(res.Docs) != 1 {
		t.Fatalf("docs: %v", res.Docs)
	}
	doc := res.Docs[0]
	if _, ok := doc["_id"]; ok {
		t.Errorf("projection should drop _id: %v", doc)
	}
	if doc["format"] != "video" || doc["sourceUrl"] != "https://example.com/v" {
		t.Errorf("projected fields: %v", doc)
	}
}

func TestGetLearningMaterialsByDocIDs(t *testing.T) {
	e, mem := newTestEngine(t, 1000)
	seedContent(t, mem)
	res := e.getLearningMaterialsByDocIDs(context.Background(), Params{
		"partitionKey":        "pm01",
		"learningMaterialIds": []interface{}{"pm01:learningMaterial:01", "pm01:learningMaterial:99"},
	}).(*store.FindResult)
	if len(res.Docs) != 1 || res.Docs[0].ID() != "pm01:learningMaterial:01" {
		t.Errorf("docs: %v", res.Docs)
	}
}

func topicObject() map[string]interface{} {
	return map[string]interface{}{
		"learningModules": []interface{}{
			map[string]interface{}{"name": "Module One", "referenceId": "pm01:module-01"},
			map[string]interface{}{"name": "Module Two", "referenceId": "pm01:module-02"},
		},
	}
}

func TestCreateOptionsForTopic(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	menu := e.createOptionsForTopic(context.Background(), Params{
		"jsonObject": topicObject(),
	}).(*CustomOptions)
	group := menu.OptionResponse[0]
	if group.Title != "Please select an option to proceed:" {
		t.Errorf("title: %q", group.Title)
	}
	if len(group.Options) != 4 {
		t.Fatalf("options: %v", group.Options)
	}
	if group.Options[0].Value.Input.Text != "Get module content for pm01:module-01" {
		t.Errorf("module value: %q", group.Options[0].Value.Input.Text)
	}
	if group.Options[3].Label != "List all exercises" {
		t.Errorf("trailing options: %v", group.Options)
	}
}

func TestCreateOptionsForTopicMissingModules(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	errRes := asErr(t, e.createOptionsForTopic(context.Background(), Params{
		"jsonObject": map[string]interface{}{},
	}))
	if errRes.ErrMsg != "learningModules is missing from the jsonObject" {
		t.Errorf("unexpected message: %q", errRes.ErrMsg)
	}
}

func TestCreatePersonalizedOptionsForTopic(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	ctx := context.Background()

	menu := e.createPersonalizedOptionsForTopic(ctx, Params{
		"jsonObject": topicObject(),
	}).(*CustomOptions)
	labels := optionLabels(menu)
	if labels[len(labels)-1] != "See another topic" {
		t.Errorf("labels before survey: %v", labels)
	}
	for _, l := range labels {
		if l == "Do self assessment on Planning" {
			t.Errorf("self assessment should require the pre-usage survey")
		}
	}

	menu = e.createPersonalizedOptionsForTopic(ctx, Params{
		"jsonObject":            topicObject(),
		"topicName":             "Planning",
		"hasDonePreUsageSurvey": true,
	}).(*CustomOptions)
	labels = optionLabels(menu)
	if labels[len(labels)-2] != "Do self assessment on Planning" {
		t.Errorf("labels after survey: %v", labels)
	}
}

func optionLabels(menu *CustomOptions) []string {
	labels := make([]string, 0)
	for _, o := range menu.OptionResponse[0].Options {
		labels = append(labels, o.Label)
	}
	return labels
}

func TestCreateOptionsFromArray(t *testing.T) {
	e, _ := newTestEngine(t, 1000)
	res := e.createOptionsFromArray(context.Background(), Params{
		"keyValueArray": []interface{}{
			map[string]interface{}{"title": "One", "cmd": "run one"},
		},
		"optionTitle": "Pick one:",
		"isTitleBold": true,
		"labelField":  "title",
		"valueField":  "cmd",
	}).(map[string]interface{})
	menu := res["result"].(map[string]interface{})["customResponse"].(*CustomOptions)
	if menu.OptionResponse[0].Title != "<b>Pick one:</b>" {
		t.Errorf("bold title: %q", menu.OptionResponse[0].Title)
	}
	if menu.OptionResponse[0].Options[0].Value.Input.Text != "run one" {
		t.Errorf("value: %+v", menu.OptionResponse[0].Options[0])
	}
}

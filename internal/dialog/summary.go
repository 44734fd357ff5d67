package dialog

import (
	"context"
	"regexp"
	"strconv"
	"sync"

	"chatlearn/internal/store"
)

// exerciseSummary walks every exercise in the content database, in store
// order, grouping consecutive runs of the same topicConfigId, and marks
// each exercise completed or incomplete for the user. The two source
// queries run concurrently; their failures are reported together.
func (e *Engine) exerciseSummary(ctx context.Context, userBasicInfoID string) (map[string]interface{}, *ErrResult) {
	var (
		wg        sync.WaitGroup
		exercises *store.FindResult
		completed *store.FindResult
		errs      [2]*ErrResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		exercises, errs[0] = e.findDocs(ctx, e.dbs.Topics, store.Query{
			Selector: store.Selector{
				"docType":       "exercise",
				"topicConfigId": store.Selector{"$ne": nil},
			},
			Fields: []string{"_id", "name", "topicConfigId"},
		})
	}()
	go func() {
		defer wg.Done()
		completed, errs[1] = e.partitionFind(ctx, e.dbs.UserProfiles, exerciseInfoPartition(userIDOf(userBasicInfoID)), store.Query{
			Selector: store.Selector{"isCompleted": true},
			Fields:   []string{"exerciseId"},
		})
	}()
	wg.Wait()
	upstream := ""
	for _, errRes := range errs {
		if errRes == nil {
			continue
		}
		if upstream != "" {
			upstream += ", "
		}
		upstream += errRes.ErrMsg
	}
	if upstream != "" {
		return nil, errResult("Got upstream function error "+upstream, 500)
	}
	if len(exercises.Docs) == 0 {
		return nil, errResult("There is no exercise in the topic database", 404)
	}
	completedIDs := make(map[string]bool)
	for _, doc := range completed.Docs {
		completedIDs[stringOf(doc["exerciseId"])] = true
	}
	totalSummary := make([]interface{}, 0)
	var current map[string]interface{}
	currentTopicID := interface{}(nil)
	for _, doc := range exercises.Docs {
		meta := map[string]interface{}{
			"exerciseId":   doc["_id"],
			"exerciseName": doc["name"],
		}
		if current == nil || doc["topicConfigId"] != currentTopicID {
			current = map[string]interface{}{
				"topicConfigId":       doc["topicConfigId"],
				"completedExercises":  []interface{}{},
				"incompleteExercises": []interface{}{},
			}
			totalSummary = append(totalSummary, current)
			currentTopicID = doc["topicConfigId"]
		}
		bucket := "incompleteExercises"
		if completedIDs[stringOf(doc["_id"])] {
			bucket = "completedExercises"
		}
		current[bucket] = append(current[bucket].([]interface{}), meta)
	}
	return map[string]interface{}{
		"createdAt":       e.now(),
		"exerciseSummary": totalSummary,
	}, nil
}

func (e *Engine) getSummaryOfUserExercises(ctx context.Context, p Params) interface{} {
	summary, errRes := e.exerciseSummary(ctx, p.Str("userBasicInfoId"))
	if errRes != nil {
		return errRes
	}
	if e.cache != nil {
		e.cache.Set(ctx, p.Str("userBasicInfoId"), summary)
	}
	return map[string]interface{}{"result": summary}
}

var progressPostfix = regexp.MustCompile(`\(\d*/\d*\)$`)

// createCustomOptionsForIncompleteTopics builds the two-level resume menu:
// first a topic menu, then per topic an exercise menu. A caller-supplied
// summary is reused unless it predates the user's newest completed
// exercise, in which case it is recomputed. Topic names are enriched with
// a "(completed/total)" progress postfix exactly once.
func (e *Engine) createCustomOptionsForIncompleteTopics(ctx context.Context, p Params) interface{} {
	userBasicInfoID := p.Str("userBasicInfoId")
	summary := e.suppliedOrCachedSummary(ctx, p)
	obsolete := false
	if summary != nil {
		lastCompleted, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, exerciseInfoPartition(userIDOf(userBasicInfoID)), store.Query{
			Selector: store.Selector{
				"docType":     "userExerciseInfo",
				"isCompleted": true,
			},
			Sort:   []store.SortField{{Field: "createdAt", Desc: true}},
			Limit:  1,
			Fields: []string{"completedAt"},
		})
		if errRes != nil {
			return errRes
		}
		if len(lastCompleted.Docs) > 0 {
			summaryCreatedAt, _ := millisValue(summary["createdAt"])
			completedAt, _ := millisValue(lastCompleted.Docs[0]["completedAt"])
			if summaryCreatedAt < completedAt {
				obsolete = true
			}
		}
	}
	if summary == nil || obsolete {
		fresh, errRes := e.exerciseSummary(ctx, userBasicInfoID)
		if errRes != nil {
			return errRes
		}
		summary = fresh
		if e.cache != nil {
			e.cache.Set(ctx, userBasicInfoID, fresh)
		}
	}
	topicSummaries := anySlice(summary["exerciseSummary"])
	if len(topicSummaries) > 0 {
		first, _ := topicSummaries[0].(map[string]interface{})
		if stringOf(first["topicName"]) == "" {
			if errRes := e.attachTopicNames(ctx, topicSummaries); errRes != nil {
				return errRes
			}
		} else if !progressPostfix.MatchString(stringOf(first["topicName"])) {
			for _, t := range topicSummaries {
				topic, _ := t.(map[string]interface{})
				topic["topicName"] = stringOf(topic["topicName"]) + " " + progressOf(topic)
			}
		}
	}
	incomplete := make([]map[string]interface{}, 0)
	for _, t := range topicSummaries {
		topic, _ := t.(map[string]interface{})
		if len(anySlice(topic["incompleteExercises"])) > 0 {
			incomplete = append(incomplete, topic)
		}
	}
	customOptions := map[string]interface{}{
		"hasIncompleteExercises":           true,
		"incompleteTopicOptions":           nil,
		"incompleteExerciseOptionsByTopic": []interface{}{},
		"createdAt":                        e.now(),
	}
	if len(incomplete) == 0 {
		customOptions["hasIncompleteExercises"] = false
		return map[string]interface{}{"result": customOptions}
	}
	customOptions["incompleteTopicOptions"] = map[string]interface{}{
		"customResponse": buildOptions(incomplete,
			"<b>First, please select a topic with incomplete exercise(s):</b>",
			"topicName", "topicConfigId", ""),
	}
	perTopic := make([]interface{}, 0, len(incomplete))
	for _, topic := range incomplete {
		perTopic = append(perTopic, map[string]interface{}{
			"topicConfigId": topic["topicConfigId"],
			"topicName":     topic["topicName"],
			"exerciseOptions": map[string]interface{}{
				"customResponse": buildOptions(mapSlice(topic["incompleteExercises"]),
					"<b>Now, please select an incomplete exercise:</b>",
					"exerciseName", "exerciseId", ""),
			},
		})
	}
	customOptions["incompleteExerciseOptionsByTopic"] = perTopic
	return map[string]interface{}{"result": customOptions}
}

// suppliedOrCachedSummary unwraps the caller-supplied exercise summary
// (accepting both the bare summary and the handler's {"result": ...}
// envelope), falling back to the cached copy.
func (e *Engine) suppliedOrCachedSummary(ctx context.Context, p Params) map[string]interface{} {
	supplied := p.Map("userExerciseSummary")
	if inner, ok := supplied["result"].(map[string]interface{}); ok {
		supplied = inner
	}
	if supplied != nil && supplied["exerciseSummary"] != nil {
		return supplied
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, p.Str("userBasicInfoId")); ok {
			return cached
		}
	}
	return nil
}

// attachTopicNames resolves topicConfigId to the topic's display name plus
// its progress postfix.
func (e *Engine) attachTopicNames(ctx context.Context, topicSummaries []interface{}) *ErrResult {
	topics, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{
		Selector: store.Selector{"docType": "topicConfig"},
		Fields:   []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	names := make(map[string]string)
	for _, doc := range topics.Docs {
		names[doc.ID()] = stringOf(doc["name"])
	}
	for _, t := range topicSummaries {
		topic, _ := t.(map[string]interface{})
		topic["topicName"] = names[stringOf(topic["topicConfigId"])] + " " + progressOf(topic)
	}
	return nil
}

func progressOf(topic map[string]interface{}) string {
	completedCount := len(anySlice(topic["completedExercises"]))
	totalCount := completedCount + len(anySlice(topic["incompleteExercises"]))
	return "(" + strconv.Itoa(completedCount) + "/" + strconv.Itoa(totalCount) + ")"
}

func anySlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

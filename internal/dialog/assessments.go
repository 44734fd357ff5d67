package dialog

import (
	"context"
	"sort"

	"chatlearn/internal/store"
)

// upsertSelfAssessmentSummary folds one rating into the per-user summary
// document keyed by SASId. The summary keeps at most one entry per
// statement (later ratings replace earlier ones) and stays sorted by SASId.
// A concurrent writer can invalidate the revision between read and write;
// the cycle is retried a bounded number of times before the conflict is
// surfaced.
const summaryUpsertAttempts = 3

func (e *Engine) upsertSelfAssessmentSummary(ctx context.Context, userBasicInfoID, sasID, sas string, value interface{}, sourceID string) interface{} {
	summaryID := saSummaryID(userIDOf(userBasicInfoID))
	var lastErr *ErrResult
	for attempt := 0; attempt < summaryUpsertAttempts; attempt++ {
		summary, err := e.store.Get(ctx, e.dbs.UserProfiles, summaryID)
		if err != nil && store.StatusOf(err) != 404 {
			return errFromStore(err)
		}
		entry := map[string]interface{}{
			"SASId":    sasID,
			"SAS":      sas,
			"value":    value,
			"sourceId": sourceID,
		}
		if summary == nil {
			summary = store.Doc{
				"_id":             summaryID,
				"docType":         "userSelfAssessmentSummary",
				"userBasicInfoId": userBasicInfoID,
				"userAssessments": []interface{}{entry},
				"createdAt":       e.now(),
				"updatedAt":       nil,
			}
		} else {
			assessments, _ := summary["userAssessments"].([]interface{})
			replaced := false
			for _, a := range assessments {
				existing, ok := a.(map[string]interface{})
				if !ok || stringOf(existing["SASId"]) != sasID {
					continue
				}
				existing["SAS"] = sas
				existing["value"] = value
				existing["sourceId"] = sourceID
				replaced = true
				break
			}
			if !replaced {
				assessments = append(assessments, entry)
			}
			summary["userAssessments"] = assessments
			summary["updatedAt"] = e.now()
		}
		sortAssessmentsBySASID(summary["userAssessments"].([]interface{}))
		res, putErr := e.store.Put(ctx, e.dbs.UserProfiles, summary)
		if putErr == nil {
			return map[string]interface{}{"result": res}
		}
		lastErr = errFromStore(putErr)
		if store.StatusOf(putErr) != 409 {
			return lastErr
		}
	}
	return lastErr
}

func sortAssessmentsBySASID(assessments []interface{}) {
	sort.SliceStable(assessments, func(i, j int) bool {
		a, _ := assessments[i].(map[string]interface{})
		b, _ := assessments[j].(map[string]interface{})
		return stringOf(a["SASId"]) < stringOf(b["SASId"])
	})
}

// getSelfAssessmentAnalytics aggregates the self-assessment answers of the
// user's most recent completed survey of the given type.
func (e *Engine) getSelfAssessmentAnalytics(ctx context.Context, p Params) interface{} {
	userBasicInfoID := p.Str("userBasicInfoId")
	partition := userSurveyPartition(userIDOf(userBasicInfoID), p.Str("surveyType"))
	lastSurvey, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, partition, store.Query{
		Selector: store.Selector{
			"docType":     "userSurvey",
			"surveyType":  p.Str("surveyType"),
			"isCompleted": true,
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	if len(lastSurvey.Docs) == 0 {
		return errResult("No user survey for the given surveyId and isCompleted params", 404)
	}
	answers, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, partition, store.Query{
		Selector: store.Selector{
			"docType":          "userSurveyAnswer",
			"userSurveyId":     lastSurvey.Docs[0].ID(),
			"isSelfAssessment": true,
			"createdAt":        store.Selector{"$gte": lastSurvey.Docs[0]["createdAt"]},
		},
	})
	if errRes != nil {
		return errRes
	}
	if len(answers.Docs) == 0 {
		return errResult("No self assessments in the given survey", 404)
	}
	sources := make([]assessmentSource, 0, len(answers.Docs))
	for _, doc := range answers.Docs {
		sources = append(sources, assessmentSource{
			SASID: stringOf(doc["surveyQuestionRefId"]),
			SAS:   stringOf(doc["surveyQuestionDescription"]),
			Value: intValue(doc["value"]),
		})
	}
	return map[string]interface{}{"result": e.analyzeAssessments(sources)}
}

// analyzeUserSASummary compares the user's summary against every active
// self-assessment statement. A topic only gets aggregated when all of its
// active statements have been rated; the rest are reported as incomplete.
func (e *Engine) analyzeUserSASummary(ctx context.Context, p Params) interface{} {
	userBasicInfoID := p.Str("userBasicInfoId")
	summary, errRes := e.getDoc(ctx, e.dbs.UserProfiles, saSummaryID(userIDOf(userBasicInfoID)))
	if errRes != nil {
		return errRes
	}
	assessments, _ := summary["userAssessments"].([]interface{})
	if len(assessments) == 0 {
		return errResult("No user assessments in the user assessment summary", 404)
	}
	activeSASs, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{
		Selector: store.Selector{
			"docType":  "selfAssessmentStatement",
			"isActive": true,
		},
		Fields: []string{"_id", "scopeRefId"},
	})
	if errRes != nil {
		return errRes
	}
	if len(activeSASs.Docs) == 0 {
		return errResult("No active self-assessment statements", 404)
	}
	rated := make(map[string]map[string]interface{})
	for _, a := range assessments {
		if m, ok := a.(map[string]interface{}); ok {
			rated[stringOf(m["SASId"])] = m
		}
	}
	topics := make([]*TopicAssessment, 0)
	index := make(map[string]*TopicAssessment)
	for _, doc := range activeSASs.Docs {
		sasID := doc.ID()
		topicConfigID, moduleRefID := deriveTopicRefs(sasID)
		topic, seen := index[topicConfigID]
		if !seen {
			completed := true
			topic = &TopicAssessment{
				TopicConfigID:           topicConfigID,
				IsAssessmentCompleted:   &completed,
				UnsortedSelfAssessments: []AssessmentEntry{},
			}
			index[topicConfigID] = topic
			topics = append(topics, topic)
		}
		userAssessment, ok := rated[sasID]
		if !ok {
			*topic.IsAssessmentCompleted = false
			continue
		}
		topic.UnsortedSelfAssessments = append(topic.UnsortedSelfAssessments, AssessmentEntry{
			ModuleRefID: moduleRefID,
			SASID:       stringOf(userAssessment["SASId"]),
			Value:       intValue(userAssessment["value"]),
			SAS:         stringOf(userAssessment["SAS"]),
		})
	}
	completedTopics := make([]*TopicAssessment, 0)
	incompleteTopics := make([]*TopicAssessment, 0)
	for _, topic := range topics {
		if *topic.IsAssessmentCompleted {
			completedTopics = append(completedTopics, topic)
		} else {
			incompleteTopics = append(incompleteTopics, topic)
		}
	}
	result := map[string]interface{}{
		"createdAt":                e.now(),
		"sortedTopicsArr":          nil,
		"incompleteAssessedTopics": incompleteTopics,
	}
	if len(completedTopics) == 0 {
		return map[string]interface{}{"result": result}
	}
	finalizeAnalytics(completedTopics)
	result["sortedTopicsArr"] = completedTopics
	return map[string]interface{}{"result": result}
}

func (e *Engine) getSelfAssessmentStatementsByTopic(ctx context.Context, p Params) interface{} {
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(p.Str("topicConfigId")), store.Query{
		Selector: store.Selector{
			"docType":  "selfAssessmentStatement",
			"isActive": true,
		},
		Fields: []string{"_id", "description"},
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getActiveSASByExerciseID(ctx context.Context, p Params) interface{} {
	exerciseID := p.Str("exerciseId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(exerciseID), store.Query{
		Selector: store.Selector{
			"docType":    "selfAssessmentStatement",
			"isActive":   true,
			"scope":      "exercise",
			"scopeRefId": exerciseID,
		},
		Fields: []string{"_id", "description"},
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

// createUserLikertSelfAssessment records a standalone five-point Likert
// rating of one statement and folds it into the summary.
func (e *Engine) createUserLikertSelfAssessment(ctx context.Context, p Params) interface{} {
	userBasicInfoID := p.Str("userBasicInfoId")
	createdAt := e.now()
	doc := store.Doc{
		"_id":             selfAssessmentID(userIDOf(userBasicInfoID), createdAt),
		"docType":         "userSelfAssessment",
		"userBasicInfoId": userBasicInfoID,
		"SASId":           p.Str("SASId"),
		"SAS":             p.Str("SAS"),
		"value":           p["value"],
		"valueType":       "number",
		"isLikertScale":   true,
		"likertPoints":    5,
		"createdAt":       createdAt,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return e.upsertSelfAssessmentSummary(ctx, userBasicInfoID, p.Str("SASId"), p.Str("SAS"), p["value"], res.ID)
}

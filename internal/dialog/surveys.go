package dialog

import (
	"context"
	"strconv"
	"strings"

	"chatlearn/internal/store"
)

// latestActiveSurvey returns the newest active survey of a partition and
// expands every singleSelect question into a ready-to-render option menu.
func (e *Engine) latestActiveSurvey(ctx context.Context, partitionKey string) interface{} {
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, partitionKey, store.Query{
		Selector: store.Selector{"isActive": true},
		Limit:    1,
	})
	if errRes != nil {
		return errRes
	}
	if len(res.Docs) > 0 {
		injectSingleSelectMenus(res.Docs[0])
	}
	return map[string]interface{}{"result": res}
}

// injectSingleSelectMenus mutates a survey document in place, attaching a
// customResponse to each singleSelect question built from its own options
// under its optionHeader title.
func injectSingleSelectMenus(survey store.Doc) {
	for _, section := range mapSlice(survey["sections"]) {
		for _, question := range mapSlice(section["questions"]) {
			if stringOf(question["questionType"]) != "singleSelect" {
				continue
			}
			question["customResponse"] = buildOptions(
				mapSlice(question["options"]),
				stringOf(question["optionHeader"]),
				"label", "value", "")
		}
	}
}

func (e *Engine) getLatestActiveSurvey(ctx context.Context, p Params) interface{} {
	return e.latestActiveSurvey(ctx, "chatlearn-"+p.Str("surveyType"))
}

func (e *Engine) getLatestActiveSurveyByOrg(ctx context.Context, p Params) interface{} {
	return e.latestActiveSurvey(ctx, p.Str("orgId")+"-"+p.Str("surveyType"))
}

func (e *Engine) createUserSurvey(ctx context.Context, p Params) interface{} {
	userID := userIDOf(p.Str("userBasicInfoId"))
	surveyType := p.Str("surveyType")
	createdAt := e.now()
	doc := store.Doc{
		"_id":             userSurveyID(userID, surveyType, createdAt),
		"docType":         "userSurvey",
		"userBasicInfoId": p.Str("userBasicInfoId"),
		"surveyId":        p.Str("surveyId"),
		"surveyName":      p.Str("surveyName"),
		"surveyType":      surveyType,
		"isCompleted":     false,
		"createdAt":       createdAt,
		"updatedAt":       nil,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getUserSurveyByDocID(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.UserProfiles, p.Str("docId"))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

// createUserSurveyAnswer records one answer, and for self-assessment
// answers additionally folds the rating into the user's durable
// self-assessment summary. The summary update's outcome is what the caller
// sees in that case.
func (e *Engine) createUserSurveyAnswer(ctx context.Context, p Params) interface{} {
	userSurveyID := p.Str("userSurveyId")
	partition := store.PartitionOf(userSurveyID)
	createdAt := e.now()
	doc := store.Doc{
		"_id":                       partition + ":" + strconv.FormatInt(createdAt, 10),
		"docType":                   "userSurveyAnswer",
		"userBasicInfoId":           p.Str("userBasicInfoId"),
		"userSurveyId":              userSurveyID,
		"surveyId":                  p.Str("surveyId"),
		"surveySectionRefId":        p["surveySectionId"],
		"surveySectionName":         p["surveySectionName"],
		"surveyQuestionRefId":       p["questionId"],
		"surveyQuestionType":        p["questionType"],
		"surveyQuestionDescription": p["questionDescription"],
		"expectedValueType":         p["expectedValueType"],
		"isSelfAssessment":          p["isSA"],
		"value":                     p["value"],
		"createdAt":                 createdAt,
		"updatedAt":                 nil,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	if !p.Truthy("isSA") {
		return map[string]interface{}{"result": res}
	}
	return e.upsertSelfAssessmentSummary(ctx,
		p.Str("userBasicInfoId"), p.Str("questionId"), p.Str("questionDescription"), p["value"], res.ID)
}

func (e *Engine) updateUserBasicInfoAndUserSurvey(ctx context.Context, p Params) interface{} {
	updatedAt := e.now()
	userSurvey := p.Map("userSurvey")
	userBasicInfo := p.Map("userBasicInfo")
	userSurvey["isCompleted"] = true
	userSurvey["updatedAt"] = updatedAt
	userBasicInfo["updatedAt"] = updatedAt
	if stringOf(userSurvey["surveyType"]) == "preUsageSurvey" {
		userBasicInfo["hasAnsweredPreUsageSurvey"] = true
	} else {
		userBasicInfo["hasAnsweredFinalSurvey"] = true
	}
	res, errRes := e.bulkPut(ctx, e.dbs.UserProfiles, []store.Doc{userSurvey, userBasicInfo})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getLastUserSurveyAnswer(ctx context.Context, p Params) interface{} {
	userSurveyID := p.Str("userSurveyId")
	if userSurveyID == "" {
		return errResult("userSurveyId is missing", 400)
	}
	parts := strings.Split(userSurveyID, ":")
	if len(parts) != 2 {
		return errResult("UserSurveyId is invalid", 400)
	}
	surveyCreatedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return errResult("UserSurveyId is invalid", 400)
	}
	res, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, parts[0], store.Query{
		Selector: store.Selector{
			"docType":      "userSurveyAnswer",
			"userSurveyId": userSurveyID,
			"createdAt":    store.Selector{"$gte": surveyCreatedAt},
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getLastUserSurvey(ctx context.Context, p Params) interface{} {
	userID := userIDOf(p.Str("userBasicInfoId"))
	res, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, userSurveyPartition(userID, p.Str("surveyType")), store.Query{
		Selector: store.Selector{
			"docType":         "userSurvey",
			"userBasicInfoId": p.Str("userBasicInfoId"),
			"surveyId":        p.Str("surveyId"),
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

package dialog

import (
	"context"

	"chatlearn/internal/store"
)

func (e *Engine) showAvailableCaseStudies(ctx context.Context, p Params) interface{} {
	res, errRes := e.findDocs(ctx, e.dbs.Topics, store.Query{
		Selector: store.Selector{"docType": "caseStudyConfig"},
		Fields:   []string{"_id", "name", "description"},
	})
	if errRes != nil {
		return errRes
	}
	response := map[string]interface{}{
		"docs":           []store.Doc{},
		"customResponse": nil,
	}
	if len(res.Docs) > 0 {
		response["docs"] = res.Docs
		menu := buildOptions(docsToMaps(res.Docs), "Please select:", "name", "_id", "")
		response["customResponse"] = appendOptions(menu, []LabelValue{
			{Label: "Do something else", Value: "show available services"},
		})
	}
	return response
}

func (e *Engine) getCaseStudySectionContentBySectionID(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.Topics, p.Str("sectionId"))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

// getOptionsForCaseStudySections lists the sibling sections of a case
// study, optionally excluding the section the user is in.
func (e *Engine) getOptionsForCaseStudySections(ctx context.Context, p Params) interface{} {
	sectionID := p.Str("sectionId")
	selector := store.Selector{"docType": "caseStudySection"}
	if p.Truthy("excludingCurrentSection") {
		selector["_id"] = store.Selector{"$ne": sectionID}
	}
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(sectionID), store.Query{
		Selector: selector,
		Fields:   []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	menu := buildOptions(docsToMaps(res.Docs), "Please select a case study section:", "name", "_id", "")
	return appendOptions(menu, []LabelValue{
		{Label: "Back to the list of case studies", Value: "Back to the list of case studies"},
	})
}

func (e *Engine) getExerciseOptionsForCaseStudySection(ctx context.Context, p Params) interface{} {
	sectionID := p.Str("sectionId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(sectionID), store.Query{
		Selector: store.Selector{
			"docType":  "exercise",
			"parentId": sectionID,
		},
		Fields: []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	menu := buildOptions(docsToMaps(res.Docs), "Please select an assignment:", "name", "_id", "")
	return appendOptions(menu, []LabelValue{
		{Label: "Select another case study section", Value: "list case study sections"},
	})
}

func (e *Engine) getCaseStudyAssignmentByDocID(ctx context.Context, p Params) interface{} {
	doc, errRes := e.getDoc(ctx, e.dbs.Topics, p.Str("docId"))
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": doc}
}

func (e *Engine) createUserCaseStudyAssignmentInfo(ctx context.Context, p Params) interface{} {
	userBasicInfoID := p.Str("userBasicInfoId")
	createdAt := e.now()
	doc := store.Doc{
		"_id":               caseStudyAssignmentInfoID(userIDOf(userBasicInfoID), createdAt),
		"docType":           "userCaseStudyAssignmentInfo",
		"userBasicInfoId":   userBasicInfoID,
		"userSessionInfoId": p.Str("userSessionInfoId"),
		"exerciseId":        p.Str("caseStudyAssignmentId"),
		"exerciseName":      p.Str("caseStudyAssignmentName"),
		"exerciseParentId":  p.Str("assignmentParentId"),
		"createdAt":         createdAt,
		"isCompleted":       false,
		"completedAt":       nil,
	}
	res, errRes := e.putDoc(ctx, e.dbs.UserProfiles, doc)
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getLatestDoCaseStudyAssignmentLog(ctx context.Context, p Params) interface{} {
	partition := sessionEventPartition(p.Str("userId"), p.Str("sessionId"))
	res, errRes := e.partitionFind(ctx, e.dbs.SessionEvents, partition, store.Query{
		Selector: store.Selector{
			"sessionEventTypeId":            "sessionEventType:doCaseStudyAssignment",
			"userCaseStudyAssignmentInfoId": p.Str("userCaseStudyAssignmentInfoId"),
		},
		Sort:  []store.SortField{{Field: "createdAt", Desc: true}},
		Limit: 1,
	})
	if errRes != nil {
		return errRes
	}
	return map[string]interface{}{"result": res}
}

func (e *Engine) getAssignmentOptionsByCaseStudy(ctx context.Context, p Params) interface{} {
	caseStudyID := p.Str("caseStudyId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(caseStudyID), store.Query{
		Selector: store.Selector{"docType": "exercise"},
		Fields:   []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	if len(res.Docs) == 0 {
		return errResult("There is no assignment for the case study", 404)
	}
	menu := buildOptions(docsToMaps(res.Docs), "Please select an assignment:", "name", "_id", "")
	return appendOptions(menu, []LabelValue{
		{Label: "Select another case study", Value: "find case study assignments by another case study"},
	})
}

// markCompletedAssignments appends " (completed)" to each option whose
// assignment the user has already finished.
func (e *Engine) markCompletedAssignments(ctx context.Context, menu *CustomOptions, userBasicInfoID string, exerciseIDs []string) *ErrResult {
	completed, errRes := e.partitionFind(ctx, e.dbs.UserProfiles, caseStudyAssignmentInfoPartition(userIDOf(userBasicInfoID)), store.Query{
		Selector: store.Selector{
			"docType":     "userCaseStudyAssignmentInfo",
			"exerciseId":  store.Selector{"$in": exerciseIDs},
			"isCompleted": true,
		},
		Fields: []string{"exerciseId"},
	})
	if errRes != nil {
		return errRes
	}
	if len(completed.Docs) == 0 {
		return nil
	}
	completedIDs := make(map[string]bool)
	for _, doc := range completed.Docs {
		completedIDs[stringOf(doc["exerciseId"])] = true
	}
	options := menu.OptionResponse[0].Options
	for i := range options {
		if completedIDs[options[i].Value.Input.Text] {
			options[i].Label += " (completed)"
		}
	}
	return nil
}

func (e *Engine) getAssignmentOptionsWithCompletedStatus(ctx context.Context, p Params) interface{} {
	caseStudyID := p.Str("caseStudyId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(caseStudyID), store.Query{
		Selector: store.Selector{"docType": "exercise"},
		Fields:   []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	if len(res.Docs) == 0 {
		return errResult("There is no assignment for the case study", 404)
	}
	menu := buildOptions(docsToMaps(res.Docs), "Please select an assignment:", "name", "_id", "")
	if errRes := e.markCompletedAssignments(ctx, menu, p.Str("userBasicInfoId"), docIDs(res.Docs)); errRes != nil {
		return errRes
	}
	return appendOptions(menu, []LabelValue{
		{Label: "Select another case study", Value: "find case study assignments by another case study"},
	})
}

func (e *Engine) getExerciseOptionsWithCompletionLabel(ctx context.Context, p Params) interface{} {
	sectionID := p.Str("sectionId")
	res, errRes := e.partitionFind(ctx, e.dbs.Topics, store.PartitionOf(sectionID), store.Query{
		Selector: store.Selector{
			"docType":  "exercise",
			"parentId": sectionID,
		},
		Fields: []string{"_id", "name"},
	})
	if errRes != nil {
		return errRes
	}
	if len(res.Docs) == 0 {
		return errResult("There is no assignment for the case study section", 404)
	}
	menu := buildOptions(docsToMaps(res.Docs), "Please select an assignment:", "name", "_id", "")
	if errRes := e.markCompletedAssignments(ctx, menu, p.Str("userBasicInfoId"), docIDs(res.Docs)); errRes != nil {
		return errRes
	}
	return appendOptions(menu, []LabelValue{
		{Label: "Select another case study section", Value: "list case study sections"},
	})
}

func docIDs(docs []store.Doc) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID())
	}
	return ids
}

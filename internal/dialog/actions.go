package dialog

import "context"

type actionSpec struct {
	required []string
	handler  func(*Engine, context.Context, Params) interface{}
}

// actions maps every webhook action to its required parameters and
// handler. Dispatch validates the required list before calling the
// handler, so handlers can assume those fields are present.
var actions = map[string]actionSpec{
	// Learning topics and materials.
	"getAllTopics": {nil, (*Engine).getAllTopics},
	"getLearningMaterialsByModuleRefId": {
		[]string{"moduleRefId"}, (*Engine).getLearningMaterialsByModuleRefID},
	"getLearningMaterialsByTopicConfigId": {
		[]string{"topicConfigId"}, (*Engine).getLearningMaterialsByTopicConfigID},
	"getExercisesByModuleRefId": {
		[]string{"moduleRefId"}, (*Engine).getExercisesByModuleRefID},
	"getExercisesByTopicConfigId": {
		[]string{"topicConfigId"}, (*Engine).getExercisesByTopicConfigID},
	"getLearningMaterialsAndExercisesByScopeAndScopeRefId": {
		[]string{"scope", "scopeRefId"}, (*Engine).getLearningMaterialsAndExercisesByScope},
	"getLearningMaterialsByPartitionKeyAndParentId": {
		[]string{"parentId"}, (*Engine).getLearningMaterialsByParentID},
	"getLearningMaterialsByPartitionKeyAndDocIds": {
		[]string{"learningMaterialIds", "partitionKey"}, (*Engine).getLearningMaterialsByDocIDs},
	"getLearningMaterialByDocId": {
		[]string{"docId"}, (*Engine).getLearningMaterialByDocID},
	"getExerciseById": {
		[]string{"exerciseId"}, (*Engine).getExerciseByID},

	// User profile and sessions.
	"getUserBasicInfo": {
		[]string{"userId"}, (*Engine).getUserBasicInfo},
	"createUserBasicInfo": {
		[]string{"userId", "username"}, (*Engine).createUserBasicInfo},
	"updateUserBasicInfo": {
		[]string{"userBasicInfo"}, (*Engine).updateUserBasicInfo},
	"getLastUserSessionInfo": {
		[]string{"userId", "sessionId"}, (*Engine).getLastUserSessionInfo},
	"createUserSessionInfo": {
		[]string{"userId", "sessionId", "sessionStartedAt"}, (*Engine).createUserSessionInfo},
	"createSessionEvent": {
		[]string{"userId", "sessionId", "sessionEventTypeId"}, (*Engine).createSessionEvent},

	// Exercise tracking.
	"createUserExerciseInfo": {
		[]string{"userBasicInfoId", "userSessionInfoId", "exerciseId", "exerciseName",
			"learningModuleRefId", "learningModuleName", "topicConfigId", "topicName", "createdAt"},
		(*Engine).createUserExerciseInfo},
	"updateUserExerciseInfo": {
		[]string{"userExerciseInfo"}, (*Engine).updateUserExerciseInfo},
	"setIsCompletedTrueToUserExerciseInfo": {
		[]string{"docId", "completedAt"}, (*Engine).setIsCompletedTrueToUserExerciseInfo},
	"getCategorizedUserExerciseInfosByUserSessionInfoId": {
		[]string{"userSessionInfoId"}, (*Engine).getCategorizedUserExerciseInfos},
	"getIncompleteExerciseByUserExerciseInfoId": {
		[]string{"userId", "lastSessionId", "userExerciseInfoId"}, (*Engine).getIncompleteExercise},
	"checkIfUserCompletedModuleExercises": {
		[]string{"userBasicInfoId", "topicConfigId", "moduleRefId", "moduleName"},
		(*Engine).checkIfUserCompletedModuleExercises},
	"getSummaryOfUserExercises": {
		[]string{"userBasicInfoId"}, (*Engine).getSummaryOfUserExercises},
	"createCustomOptionsForIncompleteTopics": {
		[]string{"userBasicInfoId"}, (*Engine).createCustomOptionsForIncompleteTopics},

	// Surveys.
	"getLatestActiveSurvey": {
		[]string{"surveyType"}, (*Engine).getLatestActiveSurvey},
	"getLatestActiveSurveyByOrgIdAndSurveyType": {
		[]string{"surveyType", "orgId"}, (*Engine).getLatestActiveSurveyByOrg},
	"createUserSurvey": {
		[]string{"userBasicInfoId", "surveyId", "surveyName", "surveyType"},
		(*Engine).createUserSurvey},
	"getUserSurveyByDocId": {
		[]string{"docId"}, (*Engine).getUserSurveyByDocID},
	"createUserSurveyAnswer": {
		[]string{"userBasicInfoId", "userSurveyId", "surveyId", "surveySectionId",
			"surveySectionName", "questionId", "questionType", "questionDescription",
			"expectedValueType", "isSA", "value"},
		(*Engine).createUserSurveyAnswer},
	"updateUserBasicInfoAndUserSurvey": {
		[]string{"userBasicInfo", "userSurvey"}, (*Engine).updateUserBasicInfoAndUserSurvey},
	"getLastUserSurveyAnswer": {
		[]string{"userSurveyId"}, (*Engine).getLastUserSurveyAnswer},
	"getLastUserSurvey": {
		[]string{"userBasicInfoId", "surveyId", "surveyType"}, (*Engine).getLastUserSurvey},

	// Self assessments.
	"getSelfAssessmentAnalyticsFromCompletedSurvey": {
		[]string{"surveyType", "userBasicInfoId"}, (*Engine).getSelfAssessmentAnalytics},
	"analyzeUserSASummary": {
		[]string{"userBasicInfoId"}, (*Engine).analyzeUserSASummary},
	"getSelfAssessmentStatementsByTopic": {
		[]string{"topicConfigId"}, (*Engine).getSelfAssessmentStatementsByTopic},
	"createUserLikertSelfAssessment": {
		[]string{"userBasicInfoId", "SASId", "SAS", "value"},
		(*Engine).createUserLikertSelfAssessment},
	"getActiveSASbyExerciseId": {
		[]string{"exerciseId"}, (*Engine).getActiveSASByExerciseID},

	// Option menus.
	"createOptionsForTopic": {
		[]string{"jsonObject"}, (*Engine).createOptionsForTopic},
	"createPersonalizedOptionsForTopic": {
		[]string{"jsonObject", "hasDonePreUsageSurvey", "topicName"},
		(*Engine).createPersonalizedOptionsForTopic},
	"createOptionsFromArray": {
		[]string{"keyValueArray", "optionTitle", "isTitleBold", "labelField",
			"valueField", "valuePrefix"},
		(*Engine).createOptionsFromArray},

	// Case studies.
	"showAvailableCaseStudies": {nil, (*Engine).showAvailableCaseStudies},
	"getCaseStudySectionContentBySectionId": {
		[]string{"sectionId"}, (*Engine).getCaseStudySectionContentBySectionID},
	"getOptionsForCaseStudySections": {
		[]string{"sectionId", "excludingCurrentSection"}, (*Engine).getOptionsForCaseStudySections},
	"getExerciseOptionsForCaseStudySection": {
		[]string{"sectionId"}, (*Engine).getExerciseOptionsForCaseStudySection},
	"getCaseStudyAssignmentByDocId": {
		[]string{"docId"}, (*Engine).getCaseStudyAssignmentByDocID},
	"createUserCaseStudyAssignmentInfo": {
		[]string{"userBasicInfoId", "userSessionInfoId", "caseStudyAssignmentId",
			"caseStudyAssignmentName", "assignmentParentId"},
		(*Engine).createUserCaseStudyAssignmentInfo},
	"getLatestDoCaseStudyAssignmentLog": {
		[]string{"userId", "sessionId", "userCaseStudyAssignmentInfoId"},
		(*Engine).getLatestDoCaseStudyAssignmentLog},
	"getAssignmentOptionsByCaseStudy": {
		[]string{"caseStudyId"}, (*Engine).getAssignmentOptionsByCaseStudy},
	"getAssignmentOptionsWithCompletedStatusByCaseStudy": {
		[]string{"caseStudyId", "userBasicInfoId"},
		(*Engine).getAssignmentOptionsWithCompletedStatus},
	"getExerciseOptionsWithCompletionLabelForCaseStudySection": {
		[]string{"sectionId", "userBasicInfoId"},
		(*Engine).getExerciseOptionsWithCompletionLabel},

	// Feedback and AI consultation.
	"giveAnonymousFeedback": {
		[]string{"category", "feedback"}, (*Engine).giveAnonymousFeedback},
	"consultOpenAI": {
		[]string{"userInput"}, (*Engine).consultOpenAI},
}

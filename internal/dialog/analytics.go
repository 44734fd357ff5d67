package dialog

import "sort"

// AssessmentEntry is one rated self-assessment statement inside a topic
// group.
type AssessmentEntry struct {
	ModuleRefID string `json:"moduleRefId"`
	SASID       string `json:"SASId"`
	Value       int    `json:"value"`
	SAS         string `json:"SAS"`
}

// TopicAssessment is the per-topic analytics block. The optional fields are
// only present on the code path that computes them: the completed-topic
// analysis sets IsAssessmentCompleted, and min/max/median appear once a
// group has been finalized.
type TopicAssessment struct {
	TopicConfigID           string            `json:"topicConfigId"`
	IsAssessmentCompleted   *bool             `json:"isAssessmentCompleted,omitempty"`
	UnsortedSelfAssessments []AssessmentEntry `json:"unsortedSelfAssessments"`
	SortedSelfAssessments   []AssessmentEntry `json:"sortedSelfAssessments,omitempty"`
	MinValue                *int              `json:"minValue,omitempty"`
	MaxValue                *int              `json:"maxValue,omitempty"`
	MedianValue             *float64          `json:"medianValue,omitempty"`
}

// assessmentSource is a raw (SASId, statement text, rating) record before
// grouping; both the live-survey and the durable-summary paths reduce their
// documents to this shape so the aggregation below stays identical.
type assessmentSource struct {
	SASID string
	SAS   string
	Value int
}

// groupAssessments buckets records by derived topic, in first-encounter
// order. Within a bucket a repeated SASId overwrites the earlier value
// (last-write-wins within the batch).
func groupAssessments(sources []assessmentSource) []*TopicAssessment {
	topics := make([]*TopicAssessment, 0)
	index := make(map[string]*TopicAssessment)
	for _, src := range sources {
		topicConfigID, moduleRefID := deriveTopicRefs(src.SASID)
		entry := AssessmentEntry{
			ModuleRefID: moduleRefID,
			SASID:       src.SASID,
			Value:       src.Value,
			SAS:         src.SAS,
		}
		topic, seen := index[topicConfigID]
		if !seen {
			topic = &TopicAssessment{
				TopicConfigID:           topicConfigID,
				UnsortedSelfAssessments: []AssessmentEntry{entry},
			}
			index[topicConfigID] = topic
			topics = append(topics, topic)
			continue
		}
		replaced := false
		for i := range topic.UnsortedSelfAssessments {
			if topic.UnsortedSelfAssessments[i].SASID == src.SASID {
				topic.UnsortedSelfAssessments[i].Value = src.Value
				replaced = true
				break
			}
		}
		if !replaced {
			topic.UnsortedSelfAssessments = append(topic.UnsortedSelfAssessments, entry)
		}
	}
	return topics
}

// finalizeAnalytics fills the value-sorted list and the order statistics of
// each topic group, then orders the groups by ascending median. Both sorts
// are stable: ties keep first-encounter order.
func finalizeAnalytics(topics []*TopicAssessment) {
	for _, topic := range topics {
		sorted := make([]AssessmentEntry, len(topic.UnsortedSelfAssessments))
		copy(sorted, topic.UnsortedSelfAssessments)
		sort.SliceStable(sorted, func(a, b int) bool {
			return sorted[a].Value < sorted[b].Value
		})
		topic.SortedSelfAssessments = sorted

		minValue := sorted[0].Value
		maxValue := sorted[len(sorted)-1].Value
		medianValue := medianOfSorted(sorted)
		topic.MinValue = &minValue
		topic.MaxValue = &maxValue
		topic.MedianValue = &medianValue
	}
	sort.SliceStable(topics, func(a, b int) bool {
		return *topics[a].MedianValue < *topics[b].MedianValue
	})
}

// medianOfSorted computes the median of an ascending-sorted group: the
// single middle value for odd lengths, the mean of the two middle values
// for even lengths.
func medianOfSorted(sorted []AssessmentEntry) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return float64(sorted[n/2-1].Value+sorted[n/2].Value) / 2
	}
	return float64(sorted[(n+1)/2-1].Value)
}

// AssessmentAnalytics is the aggregation result: topic blocks sorted by
// ascending median, stamped with the computation time.
type AssessmentAnalytics struct {
	CreatedAt       int64              `json:"createdAt"`
	SortedTopicsArr []*TopicAssessment `json:"sortedTopicsArr"`
}

// analyzeAssessments is the single aggregation routine shared by the
// live-survey and durable-summary paths.
func (e *Engine) analyzeAssessments(sources []assessmentSource) *AssessmentAnalytics {
	topics := groupAssessments(sources)
	finalizeAnalytics(topics)
	return &AssessmentAnalytics{
		CreatedAt:       e.now(),
		SortedTopicsArr: topics,
	}
}

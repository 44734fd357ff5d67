package dialog

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Document identifiers encode the partition key, the document kind, and a
// millisecond timestamp. Each id scheme has its own builder and parser here
// so no caller has to guess which separator applies.

func userBasicInfoID(userID string) string {
	return userID + ":userBasicInfo"
}

// userIDOf recovers the owning user from a userBasicInfo id (prefix before
// the first ':').
func userIDOf(userBasicInfoID string) string {
	return strings.SplitN(userBasicInfoID, ":", 2)[0]
}

func sessionPartition(userID string) string {
	return userID + "-session"
}

func sessionInfoID(userID string, startedAt int64) string {
	return sessionPartition(userID) + ":" + strconv.FormatInt(startedAt, 10)
}

// userIDOfSessionInfoID splits on the full "-session:" marker: user ids may
// themselves contain '-'.
func userIDOfSessionInfoID(sessionInfoID string) string {
	return strings.SplitN(sessionInfoID, "-session:", 2)[0]
}

func sessionEventPartition(userID, sessionID string) string {
	return userID + "-" + sessionID + "-sessionEvent"
}

func sessionEventID(userID, sessionID string, createdAt int64) string {
	return sessionEventPartition(userID, sessionID) + ":" + strconv.FormatInt(createdAt, 10)
}

func exerciseInfoPartition(userID string) string {
	return userID + "-exerciseInfo"
}

func exerciseInfoID(userID string, createdAt int64) string {
	return exerciseInfoPartition(userID) + ":" + strconv.FormatInt(createdAt, 10)
}

func caseStudyAssignmentInfoPartition(userID string) string {
	return userID + "-caseStudyAssignmentInfo"
}

func caseStudyAssignmentInfoID(userID string, createdAt int64) string {
	return caseStudyAssignmentInfoPartition(userID) + ":" + strconv.FormatInt(createdAt, 10)
}

func userSurveyPartition(userID, surveyType string) string {
	return userID + "-" + surveyType
}

func userSurveyID(userID, surveyType string, createdAt int64) string {
	return userSurveyPartition(userID, surveyType) + ":" + strconv.FormatInt(createdAt, 10)
}

func selfAssessmentID(userID string, createdAt int64) string {
	return userID + "-selfAssessment:" + strconv.FormatInt(createdAt, 10)
}

func saSummaryID(userID string) string {
	return userID + ":userSelfAssessmentSummary"
}

func feedbackID(category string, createdAt int64) string {
	return camelCase(category) + ":" + strconv.FormatInt(createdAt, 10)
}

// camelCase lowercases the first word and title-cases the rest:
// "Bug Report" -> "bugReport".
func camelCase(s string) string {
	words := strings.Fields(s)
	var b strings.Builder
	for i, w := range words {
		lower := strings.ToLower(w)
		if i == 0 {
			b.WriteString(lower)
			continue
		}
		b.WriteString(strings.ToUpper(lower[:1]))
		b.WriteString(lower[1:])
	}
	return b.String()
}

// deriveTopicRefs reinterprets a self-assessment statement id
// ("pm01:sas:03.2") as the owning topic config ("pm01:topicConfig") and
// learning module ("pm01:module-03").
func deriveTopicRefs(sasID string) (topicConfigID, moduleRefID string) {
	parts := strings.Split(sasID, ":")
	topicConfigID = parts[0] + ":topicConfig"
	seq := ""
	if len(parts) > 2 {
		seq = strings.SplitN(parts[2], ".", 2)[0]
	}
	moduleRefID = parts[0] + ":module-" + seq
	return topicConfigID, moduleRefID
}

// millisClock issues strictly increasing millisecond timestamps. Wall-clock
// collisions within one process bump the counter by 1ms instead of reusing
// the value, so timestamp-encoded ids stay unique per partition.
type millisClock struct {
	mu   sync.Mutex
	last int64
	wall func() int64
}

func newMillisClock(wall func() int64) *millisClock {
	if wall == nil {
		wall = func() int64 { return time.Now().UnixMilli() }
	}
	return &millisClock{wall: wall}
}

func (c *millisClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.wall()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return now
}

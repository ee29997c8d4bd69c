package domain

import (
	"context"
	"time"
)

// Result is the outcome of one assessment: the stored record, the alert it
// raised, and, for sensor submissions, the per-reading status.
type Result struct {
	Assessment  RiskAssessment  `json:"assessment"`
	Alert       *Alert          `json:"alert,omitempty"`
	Sensors     *SensorStatuses `json:"sensor_status,omitempty"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// SubmissionKind tells the stream consumer which input shape a message holds.
type SubmissionKind string

const (
	KindEnvironmental SubmissionKind = "environmental"
	KindSensors       SubmissionKind = "sensors"
)

// KindHeader is the message header carrying the SubmissionKind. Messages
// without it are environmental submissions.
const KindHeader = "kind"

// Submission is a raw inbound message from the stream.
type Submission struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message. Nil when the source has no offsets.
	Commit func(context.Context) error
}

// Kind reports the submission kind from its headers.
func (s Submission) Kind() SubmissionKind {
	if SubmissionKind(s.Headers[KindHeader]) == KindSensors {
		return KindSensors
	}
	return KindEnvironmental
}

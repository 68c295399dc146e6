// Package events publishes lifecycle facts for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	appaws "admissions-engine/internal/common/aws"
	"admissions-engine/internal/common/errors"
)

type Type string

const (
	RegistrationCreated      Type = "registration.created"
	RegistrationTransitioned Type = "registration.transitioned"
	InstitutionPublished     Type = "institution.published"
)

// Cause names what triggered a transition.
type Cause string

const (
	CauseApply     Cause = "apply"
	CauseStaff     Cause = "staff"
	CauseCascade   Cause = "cascade"
	CausePromotion Cause = "promotion"
	CauseCap       Cause = "cap"
	CauseChoice    Cause = "choice"
	CausePublish   Cause = "publish"
)

type Event struct {
	Type           Type      `json:"type"`
	RegistrationID string    `json:"registrationId,omitempty"`
	StudentID      string    `json:"studentId,omitempty"`
	From           string    `json:"from,omitempty"`
	To             string    `json:"to,omitempty"`
	Cause          Cause     `json:"cause,omitempty"`
	InstitutionID  string    `json:"institutionId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// SNSPublisher sends each event as a JSON message to one topic.
type SNSPublisher struct {
	api      appaws.SNSAPI
	topicARN string
}

func NewSNSPublisher(api appaws.SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{api: api, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.api.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(string(e.Type))},
		},
	})
	if err != nil {
		return errors.NewExternalServiceError("sns", err)
	}
	return nil
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

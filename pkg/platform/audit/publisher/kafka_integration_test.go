//go:build integration

package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "surety/pkg/platform/audit"
	"surety/pkg/platform/audit/publisher"
	"surety/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
	pub      *publisher.Kafka
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.redpanda = containers.NewRedpandaContainer(s.T())

	pub, err := publisher.NewKafka([]string{s.redpanda.Broker},
		publisher.WithTopicPrefix("surety.audit.test"))
	s.Require().NoError(err)
	s.pub = pub
	s.T().Cleanup(pub.Close)
}

func (s *KafkaPublisherSuite) consumeOne(topic string) audit.Event {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetches := client.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var event audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &event))
	return event
}

func (s *KafkaPublisherSuite) TestComplianceEventProducedSynchronously() {
	s.Require().NoError(s.redpanda.CreateTopic(context.Background(),
		"surety.audit.test.compliance"))

	sent := audit.Event{
		Category:    audit.CategoryCompliance,
		Timestamp:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Subject:     "policy-7",
		Action:      string(audit.EventAttestorSlashed),
		Actor:       "ops-admin",
		Value:       750_000,
		EvidenceRef: "evidence://case-4411",
	}
	s.Require().NoError(s.pub.Emit(context.Background(), sent))

	got := s.consumeOne("surety.audit.test.compliance")
	s.Equal(sent.Action, got.Action)
	s.Equal(sent.Subject, got.Subject)
	s.Equal(sent.Value, got.Value)
	s.Equal(sent.EvidenceRef, got.EvidenceRef)
}

func (s *KafkaPublisherSuite) TestSecurityEventRoutedByCategory() {
	s.Require().NoError(s.redpanda.CreateTopic(context.Background(),
		"surety.audit.test.security"))

	sent := audit.Event{
		Category: audit.CategorySecurity,
		Subject:  "policy-9",
		Action:   string(audit.EventSubmissionRejected),
		Actor:    "acme-actuarial",
		Reason:   "INVALID_SIGNATURE",
	}
	s.Require().NoError(s.pub.Emit(context.Background(), sent))

	got := s.consumeOne("surety.audit.test.security")
	s.Equal(sent.Action, got.Action)
	s.Equal(sent.Reason, got.Reason)
}

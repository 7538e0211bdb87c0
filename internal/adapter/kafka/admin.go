package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
)

type TopicSpec struct {
	Name              string
	Partitions        int32
	ReplicationFactor int16
	CleanupPolicy     string
	MinInsyncReplicas string
}

type topicCreator interface {
	CreateTopics(
		ctx context.Context,
		partitions int32,
		replicationFactor int16,
		configs map[string]*string,
		topics ...string,
	) (kadm.CreateTopicResponses, error)
}

// A TopicMaker creates topics and treats existing ones as created.
type TopicMaker struct {
	cl topicCreator
}

func NewTopicMaker(cfg ClientConfig) (TopicMaker, func(), error) {
	const op = "NewTopicMaker"

	cl, err := kadm.NewOptClient(cfg.opts()...)
	if err != nil {
		return TopicMaker{}, nil, opErr(err, op)
	}
	return TopicMaker{cl}, cl.Close, nil
}

func (m TopicMaker) MakeTopics(ctx context.Context, specs ...TopicSpec) error {
	const op = "TopicMaker.MakeTopics"
	log := slog.With("op", op)

	var errs []error
	for _, s := range specs {
		config := map[string]*string{
			"cleanup.policy":      &s.CleanupPolicy,
			"min.insync.replicas": &s.MinInsyncReplicas,
		}

		responses, err := m.cl.CreateTopics(
			ctx, s.Partitions, s.ReplicationFactor, config, s.Name,
		)
		if err != nil {
			return opErr(err, op)
		}

		for _, res := range responses.Sorted() {
			if res.Err != nil {
				if errors.Is(res.Err, kerr.TopicAlreadyExists) {
					log.Info("topic already exists", "topic", res.Topic)
					continue
				}
				errs = append(errs, opErr(res.Err, op, res.Topic))
				continue
			}
			log.Info("topic is created", "topic", res.Topic)
		}
	}

	return errors.Join(errs...)
}

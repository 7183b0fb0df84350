package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olyadmengistu/quicktalk/internal/post"
	"github.com/olyadmengistu/quicktalk/pkg/kafka"
)

// KafkaNotifier publishes post-change events to the posts topic. Delivery
// is best effort; the pipeline logs failures and moves on.
type KafkaNotifier struct {
	producer *kafka.Producer
}

func NewKafkaNotifier(p *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: p}
}

func (n *KafkaNotifier) PostChanged(ctx context.Context, id string) error {
	ev := post.ChangeEvent{ID: id, Op: post.OpCreated, At: time.Now()}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, []byte(id), b)
}

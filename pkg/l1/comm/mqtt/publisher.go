package mqtt

import (
	"context"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l0/terminal"
	"github.com/robotalks/gate.go/pkg/l1"
	"github.com/robotalks/gate.go/pkg/l1/msgs"
)

// DefaultBacklog is the number of transitions queued for publishing.
const DefaultBacklog = 16

// PublishTimeout bounds waiting on a single publish.
var PublishTimeout = 3 * time.Second

// Topic suffixes under <prefix><type>/<id>/.
const (
	TopicState = "state"
	TopicMeta  = "meta"
)

// Publisher publishes terminal transitions. Transitioned never blocks, when
// the backlog is full the transition is dropped.
type Publisher struct {
	Queue *Queue
	Ref   l1.TerminalRef
	Meta  msgs.TerminalMeta

	states  chan *msgs.TerminalState
	seq     uint64
	dropped uint32
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL string, ref l1.TerminalRef, meta msgs.TerminalMeta) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ref.Name()+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("gate:" + ref.Name())
	}
	p := NewPublisherWith(NewQueue(opts, topicPrefix), ref, meta)
	return p, nil
}

// NewPublisherWith creates a Publisher on an existing Queue.
func NewPublisherWith(q *Queue, ref l1.TerminalRef, meta msgs.TerminalMeta) *Publisher {
	meta.Type, meta.ID = ref.Type, ref.ID
	p := &Publisher{
		Queue:  q,
		Ref:    ref,
		Meta:   meta,
		states: make(chan *msgs.TerminalState, DefaultBacklog),
	}
	q.OnConnect = func(*Queue) { p.publishMeta(true) }
	return p
}

// Transitioned implements terminal.Observer.
func (p *Publisher) Transitioned(tr terminal.Transition) {
	seq := atomic.AddUint64(&p.seq, 1)
	select {
	case p.states <- msgs.NewTerminalState(p.Ref.ID, seq, tr):
	default:
		atomic.AddUint32(&p.dropped, 1)
		glog.V(1).Infof("status backlog full, dropped %s", tr.To)
	}
}

// Dropped returns the number of transitions not published.
func (p *Publisher) Dropped() uint32 {
	return atomic.LoadUint32(&p.dropped)
}

// AddToLoop implements LoopAdder.
func (p *Publisher) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(fx.NamedRun("status", p))
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	p.Queue.Connect()
	for {
		select {
		case <-ctx.Done():
			p.publishMeta(false)
			p.Queue.Close()
			return nil
		case state := <-p.states:
			p.publishState(state)
		}
	}
}

func (p *Publisher) publishState(state *msgs.TerminalState) {
	data, err := msgs.Encode(state)
	if err != nil {
		glog.Errorf("encode state: %v", err)
		return
	}
	p.wait(p.Queue.Pub(p.Ref.Name()+"/"+TopicState, data), TopicState)
}

func (p *Publisher) publishMeta(online bool) {
	var data []byte
	if online {
		encoded, err := msgs.Encode(&p.Meta)
		if err != nil {
			glog.Errorf("encode meta: %v", err)
			return
		}
		data = encoded
	}
	p.wait(p.Queue.PubWith(p.Ref.Name()+"/"+TopicMeta, data, 1, true), TopicMeta)
}

func (p *Publisher) wait(token paho.Token, topic string) {
	if !token.WaitTimeout(PublishTimeout) {
		glog.Warningf("publish %s timeout", topic)
		return
	}
	if err := token.Error(); err != nil {
		glog.Warningf("publish %s: %v", topic, err)
	}
}

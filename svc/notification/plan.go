package notification

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Target selects the recipients of a plan: a single user or every user
// matching a directory filter.
type Target struct {
	user    bson.ObjectID
	group   bson.M
	grouped bool
}

// ToUser targets a single user.
func ToUser(id bson.ObjectID) Target {
	return Target{user: id}
}

// ToGroup targets every user matching filter. Realtime events for a group
// go out as a broadcast.
func ToGroup(filter bson.M) Target {
	if filter == nil {
		filter = bson.M{}
	}
	return Target{group: filter, grouped: true}
}

func (t Target) Grouped() bool       { return t.grouped }
func (t Target) User() bson.ObjectID { return t.user }

// ChannelKind names a delivery channel in logs and errors.
type ChannelKind string

const (
	ChannelPush     ChannelKind = "push"
	ChannelRealtime ChannelKind = "realtime"
	ChannelRecord   ChannelKind = "record"
)

// Channel is one of Push, Realtime or Record.
type Channel interface {
	Kind() ChannelKind
}

// Push sends a device notification to the target's registered tokens.
type Push struct {
	Title string
	Body  string
	Data  map[string]string
}

// Realtime emits Event to the target's live sessions.
type Realtime struct {
	Event   string
	Payload any
}

// Record persists a Notification. It is stored for User when set and for the
// target user otherwise; a grouped target requires User.
type Record struct {
	User      bson.ObjectID
	Type      string
	Message   *bson.ObjectID
	Messenger *bson.ObjectID
	Title     string
	Body      string
}

func (Push) Kind() ChannelKind     { return ChannelPush }
func (Realtime) Kind() ChannelKind { return ChannelRealtime }
func (Record) Kind() ChannelKind   { return ChannelRecord }

// Plan is a validated set of channels for one target. Build it with NewPlan.
type Plan struct {
	target   Target
	push     *Push
	realtime *Realtime
	record   *Record
}

// NewPlan checks that every channel carries what it needs to be delivered.
// Each channel kind may appear once.
func NewPlan(target Target, channels ...Channel) (Plan, error) {
	p := Plan{target: target}
	if !target.grouped && target.user.IsZero() {
		return Plan{}, invalidPlan(ErrInvalidTarget)
	}
	if len(channels) == 0 {
		return Plan{}, invalidPlan(ErrNoChannels)
	}

	for _, ch := range channels {
		switch c := ch.(type) {
		case Push:
			if p.push != nil {
				return Plan{}, invalidPlan(fmt.Errorf("%w: %s", ErrDuplicateChannel, c.Kind()))
			}
			if strings.TrimSpace(c.Title) == "" {
				return Plan{}, invalidPlan(ErrPushTitle)
			}
			p.push = &c
		case Realtime:
			if p.realtime != nil {
				return Plan{}, invalidPlan(fmt.Errorf("%w: %s", ErrDuplicateChannel, c.Kind()))
			}
			if strings.TrimSpace(c.Event) == "" {
				return Plan{}, invalidPlan(ErrRealtimeEvent)
			}
			p.realtime = &c
		case Record:
			if p.record != nil {
				return Plan{}, invalidPlan(fmt.Errorf("%w: %s", ErrDuplicateChannel, c.Kind()))
			}
			if strings.TrimSpace(c.Type) == "" {
				return Plan{}, invalidPlan(ErrRecordType)
			}
			if target.grouped && c.User.IsZero() {
				return Plan{}, invalidPlan(ErrRecordOnGroup)
			}
			p.record = &c
		default:
			return Plan{}, invalidPlan(fmt.Errorf("unknown channel %T", ch))
		}
	}
	return p, nil
}

// MustPlan is NewPlan for plans built from constants.
func MustPlan(target Target, channels ...Channel) Plan {
	p, err := NewPlan(target, channels...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Plan) Target() Target { return p.target }

// Kinds lists the channels of the plan in delivery order.
func (p Plan) Kinds() []ChannelKind {
	var kinds []ChannelKind
	if p.push != nil {
		kinds = append(kinds, ChannelPush)
	}
	if p.realtime != nil {
		kinds = append(kinds, ChannelRealtime)
	}
	if p.record != nil {
		kinds = append(kinds, ChannelRecord)
	}
	return kinds
}

func invalidPlan(err error) error {
	return errors.Join(ErrInvalidPlan, err)
}

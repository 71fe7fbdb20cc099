package push

import (
	"context"
	"errors"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/dmitrymomot/socialkit/pkg/logger"
)

// maxBatch is the FCM limit on tokens per multicast request.
const maxBatch = 500

// Multicaster is the part of *messaging.Client used by FirebaseSender.
type Multicaster interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NewFirebaseClient builds an FCM client from credentials in cfg. When no
// credentials are given, Application Default Credentials are used.
func NewFirebaseClient(ctx context.Context, cfg Config) (*messaging.Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, errors.Join(ErrFirebaseInit, err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Join(ErrFirebaseInit, err)
	}
	return client, nil
}

// FirebaseSender sends multicasts through Firebase Cloud Messaging.
type FirebaseSender struct {
	client       Multicaster
	batchSize    int
	log          *slog.Logger
	invalidToken func(error) bool
}

// FirebaseOption configures a FirebaseSender.
type FirebaseOption func(*FirebaseSender)

func WithLogger(l *slog.Logger) FirebaseOption {
	return func(s *FirebaseSender) {
		if l != nil {
			s.log = l
		}
	}
}

// WithBatchSize caps tokens per request. Values outside 1..500 are ignored.
func WithBatchSize(n int) FirebaseOption {
	return func(s *FirebaseSender) {
		if n > 0 && n <= maxBatch {
			s.batchSize = n
		}
	}
}

// NewFirebaseSender sends through client in batches of at most 500 tokens.
func NewFirebaseSender(client Multicaster, opts ...FirebaseOption) *FirebaseSender {
	s := &FirebaseSender{
		client:    client,
		batchSize: maxBatch,
		log:       slog.Default(),
		invalidToken: func(err error) bool {
			return messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("push"))
	return s
}

// Multicast sends msg in batches. A failed batch aborts the remaining ones
// and its error is returned together with the counts gathered so far.
func (s *FirebaseSender) Multicast(ctx context.Context, msg Message) (*Result, error) {
	res := &Result{}
	if len(msg.Tokens) == 0 {
		s.log.DebugContext(ctx, "push skipped: no tokens", logger.Event(msg.Title))
		return res, nil
	}

	for start := 0; start < len(msg.Tokens); start += s.batchSize {
		batch := msg.Tokens[start:min(start+s.batchSize, len(msg.Tokens))]
		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens: batch,
			Data:   msg.Data,
			Notification: &messaging.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
		})
		if err != nil {
			return res, errors.Join(ErrMulticastFailed, err)
		}

		res.SuccessCount += resp.SuccessCount
		res.FailureCount += resp.FailureCount
		for i, r := range resp.Responses {
			if r == nil || r.Success || i >= len(batch) {
				continue
			}
			if s.invalidToken(r.Error) {
				res.InvalidTokens = append(res.InvalidTokens, batch[i])
			}
		}
	}

	s.log.DebugContext(ctx, "push sent",
		logger.Count("tokens", len(msg.Tokens)),
		logger.Count("success", res.SuccessCount),
		logger.Count("failure", res.FailureCount),
	)
	return res, nil
}

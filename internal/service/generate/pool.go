package generate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/model/chat"
	"github.com/morningistar/study-buddy/internal/service/ai"
)

// completionTimeout bounds a single provider call. There is no retry; a
// timeout is terminal for that generation attempt.
const completionTimeout = 60 * time.Second

// ErrQueueFull is returned by Schedule when the job buffer is saturated.
var ErrQueueFull = errors.New("generation queue is full")

// Job asks for one assistant reply in a conversation. The worker trusts the
// conversation ID; it was validated by the SendMessage call that enqueued it.
type Job struct {
	ConversationID string
}

// Conversations is the slice of the chat service the workers need: the
// unauthenticated history read and the assistant append.
type Conversations interface {
	Transcript(ctx context.Context, conversationID string) ([]chat.Message, error)
	AppendAssistantReply(ctx context.Context, conversationID, content string) (chat.Message, error)
}

// Completer produces assistant reply text from a conversation history.
type Completer interface {
	Complete(ctx context.Context, history []chat.Message) (string, error)
}

// Pool runs reply generation on a fixed set of workers fed by a buffered
// channel. Jobs for different conversations run in any order; two jobs for
// the same conversation may run concurrently, in which case both replies
// persist and last-write-wins on the conversation timestamp.
type Pool struct {
	chats     Conversations
	completer Completer
	logger    *zap.Logger

	workers int
	jobs    chan Job
	wg      sync.WaitGroup
}

// NewPool sizes the pool and its job buffer.
func NewPool(chats Conversations, completer Completer, workers, queueSize int, logger *zap.Logger) *Pool {
	return &Pool{
		chats:     chats,
		completer: completer,
		logger:    logger,
		workers:   workers,
		jobs:      make(chan Job, queueSize),
	}
}

// Start launches the workers. They exit when ctx is cancelled; buffered jobs
// not yet picked up are dropped, which is acceptable for fire-and-forget
// generation.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-p.jobs:
					p.process(ctx, job)
				}
			}
		}()
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Schedule enqueues a job without blocking the caller's request.
func (p *Pool) Schedule(conversationID string) error {
	select {
	case p.jobs <- Job{ConversationID: conversationID}:
		return nil
	default:
		return ErrQueueFull
	}
}

// process always terminates by appending exactly one assistant message:
// either the provider's reply or an apology chosen from the failure text.
func (p *Pool) process(ctx context.Context, job Job) {
	history, err := p.chats.Transcript(ctx, job.ConversationID)
	if err != nil {
		p.logger.Error("failed to load transcript for generation",
			zap.String("conversationID", job.ConversationID),
			zap.Error(err))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	reply, err := p.completer.Complete(callCtx, history)
	cancel()
	if err != nil {
		p.logger.Error("completion failed",
			zap.String("conversationID", job.ConversationID),
			zap.Error(err))
		reply = ai.FallbackMessage(err)
	}

	if _, err := p.chats.AppendAssistantReply(ctx, job.ConversationID, reply); err != nil {
		p.logger.Error("failed to persist assistant reply",
			zap.String("conversationID", job.ConversationID),
			zap.Error(err))
	}
}

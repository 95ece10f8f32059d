// Package fetch drives the export pipeline: it walks the conversation index
// page by page, fans each page out to a bounded pool of message fetches, and
// appends qualifying conversations to the transcript file until a target count
// is reached or the index runs out.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/csheth/convoscout/internal/botpress"
	"github.com/csheth/convoscout/internal/transcript"
)

// DefaultConcurrency is the number of message fetches in flight at once when
// Options does not say otherwise.
const DefaultConcurrency = 10

// DefaultPageSize is how many conversations each index page requests.
const DefaultPageSize = 100

const defaultRateLimitWait = 60 * time.Second

// Options tune a fetch run. Zero values fall back to the defaults above; a
// non-positive concurrency is coerced with a logged warning rather than
// treated as fatal.
type Options struct {
	Concurrency   int
	PageSize      int
	RateLimitWait time.Duration
}

// Summary reports how a run ended.
type Summary struct {
	Saved     int  // conversations written to the transcript file
	Processed int  // conversation ids seen in the index
	Pages     int  // index pages fetched
	Exhausted bool // the index ran out before the target was reached
}

// Orchestrator coordinates the lister loop and the per-batch worker pool. The
// transcript writer is only ever touched from Run's goroutine; workers hand
// their results back over a channel.
type Orchestrator struct {
	client        *botpress.Client
	writer        *transcript.Writer
	logger        *zap.Logger
	concurrency   int
	pageSize      int
	rateLimitWait time.Duration
}

// New builds an orchestrator around a client and an open transcript writer.
func New(client *botpress.Client, writer *transcript.Writer, logger *zap.Logger, opts Options) *Orchestrator {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		if opts.Concurrency != 0 {
			logger.Warn("concurrency must be positive, using default",
				zap.Int("requested", opts.Concurrency),
				zap.Int("default", DefaultConcurrency))
		}
		concurrency = DefaultConcurrency
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	wait := opts.RateLimitWait
	if wait <= 0 {
		wait = defaultRateLimitWait
	}
	return &Orchestrator{
		client:        client,
		writer:        writer,
		logger:        logger,
		concurrency:   concurrency,
		pageSize:      pageSize,
		rateLimitWait: wait,
	}
}

// Run fetches until target conversations have been saved or the index is
// exhausted. List-page rate limits are retried on the same page after a fixed
// wait; any other list failure ends the run with whatever was already saved.
// Only output I/O errors (and context cancellation) are returned as errors.
func (o *Orchestrator) Run(ctx context.Context, target int) (Summary, error) {
	summary := Summary{}
	nextToken := ""
	page := 1

	for summary.Saved < target {
		listPage, err := o.client.ListConversations(ctx, o.pageSize, nextToken)
		if err != nil {
			var statusErr *botpress.StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
				o.logger.Warn("rate limited on conversation index, retrying same page",
					zap.Int("page", page),
					zap.Duration("wait", o.rateLimitWait))
				select {
				case <-time.After(o.rateLimitWait):
				case <-ctx.Done():
					return summary, ctx.Err()
				}
				continue
			}
			o.logger.Error("listing conversations failed, stopping",
				zap.Int("page", page),
				zap.Error(err))
			summary.Exhausted = true
			return summary, nil
		}

		if len(listPage.Conversations) == 0 {
			o.logger.Info("no more conversations available", zap.Int("page", page))
			summary.Exhausted = true
			return summary, nil
		}

		summary.Pages++
		summary.Processed += len(listPage.Conversations)
		o.logger.Info("fetched conversation page",
			zap.Int("page", page),
			zap.Int("conversations", len(listPage.Conversations)),
			zap.Int("processed_total", summary.Processed),
			zap.Int("saved", summary.Saved))

		if err := o.processBatch(ctx, listPage.Conversations, target, &summary); err != nil {
			return summary, err
		}
		if summary.Saved >= target {
			return summary, nil
		}
		if listPage.NextToken == "" {
			o.logger.Info("no more pages available", zap.Int("page", page))
			summary.Exhausted = true
			return summary, nil
		}
		nextToken = listPage.NextToken
		page++
	}
	return summary, nil
}

// processBatch fans the batch out to the worker pool and consumes results in
// completion order, so acceptance and the early-stop check happen as soon as
// each fetch finishes. Hitting the target cancels the batch context; fetches
// already in flight finish (or abort on the cancelled context) and their
// results are drained and discarded.
func (o *Orchestrator) processBatch(ctx context.Context, refs []botpress.ConversationRef, target int, summary *Summary) error {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan botpress.ConversationRef, len(refs))
	results := make(chan botpress.FetchResult, len(refs))

	workers := o.concurrency
	if len(refs) < workers {
		workers = len(refs)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				if batchCtx.Err() != nil {
					results <- botpress.FetchResult{ConversationID: ref.ID, Err: batchCtx.Err().Error()}
					continue
				}
				results <- o.client.FetchMessages(batchCtx, ref)
			}
		}()
	}
	for _, ref := range refs {
		jobs <- ref
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	var writeErr error
	for result := range results {
		if writeErr != nil || summary.Saved >= target {
			continue
		}
		if result.Err != "" {
			o.logger.Warn("skipping conversation",
				zap.String("conversation_id", result.ConversationID),
				zap.String("error", result.Err))
			continue
		}
		if !result.HasIncoming {
			continue
		}
		conv, err := transcript.New(result.ConversationID, result.CreatedAt, result.UpdatedAt, result.Messages)
		if err != nil {
			o.logger.Warn("skipping conversation with unparseable timestamps",
				zap.String("conversation_id", result.ConversationID),
				zap.Error(err))
			continue
		}
		if err := o.writer.Append(conv); err != nil {
			writeErr = fmt.Errorf("writing transcript: %w", err)
			cancel()
			continue
		}
		summary.Saved++
		o.logger.Info("saved conversation",
			zap.String("conversation_id", result.ConversationID),
			zap.Int("saved", summary.Saved),
			zap.Int("target", target))
		if summary.Saved >= target {
			o.logger.Info("target reached, cancelling remaining fetches in batch",
				zap.Int("target", target))
			cancel()
		}
	}
	return writeErr
}

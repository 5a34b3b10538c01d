package lms

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mokshajmera002/aos-lms-system/internal/lmspb"
)

// LLMClient is the external LLM adapter a leader calls to resolve a
// PostQuery(target=llm). internal/llmpb provides the grpc-backed
// implementation; tests use a fake.
type LLMClient interface {
	Ask(ctx context.Context, content string) (string, error)
}

type pendingQuery struct {
	queryID int64
	content string
}

// llmDispatcher is the per-leader background worker spec.md §4.3
// requires: PostQuery(target=llm) is applied deterministically on every
// replica with a placeholder response, and only the current leader
// drains the backlog, calls out to the external LLM service, and feeds
// the real answer back in as a further logged UpdateLLMResponse
// command. Followers never call out: onPostQueryApplied is a no-op
// unless configure has activated this dispatcher.
type llmDispatcher struct {
	m *Machine

	mu      sync.Mutex
	client  LLMClient
	submit  func(ctx context.Context, envelope []byte) error
	stopCh  chan struct{}
	running bool

	queue chan pendingQuery
	wg    sync.WaitGroup
}

func newLLMDispatcher(m *Machine) *llmDispatcher {
	return &llmDispatcher{m: m, queue: make(chan pendingQuery, 256)}
}

// configure activates the dispatcher. internal/server calls this right
// after this node wins an election, and stop when it steps down or
// loses one.
func (d *llmDispatcher) configure(client LLMClient, submit func(ctx context.Context, envelope []byte) error) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.client = client
	d.submit = submit
	d.stopCh = make(chan struct{})
	d.running = true
	d.mu.Unlock()

	d.wg.Add(1)
	go d.run()
	d.recoverPending()
}

func (d *llmDispatcher) stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stopCh)
	d.mu.Unlock()
	d.wg.Wait()
}

// onPostQueryApplied is called by Machine.Apply right after a PostQuery
// command commits on this node. env.Request/resp are the same bytes
// handlePostQuery already decoded and produced.
func (d *llmDispatcher) onPostQueryApplied(env *lmspb.CommandEnvelope, resp []byte) {
	var req lmspb.PostQueryRequest
	if err := lmspb.UnmarshalRequest(env.Request, &req); err != nil || req.Target != lmspb.TargetLLM {
		return
	}
	var out lmspb.PostQueryResponse
	if err := lmspb.UnmarshalRequest(resp, &out); err != nil {
		return
	}
	d.enqueue(out.QueryID, req.Content)
}

func (d *llmDispatcher) enqueue(queryID int64, content string) {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}
	select {
	case d.queue <- pendingQuery{queryID: queryID, content: content}:
	default:
		d.m.logger.Warn("llm dispatch queue full, dropping query", zap.Int64("query_id", queryID))
	}
}

// recoverPending re-enqueues any query still carrying the placeholder
// response, so a newly elected leader resumes work a previous leader
// left unfinished when it stepped down or crashed.
func (d *llmDispatcher) recoverPending() {
	rows, err := d.m.db.conn.Query(`SELECT id, content FROM queries WHERE target = ? AND llm_response = ?`,
		lmspb.TargetLLM, lmspb.LLMPendingResponse)
	if err != nil {
		d.m.logger.Warn("llm recover pending query", zap.Error(err))
		return
	}
	defer rows.Close()

	var items []pendingQuery
	for rows.Next() {
		var q pendingQuery
		if err := rows.Scan(&q.queryID, &q.content); err != nil {
			d.m.logger.Warn("llm recover pending scan", zap.Error(err))
			continue
		}
		items = append(items, q)
	}
	for _, q := range items {
		d.enqueue(q.queryID, q.content)
	}
}

func (d *llmDispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case <-d.stopCh:
			return
		case q := <-d.queue:
			d.process(q)
		}
	}
}

func (d *llmDispatcher) process(q pendingQuery) {
	d.mu.Lock()
	client, submit := d.client, d.submit
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text, err := client.Ask(ctx, q.content)
	if err != nil {
		d.m.logger.Warn("llm ask failed, leaving query pending", zap.Int64("query_id", q.queryID), zap.Error(err))
		return
	}

	body, err := lmspb.MarshalRequest(&lmspb.UpdateLLMResponseRequest{QueryID: q.queryID, Text: text})
	if err != nil {
		d.m.logger.Error("marshal update llm response", zap.Error(err))
		return
	}
	env := &lmspb.CommandEnvelope{
		Method:    lmspb.MethodUpdateLLMResponse,
		Request:   body,
		Timestamp: time.Now().Unix(), // set once here, by whichever node is currently leader, same as the gateway's Dispatch stamps client commands
		RequestID: uuid.NewString(),
	}
	data, err := env.Marshal()
	if err != nil {
		d.m.logger.Error("marshal llm update envelope", zap.Error(err))
		return
	}
	if err := submit(ctx, data); err != nil {
		d.m.logger.Warn("submit update llm response failed", zap.Int64("query_id", q.queryID), zap.Error(err))
	}
}

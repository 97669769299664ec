package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmallory42/semchunk/internal/chunker"
	"github.com/dmallory42/semchunk/internal/config"
	"github.com/dmallory42/semchunk/internal/doctree"
	"github.com/dmallory42/semchunk/internal/index"
	"github.com/dmallory42/semchunk/internal/parser"
)

// Worker processes a single chunking job.
type Worker struct {
	orch    *Orchestrator
	idx     *index.Client
	log     *slog.Logger
	builder *chunker.Builder
	cfg     config.Config
}

func NewWorker(orch *Orchestrator, idx *index.Client, log *slog.Logger, builder *chunker.Builder, cfg config.Config) *Worker {
	return &Worker{
		orch:    orch,
		idx:     idx,
		log:     log,
		builder: builder,
		cfg:     cfg,
	}
}

// Process runs the full pipeline for a job: parse, chunk, deliver.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	if pdfParser, ok := p.(*parser.PDFParser); ok {
		pdfParser.FallbackPdftotext = w.cfg.PDFFallbackPdftotext
	}

	root, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}

	// Dedup on the parsed text, not the raw bytes, so format-level noise
	// (metadata, timestamps) doesn't defeat it.
	job.ContentHash = ContentHashHex([]byte(flattenTreeText(root)))
	if !job.Force {
		if existingDocID, dup := w.orch.markSeen(job.ContentHash, job.DocID); dup {
			log.Info("duplicate document, skipping", "existing_doc_id", existingDocID)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	start := time.Now()
	chunks, err := w.builder.Build(root, job.MaxTokens)
	w.orch.Stats().Record(time.Since(start).Milliseconds())
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	overflows := 0
	for _, c := range chunks {
		if c.Overflow {
			overflows++
		}
	}
	job.SetTotalChunks(len(chunks), overflows)
	job.SetChunks(chunks)
	log.Info("chunked document", "chunks", len(chunks), "overflows", overflows, "max_tokens", job.MaxTokens)

	if len(chunks) == 0 {
		log.Warn("no chunks produced")
		job.AddError("no text content")
		job.SetStatus(StatusFailed, "chunking")
		return
	}

	if w.idx == nil {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Phase 3: Deliver to the downstream index with bounded concurrency.
	job.SetStatus(StatusDelivering, "delivering")
	if err := w.putDocument(ctx, job, len(chunks)); err != nil {
		log.Error("document registration failed", "error", err)
		job.AddError(fmt.Sprintf("register: %s", err))
		job.SetStatus(StatusFailed, "delivering")
		return
	}

	batches := batchChunks(chunks, w.cfg.DeliverBatchSize)
	type batchResult struct {
		n   int
		err error
		idx int
	}
	results := make(chan batchResult, len(batches))
	sem := make(chan struct{}, w.cfg.MaxConcurrentDeliver)

	for i, batch := range batches {
		sem <- struct{}{}
		go func(i int, batch []index.ChunkRecord) {
			defer func() { <-sem }()
			var lastErr error
			for attempt := 0; attempt < MaxRetries; attempt++ {
				lastErr = w.idx.PutChunks(ctx, job.DocID, batch)
				if lastErr == nil || !IsRetryable(lastErr) {
					break
				}
				log.Warn("retryable delivery error", "batch", i, "attempt", attempt, "error", lastErr)
				select {
				case <-time.After(Backoff(attempt)):
				case <-ctx.Done():
					results <- batchResult{err: ctx.Err(), idx: i}
					return
				}
			}
			results <- batchResult{n: len(batch), err: lastErr, idx: i}
		}(i, batch)
	}

	delivered := 0
	hadErrors := false
	for range batches {
		r := <-results
		if r.err != nil {
			log.Error("delivery failed", "batch", r.idx, "error", r.err)
			job.AddError(fmt.Sprintf("batch %d: %s", r.idx, r.err))
			hadErrors = true
			continue
		}
		delivered += r.n
		job.AddDelivered(r.n)
	}
	log.Info("delivery complete", "delivered", delivered, "total", len(chunks))

	switch {
	case hadErrors && delivered > 0:
		job.SetStatus(StatusPartial, "done")
	case hadErrors:
		job.SetStatus(StatusFailed, "delivering")
	default:
		job.SetStatus(StatusCompleted, "done")
	}
}

func (w *Worker) putDocument(ctx context.Context, job *Job, chunkCount int) error {
	title := job.Title
	if title == "" {
		title = parser.TitleFromFilename(job.Filename)
	}
	return w.idx.PutDocument(ctx, job.DocID, index.DocumentRequest{
		Title:       title,
		Filename:    job.Filename,
		ContentHash: job.ContentHash,
		ChunkCount:  chunkCount,
		MaxTokens:   job.MaxTokens,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	})
}

// batchChunks converts chunks to index records in delivery batches.
func batchChunks(chunks []doctree.Chunk, batchSize int) [][]index.ChunkRecord {
	if batchSize <= 0 {
		batchSize = 50
	}
	var batches [][]index.ChunkRecord
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := make([]index.ChunkRecord, 0, end-start)
		for _, c := range chunks[start:end] {
			batch = append(batch, index.ChunkRecord{
				ID:          generateULID(),
				Index:       c.Index,
				Text:        c.Text,
				TokenLength: c.TokenLength,
				HeaderPath:  c.HeaderPath,
				Overflow:    c.Overflow,
			})
		}
		batches = append(batches, batch)
	}
	return batches
}

// flattenTreeText extracts all text from a tree into a single string for
// content hashing, in document order.
func flattenTreeText(root *doctree.Node) string {
	var sb strings.Builder
	var walk func(n *doctree.Node)
	walk = func(n *doctree.Node) {
		for _, child := range n.Children {
			if child.Text != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(child.Text)
			}
			walk(child)
		}
	}
	walk(root)
	return sb.String()
}

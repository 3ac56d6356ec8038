package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewConsumer_DefaultsZeroConfig(t *testing.T) {
	cfg := ConsumerConfig{}

	// Verify that applying defaults would set proper values
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}

	if cfg.Workers != 3 {
		t.Errorf("Default Workers = %d; want 3", cfg.Workers)
	}
	if cfg.Prefetch != 1 {
		t.Errorf("Default Prefetch = %d; want 1", cfg.Prefetch)
	}
}

func TestResultConsumer_SubscribeUnsubscribe(t *testing.T) {
	// Create a ResultConsumer with a nil connection
	// We're only testing the handler map management
	rc := &ResultConsumer{
		handlers: make(map[string]ResultHandler),
	}

	jobID := uuid.New().String()

	rc.Subscribe(jobID, func(result *SynthesisResult) {})

	rc.handlersMu.RLock()
	_, exists := rc.handlers[jobID]
	rc.handlersMu.RUnlock()

	if !exists {
		t.Error("Handler should be registered after Subscribe")
	}

	rc.Unsubscribe(jobID)

	rc.handlersMu.RLock()
	_, exists = rc.handlers[jobID]
	rc.handlersMu.RUnlock()

	if exists {
		t.Error("Handler should be removed after Unsubscribe")
	}
}

func TestResultConsumer_Subscribe_ConcurrentSafe(t *testing.T) {
	rc := &ResultConsumer{
		handlers: make(map[string]ResultHandler),
	}

	var wg sync.WaitGroup
	numGoroutines := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jobID := uuid.New().String()

			rc.Subscribe(jobID, func(result *SynthesisResult) {})
			time.Sleep(time.Microsecond)
			rc.Unsubscribe(jobID)
		}()
	}

	wg.Wait()

	rc.handlersMu.RLock()
	count := len(rc.handlers)
	rc.handlersMu.RUnlock()

	if count != 0 {
		t.Errorf("All handlers should be unsubscribed, got %d remaining", count)
	}
}

func TestResultConsumer_Subscribe_OverwritesPrevious(t *testing.T) {
	rc := &ResultConsumer{
		handlers: make(map[string]ResultHandler),
	}

	jobID := uuid.New().String()
	called1 := false
	called2 := false

	rc.Subscribe(jobID, func(result *SynthesisResult) {
		called1 = true
	})
	rc.Subscribe(jobID, func(result *SynthesisResult) {
		called2 = true
	})

	rc.handlersMu.RLock()
	handler, ok := rc.handlers[jobID]
	rc.handlersMu.RUnlock()

	if !ok {
		t.Fatal("Handler should exist")
	}

	handler(&SynthesisResult{})

	if called1 {
		t.Error("First handler should NOT have been called (was overwritten)")
	}
	if !called2 {
		t.Error("Second handler should have been called")
	}
}

func TestResultConsumer_Unsubscribe_NonExistent(t *testing.T) {
	rc := &ResultConsumer{
		handlers: make(map[string]ResultHandler),
	}

	// Unsubscribing a non-existent handler should not panic
	rc.Unsubscribe("non-existent-job-id")
}

func TestResultConsumer_Stop_NilCancelFunc(t *testing.T) {
	rc := &ResultConsumer{
		handlers: make(map[string]ResultHandler),
	}

	// Stop with nil cancelFunc should not panic
	rc.Stop()
}

func TestConsumer_Stop_NilCancelFunc(t *testing.T) {
	c := &Consumer{}

	// Stop with nil cancelFunc should not panic
	c.Stop()
}

func TestJobHandler_Type(t *testing.T) {
	var handler JobHandler = func(ctx context.Context, job *SynthesisJob) (*SynthesisResult, error) {
		return &SynthesisResult{
			JobID:       job.ID,
			DocumentID:  job.DocumentID,
			Status:      "completed",
			CompletedAt: time.Now(),
		}, nil
	}

	job := &SynthesisJob{
		ID:         uuid.New(),
		DocumentID: "doc-1",
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		t.Errorf("Handler returned unexpected error: %v", err)
	}
	if result.JobID != job.ID {
		t.Errorf("JobID = %v; want %v", result.JobID, job.ID)
	}
	if result.DocumentID != "doc-1" {
		t.Errorf("DocumentID = %q; want doc-1", result.DocumentID)
	}
}

func TestConsumerWorkerDefaultTimeout(t *testing.T) {
	// Default timeout logic used in processMessage
	job := SynthesisJob{Timeout: 0}

	timeout := time.Duration(job.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	if timeout != 120*time.Second {
		t.Errorf("Default timeout = %v; want 120s", timeout)
	}
}

func TestConsumerWorkerCustomTimeout(t *testing.T) {
	job := SynthesisJob{Timeout: 60}

	timeout := time.Duration(job.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	if timeout != 60*time.Second {
		t.Errorf("Custom timeout = %v; want 60s", timeout)
	}
}

package transcoder_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"woffsmith/internal/config"
	"woffsmith/internal/container"
	"woffsmith/internal/logging"
	"woffsmith/internal/transcoder"
)

func TestSubmitEncodesFont(t *testing.T) {
	pool := transcoder.NewPool(1, nil, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	resp, err := pool.Submit(context.Background(), transcoder.Request{
		Source:   goregular.TTF,
		Format:   container.FormatWOFF,
		FileName: "Go-Regular.ttf",
	})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !resp.OK() || resp.Err() != nil {
		t.Fatalf("expected success, got %+v", resp)
	}
	if resp.ID == "" {
		t.Fatal("expected generated request id")
	}
	if resp.FileName != "Go-Regular.woff" || resp.Format != container.FormatWOFF {
		t.Fatalf("unexpected response metadata: %q %q", resp.FileName, resp.Format)
	}
	if _, err := container.ParseHeader(resp.Container); err != nil {
		t.Fatalf("container header invalid: %v", err)
	}
}

func TestSubmitReportsConversionError(t *testing.T) {
	pool := transcoder.NewPool(1, nil, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	resp, err := pool.Submit(context.Background(), transcoder.Request{
		ID:       "req-1",
		Source:   []byte("not a font"),
		Format:   container.FormatWOFF2,
		FileName: "broken.ttf",
	})
	if err != nil {
		t.Fatalf("conversion failures must not be transport errors: %v", err)
	}
	if resp.Kind != transcoder.KindError || resp.ID != "req-1" || resp.Message == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	var convErr *transcoder.ConversionError
	if !errors.As(resp.Err(), &convErr) {
		t.Fatalf("expected ConversionError, got %T", resp.Err())
	}
	if !errors.Is(resp.Err(), container.ErrMalformedSource) {
		t.Fatalf("expected malformed source cause, got %v", resp.Err())
	}
}

func TestSubmitRecoversEncoderPanic(t *testing.T) {
	calls := 0
	enc := transcoder.EncoderFunc(func(source []byte, format container.Format) ([]byte, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return []byte("ok"), nil
	})
	pool := transcoder.NewPool(1, enc, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	resp, err := pool.Submit(context.Background(), transcoder.Request{Source: []byte{1}, Format: container.FormatWOFF, FileName: "a.ttf"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Kind != transcoder.KindError {
		t.Fatalf("expected error response after panic, got %+v", resp)
	}

	resp, err = pool.Submit(context.Background(), transcoder.Request{Source: []byte{1}, Format: container.FormatWOFF, FileName: "b.ttf"})
	if err != nil || !resp.OK() {
		t.Fatalf("worker should survive a panic: resp=%+v err=%v", resp, err)
	}
}

func TestSubmitRejectsUnknownKind(t *testing.T) {
	pool := transcoder.NewPool(1, nil, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	resp, err := pool.Submit(context.Background(), transcoder.Request{Kind: "inspect", Source: goregular.TTF, Format: container.FormatWOFF})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Kind != transcoder.KindError {
		t.Fatalf("expected error response, got %+v", resp)
	}
}

func TestSubmitCopiesSource(t *testing.T) {
	seen := make(chan []byte, 1)
	enc := transcoder.EncoderFunc(func(source []byte, format container.Format) ([]byte, error) {
		seen <- source
		return []byte("x"), nil
	})
	pool := transcoder.NewPool(1, enc, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	source := []byte("abc")
	if _, err := pool.Submit(context.Background(), transcoder.Request{Source: source, Format: container.FormatWOFF}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	source[0] = 'z'
	if got := <-seen; string(got) != "abc" {
		t.Fatalf("worker shares the caller's slice: %q", got)
	}
}

func TestConcurrentResponsesAreCorrelated(t *testing.T) {
	enc := transcoder.EncoderFunc(func(source []byte, format container.Format) ([]byte, error) {
		// Reverse completion order relative to submission.
		time.Sleep(time.Duration(10-int(source[0])%10) * time.Millisecond)
		return append([]byte(nil), source...), nil
	})
	pool := transcoder.NewPool(4, enc, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("font-%02d.ttf", i)
			resp, err := pool.Submit(context.Background(), transcoder.Request{
				ID:       fmt.Sprintf("req-%02d", i),
				Source:   []byte{byte(i)},
				Format:   container.FormatWOFF2,
				FileName: name,
			})
			if err != nil {
				errs <- err
				return
			}
			if resp.ID != fmt.Sprintf("req-%02d", i) || resp.Container[0] != byte(i) {
				errs <- fmt.Errorf("request %d received response %s", i, resp.ID)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSubmitHonorsCancellation(t *testing.T) {
	release := make(chan struct{})
	enc := transcoder.EncoderFunc(func(source []byte, format container.Format) ([]byte, error) {
		<-release
		return []byte("late"), nil
	})
	pool := transcoder.NewPool(1, enc, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := pool.Submit(ctx, transcoder.Request{Source: []byte{1}, Format: container.FormatWOFF})
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit did not return after cancellation")
	}

	close(release)
	resp, err := pool.Submit(context.Background(), transcoder.Request{Source: []byte{2}, Format: container.FormatWOFF})
	if err != nil || !resp.OK() {
		t.Fatalf("pool should keep serving after an abandoned request: %+v %v", resp, err)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	pool := transcoder.NewPool(2, nil, logging.NewNop())
	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := pool.Submit(context.Background(), transcoder.Request{Source: goregular.TTF, Format: container.FormatWOFF}); !errors.Is(err, transcoder.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNewFromConfigUsesConcurrency(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.Concurrency = 3
	pool := transcoder.NewFromConfig(&cfg, logging.NewNop())
	t.Cleanup(func() { _ = pool.Close() })
	if pool.Size() != 3 {
		t.Fatalf("Size = %d, want 3", pool.Size())
	}
}

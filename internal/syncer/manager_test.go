package syncer

import (
	"context"
	"errors"
	"testing"

	"mailfacts/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	byFolder map[string][]models.Message
	failing  map[string]error
	windows  []int
	folders  []string
}

func (f *fakeSource) FetchRecent(_ context.Context, folder string, windowDays int) ([]models.Message, error) {
	f.folders = append(f.folders, folder)
	f.windows = append(f.windows, windowDays)
	if err, ok := f.failing[folder]; ok {
		return nil, err
	}
	return f.byFolder[folder], nil
}

type fakeProcessor struct {
	processed []string
	failWhen  func(msg *models.Message) error
}

func (f *fakeProcessor) Process(_ context.Context, msg *models.Message) error {
	if f.failWhen != nil {
		if err := f.failWhen(msg); err != nil {
			return err
		}
	}
	f.processed = append(f.processed, msg.Subject)
	return nil
}

func msgs(subjects ...string) []models.Message {
	out := make([]models.Message, len(subjects))
	for i, s := range subjects {
		out[i] = models.Message{Subject: s, StoreID: "acct", EntryID: s}
	}
	return out
}

func TestScan_ProcessesAllFolders(t *testing.T) {
	source := &fakeSource{byFolder: map[string][]models.Message{
		"INBOX": msgs("a", "b"),
		"Sent":  msgs("c"),
	}}
	proc := &fakeProcessor{}
	m := NewManager(source, proc, Options{Folders: []string{"INBOX", "Sent"}}, zerolog.Nop())

	m.Scan(context.Background(), 90)

	assert.Equal(t, []string{"INBOX", "Sent"}, source.folders)
	assert.Equal(t, []int{90, 90}, source.windows)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, proc.processed)
}

func TestScan_FolderFetchFailureIsolated(t *testing.T) {
	source := &fakeSource{
		byFolder: map[string][]models.Message{"Sent": msgs("c")},
		failing:  map[string]error{"INBOX": errors.New("connection reset")},
	}
	proc := &fakeProcessor{}
	m := NewManager(source, proc, Options{Folders: []string{"INBOX", "Sent"}}, zerolog.Nop())

	m.Scan(context.Background(), 1)

	// INBOX failed but Sent was still scanned
	assert.Equal(t, []string{"INBOX", "Sent"}, source.folders)
	assert.Equal(t, []string{"c"}, proc.processed)
}

func TestScan_MessageFailureIsolated(t *testing.T) {
	source := &fakeSource{byFolder: map[string][]models.Message{
		"INBOX": msgs("good1", "bad", "good2"),
	}}
	proc := &fakeProcessor{failWhen: func(msg *models.Message) error {
		if msg.Subject == "bad" {
			return errors.New("extraction exploded")
		}
		return nil
	}}
	m := NewManager(source, proc, Options{Folders: []string{"INBOX"}}, zerolog.Nop())

	m.Scan(context.Background(), 1)

	assert.Equal(t, []string{"good1", "good2"}, proc.processed)
}

func TestScan_StopsOnCancelledContext(t *testing.T) {
	source := &fakeSource{byFolder: map[string][]models.Message{"INBOX": msgs("a")}}
	proc := &fakeProcessor{}
	m := NewManager(source, proc, Options{Folders: []string{"INBOX"}}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.Scan(ctx, 1)

	assert.Empty(t, source.folders, "no fetch after cancellation")
	assert.Empty(t, proc.processed)
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(&fakeSource{}, &fakeProcessor{}, Options{}, zerolog.Nop())

	assert.Equal(t, []string{"INBOX"}, m.opts.Folders)
	assert.Equal(t, 90, m.opts.InitialWindowDays)
	assert.Equal(t, 1, m.opts.DeltaWindowDays)
	assert.Equal(t, 2, m.opts.SyncIntervalMinute)
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	source := &fakeSource{byFolder: map[string][]models.Message{"INBOX": msgs("a")}}
	scanned := make(chan struct{}, 1)
	proc := &fakeProcessor{failWhen: func(_ *models.Message) error {
		scanned <- struct{}{}
		return nil
	}}
	m := NewManager(source, proc, Options{Folders: []string{"INBOX"}}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// Cancel only after the initial scan has reached the processor, so the
	// loop observes the cancel between ticks
	<-scanned
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, proc.processed)
}

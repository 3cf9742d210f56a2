package mailbox

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource() *IMAPSource {
	return NewIMAPSource("imap.example.com:993", "reader@example.com", "secret", zerolog.Nop())
}

func envelope(subject string, from, to []*imap.Address) *imap.Envelope {
	return &imap.Envelope{
		Subject: subject,
		From:    from,
		To:      to,
		Date:    time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestCollect_ConvertsFetchedMessages(t *testing.T) {
	src := newTestSource()
	section := &imap.BodySectionName{Peek: true}

	fetched := make(chan *imap.Message, 16)
	fetched <- &imap.Message{
		Uid: 41,
		Envelope: envelope("Weekly status",
			[]*imap.Address{{MailboxName: "pm", HostName: "example.com"}},
			[]*imap.Address{{MailboxName: "team", HostName: "example.com"}}),
	}
	fetched <- &imap.Message{Uid: 42} // no envelope, skipped
	close(fetched)

	out, err := src.collect(context.Background(), "INBOX", fetched, section)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "reader@example.com", out[0].StoreID)
	assert.Equal(t, "INBOX:41", out[0].EntryID)
	assert.Equal(t, "Weekly status", out[0].Subject)
	assert.Equal(t, "pm@example.com", out[0].Sender)
	assert.Equal(t, "team@example.com", out[0].To)
}

func TestCollect_DrainsChannelAfterCancel(t *testing.T) {
	src := newTestSource()
	section := &imap.BodySectionName{Peek: true}

	// More messages than the channel buffer holds, so an undrained
	// channel would leave the sender blocked.
	fetched := make(chan *imap.Message, 16)
	senderDone := make(chan struct{})
	go func() {
		defer close(senderDone)
		for i := 0; i < 64; i++ {
			fetched <- &imap.Message{
				Uid:      uint32(i + 1),
				Envelope: envelope(fmt.Sprintf("msg %d", i), nil, nil),
			}
		}
		close(fetched)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := src.collect(ctx, "INBOX", fetched, section)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)

	select {
	case <-senderDone:
	case <-time.After(time.Second):
		t.Fatal("sender still blocked after cancelled collect")
	}
}

func TestFormatAddresses(t *testing.T) {
	addrs := []*imap.Address{
		{MailboxName: "a", HostName: "example.com"},
		nil,
		{MailboxName: "b", HostName: "example.org"},
	}
	assert.Equal(t, "a@example.com, b@example.org", formatAddresses(addrs))
	assert.Equal(t, "", formatAddresses(nil))
}

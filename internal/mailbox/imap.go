package mailbox

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"mailfacts/internal/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
)

// IMAPSource reads messages over IMAP. Each fetch opens a fresh connection;
// scan cadence is minutes, so holding a long-lived session buys nothing and
// complicates reconnect handling.
type IMAPSource struct {
	addr     string
	username string
	password string
	logger   zerolog.Logger
}

// NewIMAPSource creates a source for the given server address (host:port,
// implicit TLS) and credentials.
func NewIMAPSource(addr, username, password string, logger zerolog.Logger) *IMAPSource {
	return &IMAPSource{
		addr:     addr,
		username: username,
		password: password,
		logger:   logger.With().Str("component", "imap").Logger(),
	}
}

// FetchRecent returns messages received in the given folder within the last
// windowDays days. EntryID is the Message-Id header when present, otherwise
// folder:uid, so a message keeps its identity across scans.
func (s *IMAPSource) FetchRecent(ctx context.Context, folder string, windowDays int) ([]models.Message, error) {
	c, err := client.DialTLS(s.addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", s.addr, err)
	}
	defer c.Logout()

	if err := c.Login(s.username, s.password); err != nil {
		return nil, fmt.Errorf("failed to login as %s: %w", s.username, err)
	}

	if _, err := c.Select(folder, true); err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = time.Now().AddDate(0, 0, -windowDays)
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search folder %s: %w", folder, err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, section.FetchItem()}

	fetched := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, fetched)
	}()

	out, err := s.collect(ctx, folder, fetched, section)
	fetchErr := <-done
	if err != nil {
		return nil, err
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("failed to fetch from folder %s: %w", folder, fetchErr)
	}

	return out, nil
}

// collect converts messages off the fetch channel. On context cancellation
// it stops converting but keeps draining until the channel closes, so the
// fetch goroutine is never left blocked on a send.
func (s *IMAPSource) collect(ctx context.Context, folder string, fetched <-chan *imap.Message, section *imap.BodySectionName) ([]models.Message, error) {
	var out []models.Message
	for raw := range fetched {
		if ctx.Err() != nil {
			continue
		}

		msg, err := s.convert(folder, raw, section)
		if err != nil {
			// One undecodable message must not sink the folder
			s.logger.Warn().Err(err).Str("folder", folder).Msg("Skipping unreadable message")
			continue
		}
		out = append(out, *msg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *IMAPSource) convert(folder string, raw *imap.Message, section *imap.BodySectionName) (*models.Message, error) {
	env := raw.Envelope
	if env == nil {
		return nil, fmt.Errorf("message %d has no envelope", raw.Uid)
	}

	msg := &models.Message{
		StoreID: s.username,
		EntryID: fmt.Sprintf("%s:%d", folder, raw.Uid),
		Folder:  folder,
		Subject: env.Subject,
		Sender:  formatAddresses(env.From),
		To:      formatAddresses(env.To),
		SentAt:  env.Date.UTC(),
	}
	if env.MessageId != "" {
		msg.EntryID = env.MessageId
	}
	if cc := formatAddresses(env.Cc); cc != "" {
		msg.Cc = &cc
	}
	msg.ReceivedAt = raw.InternalDate.UTC()
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = msg.SentAt
	}

	body := raw.GetBody(section)
	if body == nil {
		return msg, nil
	}
	text, html, err := readBodyParts(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body of %s: %w", msg.EntryID, err)
	}
	msg.BodyText = text
	if html != "" {
		msg.BodyHTML = &html
	}
	if msg.BodyText == "" && html != "" {
		// HTML-only message; strip markup so extraction still has text
		msg.BodyText = htmlToText(html)
	}
	return msg, nil
}

func formatAddresses(addrs []*imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == nil {
			continue
		}
		parts = append(parts, a.Address())
	}
	return strings.Join(parts, ", ")
}

// readBodyParts walks the MIME tree collecting the first text/plain part and
// the first text/html part.
func readBodyParts(r io.Reader) (text, html string, err error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", "", err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", "", err
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(part.Body)
		if err != nil {
			return "", "", err
		}
		switch {
		case contentType == "text/plain" && text == "":
			text = strings.TrimSpace(string(content))
		case contentType == "text/html" && html == "":
			html = strings.TrimSpace(string(content))
		}
	}
	return text, html, nil
}

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parley/internal/domain"
	"parley/internal/service"
	"parley/internal/timeline"
	"parley/internal/ws"
)

type chatApp struct {
	serverURL string
	email     string
	password  string
	convID    int64

	out io.Writer
	in  *bufio.Scanner
	log zerolog.Logger

	http   *http.Client
	token  string
	userID int64

	buffer *timeline.Buffer
	feed   *timeline.Feed
}

func (a *chatApp) run(ctx context.Context) error {
	a.http = &http.Client{Timeout: 15 * time.Second}
	a.buffer = timeline.NewBuffer()
	a.feed = timeline.NewFeed()

	if err := a.login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	// Initial snapshot, then the live stream; the buffer reconciles the two.
	snapshot, err := a.fetchPage(ctx, nil)
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}
	a.buffer.Reset(snapshot)
	for _, m := range snapshot {
		a.printMessage(m)
	}

	conn, err := a.dial(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	join := map[string]any{"type": "join_conversation", "conversation_id": a.convID}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("join conversation: %w", err)
	}

	go a.readEvents(conn)

	fmt.Fprintln(a.out, `type a message and press enter; "/older" loads history, "/quit" exits`)
	for a.in.Scan() {
		line := strings.TrimSpace(a.in.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/older":
			a.loadOlder(ctx)
		default:
			if err := a.send(ctx, line); err != nil {
				// The draft is not lost on a failed send.
				a.log.Warn().Err(err).Msg("send failed")
				fmt.Fprintf(a.out, "send failed, draft restored: %s\n", line)
			}
		}
	}
	return a.in.Err()
}

func (a *chatApp) login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"email": a.email, "password": a.password})
	if err != nil {
		return err
	}
	var resp service.TokenResponse
	if err := a.call(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return err
	}
	a.token = resp.Token
	a.userID = resp.User.ID
	return nil
}

func (a *chatApp) fetchPage(ctx context.Context, before *time.Time) ([]*domain.Message, error) {
	path := fmt.Sprintf("/api/conversations/%d/messages?limit=50", a.convID)
	if before != nil {
		path += "&before=" + url.QueryEscape(before.Format(time.RFC3339Nano))
	}
	var msgs []*domain.Message
	if err := a.call(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (a *chatApp) send(ctx context.Context, body string) error {
	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return err
	}
	var msg domain.Message
	path := fmt.Sprintf("/api/conversations/%d/messages", a.convID)
	if err := a.call(ctx, http.MethodPost, path, payload, &msg); err != nil {
		return err
	}
	// Optimistic append; the live echo of the same id is de-duplicated.
	if a.buffer.Append(&msg) {
		a.printMessage(&msg)
	}
	return nil
}

func (a *chatApp) loadOlder(ctx context.Context) {
	oldest := a.buffer.Oldest()
	if oldest == nil {
		return
	}
	page, err := a.fetchPage(ctx, &oldest.CreatedAt)
	if err != nil {
		a.log.Warn().Err(err).Msg("load older failed")
		return
	}
	a.buffer.PrependPage(page)
	if len(page) == 0 {
		fmt.Fprintln(a.out, "no older messages")
		return
	}
	fmt.Fprintf(a.out, "-- loaded %d older messages (%d total) --\n", len(page), a.buffer.Len())
}

func (a *chatApp) readEvents(conn *websocket.Conn) {
	for {
		var ev ws.Event
		if err := conn.ReadJSON(&ev); err != nil {
			a.log.Debug().Err(err).Msg("event stream closed")
			return
		}
		switch ev.Type {
		case "message":
			if ev.Message == nil || ev.Message.ConversationID != a.convID {
				continue
			}
			if a.buffer.Append(ev.Message) {
				a.printMessage(ev.Message)
			}
		case "notification":
			if ev.Notification == nil {
				continue
			}
			a.feed.PushLive(ev.Notification)
			fmt.Fprintf(a.out, "* %s (%d unread)\n", ev.Notification.Text, a.feed.Unread())
		}
	}
}

func (a *chatApp) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(a.serverURL)
	if err != nil {
		return nil, err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     "/ws",
		RawQuery: "token=" + url.QueryEscape(a.token),
	}
	header := http.Header{"Origin": []string{u.Scheme + "://" + u.Host}}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL.String(), header)
	return conn, err
}

func (a *chatApp) call(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.serverURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: status %s", method, path, resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *chatApp) printMessage(m *domain.Message) {
	who := m.SenderEmail
	if m.SenderName != nil && *m.SenderName != "" {
		who = *m.SenderName
	}
	if m.SenderID == a.userID {
		who = "you"
	}
	if who == "" {
		who = "user " + strconv.FormatInt(m.SenderID, 10)
	}
	fmt.Fprintf(a.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), who, m.Body)
}
